package models

// Prize представляет позицию призового каталога. Каталог заливается
// отдельной утилитой; через консоль меняется только название и активность.
type Prize struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Emoji     string `json:"emoji"`
	TgsFile   string `json:"tgs_file"`
	IsActive  bool   `json:"is_active"`
	SortOrder int    `json:"sort_order"`
}
