package models

// PendingKind перечисляет действия, ожидающие свободного текста оператора
type PendingKind string

const (
	PendingAddChannel PendingKind = "add_channel"
	PendingEditPrize  PendingKind = "edit_prize"
)

// PendingInput — явный объект сессии оператора вместо строки-конвенции
// на строке пользователя: вид действия и его аргумент разнесены по полям.
// Один ожидаемый ввод на оператора в каждый момент времени.
type PendingInput struct {
	Kind     PendingKind `json:"kind"`
	PrizeKey string      `json:"prize_key,omitempty"`
}
