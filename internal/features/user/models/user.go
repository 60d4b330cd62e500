package models

import (
	"strconv"
	"time"
)

// Состояния пользователя в призовом флоу
const (
	UserStateNew     = "new"
	UserStateRolled  = "rolled"
	UserStateClaimed = "claimed"
)

// User представляет пользователя промо-акции.
// prize_key непустой тогда и только тогда, когда state ∈ {rolled, claimed}.
type User struct {
	TelegramID int64      `json:"telegram_id"`
	Username   string     `json:"username,omitempty"`
	FirstName  string     `json:"first_name,omitempty"`
	LastName   string     `json:"last_name,omitempty"`
	State      string     `json:"state"`
	PrizeKey   string     `json:"prize_key,omitempty"`
	PrizeName  string     `json:"prize_name,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	RolledAt   *time.Time `json:"rolled_at,omitempty"`
	ClaimedAt  *time.Time `json:"claimed_at,omitempty"`
}

// DisplayName возвращает имя для списков: имя, иначе username, иначе ID.
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return strconv.FormatInt(u.TelegramID, 10)
}

// Stats представляет агрегаты для админской статистики
type Stats struct {
	Total   int `json:"total"`
	New     int `json:"new"`
	Rolled  int `json:"rolled"`
	Claimed int `json:"claimed"`

	// Конверсии в процентах, 0 при отсутствии пользователей
	RolledPercent  int `json:"rolled_percent"`
	ClaimedPercent int `json:"claimed_percent"`

	Recent []*User `json:"recent"`
}

// SubscriptionStatus — результат проверки подписок вместе с актуальным
// состоянием пользователя (после возможного перехода rolled → claimed).
type SubscriptionStatus struct {
	Results       map[int64]bool `json:"results"`
	AllSubscribed bool           `json:"all_subscribed"`
	State         string         `json:"state"`
}
