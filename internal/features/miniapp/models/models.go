package models

// Форматы мини-аппа зафиксированы фронтендом: имена полей менять нельзя.

type AuthorizedRequest struct {
	InitData string `json:"initData" binding:"required"`
}

type SubscriptionRequest struct {
	InitData  string `json:"initData" binding:"required"`
	Action    string `json:"action"`
	PrizeKey  string `json:"prize_key"`
	PrizeName string `json:"prize_name"`
}

type UserPayload struct {
	TelegramID int64  `json:"telegram_id"`
	FirstName  string `json:"first_name"`
	State      string `json:"state"`
	PrizeKey   string `json:"prize_key"`
	PrizeName  string `json:"prize_name"`
}

type ChannelPayload struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Link   string `json:"link"`
	Avatar string `json:"avatar"`
}

type PrizePayload struct {
	Key   string `json:"key"`
	Tgs   string `json:"tgs"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

type GetUserResponse struct {
	OK       bool             `json:"ok"`
	User     UserPayload      `json:"user"`
	Channels []ChannelPayload `json:"channels"`
	Prizes   []PrizePayload   `json:"prizes"`
}

type SaveRollResponse struct {
	OK    bool   `json:"ok"`
	State string `json:"state"`
}

type CheckResponse struct {
	OK            bool           `json:"ok"`
	AllSubscribed bool           `json:"all_subscribed"`
	Results       map[int64]bool `json:"results"`
	State         string         `json:"state"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
