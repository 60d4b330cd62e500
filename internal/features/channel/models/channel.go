package models

import "time"

// Channel представляет денормализованный снапшот канала-спонсора.
// Снапшот читается мини-аппом как есть, без обращений к Telegram.
type Channel struct {
	ChannelID    int64     `json:"channel_id"`
	Title        string    `json:"title"`
	Username     string    `json:"username,omitempty"`
	InviteLink   string    `json:"invite_link,omitempty"`
	AvatarBase64 string    `json:"avatar_base64,omitempty"`
	MemberCount  int       `json:"member_count"`
	IsActive     bool      `json:"is_active"`
	AddedAt      time.Time `json:"added_at"`
}

// Enrichment — необязательные части снапшота, каждая со своей отметкой
// успеха: пустой аватар из-за ошибки загрузки отличим от канала без фото.
type Enrichment struct {
	InviteLink   string
	InviteLinkOK bool

	MemberCount   int
	MemberCountOK bool

	Avatar   string
	AvatarOK bool
}
