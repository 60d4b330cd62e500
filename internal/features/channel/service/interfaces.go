package service

import (
	"context"

	"promo-roulette-backend/internal/features/channel/models"
	"promo-roulette-backend/internal/platform/telegram"
)

// TelegramAPI описывает вызовы Bot API, нужные резолверу каналов
type TelegramAPI interface {
	GetMe(ctx context.Context) (*telegram.User, error)
	GetChat(ctx context.Context, chatID string) (*telegram.Chat, error)
	GetChatMember(ctx context.Context, chatID, userID int64) (*telegram.ChatMember, error)
	GetChatMemberCount(ctx context.Context, chatID int64) (int, error)
	ExportChatInviteLink(ctx context.Context, chatID int64) (string, error)
	GetFile(ctx context.Context, fileID string) (*telegram.File, error)
	DownloadFile(ctx context.Context, filePath string) ([]byte, error)
}

type ChannelService interface {
	// Ingest нормализует ссылку, резолвит канал, убеждается что бот —
	// администратор, и сохраняет снапшот. При повторном добавлении строка
	// обновляется на месте, is_active принудительно включается.
	Ingest(ctx context.Context, ref string) (*models.Channel, error)

	// Resolve возвращает снапшот без записи и без проверки прав
	Resolve(ctx context.Context, ref string) (*models.Channel, error)

	ListActive(ctx context.Context) ([]*models.Channel, error)
	Deactivate(ctx context.Context, id int64) error

	// RefreshAll повторяет обогащение для всех активных каналов,
	// не трогая is_active и added_at. Возвращает updated и total.
	RefreshAll(ctx context.Context) (int, int, error)
}
