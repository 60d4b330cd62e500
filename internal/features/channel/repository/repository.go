package repository

import (
	"context"
	"errors"

	"promo-roulette-backend/internal/features/channel/models"
)

// ErrNotFound возвращается, когда строки канала нет в хранилище
var ErrNotFound = errors.New("channel not found")

type ChannelRepository interface {
	// Save пишет снапшот целиком и поддерживает индекс по added_at
	Save(ctx context.Context, channel *models.Channel) error
	GetByID(ctx context.Context, id int64) (*models.Channel, error)

	// ListActive возвращает активные каналы в порядке добавления
	ListActive(ctx context.Context) ([]*models.Channel, error)

	// Deactivate снимает флаг is_active; строка остаётся на месте
	Deactivate(ctx context.Context, id int64) error
}
