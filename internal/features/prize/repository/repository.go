package repository

import (
	"context"
	"errors"

	"promo-roulette-backend/internal/features/prize/models"
)

// ErrNotFound возвращается для отсутствующего ключа каталога
var ErrNotFound = errors.New("prize not found")

type PrizeRepository interface {
	Save(ctx context.Context, prize *models.Prize) error
	GetByKey(ctx context.Context, key string) (*models.Prize, error)

	// ListAll возвращает весь каталог по sort_order, включая выключенные
	ListAll(ctx context.Context) ([]*models.Prize, error)

	// ListActive возвращает только активные призы по sort_order
	ListActive(ctx context.Context) ([]*models.Prize, error)

	Rename(ctx context.Context, key, name string) error

	// Toggle переключает is_active и возвращает новое значение
	Toggle(ctx context.Context, key string) (bool, error)
}
