package repository

import (
	"context"

	"promo-roulette-backend/internal/features/bot/models"
)

// SessionRepository хранит ожидаемый ввод консоли по оператору.
// Отсутствие записи означает, что консоль ничего не ждёт.
type SessionRepository interface {
	Get(ctx context.Context, operatorID int64) (*models.PendingInput, error)
	Set(ctx context.Context, operatorID int64, input *models.PendingInput) error
	Clear(ctx context.Context, operatorID int64) error
}
