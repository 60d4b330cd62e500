package repository

import (
	"context"
	"errors"

	"promo-roulette-backend/internal/features/user/models"
)

var (
	// ErrNotFound возвращается, когда строки пользователя нет в хранилище
	ErrNotFound = errors.New("user not found")

	// ErrStateConflict возвращается, когда guard перехода не прошёл:
	// состояние строки не совпадает с ожидаемым на момент записи.
	ErrStateConflict = errors.New("user state conflict")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Recent(ctx context.Context, limit int) ([]*models.User, error)

	// TransitionToRolled атомарно переводит new → rolled, записывая приз
	// и отметку времени. Любое другое исходное состояние — ErrStateConflict.
	TransitionToRolled(ctx context.Context, id int64, prizeKey, prizeName string) (*models.User, error)

	// TransitionToClaimed атомарно переводит rolled → claimed.
	TransitionToClaimed(ctx context.Context, id int64) (*models.User, error)
}
