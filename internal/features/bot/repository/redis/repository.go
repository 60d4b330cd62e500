package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"promo-roulette-backend/internal/features/bot/models"
	"promo-roulette-backend/internal/features/bot/repository"
)

type sessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) repository.SessionRepository {
	return &sessionRepository{
		client: client,
	}
}

func sessionKey(operatorID int64) string {
	return fmt.Sprintf("admin:session:%d", operatorID)
}

func (r *sessionRepository) Get(ctx context.Context, operatorID int64) (*models.PendingInput, error) {
	sessionJSON, err := r.client.Get(ctx, sessionKey(operatorID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var input models.PendingInput
	if err := json.Unmarshal(sessionJSON, &input); err != nil {
		return nil, err
	}

	return &input, nil
}

func (r *sessionRepository) Set(ctx context.Context, operatorID int64, input *models.PendingInput) error {
	sessionJSON, err := json.Marshal(input)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, sessionKey(operatorID), sessionJSON, 0).Err()
}

func (r *sessionRepository) Clear(ctx context.Context, operatorID int64) error {
	return r.client.Del(ctx, sessionKey(operatorID)).Err()
}
