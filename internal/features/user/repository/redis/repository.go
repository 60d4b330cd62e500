package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"promo-roulette-backend/internal/features/user/models"
	"promo-roulette-backend/internal/features/user/repository"
)

const (
	byCreatedKey = "users:by_created"

	// Количество повторов оптимистичной транзакции при гонке записей
	maxTxRetries = 3
)

type userRepository struct {
	client *redis.Client
}

func NewUserRepository(client *redis.Client) repository.UserRepository {
	return &userRepository{
		client: client,
	}
}

func userKey(id int64) string {
	return fmt.Sprintf("user:%d", id)
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, userKey(user.TelegramID), userJSON, 0)
		pipe.ZAdd(ctx, byCreatedKey, redis.Z{
			Score:  float64(user.CreatedAt.Unix()),
			Member: user.TelegramID,
		})
		return nil
	})
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	userJSON, err := r.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal(userJSON, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]*models.User, error) {
	ids, err := r.client.ZRange(ctx, byCreatedKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	return r.getMany(ctx, ids)
}

func (r *userRepository) Recent(ctx context.Context, limit int) ([]*models.User, error) {
	ids, err := r.client.ZRevRange(ctx, byCreatedKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	return r.getMany(ctx, ids)
}

func (r *userRepository) getMany(ctx context.Context, ids []string) ([]*models.User, error) {
	users := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		userJSON, err := r.client.Get(ctx, "user:"+id).Bytes()
		if err != nil {
			// Строка могла исчезнуть между чтением индекса и значением
			continue
		}

		var user models.User
		if err := json.Unmarshal(userJSON, &user); err != nil {
			continue
		}
		users = append(users, &user)
	}

	return users, nil
}

func (r *userRepository) TransitionToRolled(ctx context.Context, id int64, prizeKey, prizeName string) (*models.User, error) {
	return r.transition(ctx, id, models.UserStateNew, func(user *models.User) {
		now := time.Now()
		user.State = models.UserStateRolled
		user.PrizeKey = prizeKey
		user.PrizeName = prizeName
		user.RolledAt = &now
	})
}

func (r *userRepository) TransitionToClaimed(ctx context.Context, id int64) (*models.User, error) {
	return r.transition(ctx, id, models.UserStateRolled, func(user *models.User) {
		now := time.Now()
		user.State = models.UserStateClaimed
		user.ClaimedAt = &now
	})
}

// transition выполняет смену состояния как оптимистичную транзакцию:
// WATCH на ключе пользователя гарантирует, что guard и запись видят одну
// и ту же версию строки. Конкурирующая запись приводит к повтору.
func (r *userRepository) transition(ctx context.Context, id int64, guardState string, mutate func(*models.User)) (*models.User, error) {
	key := userKey(id)
	var updated *models.User

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return repository.ErrNotFound
		}
		if err != nil {
			return err
		}

		var user models.User
		if err := json.Unmarshal(raw, &user); err != nil {
			return err
		}

		if user.State != guardState {
			return repository.ErrStateConflict
		}

		mutate(&user)

		userJSON, err := json.Marshal(&user)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, userJSON, 0)
			return nil
		})
		if err == nil {
			updated = &user
		}
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}

	return nil, repository.ErrStateConflict
}
