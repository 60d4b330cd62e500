package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"promo-roulette-backend/internal/features/prize/models"
	"promo-roulette-backend/internal/features/prize/repository"
)

const bySortKey = "prizes:by_sort"

type prizeRepository struct {
	client *redis.Client
}

func NewPrizeRepository(client *redis.Client) repository.PrizeRepository {
	return &prizeRepository{
		client: client,
	}
}

func prizeKey(key string) string {
	return "prize:" + key
}

func (r *prizeRepository) Save(ctx context.Context, prize *models.Prize) error {
	prizeJSON, err := json.Marshal(prize)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, prizeKey(prize.Key), prizeJSON, 0)
		pipe.ZAdd(ctx, bySortKey, redis.Z{
			Score:  float64(prize.SortOrder),
			Member: prize.Key,
		})
		return nil
	})
	return err
}

func (r *prizeRepository) GetByKey(ctx context.Context, key string) (*models.Prize, error) {
	prizeJSON, err := r.client.Get(ctx, prizeKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	var prize models.Prize
	if err := json.Unmarshal(prizeJSON, &prize); err != nil {
		return nil, err
	}

	return &prize, nil
}

func (r *prizeRepository) ListAll(ctx context.Context) ([]*models.Prize, error) {
	return r.list(ctx, false)
}

func (r *prizeRepository) ListActive(ctx context.Context) ([]*models.Prize, error) {
	return r.list(ctx, true)
}

func (r *prizeRepository) list(ctx context.Context, activeOnly bool) ([]*models.Prize, error) {
	keys, err := r.client.ZRange(ctx, bySortKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	prizes := make([]*models.Prize, 0, len(keys))
	for _, key := range keys {
		prizeJSON, err := r.client.Get(ctx, prizeKey(key)).Bytes()
		if err != nil {
			continue
		}

		var prize models.Prize
		if err := json.Unmarshal(prizeJSON, &prize); err != nil {
			continue
		}
		if activeOnly && !prize.IsActive {
			continue
		}
		prizes = append(prizes, &prize)
	}

	return prizes, nil
}

func (r *prizeRepository) Rename(ctx context.Context, key, name string) error {
	prize, err := r.GetByKey(ctx, key)
	if err != nil {
		return err
	}

	prize.Name = name
	return r.Save(ctx, prize)
}

func (r *prizeRepository) Toggle(ctx context.Context, key string) (bool, error) {
	prize, err := r.GetByKey(ctx, key)
	if err != nil {
		return false, err
	}

	prize.IsActive = !prize.IsActive
	if err := r.Save(ctx, prize); err != nil {
		return false, err
	}

	return prize.IsActive, nil
}
