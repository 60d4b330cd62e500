package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"promo-roulette-backend/internal/features/channel/models"
	"promo-roulette-backend/internal/features/channel/repository"
)

const byAddedKey = "channels:by_added"

type channelRepository struct {
	client *redis.Client
}

func NewChannelRepository(client *redis.Client) repository.ChannelRepository {
	return &channelRepository{
		client: client,
	}
}

func channelKey(id int64) string {
	return fmt.Sprintf("channel:%d", id)
}

func (r *channelRepository) Save(ctx context.Context, channel *models.Channel) error {
	channelJSON, err := json.Marshal(channel)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, channelKey(channel.ChannelID), channelJSON, 0)
		pipe.ZAdd(ctx, byAddedKey, redis.Z{
			Score:  float64(channel.AddedAt.Unix()),
			Member: channel.ChannelID,
		})
		return nil
	})
	return err
}

func (r *channelRepository) GetByID(ctx context.Context, id int64) (*models.Channel, error) {
	channelJSON, err := r.client.Get(ctx, channelKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	var channel models.Channel
	if err := json.Unmarshal(channelJSON, &channel); err != nil {
		return nil, err
	}

	return &channel, nil
}

func (r *channelRepository) ListActive(ctx context.Context) ([]*models.Channel, error) {
	ids, err := r.client.ZRange(ctx, byAddedKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	channels := make([]*models.Channel, 0, len(ids))
	for _, id := range ids {
		channelJSON, err := r.client.Get(ctx, "channel:"+id).Bytes()
		if err != nil {
			continue
		}

		var channel models.Channel
		if err := json.Unmarshal(channelJSON, &channel); err != nil {
			continue
		}
		if !channel.IsActive {
			continue
		}
		channels = append(channels, &channel)
	}

	return channels, nil
}

func (r *channelRepository) Deactivate(ctx context.Context, id int64) error {
	channel, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	channel.IsActive = false
	return r.Save(ctx, channel)
}
