package subscription

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	channelmodels "promo-roulette-backend/internal/features/channel/models"
	"promo-roulette-backend/internal/platform/telegram"
)

// MembershipAPI — единственный вызов Bot API, нужный проверке подписок
type MembershipAPI interface {
	GetChatMember(ctx context.Context, chatID, userID int64) (*telegram.ChatMember, error)
}

// Checker проверяет членство пользователя в наборе каналов.
// Проверка только читает; эскалация состояния пользователя — отдельный шаг.
type Checker struct {
	tg MembershipAPI
}

func NewChecker(tg MembershipAPI) *Checker {
	return &Checker{tg: tg}
}

// Check выполняет по одному запросу членства на канал. Запросы идут
// параллельно, агрегат ждёт все ответы. Ошибка вызова консервативно
// считается отсутствием подписки. Пустой набор каналов — все подписаны.
func (c *Checker) Check(ctx context.Context, userID int64, channels []*channelmodels.Channel) (map[int64]bool, bool) {
	results := make(map[int64]bool, len(channels))
	if len(channels) == 0 {
		return results, true
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, ch := range channels {
		wg.Add(1)
		go func(channelID int64) {
			defer wg.Done()

			subscribed := c.isMember(ctx, channelID, userID)

			mu.Lock()
			results[channelID] = subscribed
			mu.Unlock()
		}(ch.ChannelID)
	}

	wg.Wait()

	all := true
	for _, subscribed := range results {
		if !subscribed {
			all = false
			break
		}
	}

	return results, all
}

func (c *Checker) isMember(ctx context.Context, channelID, userID int64) bool {
	member, err := c.tg.GetChatMember(ctx, channelID, userID)
	if err != nil {
		log.Warn().
			Int64("channel_id", channelID).
			Int64("user_id", userID).
			Err(err).
			Msg("Membership check failed, treating as not subscribed")
		return false
	}

	switch member.Status {
	case "member", "administrator", "creator":
		return true
	default:
		return false
	}
}
