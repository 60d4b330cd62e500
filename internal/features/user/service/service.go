package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"promo-roulette-backend/internal/features/auth"
	channelmodels "promo-roulette-backend/internal/features/channel/models"
	"promo-roulette-backend/internal/features/user/models"
	"promo-roulette-backend/internal/features/user/repository"
)

var (
	ErrUserNotFound = errors.New("user not found")

	// ErrAlreadyRolled — попытка повторного save_roll: состояние не new
	ErrAlreadyRolled = errors.New("already rolled")

	// ErrEmptyPrize — заявка без ключа приза нарушает инвариант строки
	ErrEmptyPrize = errors.New("empty prize key")
)

const recentUsersLimit = 5

// ChannelLister отдаёт активные каналы-спонсоры для проверки подписок
type ChannelLister interface {
	ListActive(ctx context.Context) ([]*channelmodels.Channel, error)
}

// SubscriptionChecker проверяет членство пользователя в наборе каналов
type SubscriptionChecker interface {
	Check(ctx context.Context, userID int64, channels []*channelmodels.Channel) (map[int64]bool, bool)
}

type UserService interface {
	GetOrCreate(ctx context.Context, tgUser *auth.TelegramUser) (*models.User, error)

	// SaveRoll переводит new → rolled ровно один раз; повтор — ErrAlreadyRolled
	SaveRoll(ctx context.Context, userID int64, prizeKey, prizeName string) (*models.User, error)

	// CheckSubscriptions отвечает картой подписок и, если все подписки на
	// месте при состоянии rolled, переводит пользователя в claimed.
	CheckSubscriptions(ctx context.Context, userID int64) (*models.SubscriptionStatus, error)

	Stats(ctx context.Context) (*models.Stats, error)
}

type userService struct {
	repo     repository.UserRepository
	channels ChannelLister
	checker  SubscriptionChecker
}

func NewUserService(repo repository.UserRepository, channels ChannelLister, checker SubscriptionChecker) UserService {
	return &userService{
		repo:     repo,
		channels: channels,
		checker:  checker,
	}
}

func (s *userService) GetOrCreate(ctx context.Context, tgUser *auth.TelegramUser) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, tgUser.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user = &models.User{
		TelegramID: tgUser.ID,
		Username:   tgUser.Username,
		FirstName:  tgUser.FirstName,
		LastName:   tgUser.LastName,
		State:      models.UserStateNew,
		CreatedAt:  time.Now(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Info().Int64("user_id", user.TelegramID).Msg("User created")
	return user, nil
}

func (s *userService) SaveRoll(ctx context.Context, userID int64, prizeKey, prizeName string) (*models.User, error) {
	if prizeKey == "" {
		return nil, ErrEmptyPrize
	}

	user, err := s.repo.TransitionToRolled(ctx, userID, prizeKey, prizeName)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrStateConflict):
			return nil, ErrAlreadyRolled
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		default:
			return nil, err
		}
	}

	log.Info().
		Int64("user_id", userID).
		Str("prize_key", prizeKey).
		Msg("Roll saved")

	return user, nil
}

func (s *userService) CheckSubscriptions(ctx context.Context, userID int64) (*models.SubscriptionStatus, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	channels, err := s.channels.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	results, all := s.checker.Check(ctx, userID, channels)

	state := user.State
	if all && user.State == models.UserStateRolled {
		claimed, err := s.repo.TransitionToClaimed(ctx, userID)
		if err == nil {
			state = claimed.State
			log.Info().Int64("user_id", userID).Str("prize_key", claimed.PrizeKey).Msg("Prize claimed")
		} else if !errors.Is(err, repository.ErrStateConflict) {
			// Конфликт значит, что параллельный запрос уже забрал переход;
			// ответ в любом случае отражает результат проверки.
			return nil, err
		} else {
			state = models.UserStateClaimed
		}
	}

	return &models.SubscriptionStatus{
		Results:       results,
		AllSubscribed: all,
		State:         state,
	}, nil
}

func (s *userService) Stats(ctx context.Context) (*models.Stats, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.Stats{Total: len(users)}
	for _, u := range users {
		switch u.State {
		case models.UserStateNew:
			stats.New++
		case models.UserStateRolled:
			stats.Rolled++
		case models.UserStateClaimed:
			stats.Claimed++
		}
	}

	if stats.Total > 0 {
		stats.RolledPercent = percent(stats.Rolled+stats.Claimed, stats.Total)
		stats.ClaimedPercent = percent(stats.Claimed, stats.Total)
	}

	recent, err := s.repo.Recent(ctx, recentUsersLimit)
	if err != nil {
		return nil, err
	}
	stats.Recent = recent

	return stats, nil
}

func percent(part, total int) int {
	return int(math.Round(float64(part) / float64(total) * 100))
}
