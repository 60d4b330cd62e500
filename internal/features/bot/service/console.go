package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"promo-roulette-backend/internal/features/auth"
	botmodels "promo-roulette-backend/internal/features/bot/models"
	botrepo "promo-roulette-backend/internal/features/bot/repository"
	channelservice "promo-roulette-backend/internal/features/channel/service"
	prizerepo "promo-roulette-backend/internal/features/prize/repository"
	userservice "promo-roulette-backend/internal/features/user/service"
	"promo-roulette-backend/internal/platform/telegram"
)

// Sender описывает исходящие вызовы Bot API, которыми рисуется консоль
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string, markup *telegram.InlineKeyboardMarkup) error
	EditMessageText(ctx context.Context, chatID, messageID int64, text string, markup *telegram.InlineKeyboardMarkup) error
	AnswerCallbackQuery(ctx context.Context, callbackID, text string, showAlert bool) error
}

// Console обслуживает чат бота: /start для участников и панель
// администратора для оператора. Кнопки всегда перечитывают строки
// хранилища перед перерисовкой; свободный текст интерпретируется только
// при взведённой сессии ожидаемого ввода.
type Console struct {
	tg        Sender
	users     userservice.UserService
	channels  channelservice.ChannelService
	prizes    prizerepo.PrizeRepository
	sessions  botrepo.SessionRepository
	adminID   int64
	webAppURL string
}

func NewConsole(
	tg Sender,
	users userservice.UserService,
	channels channelservice.ChannelService,
	prizes prizerepo.PrizeRepository,
	sessions botrepo.SessionRepository,
	adminID int64,
	webAppURL string,
) *Console {
	return &Console{
		tg:        tg,
		users:     users,
		channels:  channels,
		prizes:    prizes,
		sessions:  sessions,
		adminID:   adminID,
		webAppURL: webAppURL,
	}
}

func (c *Console) HandleUpdate(ctx context.Context, update *telegram.Update) error {
	switch {
	case update.Message != nil:
		return c.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		return c.handleCallback(ctx, update.CallbackQuery)
	}
	return nil
}

// ══════════════ Сообщения ══════════════

func (c *Console) handleMessage(ctx context.Context, msg *telegram.Message) error {
	if msg.From == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch {
	case text == "/start":
		return c.handleStart(ctx, msg)
	case text == "/a" && msg.From.ID == c.adminID:
		return c.sendMenu(ctx, msg.Chat.ID)
	case msg.From.ID == c.adminID:
		return c.handleAdminInput(ctx, msg.Chat.ID, text)
	}
	return nil
}

func (c *Console) handleStart(ctx context.Context, msg *telegram.Message) error {
	name := msg.From.FirstName
	if name == "" {
		name = "Боец"
	}

	text, markup := startView(name, c.webAppURL)
	if err := c.tg.SendMessage(ctx, msg.Chat.ID, text, markup); err != nil {
		return err
	}

	_, err := c.users.GetOrCreate(ctx, &auth.TelegramUser{
		ID:        msg.From.ID,
		Username:  msg.From.Username,
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
	})
	return err
}

func (c *Console) handleAdminInput(ctx context.Context, chatID int64, text string) error {
	pending, err := c.sessions.Get(ctx, c.adminID)
	if err != nil {
		return err
	}
	if pending == nil {
		return nil
	}

	switch pending.Kind {
	case botmodels.PendingAddChannel:
		return c.processAddChannel(ctx, chatID, text)
	case botmodels.PendingEditPrize:
		return c.processEditPrize(ctx, chatID, pending.PrizeKey, text)
	default:
		return c.sessions.Clear(ctx, c.adminID)
	}
}

func (c *Console) processAddChannel(ctx context.Context, chatID int64, ref string) error {
	_ = c.tg.SendMessage(ctx, chatID, "⏳ Проверяю канал...", nil)

	channel, err := c.channels.Ingest(ctx, ref)
	switch {
	case errors.Is(err, channelservice.ErrChannelNotFound):
		_ = c.tg.SendMessage(ctx, chatID, channelNotFoundText, nil)
		// Слот взводится заново: следующее сообщение — повторная попытка
		return c.sessions.Set(ctx, c.adminID, &botmodels.PendingInput{Kind: botmodels.PendingAddChannel})

	case errors.Is(err, channelservice.ErrNotAdmin):
		_ = c.tg.SendMessage(ctx, chatID, notAdminText(channel.Title), nil)
		return c.sessions.Clear(ctx, c.adminID)

	case err != nil:
		_ = c.tg.SendMessage(ctx, chatID, fmt.Sprintf("❌ Ошибка сохранения: %v", err), nil)
		return c.sessions.Clear(ctx, c.adminID)
	}

	_ = c.tg.SendMessage(ctx, chatID, channelAddedText(channel), nil)

	if channels, err := c.channels.ListActive(ctx); err == nil && len(channels) > 0 {
		_ = c.tg.SendMessage(ctx, chatID, channelListText(channels), nil)
	}

	return c.sessions.Clear(ctx, c.adminID)
}

func (c *Console) processEditPrize(ctx context.Context, chatID int64, prizeKey, newName string) error {
	err := c.prizes.Rename(ctx, prizeKey, newName)
	switch {
	case errors.Is(err, prizerepo.ErrNotFound):
		_ = c.tg.SendMessage(ctx, chatID, "❌ Ошибка: приз не найден", nil)
	case err != nil:
		_ = c.tg.SendMessage(ctx, chatID, fmt.Sprintf("❌ Ошибка: %v", err), nil)
	default:
		_ = c.tg.SendMessage(ctx, chatID,
			fmt.Sprintf("✅ Приз <b>%s</b> переименован в: <b>%s</b>", prizeKey, newName), nil)
		if prizes, err := c.prizes.ListActive(ctx); err == nil && len(prizes) > 0 {
			_ = c.tg.SendMessage(ctx, chatID, prizeListText(prizes), nil)
		}
	}

	return c.sessions.Clear(ctx, c.adminID)
}

// ══════════════ Callback-кнопки ══════════════

func (c *Console) handleCallback(ctx context.Context, cb *telegram.CallbackQuery) error {
	if cb.From.ID != c.adminID {
		return c.tg.AnswerCallbackQuery(ctx, cb.ID, "⛔ Нет доступа", true)
	}

	// Платформа ждёт подтверждение каждого callback независимо от исхода
	if err := c.tg.AnswerCallbackQuery(ctx, cb.ID, "", false); err != nil {
		log.Warn().Str("callback_id", cb.ID).Err(err).Msg("Failed to answer callback")
	}

	if cb.Message == nil {
		return nil
	}
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID

	switch {
	case cb.Data == cbMenu:
		return c.editMenu(ctx, chatID, messageID, false)

	case cb.Data == cbChannels:
		return c.editChannels(ctx, chatID, messageID)

	case cb.Data == cbAddChannel:
		if err := c.sessions.Set(ctx, c.adminID, &botmodels.PendingInput{Kind: botmodels.PendingAddChannel}); err != nil {
			return err
		}
		text, markup := addChannelPromptView()
		return c.tg.EditMessageText(ctx, chatID, messageID, text, markup)

	case strings.HasPrefix(cb.Data, cbDeleteChannel+":"):
		id, err := strconv.ParseInt(strings.TrimPrefix(cb.Data, cbDeleteChannel+":"), 10, 64)
		if err != nil {
			return nil
		}
		if err := c.channels.Deactivate(ctx, id); err != nil {
			log.Warn().Int64("channel_id", id).Err(err).Msg("Failed to deactivate channel")
		}
		_ = c.tg.AnswerCallbackQuery(ctx, cb.ID, "✅ Канал удалён", false)
		return c.editChannels(ctx, chatID, messageID)

	case cb.Data == cbPrizes:
		return c.editPrizes(ctx, chatID, messageID)

	case strings.HasPrefix(cb.Data, cbEditPrize+":"):
		prizeKey := strings.TrimPrefix(cb.Data, cbEditPrize+":")
		if err := c.sessions.Set(ctx, c.adminID, &botmodels.PendingInput{
			Kind:     botmodels.PendingEditPrize,
			PrizeKey: prizeKey,
		}); err != nil {
			return err
		}
		name := prizeKey
		if prize, err := c.prizes.GetByKey(ctx, prizeKey); err == nil {
			name = prize.Name
		}
		text, markup := editPrizePromptView(name)
		return c.tg.EditMessageText(ctx, chatID, messageID, text, markup)

	case strings.HasPrefix(cb.Data, cbTogglePrize+":"):
		prizeKey := strings.TrimPrefix(cb.Data, cbTogglePrize+":")
		if _, err := c.prizes.Toggle(ctx, prizeKey); err != nil {
			log.Warn().Str("prize_key", prizeKey).Err(err).Msg("Failed to toggle prize")
		}
		return c.editPrizes(ctx, chatID, messageID)

	case cb.Data == cbStats:
		return c.editStats(ctx, chatID, messageID)

	case cb.Data == cbRefresh:
		updated, total, err := c.channels.RefreshAll(ctx)
		if err != nil {
			return err
		}
		if total == 0 {
			return c.tg.AnswerCallbackQuery(ctx, cb.ID, "Нет каналов для обновления", true)
		}
		_ = c.tg.AnswerCallbackQuery(ctx, cb.ID, fmt.Sprintf("✅ Обновлено %d/%d каналов", updated, total), true)
		return c.editMenu(ctx, chatID, messageID, true)
	}

	return nil
}

// ══════════════ Отрисовка ══════════════

func (c *Console) counts(ctx context.Context) (int, int, int, error) {
	channels, err := c.channels.ListActive(ctx)
	if err != nil {
		return 0, 0, 0, err
	}
	prizes, err := c.prizes.ListActive(ctx)
	if err != nil {
		return 0, 0, 0, err
	}
	stats, err := c.users.Stats(ctx)
	if err != nil {
		return 0, 0, 0, err
	}
	return len(channels), len(prizes), stats.Total, nil
}

func (c *Console) sendMenu(ctx context.Context, chatID int64) error {
	channelCount, prizeCount, userCount, err := c.counts(ctx)
	if err != nil {
		return err
	}
	text, markup := menuView(channelCount, prizeCount, userCount, false)
	return c.tg.SendMessage(ctx, chatID, text, markup)
}

func (c *Console) editMenu(ctx context.Context, chatID, messageID int64, refreshed bool) error {
	channelCount, prizeCount, userCount, err := c.counts(ctx)
	if err != nil {
		return err
	}
	text, markup := menuView(channelCount, prizeCount, userCount, refreshed)
	return c.tg.EditMessageText(ctx, chatID, messageID, text, markup)
}

func (c *Console) editChannels(ctx context.Context, chatID, messageID int64) error {
	channels, err := c.channels.ListActive(ctx)
	if err != nil {
		return err
	}
	text, markup := channelsView(channels)
	return c.tg.EditMessageText(ctx, chatID, messageID, text, markup)
}

func (c *Console) editPrizes(ctx context.Context, chatID, messageID int64) error {
	prizes, err := c.prizes.ListAll(ctx)
	if err != nil {
		return err
	}
	text, markup := prizesView(prizes)
	return c.tg.EditMessageText(ctx, chatID, messageID, text, markup)
}

func (c *Console) editStats(ctx context.Context, chatID, messageID int64) error {
	stats, err := c.users.Stats(ctx)
	if err != nil {
		return err
	}
	text, markup := statsView(stats)
	return c.tg.EditMessageText(ctx, chatID, messageID, text, markup)
}
