package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"promo-roulette-backend/internal/features/channel/models"
	"promo-roulette-backend/internal/features/channel/repository"
	"promo-roulette-backend/internal/platform/telegram"
)

var (
	// ErrChannelNotFound — канал не существует, недоступен боту или
	// указанный чат не является каналом
	ErrChannelNotFound = errors.New("channel not found")

	// ErrNotAdmin — бот не администратор канала, снапшот не сохраняется
	ErrNotAdmin = errors.New("bot is not a channel administrator")
)

type channelService struct {
	repo repository.ChannelRepository
	tg   TelegramAPI
}

func NewChannelService(repo repository.ChannelRepository, tg TelegramAPI) ChannelService {
	return &channelService{
		repo: repo,
		tg:   tg,
	}
}

// NormalizeRef приводит пользовательский ввод к виду, пригодному для getChat:
// ссылки t.me сводятся к @username, голые имена получают @,
// числовые ID (в том числе отрицательные) проходят без изменений.
func NormalizeRef(ref string) string {
	ref = strings.TrimSpace(ref)

	if idx := strings.LastIndex(ref, "t.me/"); idx >= 0 {
		handle := ref[idx+len("t.me/"):]
		handle = strings.SplitN(handle, "/", 2)[0]
		handle = strings.SplitN(handle, "?", 2)[0]
		return "@" + handle
	}

	if !strings.HasPrefix(ref, "@") && !isNumericID(ref) {
		return "@" + ref
	}

	return ref
}

func isNumericID(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s *channelService) Resolve(ctx context.Context, ref string) (*models.Channel, error) {
	normalized := NormalizeRef(ref)

	chat, err := s.tg.GetChat(ctx, normalized)
	if err != nil {
		log.Debug().Str("ref", normalized).Err(err).Msg("getChat failed")
		return nil, ErrChannelNotFound
	}

	if chat.Type != "channel" && chat.Type != "supergroup" {
		return nil, ErrChannelNotFound
	}

	channel := &models.Channel{
		ChannelID: chat.ID,
		Title:     chat.Title,
		Username:  chat.Username,
		IsActive:  true,
	}

	enrichment := s.enrich(ctx, chat)
	channel.InviteLink = enrichment.InviteLink
	channel.MemberCount = enrichment.MemberCount
	channel.AvatarBase64 = enrichment.Avatar

	return channel, nil
}

// enrich собирает необязательные части снапшота. Каждая часть best-effort:
// её отсутствие не срывает резолв, но фиксируется в отметке успеха.
func (s *channelService) enrich(ctx context.Context, chat *telegram.Chat) *models.Enrichment {
	e := &models.Enrichment{}

	switch {
	case chat.Username != "":
		e.InviteLink = "https://t.me/" + chat.Username
		e.InviteLinkOK = true
	case chat.InviteLink != "":
		e.InviteLink = chat.InviteLink
		e.InviteLinkOK = true
	default:
		link, err := s.tg.ExportChatInviteLink(ctx, chat.ID)
		if err != nil {
			log.Warn().Int64("channel_id", chat.ID).Err(err).Msg("Failed to export invite link")
		} else {
			e.InviteLink = link
			e.InviteLinkOK = true
		}
	}

	count, err := s.tg.GetChatMemberCount(ctx, chat.ID)
	if err != nil {
		log.Warn().Int64("channel_id", chat.ID).Err(err).Msg("Failed to get member count")
	} else {
		e.MemberCount = count
		e.MemberCountOK = true
	}

	if chat.Photo == nil {
		// Нет фото — это успех с пустым значением, не ошибка загрузки
		e.AvatarOK = true
		return e
	}

	fileID := chat.Photo.BigFileID
	if fileID == "" {
		fileID = chat.Photo.SmallFileID
	}

	avatar, err := s.downloadAvatar(ctx, fileID)
	if err != nil {
		log.Warn().Int64("channel_id", chat.ID).Err(err).Msg("Failed to download avatar")
		return e
	}

	e.Avatar = avatar
	e.AvatarOK = true
	return e
}

// downloadAvatar скачивает фото канала и упаковывает его в data:URI,
// пригодный для <img src> на стороне мини-аппа.
func (s *channelService) downloadAvatar(ctx context.Context, fileID string) (string, error) {
	file, err := s.tg.GetFile(ctx, fileID)
	if err != nil {
		return "", err
	}

	data, err := s.tg.DownloadFile(ctx, file.FilePath)
	if err != nil {
		return "", err
	}

	mime := "image/jpeg"
	if strings.HasSuffix(file.FilePath, ".png") {
		mime = "image/png"
	}

	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data)), nil
}

// ensureBotAdmin проверяет, что бот — администратор или создатель канала
func (s *channelService) ensureBotAdmin(ctx context.Context, channelID int64) error {
	me, err := s.tg.GetMe(ctx)
	if err != nil {
		return ErrNotAdmin
	}

	member, err := s.tg.GetChatMember(ctx, channelID, me.ID)
	if err != nil {
		return ErrNotAdmin
	}

	if member.Status != "administrator" && member.Status != "creator" {
		return ErrNotAdmin
	}

	return nil
}

func (s *channelService) Ingest(ctx context.Context, ref string) (*models.Channel, error) {
	channel, err := s.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	// Права проверяются до записи: при отказе в хранилище ничего не попадает
	if err := s.ensureBotAdmin(ctx, channel.ChannelID); err != nil {
		return channel, err
	}

	existing, err := s.repo.GetByID(ctx, channel.ChannelID)
	if err == nil {
		channel.AddedAt = existing.AddedAt
	} else {
		channel.AddedAt = time.Now()
	}
	channel.IsActive = true

	if err := s.repo.Save(ctx, channel); err != nil {
		return nil, err
	}

	log.Info().
		Int64("channel_id", channel.ChannelID).
		Str("title", channel.Title).
		Int("member_count", channel.MemberCount).
		Msg("Channel ingested")

	return channel, nil
}

func (s *channelService) ListActive(ctx context.Context) ([]*models.Channel, error) {
	return s.repo.ListActive(ctx)
}

func (s *channelService) Deactivate(ctx context.Context, id int64) error {
	return s.repo.Deactivate(ctx, id)
}

func (s *channelService) RefreshAll(ctx context.Context) (int, int, error) {
	channels, err := s.repo.ListActive(ctx)
	if err != nil {
		return 0, 0, err
	}

	updated := 0
	for _, stored := range channels {
		fresh, err := s.Resolve(ctx, strconv.FormatInt(stored.ChannelID, 10))
		if err != nil {
			// Старый снапшот лучше, чем затёртый — строку не трогаем
			log.Warn().Int64("channel_id", stored.ChannelID).Err(err).Msg("Refresh skipped")
			continue
		}

		stored.Title = fresh.Title
		stored.Username = fresh.Username
		stored.InviteLink = fresh.InviteLink
		stored.AvatarBase64 = fresh.AvatarBase64
		stored.MemberCount = fresh.MemberCount

		if err := s.repo.Save(ctx, stored); err != nil {
			log.Warn().Int64("channel_id", stored.ChannelID).Err(err).Msg("Refresh save failed")
			continue
		}
		updated++
	}

	return updated, len(channels), nil
}
