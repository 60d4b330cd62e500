package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promo-roulette-backend/internal/features/auth"
	botmodels "promo-roulette-backend/internal/features/bot/models"
	channelmodels "promo-roulette-backend/internal/features/channel/models"
	channelservice "promo-roulette-backend/internal/features/channel/service"
	prizemodels "promo-roulette-backend/internal/features/prize/models"
	prizerepo "promo-roulette-backend/internal/features/prize/repository"
	usermodels "promo-roulette-backend/internal/features/user/models"
	"promo-roulette-backend/internal/platform/telegram"
)

const (
	adminID  = int64(777)
	webAppTo = "https://roulette.example/app"
)

type sentMessage struct {
	chatID int64
	text   string
	markup *telegram.InlineKeyboardMarkup
}

type answeredCallback struct {
	id        string
	text      string
	showAlert bool
}

type fakeSender struct {
	sent    []sentMessage
	edited  []sentMessage
	answers []answeredCallback
}

func (f *fakeSender) SendMessage(_ context.Context, chatID int64, text string, markup *telegram.InlineKeyboardMarkup) error {
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text, markup: markup})
	return nil
}

func (f *fakeSender) EditMessageText(_ context.Context, chatID, _ int64, text string, markup *telegram.InlineKeyboardMarkup) error {
	f.edited = append(f.edited, sentMessage{chatID: chatID, text: text, markup: markup})
	return nil
}

func (f *fakeSender) AnswerCallbackQuery(_ context.Context, callbackID, text string, showAlert bool) error {
	f.answers = append(f.answers, answeredCallback{id: callbackID, text: text, showAlert: showAlert})
	return nil
}

type fakeUsers struct {
	created []int64
	stats   usermodels.Stats
}

func (f *fakeUsers) GetOrCreate(_ context.Context, tgUser *auth.TelegramUser) (*usermodels.User, error) {
	f.created = append(f.created, tgUser.ID)
	return &usermodels.User{TelegramID: tgUser.ID, State: usermodels.UserStateNew}, nil
}

func (f *fakeUsers) SaveRoll(_ context.Context, userID int64, prizeKey, prizeName string) (*usermodels.User, error) {
	return &usermodels.User{TelegramID: userID, State: usermodels.UserStateRolled, PrizeKey: prizeKey, PrizeName: prizeName}, nil
}

func (f *fakeUsers) CheckSubscriptions(_ context.Context, userID int64) (*usermodels.SubscriptionStatus, error) {
	return &usermodels.SubscriptionStatus{State: usermodels.UserStateNew, AllSubscribed: true}, nil
}

func (f *fakeUsers) Stats(_ context.Context) (*usermodels.Stats, error) {
	stats := f.stats
	return &stats, nil
}

type fakeChannels struct {
	active       []*channelmodels.Channel
	ingestResult *channelmodels.Channel
	ingestErr    error
	ingested     []string
	deactivated  []int64
	refreshed    int
	refreshTotal int
}

func (f *fakeChannels) Ingest(_ context.Context, ref string) (*channelmodels.Channel, error) {
	f.ingested = append(f.ingested, ref)
	return f.ingestResult, f.ingestErr
}

func (f *fakeChannels) Resolve(_ context.Context, _ string) (*channelmodels.Channel, error) {
	return f.ingestResult, f.ingestErr
}

func (f *fakeChannels) ListActive(_ context.Context) ([]*channelmodels.Channel, error) {
	return f.active, nil
}

func (f *fakeChannels) Deactivate(_ context.Context, id int64) error {
	f.deactivated = append(f.deactivated, id)
	return nil
}

func (f *fakeChannels) RefreshAll(_ context.Context) (int, int, error) {
	return f.refreshed, f.refreshTotal, nil
}

type fakePrizes struct {
	prizes  map[string]*prizemodels.Prize
	renamed map[string]string
}

func newFakePrizes(prizes ...*prizemodels.Prize) *fakePrizes {
	f := &fakePrizes{prizes: make(map[string]*prizemodels.Prize), renamed: make(map[string]string)}
	for _, p := range prizes {
		f.prizes[p.Key] = p
	}
	return f
}

func (f *fakePrizes) Save(_ context.Context, p *prizemodels.Prize) error {
	f.prizes[p.Key] = p
	return nil
}

func (f *fakePrizes) GetByKey(_ context.Context, key string) (*prizemodels.Prize, error) {
	p, ok := f.prizes[key]
	if !ok {
		return nil, prizerepo.ErrNotFound
	}
	return p, nil
}

func (f *fakePrizes) ListAll(_ context.Context) ([]*prizemodels.Prize, error) {
	out := make([]*prizemodels.Prize, 0, len(f.prizes))
	for _, p := range f.prizes {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePrizes) ListActive(_ context.Context) ([]*prizemodels.Prize, error) {
	out := make([]*prizemodels.Prize, 0, len(f.prizes))
	for _, p := range f.prizes {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePrizes) Rename(_ context.Context, key, name string) error {
	p, ok := f.prizes[key]
	if !ok {
		return prizerepo.ErrNotFound
	}
	p.Name = name
	f.renamed[key] = name
	return nil
}

func (f *fakePrizes) Toggle(_ context.Context, key string) (bool, error) {
	p, ok := f.prizes[key]
	if !ok {
		return false, prizerepo.ErrNotFound
	}
	p.IsActive = !p.IsActive
	return p.IsActive, nil
}

type fakeSessions struct {
	sessions map[int64]*botmodels.PendingInput
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: make(map[int64]*botmodels.PendingInput)}
}

func (f *fakeSessions) Get(_ context.Context, operatorID int64) (*botmodels.PendingInput, error) {
	return f.sessions[operatorID], nil
}

func (f *fakeSessions) Set(_ context.Context, operatorID int64, input *botmodels.PendingInput) error {
	f.sessions[operatorID] = input
	return nil
}

func (f *fakeSessions) Clear(_ context.Context, operatorID int64) error {
	delete(f.sessions, operatorID)
	return nil
}

type consoleFixture struct {
	console  *Console
	sender   *fakeSender
	users    *fakeUsers
	channels *fakeChannels
	prizes   *fakePrizes
	sessions *fakeSessions
}

func newFixture() *consoleFixture {
	f := &consoleFixture{
		sender:   &fakeSender{},
		users:    &fakeUsers{},
		channels: &fakeChannels{},
		prizes:   newFakePrizes(),
		sessions: newFakeSessions(),
	}
	f.console = NewConsole(f.sender, f.users, f.channels, f.prizes, f.sessions, adminID, webAppTo)
	return f
}

func messageUpdate(fromID int64, text string) *telegram.Update {
	return &telegram.Update{Message: &telegram.Message{
		From: &telegram.User{ID: fromID, FirstName: "Оператор"},
		Chat: telegram.Chat{ID: fromID},
		Text: text,
	}}
}

func callbackUpdate(fromID int64, data string) *telegram.Update {
	return &telegram.Update{CallbackQuery: &telegram.CallbackQuery{
		ID:   "cb-1",
		From: telegram.User{ID: fromID},
		Data: data,
		Message: &telegram.Message{
			MessageID: 55,
			Chat:      telegram.Chat{ID: fromID},
		},
	}}
}

func TestStartSendsGreetingAndRegistersUser(t *testing.T) {
	f := newFixture()

	err := f.console.HandleUpdate(context.Background(), messageUpdate(100, "/start"))
	require.NoError(t, err)

	require.Len(t, f.sender.sent, 1)
	assert.Contains(t, f.sender.sent[0].text, "Привет, Оператор")
	require.NotNil(t, f.sender.sent[0].markup)
	assert.Equal(t, webAppTo, f.sender.sent[0].markup.InlineKeyboard[0][0].WebApp.URL)
	assert.Equal(t, []int64{100}, f.users.created)
}

func TestAdminCommandOpensMenu(t *testing.T) {
	f := newFixture()
	f.channels.active = []*channelmodels.Channel{{ChannelID: -1001}}
	f.users.stats = usermodels.Stats{Total: 42}

	err := f.console.HandleUpdate(context.Background(), messageUpdate(adminID, "/a"))
	require.NoError(t, err)

	require.Len(t, f.sender.sent, 1)
	assert.Contains(t, f.sender.sent[0].text, "Панель администратора")
	assert.Contains(t, f.sender.sent[0].text, "Пользователей: <b>42</b>")
}

func TestAdminCommandIgnoredForOthers(t *testing.T) {
	f := newFixture()

	err := f.console.HandleUpdate(context.Background(), messageUpdate(100, "/a"))
	require.NoError(t, err)

	assert.Empty(t, f.sender.sent)
}

func TestFreeTextWithoutSessionIsIgnored(t *testing.T) {
	f := newFixture()

	err := f.console.HandleUpdate(context.Background(), messageUpdate(adminID, "случайный текст"))
	require.NoError(t, err)

	assert.Empty(t, f.sender.sent)
}

func TestCallbackDeniedForNonAdmin(t *testing.T) {
	f := newFixture()

	err := f.console.HandleUpdate(context.Background(), callbackUpdate(100, cbStats))
	require.NoError(t, err)

	require.Len(t, f.sender.answers, 1)
	assert.Equal(t, "⛔ Нет доступа", f.sender.answers[0].text)
	assert.True(t, f.sender.answers[0].showAlert)
	assert.Empty(t, f.sender.edited)
}

func TestAddChannelCallbackArmsSession(t *testing.T) {
	f := newFixture()

	err := f.console.HandleUpdate(context.Background(), callbackUpdate(adminID, cbAddChannel))
	require.NoError(t, err)

	session := f.sessions.sessions[adminID]
	require.NotNil(t, session)
	assert.Equal(t, botmodels.PendingAddChannel, session.Kind)

	require.Len(t, f.sender.edited, 1)
	assert.Contains(t, f.sender.edited[0].text, "Добавление канала")
}

func TestAddChannelNotFoundRearmsSession(t *testing.T) {
	f := newFixture()
	f.sessions.sessions[adminID] = &botmodels.PendingInput{Kind: botmodels.PendingAddChannel}
	f.channels.ingestErr = channelservice.ErrChannelNotFound

	err := f.console.HandleUpdate(context.Background(), messageUpdate(adminID, "@nosuch"))
	require.NoError(t, err)

	require.Len(t, f.sender.sent, 2)
	assert.Contains(t, f.sender.sent[1].text, "Не удалось найти канал")

	// Следующее сообщение оператора — новая попытка без повторного нажатия кнопки
	session := f.sessions.sessions[adminID]
	require.NotNil(t, session)
	assert.Equal(t, botmodels.PendingAddChannel, session.Kind)
}

func TestAddChannelPrivilegeDeniedClearsSession(t *testing.T) {
	f := newFixture()
	f.sessions.sessions[adminID] = &botmodels.PendingInput{Kind: botmodels.PendingAddChannel}
	f.channels.ingestResult = &channelmodels.Channel{ChannelID: -1001, Title: "Новости"}
	f.channels.ingestErr = channelservice.ErrNotAdmin

	err := f.console.HandleUpdate(context.Background(), messageUpdate(adminID, "@news"))
	require.NoError(t, err)

	require.Len(t, f.sender.sent, 2)
	assert.Contains(t, f.sender.sent[1].text, "не является администратором")
	assert.Contains(t, f.sender.sent[1].text, "Новости")
	assert.Nil(t, f.sessions.sessions[adminID])
}

func TestAddChannelSuccess(t *testing.T) {
	f := newFixture()
	f.sessions.sessions[adminID] = &botmodels.PendingInput{Kind: botmodels.PendingAddChannel}
	added := &channelmodels.Channel{ChannelID: -1001, Title: "Новости", Username: "news", MemberCount: 500}
	f.channels.ingestResult = added
	f.channels.active = []*channelmodels.Channel{added}

	err := f.console.HandleUpdate(context.Background(), messageUpdate(adminID, "https://t.me/news"))
	require.NoError(t, err)

	assert.Equal(t, []string{"https://t.me/news"}, f.channels.ingested)

	texts := make([]string, 0, len(f.sender.sent))
	for _, m := range f.sender.sent {
		texts = append(texts, m.text)
	}
	joined := strings.Join(texts, "\n---\n")
	assert.Contains(t, joined, "Канал добавлен")
	assert.Contains(t, joined, "Текущие каналы")
	assert.Nil(t, f.sessions.sessions[adminID])
}

func TestEditPrizeFlow(t *testing.T) {
	f := newFixture()
	f.prizes = newFakePrizes(&prizemodels.Prize{Key: "medal", Name: "Медаль", Emoji: "🎖", IsActive: true})
	f.console = NewConsole(f.sender, f.users, f.channels, f.prizes, f.sessions, adminID, webAppTo)

	err := f.console.HandleUpdate(context.Background(), callbackUpdate(adminID, cbEditPrize+":medal"))
	require.NoError(t, err)

	session := f.sessions.sessions[adminID]
	require.NotNil(t, session)
	assert.Equal(t, botmodels.PendingEditPrize, session.Kind)
	assert.Equal(t, "medal", session.PrizeKey)
	require.Len(t, f.sender.edited, 1)
	assert.Contains(t, f.sender.edited[0].text, "Медаль")

	err = f.console.HandleUpdate(context.Background(), messageUpdate(adminID, "Орден"))
	require.NoError(t, err)

	assert.Equal(t, "Орден", f.prizes.renamed["medal"])
	assert.Nil(t, f.sessions.sessions[adminID])
	require.NotEmpty(t, f.sender.sent)
	assert.Contains(t, f.sender.sent[0].text, "переименован")
}

func TestDeleteChannelCallback(t *testing.T) {
	f := newFixture()

	err := f.console.HandleUpdate(context.Background(), callbackUpdate(adminID, cbDeleteChannel+":-1001"))
	require.NoError(t, err)

	assert.Equal(t, []int64{-1001}, f.channels.deactivated)

	// ack + тост об удалении
	require.Len(t, f.sender.answers, 2)
	assert.Equal(t, "✅ Канал удалён", f.sender.answers[1].text)
	require.Len(t, f.sender.edited, 1)
	assert.Contains(t, f.sender.edited[0].text, "Нет добавленных каналов")
}

func TestTogglePrizeCallback(t *testing.T) {
	f := newFixture()
	f.prizes = newFakePrizes(&prizemodels.Prize{Key: "medal", Name: "Медаль", IsActive: true})
	f.console = NewConsole(f.sender, f.users, f.channels, f.prizes, f.sessions, adminID, webAppTo)

	err := f.console.HandleUpdate(context.Background(), callbackUpdate(adminID, cbTogglePrize+":medal"))
	require.NoError(t, err)

	assert.False(t, f.prizes.prizes["medal"].IsActive)
	require.Len(t, f.sender.edited, 1)
}

func TestRefreshWithoutChannels(t *testing.T) {
	f := newFixture()
	f.channels.refreshTotal = 0

	err := f.console.HandleUpdate(context.Background(), callbackUpdate(adminID, cbRefresh))
	require.NoError(t, err)

	require.Len(t, f.sender.answers, 2)
	assert.Equal(t, "Нет каналов для обновления", f.sender.answers[1].text)
	assert.True(t, f.sender.answers[1].showAlert)
	assert.Empty(t, f.sender.edited)
}

func TestRefreshReportsProgress(t *testing.T) {
	f := newFixture()
	f.channels.refreshed = 2
	f.channels.refreshTotal = 3

	err := f.console.HandleUpdate(context.Background(), callbackUpdate(adminID, cbRefresh))
	require.NoError(t, err)

	require.Len(t, f.sender.answers, 2)
	assert.Equal(t, "✅ Обновлено 2/3 каналов", f.sender.answers[1].text)

	require.Len(t, f.sender.edited, 1)
	assert.Contains(t, f.sender.edited[0].text, "Данные каналов обновлены")
}

func TestStatsCallbackRendersCounters(t *testing.T) {
	f := newFixture()
	f.users.stats = usermodels.Stats{
		Total: 10, New: 4, Rolled: 3, Claimed: 3,
		RolledPercent: 60, ClaimedPercent: 30,
		Recent: []*usermodels.User{{TelegramID: 5, FirstName: "Anna", State: usermodels.UserStateClaimed, PrizeName: "Медаль"}},
	}

	err := f.console.HandleUpdate(context.Background(), callbackUpdate(adminID, cbStats))
	require.NoError(t, err)

	require.Len(t, f.sender.edited, 1)
	text := f.sender.edited[0].text
	assert.Contains(t, text, "Всего: <b>10</b>")
	assert.Contains(t, text, "Крутили: <b>60%</b>")
	assert.Contains(t, text, "Anna — claimed (Медаль)")
}
