package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promo-roulette-backend/internal/features/auth"
	channelmodels "promo-roulette-backend/internal/features/channel/models"
	prizemodels "promo-roulette-backend/internal/features/prize/models"
	prizerepo "promo-roulette-backend/internal/features/prize/repository"
	usermodels "promo-roulette-backend/internal/features/user/models"
	userrepo "promo-roulette-backend/internal/features/user/repository"
	userservice "promo-roulette-backend/internal/features/user/service"
)

const testBotToken = "1234567890:TEST_TOKEN"

// ══════════════ Подпись initData ══════════════

func signInitData(t *testing.T, botToken string, user *auth.TelegramUser) string {
	t.Helper()

	userJSON, err := json.Marshal(user)
	require.NoError(t, err)

	params := url.Values{}
	params.Set("user", string(userJSON))
	params.Set("auth_date", "1700000000")
	params.Set("query_id", "AAHtest")

	pairs := make([]string, 0, len(params))
	for key, values := range params {
		pairs = append(pairs, key+"="+values[0])
	}
	sort.Strings(pairs)

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(pairs, "\n")))

	params.Set("hash", hex.EncodeToString(mac.Sum(nil)))
	return params.Encode()
}

// ══════════════ In-memory хранилища ══════════════

type memUserRepo struct {
	users map[int64]*usermodels.User
}

func (r *memUserRepo) Create(_ context.Context, u *usermodels.User) error {
	clone := *u
	r.users[u.TelegramID] = &clone
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*usermodels.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, userrepo.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *memUserRepo) List(_ context.Context) ([]*usermodels.User, error) {
	out := make([]*usermodels.User, 0, len(r.users))
	for _, u := range r.users {
		clone := *u
		out = append(out, &clone)
	}
	return out, nil
}

func (r *memUserRepo) Recent(_ context.Context, limit int) ([]*usermodels.User, error) {
	users, _ := r.List(context.Background())
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (r *memUserRepo) TransitionToRolled(_ context.Context, id int64, prizeKey, prizeName string) (*usermodels.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, userrepo.ErrNotFound
	}
	if u.State != usermodels.UserStateNew {
		return nil, userrepo.ErrStateConflict
	}
	now := time.Now()
	u.State = usermodels.UserStateRolled
	u.PrizeKey = prizeKey
	u.PrizeName = prizeName
	u.RolledAt = &now
	clone := *u
	return &clone, nil
}

func (r *memUserRepo) TransitionToClaimed(_ context.Context, id int64) (*usermodels.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, userrepo.ErrNotFound
	}
	if u.State != usermodels.UserStateRolled {
		return nil, userrepo.ErrStateConflict
	}
	now := time.Now()
	u.State = usermodels.UserStateClaimed
	u.ClaimedAt = &now
	clone := *u
	return &clone, nil
}

type memChannels struct {
	active []*channelmodels.Channel
}

func (c *memChannels) Ingest(_ context.Context, _ string) (*channelmodels.Channel, error) {
	return nil, nil
}

func (c *memChannels) Resolve(_ context.Context, _ string) (*channelmodels.Channel, error) {
	return nil, nil
}

func (c *memChannels) ListActive(_ context.Context) ([]*channelmodels.Channel, error) {
	return c.active, nil
}

func (c *memChannels) Deactivate(_ context.Context, _ int64) error { return nil }

func (c *memChannels) RefreshAll(_ context.Context) (int, int, error) { return 0, 0, nil }

// toggleChecker отвечает одинаково на все каналы; флаг переключается из теста
type toggleChecker struct {
	subscribed bool
}

func (c *toggleChecker) Check(_ context.Context, _ int64, chans []*channelmodels.Channel) (map[int64]bool, bool) {
	results := make(map[int64]bool, len(chans))
	for _, ch := range chans {
		results[ch.ChannelID] = c.subscribed
	}
	return results, len(chans) == 0 || c.subscribed
}

type memPrizes struct {
	prizes []*prizemodels.Prize
}

func (p *memPrizes) Save(_ context.Context, _ *prizemodels.Prize) error { return nil }

func (p *memPrizes) GetByKey(_ context.Context, key string) (*prizemodels.Prize, error) {
	for _, prize := range p.prizes {
		if prize.Key == key {
			return prize, nil
		}
	}
	return nil, prizerepo.ErrNotFound
}

func (p *memPrizes) ListAll(_ context.Context) ([]*prizemodels.Prize, error) {
	return p.prizes, nil
}

func (p *memPrizes) ListActive(_ context.Context) ([]*prizemodels.Prize, error) {
	out := make([]*prizemodels.Prize, 0, len(p.prizes))
	for _, prize := range p.prizes {
		if prize.IsActive {
			out = append(out, prize)
		}
	}
	return out, nil
}

func (p *memPrizes) Rename(_ context.Context, _, _ string) error { return nil }

func (p *memPrizes) Toggle(_ context.Context, _ string) (bool, error) { return false, nil }

// ══════════════ Фикстура ══════════════

type apiFixture struct {
	router  *gin.Engine
	checker *toggleChecker
}

func newAPIFixture() *apiFixture {
	gin.SetMode(gin.TestMode)

	channels := &memChannels{active: []*channelmodels.Channel{
		{ChannelID: -1001, Title: "Новости", InviteLink: "https://t.me/news", AvatarBase64: "data:image/png;base64,iVBORw0"},
	}}
	checker := &toggleChecker{}
	users := userservice.NewUserService(&memUserRepo{users: make(map[int64]*usermodels.User)}, channels, checker)
	prizes := &memPrizes{prizes: []*prizemodels.Prize{
		{Key: "medal", Name: "Медаль", Emoji: "🎖", TgsFile: "medal.tgs", IsActive: true, SortOrder: 1},
		{Key: "gift", Name: "Подарок", Emoji: "🎁", TgsFile: "gift.tgs", IsActive: false, SortOrder: 2},
	}}

	router := gin.New()
	NewMiniAppHandler(users, channels, prizes, testBotToken).RegisterRoutes(router)

	return &apiFixture{router: router, checker: checker}
}

func (f *apiFixture) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// ══════════════ Тесты ══════════════

func TestGetUserBootstrap(t *testing.T) {
	f := newAPIFixture()
	initData := signInitData(t, testBotToken, &auth.TelegramUser{ID: 42, FirstName: "Anna"})

	rec := f.post(t, "/api/get-user", gin.H{"initData": initData})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["ok"])

	user := body["user"].(map[string]any)
	assert.Equal(t, float64(42), user["telegram_id"])
	assert.Equal(t, "Anna", user["first_name"])
	assert.Equal(t, "new", user["state"])

	channels := body["channels"].([]any)
	require.Len(t, channels, 1)
	ch := channels[0].(map[string]any)
	assert.Equal(t, "Новости", ch["name"])
	assert.Equal(t, "https://t.me/news", ch["link"])

	// Выключенный приз не попадает в рулетку
	prizes := body["prizes"].([]any)
	require.Len(t, prizes, 1)
	prize := prizes[0].(map[string]any)
	assert.Equal(t, "medal", prize["key"])
	assert.Equal(t, "medal.tgs", prize["tgs"])
}

func TestGetUserRejectsTamperedInitData(t *testing.T) {
	f := newAPIFixture()
	initData := signInitData(t, testBotToken, &auth.TelegramUser{ID: 42, FirstName: "Anna"})
	tampered := strings.Replace(initData, "Anna", "Eve", 1)

	rec := f.post(t, "/api/get-user", gin.H{"initData": tampered})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid initData", decodeBody(t, rec)["error"])
}

func TestGetUserRejectsMissingInitData(t *testing.T) {
	f := newAPIFixture()

	rec := f.post(t, "/api/get-user", gin.H{})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSaveRollOnceThenConflict(t *testing.T) {
	f := newAPIFixture()
	initData := signInitData(t, testBotToken, &auth.TelegramUser{ID: 42, FirstName: "Anna"})

	rec := f.post(t, "/api/check-subscription", gin.H{
		"initData": initData, "action": "save_roll",
		"prize_key": "medal", "prize_name": "Медаль",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "rolled", body["state"])

	rec = f.post(t, "/api/check-subscription", gin.H{
		"initData": initData, "action": "save_roll",
		"prize_key": "gift", "prize_name": "Подарок",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Already rolled", decodeBody(t, rec)["error"])
}

func TestCheckClaimsAfterRollAndSubscription(t *testing.T) {
	f := newAPIFixture()
	initData := signInitData(t, testBotToken, &auth.TelegramUser{ID: 42, FirstName: "Anna"})

	// Не подписан: roll сохраняется, claim не наступает
	rec := f.post(t, "/api/check-subscription", gin.H{
		"initData": initData, "action": "save_roll",
		"prize_key": "medal", "prize_name": "Медаль",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.post(t, "/api/check-subscription", gin.H{"initData": initData, "action": "check"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["all_subscribed"])
	assert.Equal(t, "rolled", body["state"])
	results := body["results"].(map[string]any)
	assert.Equal(t, false, results["-1001"])

	// Подписался — повторная проверка выдаёт приз
	f.checker.subscribed = true
	rec = f.post(t, "/api/check-subscription", gin.H{"initData": initData, "action": "check"})
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, true, body["all_subscribed"])
	assert.Equal(t, "claimed", body["state"])

	// Состояние терминальное: следующий check ничего не меняет
	rec = f.post(t, "/api/check-subscription", gin.H{"initData": initData, "action": "check"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "claimed", decodeBody(t, rec)["state"])
}

func TestCheckIsDefaultAction(t *testing.T) {
	f := newAPIFixture()
	initData := signInitData(t, testBotToken, &auth.TelegramUser{ID: 42, FirstName: "Anna"})

	rec := f.post(t, "/api/check-subscription", gin.H{"initData": initData})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "new", body["state"])
}

func TestUnknownActionRejected(t *testing.T) {
	f := newAPIFixture()
	initData := signInitData(t, testBotToken, &auth.TelegramUser{ID: 42, FirstName: "Anna"})

	rec := f.post(t, "/api/check-subscription", gin.H{"initData": initData, "action": "hack"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Unknown action", decodeBody(t, rec)["error"])
}
