package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"promo-roulette-backend/internal/features/auth"
	channelservice "promo-roulette-backend/internal/features/channel/service"
	"promo-roulette-backend/internal/features/miniapp/models"
	prizerepo "promo-roulette-backend/internal/features/prize/repository"
	userservice "promo-roulette-backend/internal/features/user/service"
)

const (
	actionSaveRoll = "save_roll"
	actionCheck    = "check"
)

// MiniAppHandler обслуживает API рулетки. initData приходит в теле
// каждого запроса и проверяется на месте: у мини-аппа нет иной сессии.
type MiniAppHandler struct {
	users    userservice.UserService
	channels channelservice.ChannelService
	prizes   prizerepo.PrizeRepository
	botToken string
}

func NewMiniAppHandler(
	users userservice.UserService,
	channels channelservice.ChannelService,
	prizes prizerepo.PrizeRepository,
	botToken string,
) *MiniAppHandler {
	return &MiniAppHandler{
		users:    users,
		channels: channels,
		prizes:   prizes,
		botToken: botToken,
	}
}

func (h *MiniAppHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.POST("/get-user", h.getUser)
		api.POST("/check-subscription", h.checkSubscription)
	}
}

// @Summary Get user snapshot
// @Description Validate initData, get or create the user and return the roulette bootstrap: user row, sponsor channels and active prize catalog
// @Tags miniapp
// @Accept json
// @Produce json
// @Param request body models.AuthorizedRequest true "Signed init data"
// @Success 200 {object} models.GetUserResponse "User, channels and prizes"
// @Failure 401 {object} models.ErrorResponse "Invalid init data"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /api/get-user [post]
func (h *MiniAppHandler) getUser(c *gin.Context) {
	var req models.AuthorizedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid initData"})
		return
	}

	tgUser, err := auth.Validate(req.InitData, h.botToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid initData"})
		return
	}

	ctx := c.Request.Context()

	user, err := h.users.GetOrCreate(ctx, tgUser)
	if err != nil {
		h.internalError(c, err, "Failed to get or create user")
		return
	}

	channels, err := h.channels.ListActive(ctx)
	if err != nil {
		h.internalError(c, err, "Failed to list channels")
		return
	}

	prizes, err := h.prizes.ListActive(ctx)
	if err != nil {
		h.internalError(c, err, "Failed to list prizes")
		return
	}

	resp := models.GetUserResponse{
		OK: true,
		User: models.UserPayload{
			TelegramID: user.TelegramID,
			FirstName:  user.FirstName,
			State:      user.State,
			PrizeKey:   user.PrizeKey,
			PrizeName:  user.PrizeName,
		},
		Channels: make([]models.ChannelPayload, 0, len(channels)),
		Prizes:   make([]models.PrizePayload, 0, len(prizes)),
	}

	for _, ch := range channels {
		resp.Channels = append(resp.Channels, models.ChannelPayload{
			ID:     ch.ChannelID,
			Name:   ch.Title,
			Link:   ch.InviteLink,
			Avatar: ch.AvatarBase64,
		})
	}

	for _, p := range prizes {
		resp.Prizes = append(resp.Prizes, models.PrizePayload{
			Key:   p.Key,
			Tgs:   p.TgsFile,
			Name:  p.Name,
			Emoji: p.Emoji,
		})
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Save roll or check subscriptions
// @Description Action save_roll pins the rolled prize to the user exactly once; action check verifies sponsor subscriptions and claims the prize when all are present
// @Tags miniapp
// @Accept json
// @Produce json
// @Param request body models.SubscriptionRequest true "Signed init data with action"
// @Success 200 {object} models.CheckResponse "Subscription results"
// @Failure 400 {object} models.ErrorResponse "Already rolled or unknown action"
// @Failure 401 {object} models.ErrorResponse "Invalid init data"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /api/check-subscription [post]
func (h *MiniAppHandler) checkSubscription(c *gin.Context) {
	var req models.SubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid initData"})
		return
	}

	tgUser, err := auth.Validate(req.InitData, h.botToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid initData"})
		return
	}

	ctx := c.Request.Context()

	if _, err := h.users.GetOrCreate(ctx, tgUser); err != nil {
		h.internalError(c, err, "Failed to get or create user")
		return
	}

	action := req.Action
	if action == "" {
		action = actionCheck
	}

	switch action {
	case actionSaveRoll:
		h.saveRoll(c, tgUser.ID, &req)
	case actionCheck:
		h.check(c, tgUser.ID)
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Unknown action"})
	}
}

func (h *MiniAppHandler) saveRoll(c *gin.Context, userID int64, req *models.SubscriptionRequest) {
	user, err := h.users.SaveRoll(c.Request.Context(), userID, req.PrizeKey, req.PrizeName)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrAlreadyRolled):
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Already rolled"})
		case errors.Is(err, userservice.ErrEmptyPrize):
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Empty prize key"})
		default:
			h.internalError(c, err, "Failed to save roll")
		}
		return
	}

	c.JSON(http.StatusOK, models.SaveRollResponse{OK: true, State: user.State})
}

func (h *MiniAppHandler) check(c *gin.Context, userID int64) {
	status, err := h.users.CheckSubscriptions(c.Request.Context(), userID)
	if err != nil {
		h.internalError(c, err, "Failed to check subscriptions")
		return
	}

	c.JSON(http.StatusOK, models.CheckResponse{
		OK:            true,
		AllSubscribed: status.AllSubscribed,
		Results:       status.Results,
		State:         status.State,
	})
}

func (h *MiniAppHandler) internalError(c *gin.Context, err error, msg string) {
	log.Error().Err(err).Msg(msg)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
}
