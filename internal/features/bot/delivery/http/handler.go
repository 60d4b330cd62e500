package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"promo-roulette-backend/internal/features/bot/service"
	"promo-roulette-backend/internal/platform/telegram"
)

type WebhookHandler struct {
	console *service.Console
}

func NewWebhookHandler(console *service.Console) *WebhookHandler {
	return &WebhookHandler{
		console: console,
	}
}

func (h *WebhookHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/webhook", h.handleWebhook)
}

// handleWebhook принимает апдейты Telegram. Ответ всегда {"ok": true}:
// любая ошибка обработки логируется, но не возвращается платформе,
// иначе Telegram начнёт бесконечно ретраить тот же апдейт.
func (h *WebhookHandler) handleWebhook(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Webhook handler panicked")
			c.JSON(http.StatusOK, gin.H{"ok": true})
		}
	}()

	var update telegram.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		log.Warn().Err(err).Msg("Failed to parse webhook update")
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	if err := h.console.HandleUpdate(c.Request.Context(), &update); err != nil {
		log.Error().Err(err).Int64("update_id", update.UpdateID).Msg("Failed to process update")
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
