package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Webhook receives update payloads pushed by the Telegram Bot API.
//
// The bot token doubles as a shared secret in the path: a request whose
// token segment does not match answers 404, indistinguishable from an
// unknown route, so the endpoint cannot be probed.
//
// Well-formed updates always answer 200. Detection and reply delivery
// failures are handled (and logged) downstream; returning an error here
// would only make Telegram redeliver the same update.
func (h *Handler) Webhook(c *gin.Context) {
	token := c.Param("token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.Bot.Token())) != 1 {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "route not found")
		return
	}

	if err := h.Bot.EnsureReady(c.Request.Context()); err != nil {
		fail(c, http.StatusServiceUnavailable, ErrCodeUnavailable, "bot initializing")
		return
	}

	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "malformed update payload")
		return
	}

	h.Bot.HandleUpdate(c.Request.Context(), update)
	ok(c, http.StatusOK, gin.H{"status": "ok"})
}
