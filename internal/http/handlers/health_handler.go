package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"github.com/dupewatch/go-dupewatch/internal/repo"
)

// readyProbeTimeout bounds the storage ping on the readiness endpoint so a
// hung database cannot stall health checking infrastructure.
const readyProbeTimeout = 2 * time.Second

// UpdateBot is the subset of the Telegram service the HTTP layer depends on.
type UpdateBot interface {
	Token() string
	EnsureReady(ctx context.Context) error
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

// Handler bundles the dependencies shared by all endpoints.
type Handler struct {
	DB  *gorm.DB
	Bot UpdateBot
}

// New constructs a Handler with its dependencies injected.
func New(db *gorm.DB, bot UpdateBot) *Handler {
	return &Handler{DB: db, Bot: bot}
}

// Health is the liveness probe. It answers 200 as long as the process can
// serve HTTP, regardless of downstream dependency state.
func (h *Handler) Health(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{"status": "ok"})
}

// Ready is the readiness probe. It pings storage and answers 503 when the
// database cannot be reached, so load balancers route traffic elsewhere.
func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyProbeTimeout)
	defer cancel()

	if err := repo.Ping(ctx, h.DB); err != nil {
		fail(c, http.StatusServiceUnavailable, ErrCodeUnavailable, "storage unavailable")
		return
	}
	ok(c, http.StatusOK, gin.H{"status": "ready"})
}
