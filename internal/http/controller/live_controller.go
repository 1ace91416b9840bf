package controller

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/inventory-dashboard/internal/http/middleware"
	"github.com/iyhunko/inventory-dashboard/internal/live"
)

// LiveController upgrades dashboard clients to websocket channels.
type LiveController struct {
	registry      *live.Registry
	authenticator middleware.Authenticator
}

// NewLiveController creates a new LiveController.
func NewLiveController(registry *live.Registry, authenticator middleware.Authenticator) *LiveController {
	return &LiveController{registry: registry, authenticator: authenticator}
}

// Subscribe handles GET /dashboard/ws?token=. The connection is upgraded before the token is
// checked so that a bad token is reported with close code 1008.
func (lc *LiveController) Subscribe(c *gin.Context) {
	conn, err := live.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("failed to upgrade live connection", slog.Any("err", err))
		return
	}

	user, err := lc.authenticator.Authenticate(c.Request.Context(), c.Query("token"))
	if err != nil {
		slog.Info("live connection rejected", slog.Any("err", err))
		live.RejectPolicyViolation(conn, "invalid token")
		return
	}

	slog.Debug("live connection opened", slog.String("owner", user.Username))
	live.Serve(c.Request.Context(), lc.registry, user.Username, conn)
}
