// Package httpapi exposes the game over HTTP with gin, streaming live battle
// and user state as server-sent events.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cory-johannsen/catquest/internal/game/combat"
	"github.com/cory-johannsen/catquest/internal/gameserver"
	"github.com/cory-johannsen/catquest/internal/user"
)

// HealthFunc reports whether the backing store answers within timeout.
type HealthFunc func(ctx context.Context, timeout time.Duration) error

// streamBuffer is the per-subscriber queue length for event streams.
const streamBuffer = 16

// API holds the handlers behind the routes.
type API struct {
	profile *gameserver.ProfileHandler
	combat  *gameserver.CombatHandler
	health  HealthFunc
	logger  *zap.Logger
}

// NewRouter builds the gin engine with every route registered.
//
// Precondition: profile and combat must be non-nil; health may be nil.
// Postcondition: Returns a ready-to-serve engine.
func NewRouter(profile *gameserver.ProfileHandler, combatH *gameserver.CombatHandler, health HealthFunc, debug bool, logger *zap.Logger) *gin.Engine {
	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	a := &API{profile: profile, combat: combatH, health: health, logger: logger}

	r := gin.New()
	r.Use(TraceID(), Recovery(logger), Logger(logger))

	r.GET("/health", a.getHealth)

	api := r.Group("/api")
	api.POST("/welcome", a.postWelcome)
	api.GET("/user", a.getUser)
	api.GET("/user/watch", a.watchUser)
	api.POST("/user/registration", a.postRegistration)
	api.PUT("/user/breed", a.putBreed)
	api.POST("/user/sync", a.postSync)
	api.GET("/breeds", a.getBreeds)
	api.GET("/dungeons", a.getDungeons)
	api.GET("/reports", a.getReports)

	api.POST("/combat/:dungeonId/:breedName", a.postCombat)
	api.GET("/battles/:id", a.getBattle)
	api.POST("/battles/:id/commands", a.postCommand)
	api.POST("/battles/:id/enemy-turn", a.postEnemyTurn)
	api.POST("/battles/:id/dismiss", a.postDismiss)
	api.GET("/battles/:id/stream", a.streamBattle)

	return r
}

// writeError maps domain errors onto HTTP status codes.
func (a *API) writeError(c *gin.Context, err error, extra gin.H) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, user.ErrInvalidName),
		errors.Is(err, user.ErrInvalidBreed),
		errors.Is(err, gameserver.ErrUnknownBreed):
		status = http.StatusBadRequest
	case errors.Is(err, combat.ErrBattleNotFound):
		status = http.StatusNotFound
	case errors.Is(err, gameserver.ErrNotFinished):
		status = http.StatusConflict
	case errors.Is(err, user.ErrNotLoaded):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		a.logger.Error("request failed", zap.String("path", c.FullPath()), zap.String("trace_id", traceID(c)), zap.Error(err))
	}
	body := gin.H{"error": err.Error()}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

func (a *API) getHealth(c *gin.Context) {
	if a.health != nil {
		if err := a.health(c.Request.Context(), 2*time.Second); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
