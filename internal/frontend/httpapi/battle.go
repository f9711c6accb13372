package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cory-johannsen/catquest/internal/game/combat"
)

type commandRequest struct {
	Command string `json:"command" binding:"required"`
}

// POST /api/combat/:dungeonId/:breedName
func (a *API) postCombat(c *gin.Context) {
	started, err := a.combat.StartBattle(c.Request.Context(), c.Param("dungeonId"), c.Param("breedName"))
	if err != nil {
		a.writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":               started.ID,
		"dungeon":          started.Encounter.Dungeon,
		"monster":          started.Encounter.Monster,
		"dungeon_fallback": started.DungeonFallback,
		"state":            started.State,
	})
}

// GET /api/battles/:id
func (a *API) getBattle(c *gin.Context) {
	st, err := a.combat.State(c.Param("id"))
	if err != nil {
		a.writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "state": st})
}

// POST /api/battles/:id/commands
func (a *API) postCommand(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, accepted, err := a.combat.Command(c.Request.Context(), c.Param("id"), req.Command)
	if errors.Is(err, combat.ErrBattleNotFound) {
		a.writeError(c, err, nil)
		return
	}
	body := gin.H{"state": st, "accepted": accepted}
	if err != nil {
		body["persist_error"] = err.Error()
	}
	c.JSON(http.StatusOK, body)
}

// POST /api/battles/:id/enemy-turn
func (a *API) postEnemyTurn(c *gin.Context) {
	st, resolved, err := a.combat.EnemyTurn(c.Request.Context(), c.Param("id"))
	if errors.Is(err, combat.ErrBattleNotFound) {
		a.writeError(c, err, nil)
		return
	}
	body := gin.H{"state": st, "accepted": resolved}
	if err != nil {
		body["persist_error"] = err.Error()
	}
	c.JSON(http.StatusOK, body)
}

// POST /api/battles/:id/dismiss
func (a *API) postDismiss(c *gin.Context) {
	st, err := a.combat.Dismiss(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.writeError(c, err, gin.H{"state": st})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": st})
}

// GET /api/battles/:id/stream
func (a *API) streamBattle(c *gin.Context) {
	ch, cancel, err := a.combat.Watch(c.Param("id"), streamBuffer)
	if err != nil {
		a.writeError(c, err, nil)
		return
	}
	defer cancel()
	ctx := c.Request.Context()
	c.Stream(func(_ io.Writer) bool {
		select {
		case st, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("state", st)
			return !st.Phase.Terminal()
		case <-ctx.Done():
			return false
		}
	})
}
