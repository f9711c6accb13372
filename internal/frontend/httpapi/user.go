package httpapi

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cory-johannsen/catquest/internal/gameserver"
	"github.com/cory-johannsen/catquest/internal/user"
)

type registrationRequest struct {
	Name string `json:"name" binding:"required"`
}

type breedRequest struct {
	Breed string `json:"breed" binding:"required"`
}

func userBody(u user.User) gin.H {
	return gin.H{"user": u, "next": gameserver.NextScreen(u)}
}

// POST /api/welcome
func (a *API) postWelcome(c *gin.Context) {
	u, next, err := a.profile.Welcome(c.Request.Context())
	if err != nil {
		a.writeError(c, err, gin.H{"next": next})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u, "next": next})
}

// GET /api/user
func (a *API) getUser(c *gin.Context) {
	u, ok := a.profile.Current()
	if !ok {
		a.writeError(c, user.ErrNotLoaded, nil)
		return
	}
	c.JSON(http.StatusOK, userBody(u))
}

// GET /api/user/watch
func (a *API) watchUser(c *gin.Context) {
	ch, cancel := a.profile.Watch(streamBuffer)
	defer cancel()
	ctx := c.Request.Context()
	c.Stream(func(_ io.Writer) bool {
		select {
		case u, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("user", u)
			return true
		case <-ctx.Done():
			return false
		}
	})
}

// POST /api/user/registration
func (a *API) postRegistration(c *gin.Context) {
	var req registrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := a.profile.Register(c.Request.Context(), req.Name)
	if err != nil {
		a.writeError(c, err, gin.H{"user": u})
		return
	}
	c.JSON(http.StatusOK, userBody(u))
}

// PUT /api/user/breed
func (a *API) putBreed(c *gin.Context) {
	var req breedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := a.profile.SelectBreed(c.Request.Context(), req.Breed)
	if err != nil {
		a.writeError(c, err, gin.H{"user": u})
		return
	}
	c.JSON(http.StatusOK, userBody(u))
}

// POST /api/user/sync
func (a *API) postSync(c *gin.Context) {
	u, err := a.profile.Sync(c.Request.Context())
	if err != nil {
		a.writeError(c, err, gin.H{"user": u})
		return
	}
	c.JSON(http.StatusOK, userBody(u))
}

// GET /api/breeds
func (a *API) getBreeds(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"breeds": a.profile.Breeds()})
}

// GET /api/dungeons
func (a *API) getDungeons(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"dungeons": a.profile.Dungeons()})
}

// GET /api/reports?limit=n
func (a *API) getReports(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}
	reps, err := a.profile.Reports(c.Request.Context(), limit)
	if err != nil {
		a.writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reps})
}
