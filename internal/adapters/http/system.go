package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/openhuddle/huddle/internal/config"
	"github.com/openhuddle/huddle/internal/storage"
	"github.com/openhuddle/huddle/internal/summarize"
)

// API holds the handlers' collaborators. store and provider may be nil when
// the matching feature is not configured.
type API struct {
	cfg      *config.Config
	store    *storage.TranscriptStore
	provider summarize.Provider
}

// ICEConfig exposes the STUN/TURN server list to the frontend. The hub only
// hands these values to clients; it does not implement NAT traversal.
func (a *API) ICEConfig(c *gin.Context) {
	servers, err := a.cfg.ICEServers()
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("build ice servers")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid ICE configuration"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"iceServers": servers})
}

func (a *API) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "signaling hub is running",
	})
}
