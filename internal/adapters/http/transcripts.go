package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/openhuddle/huddle/internal/domain"
)

type transcriptCreate struct {
	Room     string `json:"room"`
	ClientID string `json:"client_id"`
	Language string `json:"language"`
	Text     string `json:"text" binding:"required"`
}

func (a *API) CreateTranscript(c *gin.Context) {
	if a.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "transcript storage not configured"})
		return
	}

	var payload transcriptCreate
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transcript payload"})
		return
	}
	text := strings.TrimSpace(payload.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transcript text is empty"})
		return
	}
	language := payload.Language
	if language == "" {
		language = "en-US"
	}

	t := domain.Transcript{
		Room:     payload.Room,
		ClientID: payload.ClientID,
		Language: language,
		Text:     text,
	}
	if err := a.store.Save(c.Request.Context(), &t); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("save transcript")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error while saving transcript"})
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (a *API) ListTranscripts(c *gin.Context) {
	if a.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "transcript storage not configured"})
		return
	}

	limit, err := parseLimit(c.Query("limit"), 50, 500)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
		return
	}

	rows, err := a.store.ListByRoom(c.Request.Context(), c.Query("room"), limit)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("list transcripts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error while listing transcripts"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func parseLimit(raw string, def, max int) (int, error) {
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if limit < 1 || limit > max {
		return 0, strconv.ErrRange
	}
	return limit, nil
}
