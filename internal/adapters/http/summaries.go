package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/openhuddle/huddle/internal/report"
	"github.com/openhuddle/huddle/internal/summarize"
)

// roomSummaryText loads the room's recent transcripts and concatenates them
// for the provider. Returns (text, status, errMessage).
func (a *API) roomSummaryText(c *gin.Context, room string) (string, int, string) {
	if a.store == nil {
		return "", http.StatusServiceUnavailable, "transcript storage not configured"
	}
	limit, err := parseLimit(c.Query("limit"), 200, 2000)
	if err != nil {
		return "", http.StatusBadRequest, "limit must be between 1 and 2000"
	}
	rows, err := a.store.ListByRoom(c.Request.Context(), room, limit)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("load transcripts for summary")
		return "", http.StatusInternalServerError, "database error while loading transcripts"
	}
	if len(rows) == 0 {
		return "", http.StatusNotFound, "no transcripts found for this room"
	}
	return summarize.ConcatTranscripts(rows), http.StatusOK, ""
}

func (a *API) generateSummary(c *gin.Context, room string) (string, int, string) {
	if a.provider == nil {
		return "", http.StatusBadRequest, "LLM provider not configured"
	}
	text, status, msg := a.roomSummaryText(c, room)
	if msg != "" {
		return "", status, msg
	}
	summary, err := a.provider.Summarize(c.Request.Context(), text)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").
			Str("provider", a.provider.Name()).Msg("summarize room")
		return "", http.StatusBadGateway, "summarization provider failed"
	}
	return summary, http.StatusOK, ""
}

func (a *API) SummarizeRoom(c *gin.Context) {
	room := c.Param("room")
	summary, status, msg := a.generateSummary(c, room)
	if msg != "" {
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room, "summary": summary})
}

type summaryPayload struct {
	Summary string `json:"summary"`
}

// SummarizeRoomPDF renders the summary as a downloadable PDF. A summary
// supplied in the request body skips generation.
func (a *API) SummarizeRoomPDF(c *gin.Context) {
	room := c.Param("room")

	var payload summaryPayload
	_ = c.ShouldBindJSON(&payload)
	summary := strings.TrimSpace(payload.Summary)

	if summary == "" {
		var status int
		var msg string
		summary, status, msg = a.generateSummary(c, room)
		if msg != "" {
			c.JSON(status, gin.H{"error": msg})
			return
		}
	}

	now := time.Now()
	pdfBytes, err := report.RoomSummaryPDF(room, summary, now)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("render summary pdf")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render PDF"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(room, now)))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
