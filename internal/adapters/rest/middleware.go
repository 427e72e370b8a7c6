package rest

import (
	"time"

	"freight-bid-service/internal/domain/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ParticipantHeader names the acting participant on mutating requests
const ParticipantHeader = "X-Participant-ID"

const participantKey = "participant"

// requestLogger logs one line per request
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		if status >= 500 {
			event = logger.Error()
		} else if status >= 400 {
			event = logger.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

// requireParticipant resolves the acting participant from the request header
func (h *Handler) requireParticipant(c *gin.Context) {
	raw := c.GetHeader(ParticipantHeader)
	if raw == "" {
		h.fail(c, shared.ErrParticipantRequired)
		return
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		badRequest(c, "invalid "+ParticipantHeader+" header")
		return
	}

	participant, err := h.identity.Resolve(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Set(participantKey, *participant)
	c.Next()
}

func actor(c *gin.Context) shared.Participant {
	return c.MustGet(participantKey).(shared.Participant)
}
