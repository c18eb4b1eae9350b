package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"medscribe/internal/identity"
	"medscribe/internal/repository"
	"medscribe/internal/session"
	"medscribe/internal/storage"
	"medscribe/internal/stt"
	"medscribe/internal/utils"
)

// Sessions is the orchestration core behind the session endpoints.
type Sessions interface {
	Start(ctx context.Context, owner *uuid.UUID) error
	Stop(ctx context.Context) (session.State, error)
	Submit(ctx context.Context, owner *uuid.UUID, audio *stt.Audio) (session.State, error)
	Snapshot() session.State
}

type Handler struct {
	sessions Sessions
	repo     repository.Repository
	audio    *storage.AudioStore
}

func NewHandler(sessions Sessions, repo repository.Repository, audio *storage.AudioStore) *Handler {
	return &Handler{sessions: sessions, repo: repo, audio: audio}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	// Health check
	r.GET("/health", h.healthCheck)

	// API v1
	v1 := r.Group("/api/v1", identityMiddleware())
	{
		v1.GET("/session", h.getSession)
		v1.POST("/session/start", h.startSession)
		v1.POST("/session/stop", h.stopSession)
		v1.POST("/recordings", h.uploadRecording)
		v1.GET("/notes", h.listNotes)
		v1.GET("/topics", h.listTopics)
	}
}

// healthCheck returns server health status
func (h *Handler) healthCheck(c *gin.Context) {
	utils.Success(c, gin.H{
		"status":  "ok",
		"service": "medscribe",
	})
}

// getSession returns the current session with live elapsed time
func (h *Handler) getSession(c *gin.Context) {
	utils.Success(c, gin.H{"session": h.sessions.Snapshot()})
}

// startSession begins recording for the caller
func (h *Handler) startSession(c *gin.Context) {
	owner := identity.FromContext(c.Request.Context())
	if err := h.sessions.Start(c.Request.Context(), owner); err != nil {
		utils.Fail(c, err)
		return
	}
	log.Info().Bool("owner", owner != nil).Msg("session started")
	utils.Success(c, gin.H{"session": h.sessions.Snapshot()})
}

// stopSession stops recording and waits for processing to finish
func (h *Handler) stopSession(c *gin.Context) {
	state, err := h.sessions.Stop(c.Request.Context())
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, gin.H{"session": state})
}

func ownerOrEmpty(c *gin.Context) (uuid.UUID, bool) {
	owner := identity.FromContext(c.Request.Context())
	if owner == nil {
		return uuid.Nil, false
	}
	return *owner, true
}

type listQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

// bindList reads the optional limit query parameter
func bindList(c *gin.Context) (listQuery, bool) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return q, false
	}
	return q, true
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// listNotes returns the caller's notes, newest first
func (h *Handler) listNotes(c *gin.Context) {
	q, ok := bindList(c)
	if !ok {
		return
	}
	owner, ok := ownerOrEmpty(c)
	if !ok {
		utils.Success(c, gin.H{"notes": []noteView{}, "count": 0})
		return
	}

	notes, err := h.repo.ListNotes(c.Request.Context(), owner)
	if err != nil {
		log.Error().Err(err).Msg("error listing notes")
		utils.Error(c, http.StatusInternalServerError, "failed to retrieve notes")
		return
	}

	notes = truncate(notes, q.Limit)
	views := make([]noteView, 0, len(notes))
	for _, n := range notes {
		views = append(views, newNoteView(n))
	}
	utils.Success(c, gin.H{"notes": views, "count": len(views)})
}

// listTopics returns the caller's topics, newest first
func (h *Handler) listTopics(c *gin.Context) {
	q, ok := bindList(c)
	if !ok {
		return
	}
	owner, ok := ownerOrEmpty(c)
	if !ok {
		utils.Success(c, gin.H{"topics": []any{}, "count": 0})
		return
	}

	topics, err := h.repo.ListTopics(c.Request.Context(), owner)
	if err != nil {
		log.Error().Err(err).Msg("error listing topics")
		utils.Error(c, http.StatusInternalServerError, "failed to retrieve topics")
		return
	}
	topics = truncate(topics, q.Limit)
	utils.Success(c, gin.H{"topics": topics, "count": len(topics)})
}
