package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"medscribe/internal/identity"
	"medscribe/internal/recorder"
	"medscribe/internal/session"
	"medscribe/internal/stt"
)

func Success(c *gin.Context, data gin.H) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{
		"success": false,
		"error":   msg,
	})
}

// Fail maps a domain error onto a status code and writes the error envelope.
func Fail(c *gin.Context, err error) {
	code := StatusFor(err)
	if code >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	Error(c, code, session.ErrorMessage(err))
}

func StatusFor(err error) int {
	var apiErr *stt.APIError
	switch {
	case errors.Is(err, session.ErrBusy), errors.Is(err, recorder.ErrAlreadyRecording):
		return http.StatusConflict
	case errors.Is(err, stt.ErrAudioTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, identity.ErrInvalid):
		return http.StatusBadRequest
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
