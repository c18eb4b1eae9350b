package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"medscribe/internal/identity"
	"medscribe/internal/stt"
	"medscribe/internal/utils"
)

// iPhone supports: M4A (default), CAF, WAV, AIFF, MP3 (via third-party apps)
var allowedExts = []string{".m4a", ".mp3", ".mp4", ".mpeg", ".mpga", ".wav", ".webm", ".aac", ".ogg", ".caf", ".aiff", ".aif"}

// uploadRecording saves an uploaded audio file and runs it through the
// session pipeline
func (h *Handler) uploadRecording(c *gin.Context) {
	if c.Request.MultipartForm == nil {
		if err := c.Request.ParseMultipartForm(32 << 20); err != nil { // 32MB max in memory
			log.Warn().Err(err).Msg("failed to parse multipart form")
			utils.Error(c, http.StatusBadRequest, "failed to parse multipart form: "+err.Error())
			return
		}
	}

	file, err := c.FormFile("file")
	if err != nil {
		// Try alternative field names
		if file, err = c.FormFile("audio_file"); err != nil {
			if file, err = c.FormFile("audio"); err != nil {
				utils.Error(c, http.StatusBadRequest, "file is required. Error: "+err.Error())
				return
			}
		}
	}

	if !allowedExt(file.Filename) {
		utils.Error(c, http.StatusBadRequest, "unsupported audio format. Supported: m4a, mp3, mp4, mpeg, mpga, wav, webm, aac, ogg, caf, aiff")
		return
	}

	if file.Size > stt.MaxAudioBytes {
		utils.Fail(c, stt.ErrAudioTooLarge)
		return
	}

	rec, err := h.audio.SaveAudio(file)
	if err != nil {
		log.Error().Err(err).Msg("error saving audio")
		utils.Error(c, http.StatusInternalServerError, "failed to save audio file")
		return
	}
	log.Info().Str("recording_id", rec.ID).Int64("size", rec.Size).Msg("audio uploaded")

	owner := identity.FromContext(c.Request.Context())
	state, err := h.sessions.Submit(c.Request.Context(), owner, &stt.Audio{
		Path: rec.Path,
		Name: rec.Filename,
		Size: rec.Size,
	})
	if err != nil {
		// Submit fails only before processing starts; nothing refers to the copy
		if rmErr := os.Remove(rec.Path); rmErr != nil {
			log.Warn().Err(rmErr).Str("path", rec.Path).Msg("failed to remove rejected upload")
		}
		utils.Fail(c, err)
		return
	}

	utils.Success(c, gin.H{
		"recording_id": rec.ID,
		"session":      state,
	})
}

func allowedExt(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range allowedExts {
		if ext == allowed {
			return true
		}
	}
	return false
}
