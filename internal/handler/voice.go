package handler

import (
	"encoding/json"
	"net/http"

	"voiceshop/internal/model"
	"voiceshop/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VoiceHandler handles utterance and catalog HTTP requests
type VoiceHandler struct {
	turnService *service.TurnService
	logger      *zap.Logger
}

// NewVoiceHandler creates a new voice handler
func NewVoiceHandler(turnService *service.TurnService, logger *zap.Logger) *VoiceHandler {
	return &VoiceHandler{
		turnService: turnService,
		logger:      logger,
	}
}

// ParseVoice handles POST /parse-voice
func (h *VoiceHandler) ParseVoice(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		RequestLogger(c, h.logger).Warn("failed to read request body", zap.Error(err))
	}

	// A malformed body is an empty turn, not a client error.
	req, err := decodeVoiceRequest(body)
	if err != nil {
		RequestLogger(c, h.logger).Warn("malformed request body, using defaults for unreadable fields", zap.Error(err))
	}

	result := h.turnService.HandleUtterance(c.Request.Context(), &req)
	c.JSON(http.StatusOK, result)
}

// Products handles GET /products
func (h *VoiceHandler) Products(c *gin.Context) {
	c.JSON(http.StatusOK, h.turnService.Products(c.Request.Context()))
}

// decodeVoiceRequest decodes body field by field so that a bad context does
// not discard a good text and vice versa. The error reports the first field
// that could not be read.
func decodeVoiceRequest(body []byte) (model.ParseVoiceRequest, error) {
	var req model.ParseVoiceRequest
	if len(body) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(body, &req); err == nil {
		return req, nil
	}
	req = model.ParseVoiceRequest{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return model.ParseVoiceRequest{}, err
	}

	var firstErr error
	if raw, ok := fields["text"]; ok {
		if err := json.Unmarshal(raw, &req.Text); err != nil {
			req.Text = ""
			firstErr = err
		}
	}
	if raw, ok := fields["context"]; ok {
		var dialog model.DialogContext
		if err := json.Unmarshal(raw, &dialog); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		} else {
			req.Context = &dialog
		}
	}
	return req, firstErr
}
