// Package handler holds the gin handlers of the HTTP API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/infrastructure/logger"
	"github.com/atelier/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct {
	validator *dto.Validator
}

func newBase(v *dto.Validator) BaseHandler {
	if v == nil {
		v = dto.NewValidator()
	}
	return BaseHandler{validator: v}
}

// Success sends a 200 envelope with data
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 envelope with data
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// List sends a rows/count envelope
func (h *BaseHandler) List(c *gin.Context, rows any, count int64) {
	c.JSON(http.StatusOK, dto.NewListResponse(rows, count))
}

// Message sends a 200 envelope carrying only a message
func (h *BaseHandler) Message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, dto.NewMessageResponse(msg))
}

// HandleError normalizes err into the error envelope. Internal errors are
// logged with the request context; their text never reaches the client.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		logger.GetGinLogger(c).Warn("Request deadline exceeded", zap.Error(err))
		c.JSON(http.StatusGatewayTimeout, dto.NewErrorResponse(dto.ErrCodeTimeout, "Request timed out"))
		return
	}
	status, resp := dto.FromError(err)
	if dto.IsInternal(err) {
		logger.GetGinLogger(c).Error("Request failed", zap.Error(err))
	}
	c.JSON(status, resp)
}

// pathID parses the named uuid path parameter, answering 400 when malformed
func (h *BaseHandler) pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.HandleError(c, shared.NewValidationError(name, "must be a valid UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes and validates the request body
func (h *BaseHandler) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.HandleError(c, err)
		return false
	}
	return true
}

// bindJSONWithID decodes the body, lets setID fill the id taken from the
// path and only then validates, so the id need not be repeated in the body
func (h *BaseHandler) bindJSONWithID(c *gin.Context, dst any, setID func(uuid.UUID)) bool {
	id, ok := h.pathID(c, "id")
	if !ok {
		return false
	}
	if err := json.NewDecoder(c.Request.Body).Decode(dst); err != nil {
		h.HandleError(c, err)
		return false
	}
	setID(id)
	if err := h.validator.ValidateStruct(dst); err != nil {
		h.HandleError(c, err)
		return false
	}
	return true
}

// bindQuery decodes and validates query parameters
func (h *BaseHandler) bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		h.HandleError(c, err)
		return false
	}
	return true
}
