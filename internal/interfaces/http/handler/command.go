package handler

import (
	"net/http"
	"time"

	"github.com/atelier/backend/internal/infrastructure/logger"
	"github.com/atelier/backend/internal/infrastructure/telemetry"
	"github.com/atelier/backend/internal/interfaces/command"
	"github.com/atelier/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CommandHandler serves the named-command boundary
type CommandHandler struct {
	BaseHandler
	dispatcher *command.Dispatcher
}

// NewCommandHandler creates a CommandHandler
func NewCommandHandler(dispatcher *command.Dispatcher, v *dto.Validator) *CommandHandler {
	return &CommandHandler{BaseHandler: newBase(v), dispatcher: dispatcher}
}

// Execute runs the command named in the path with the JSON body as payload.
// POST /api/v1/commands/:name
func (h *CommandHandler) Execute(c *gin.Context) {
	name := c.Param("name")
	payload, err := c.GetRawData()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	ctx, span := telemetry.StartSpan(c.Request.Context(), "command "+name, attribute.String("command", name))
	start := time.Now()
	result, err := h.dispatcher.Dispatch(ctx, name, payload)
	telemetry.EndSpan(span, err)

	log := logger.GetGinLogger(c).With(
		zap.String("command", name),
		zap.Duration("duration", time.Since(start)),
	)
	if err != nil {
		log.Info("Command failed", zap.Error(err))
		h.HandleError(c, err)
		return
	}
	log.Debug("Command completed")
	c.JSON(http.StatusOK, result.Response())
}

// Names lists the registered commands.
// GET /api/v1/commands
func (h *CommandHandler) Names(c *gin.Context) {
	names := h.dispatcher.Names()
	h.List(c, names, int64(len(names)))
}
