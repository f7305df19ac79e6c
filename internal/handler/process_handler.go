package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/journal-reminder-scheduling/internal/service/processor"
)

// ProcessHandler exposes the due-reminder sweep as an HTTP trigger so an
// external scheduler can drive processing instead of the internal ticker.
type ProcessHandler struct {
	processorService *processor.Service
}

func NewProcessHandler(processorService *processor.Service) *ProcessHandler {
	return &ProcessHandler{
		processorService: processorService,
	}
}

type processRequest struct {
	Now *time.Time `json:"now"`
}

func (h *ProcessHandler) HandleProcess(c *gin.Context) {
	ctx := c.Request.Context()

	var req processRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			slog.WarnContext(ctx, "request binding failed",
				slog.String("error", err.Error()),
				slog.String("path", c.Request.URL.Path),
			)
			respondError(c, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
	}

	now := time.Now().UTC()
	if req.Now != nil {
		now = req.Now.UTC()
	}

	report, err := h.processorService.ProcessDue(ctx, now)
	if err != nil {
		slog.ErrorContext(ctx, "due reminder processing failed",
			slog.String("error", err.Error()),
		)
		if report != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "processing_error",
				"message": err.Error(),
				"report":  report,
			})
			return
		}
		respondError(c, http.StatusInternalServerError, "processing_error", "failed to process due reminders")
		return
	}

	c.JSON(http.StatusOK, report)
}
