package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/KasumiMercury/journal-reminder-scheduling/internal/domain"
	"github.com/KasumiMercury/journal-reminder-scheduling/internal/service/reminder"
)

type ReminderHandler struct {
	reminderService *reminder.Service
}

func NewReminderHandler(reminderService *reminder.Service) *ReminderHandler {
	return &ReminderHandler{
		reminderService: reminderService,
	}
}

type timeOfDayRequest struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

type createReminderRequest struct {
	EntryID    string            `json:"entry_id" binding:"required"`
	Kind       string            `json:"kind" binding:"required"`
	Timezone   string            `json:"timezone"`
	RunAt      *time.Time        `json:"run_at"`
	Frequency  string            `json:"frequency"`
	DayOfWeek  *int              `json:"day_of_week"`
	DayOfMonth *int              `json:"day_of_month"`
	TimeOfDay  *timeOfDayRequest `json:"time_of_day"`
}

type updateReminderRequest struct {
	Timezone   *string           `json:"timezone"`
	RunAt      *time.Time        `json:"run_at"`
	Frequency  *string           `json:"frequency"`
	DayOfWeek  *int              `json:"day_of_week"`
	DayOfMonth *int              `json:"day_of_month"`
	TimeOfDay  *timeOfDayRequest `json:"time_of_day"`
	IsActive   *bool             `json:"is_active"`
}

type timeOfDayResponse struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

type reminderResponse struct {
	ID         string             `json:"id"`
	EntryID    string             `json:"entry_id"`
	EntryTitle string             `json:"entry_title,omitempty"`
	Kind       string             `json:"kind"`
	Timezone   string             `json:"timezone"`
	RunAt      *time.Time         `json:"run_at,omitempty"`
	Frequency  string             `json:"frequency,omitempty"`
	DayOfWeek  *int               `json:"day_of_week,omitempty"`
	DayOfMonth *int               `json:"day_of_month,omitempty"`
	TimeOfDay  *timeOfDayResponse `json:"time_of_day,omitempty"`
	NextRunAt  *time.Time         `json:"next_run_at,omitempty"`
	LastSentAt *time.Time         `json:"last_sent_at,omitempty"`
	IsActive   bool               `json:"is_active"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

func (h *ReminderHandler) HandleCreate(c *gin.Context) {
	ctx := c.Request.Context()

	var req createReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "request binding failed",
			slog.String("error", err.Error()),
			slog.String("path", c.Request.URL.Path),
		)
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	entryID, err := uuid.Parse(req.EntryID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "entry_id must be a UUID")
		return
	}

	input := reminder.CreateInput{
		EntryID:    entryID,
		Kind:       domain.Kind(req.Kind),
		Timezone:   req.Timezone,
		RunAt:      req.RunAt,
		Frequency:  domain.Frequency(req.Frequency),
		DayOfWeek:  req.DayOfWeek,
		DayOfMonth: req.DayOfMonth,
		TimeOfDay:  toDomainTimeOfDay(req.TimeOfDay),
	}

	created, err := h.reminderService.Create(ctx, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toReminderResponse(created))
}

func (h *ReminderHandler) HandleGet(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	found, err := h.reminderService.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toReminderResponse(found))
}

func (h *ReminderHandler) HandleListByEntry(c *gin.Context) {
	entryID, err := uuid.Parse(c.Param("entryId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "entry id must be a UUID")
		return
	}

	reminders, err := h.reminderService.ListByEntry(c.Request.Context(), entryID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := make([]reminderResponse, 0, len(reminders))
	for _, r := range reminders {
		resp = append(resp, toReminderResponse(r))
	}

	c.JSON(http.StatusOK, gin.H{
		"reminders": resp,
		"count":     len(resp),
	})
}

func (h *ReminderHandler) HandleUpdate(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req updateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "request binding failed",
			slog.String("error", err.Error()),
			slog.String("path", c.Request.URL.Path),
		)
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	input := reminder.UpdateInput{
		Timezone:   req.Timezone,
		RunAt:      req.RunAt,
		DayOfWeek:  req.DayOfWeek,
		DayOfMonth: req.DayOfMonth,
		TimeOfDay:  toDomainTimeOfDay(req.TimeOfDay),
		IsActive:   req.IsActive,
	}
	if req.Frequency != nil {
		freq := domain.Frequency(*req.Frequency)
		input.Frequency = &freq
	}

	updated, err := h.reminderService.Update(ctx, id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toReminderResponse(updated))
}

func (h *ReminderHandler) HandleDelete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.reminderService.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ReminderHandler) HandleDeleteByEntry(c *gin.Context) {
	entryID, err := uuid.Parse(c.Param("entryId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "entry id must be a UUID")
		return
	}

	deleted, err := h.reminderService.DeleteByEntry(c.Request.Context(), entryID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted_count": deleted})
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "reminder id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func respondServiceError(c *gin.Context, err error) {
	if ise, ok := domain.AsInvalidSchedule(err); ok {
		respondError(c, http.StatusBadRequest, "invalid_schedule", ise.Error())
		return
	}
	if errors.Is(err, domain.ErrReminderNotFound) {
		respondError(c, http.StatusNotFound, "not_found", "reminder not found")
		return
	}
	if errors.Is(err, domain.ErrEntryNotFound) {
		respondError(c, http.StatusNotFound, "not_found", "journal entry not found")
		return
	}

	slog.ErrorContext(c.Request.Context(), "request processing failed",
		slog.String("path", c.Request.URL.Path),
		slog.String("error", err.Error()),
	)
	respondError(c, http.StatusInternalServerError, "processing_error", "failed to process request")
}

func respondError(c *gin.Context, status int, errType, message string) {
	c.JSON(status, gin.H{
		"error":   errType,
		"message": message,
	})
}

func toDomainTimeOfDay(req *timeOfDayRequest) *domain.TimeOfDay {
	if req == nil {
		return nil
	}
	return &domain.TimeOfDay{Hour: req.Hour, Minute: req.Minute}
}

func toReminderResponse(r *domain.Reminder) reminderResponse {
	resp := reminderResponse{
		ID:         r.ID.String(),
		EntryID:    r.EntryID.String(),
		EntryTitle: r.EntryTitle,
		Kind:       string(r.Kind),
		Timezone:   r.Timezone,
		RunAt:      r.RunAt,
		Frequency:  string(r.Frequency),
		DayOfWeek:  r.DayOfWeek,
		DayOfMonth: r.DayOfMonth,
		NextRunAt:  r.NextRunAt,
		LastSentAt: r.LastSentAt,
		IsActive:   r.IsActive,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.TimeOfDay != nil {
		resp.TimeOfDay = &timeOfDayResponse{Hour: r.TimeOfDay.Hour, Minute: r.TimeOfDay.Minute}
	}
	return resp
}
