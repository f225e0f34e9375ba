package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"guestvoice/feedback-service/internal/app/feedback/entity"
	"guestvoice/feedback-service/internal/app/feedback/export"
	"guestvoice/feedback-service/internal/app/feedback/service"
	"guestvoice/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// FeedbackServiceInterface интерфейс сервиса отзывов для handler'а
type FeedbackServiceInterface interface {
	SubmitFeedback(ctx context.Context, req *entity.SubmitFeedbackRequest) (*entity.Feedback, error)
	GetAllFeedback(ctx context.Context) ([]entity.FeedbackView, error)
	GetStats(ctx context.Context) (*entity.FeedbackStats, error)
	GetRecentAlerts(ctx context.Context, windowHours int) ([]entity.AlertGroup, error)
	ExportRecords(ctx context.Context) ([]byte, error)
	ExportAlerts(ctx context.Context, windowHours int) ([]byte, error)
	SendTestAlert(ctx context.Context) (bool, error)
}

// Окна выборки по умолчанию: дашборд смотрит сутки, экспорт алертов - неделю
const (
	defaultAlertWindowHours  = 24
	defaultExportWindowHours = 168
)

// FeedbackHandler обрабатывает HTTP запросы сервиса отзывов
type FeedbackHandler struct {
	feedbackService FeedbackServiceInterface
	validator       *validator.Validate
	hotelName       string
}

// NewFeedbackHandler создает новый handler отзывов
func NewFeedbackHandler(feedbackService FeedbackServiceInterface, hotelName string) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
		validator:       validator.New(),
		hotelName:       hotelName,
	}
}

// SubmitFeedback обрабатывает POST /feedback
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	var req entity.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	feedback, err := h.feedbackService.SubmitFeedback(c.Request.Context(), &req)
	if err != nil {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, entity.ErrorResponse{
				Error:   "Validation failed",
				Message: validationErr.Error(),
			})
			return
		}

		logger.Error().Err(err).Msg("Failed to submit feedback")
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{
			Error: "Failed to save feedback",
		})
		return
	}

	c.JSON(http.StatusCreated, entity.SuccessResponse{
		Message: "Thank you for your feedback!",
		Data:    feedback,
	})
}

// GetFeedback обрабатывает GET /admin/feedback - дашборд со всеми отзывами
func (h *FeedbackHandler) GetFeedback(c *gin.Context) {
	views, err := h.feedbackService.GetAllFeedback(c.Request.Context())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to get feedback list")
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{
			Error: "Failed to get feedback",
		})
		return
	}

	stats, err := h.feedbackService.GetStats(c.Request.Context())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to get feedback stats")
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{
			Error: "Failed to get stats",
		})
		return
	}

	c.JSON(http.StatusOK, entity.FeedbackListResponse{
		Feedback: views,
		Total:    len(views),
		Stats:    *stats,
	})
}

// GetStats обрабатывает GET /admin/stats
func (h *FeedbackHandler) GetStats(c *gin.Context) {
	stats, err := h.feedbackService.GetStats(c.Request.Context())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to get stats")
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{
			Error: "Failed to get stats",
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetRecentAlerts обрабатывает GET /admin/alerts/recent?hours=N
func (h *FeedbackHandler) GetRecentAlerts(c *gin.Context) {
	windowHours, ok := h.parseWindowHours(c, defaultAlertWindowHours)
	if !ok {
		return
	}

	alerts, err := h.feedbackService.GetRecentAlerts(c.Request.Context(), windowHours)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to get recent alerts")
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{
			Error: "Failed to get alerts",
		})
		return
	}

	c.JSON(http.StatusOK, entity.RecentAlertsResponse{
		Alerts:      alerts,
		Total:       len(alerts),
		WindowHours: windowHours,
	})
}

// ExportFeedbackCSV обрабатывает GET /admin/export/csv
func (h *FeedbackHandler) ExportFeedbackCSV(c *gin.Context) {
	data, err := h.feedbackService.ExportRecords(c.Request.Context())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to export feedback csv")
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{
			Error: "Failed to export feedback",
		})
		return
	}

	h.writeCSV(c, export.Filename(h.hotelName, "Feedback", time.Now().UTC()), data)
}

// ExportAlertsCSV обрабатывает GET /admin/export/alerts/csv?hours=N
func (h *FeedbackHandler) ExportAlertsCSV(c *gin.Context) {
	windowHours, ok := h.parseWindowHours(c, defaultExportWindowHours)
	if !ok {
		return
	}

	data, err := h.feedbackService.ExportAlerts(c.Request.Context(), windowHours)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to export alerts csv")
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{
			Error: "Failed to export alerts",
		})
		return
	}

	h.writeCSV(c, export.Filename(h.hotelName, "Alerts", time.Now().UTC()), data)
}

// TestEmail обрабатывает POST /admin/test-email - проверка SMTP-настроек
func (h *FeedbackHandler) TestEmail(c *gin.Context) {
	delivered, err := h.feedbackService.SendTestAlert(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"delivered": false,
			"message":   err.Error(),
		})
		return
	}

	message := "Test alert sent"
	if !delivered {
		message = "Email alerts are disabled"
	}
	c.JSON(http.StatusOK, gin.H{
		"delivered": delivered,
		"message":   message,
	})
}

// HealthCheck обрабатывает GET /health
func (h *FeedbackHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "feedback-service",
	})
}

func (h *FeedbackHandler) parseWindowHours(c *gin.Context, defaultHours int) (int, bool) {
	raw := c.DefaultQuery("hours", strconv.Itoa(defaultHours))
	windowHours, err := strconv.Atoi(raw)
	if err != nil || windowHours <= 0 {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{
			Error:   "Invalid hours parameter",
			Message: "hours must be a positive integer",
		})
		return 0, false
	}
	return windowHours, true
}

func (h *FeedbackHandler) writeCSV(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
