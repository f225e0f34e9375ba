package service

import (
	"guestvoice/feedback-service/internal/app/feedback/config"
	"guestvoice/feedback-service/internal/app/feedback/entity"
)

// OverallCategory - метка синтетической категории по среднему пяти оценок
const OverallCategory = "Overall"

// noCommentsPlaceholder подставляется в алерт по Overall:
// у синтетической категории нет собственного комментария
const noCommentsPlaceholder = "No comments"

// Thresholds - минимально допустимые средние по категориям
// Оценка строго ниже порога считается нарушением; сам порог - нет
type Thresholds struct {
	FoodQuality        float64
	SeatingArrangement float64
	Parking            float64
	Washroom           float64
	HotelService       float64
	Overall            float64
}

// NewThresholds строит пороги из конфигурации процесса
func NewThresholds(cfg config.AlertsConfig) Thresholds {
	return Thresholds{
		FoodQuality:        cfg.FoodQuality,
		SeatingArrangement: cfg.SeatingArrangement,
		Parking:            cfg.Parking,
		Washroom:           cfg.Washroom,
		HotelService:       cfg.HotelService,
		Overall:            cfg.Overall,
	}
}

// EvaluateThresholds сравнивает отзыв с порогами и возвращает алерты
// Чистая функция без побочных эффектов; порядок событий фиксирован порядком
// объявления категорий, синтетический Overall всегда последний
func EvaluateThresholds(feedback *entity.Feedback, thresholds Thresholds) []entity.AlertEvent {
	checks := []struct {
		category  string
		rating    int
		threshold float64
		comments  string
	}{
		{"Food Quality", feedback.FoodQuality, thresholds.FoodQuality, feedback.FoodQualityComments},
		{"Seating Arrangement", feedback.SeatingArrangement, thresholds.SeatingArrangement, feedback.SeatingArrangementComments},
		{"Parking", feedback.Parking, thresholds.Parking, feedback.ParkingComments},
		{"Washroom", feedback.Washroom, thresholds.Washroom, feedback.WashroomComments},
		{"Hotel Service", feedback.HotelService, thresholds.HotelService, feedback.HotelServiceComments},
	}

	var events []entity.AlertEvent
	for _, check := range checks {
		if float64(check.rating) < check.threshold {
			events = append(events, entity.AlertEvent{
				Category:  check.category,
				Rating:    float64(check.rating),
				Threshold: check.threshold,
				Comments:  check.comments,
			})
		}
	}

	overall := feedback.OverallAverage()
	if overall < thresholds.Overall {
		events = append(events, entity.AlertEvent{
			Category:  OverallCategory,
			Rating:    overall,
			Threshold: thresholds.Overall,
			Comments:  noCommentsPlaceholder,
		})
	}

	return events
}
