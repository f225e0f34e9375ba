package service

import (
	"guestvoice/feedback-service/internal/app/feedback/entity"
)

// Summarize считает статистику по набору отзывов
// Пустой набор возвращает нули, а не NaN - деление на ноль исключено,
// чтобы форматирование на дашборде и в экспортах оставалось тотальным
func Summarize(records []entity.Feedback) entity.FeedbackStats {
	stats := entity.FeedbackStats{TotalReviews: len(records)}
	if len(records) == 0 {
		return stats
	}

	var food, seating, parking, washroom, hotelService, overall float64
	for i := range records {
		record := &records[i]
		food += float64(record.FoodQuality)
		seating += float64(record.SeatingArrangement)
		parking += float64(record.Parking)
		washroom += float64(record.Washroom)
		hotelService += float64(record.HotelService)
		overall += record.OverallAverage()
	}

	count := float64(len(records))
	stats.AvgFoodQuality = food / count
	stats.AvgSeatingArrangement = seating / count
	stats.AvgParking = parking / count
	stats.AvgWashroom = washroom / count
	stats.AvgHotelService = hotelService / count
	stats.AvgOverall = overall / count

	return stats
}

// GroupAlerts прогоняет каждый отзыв через пороги и оставляет только
// отзывы хотя бы с одним алертом. Порядок входного набора сохраняется
// (репозиторий отдаёт новые первыми)
func GroupAlerts(records []entity.Feedback, thresholds Thresholds) []entity.AlertGroup {
	var groups []entity.AlertGroup
	for i := range records {
		record := &records[i]

		events := EvaluateThresholds(record, thresholds)
		if len(events) == 0 {
			continue
		}

		groups = append(groups, entity.AlertGroup{
			FeedbackID: record.ID,
			Date:       record.CreatedAt,
			Overall:    record.OverallAverage(),
			Alerts:     events,
		})
	}
	return groups
}
