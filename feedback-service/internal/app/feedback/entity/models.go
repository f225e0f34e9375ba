package entity

import (
	"time"
)

// TimestampLayout - формат created_at в БД (UTC, секундная точность)
// Хранится строкой, как в исходной схеме: лексикографическое сравнение
// совпадает с хронологическим
const TimestampLayout = "2006-01-02 15:04:05"

// Feedback - один отзыв гостя: пять обязательных оценок 1-5 с опциональными
// комментариями. Запись неизменяема после создания, id присваивает БД
type Feedback struct {
	ID                         uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	FoodQuality                int    `json:"food_quality" gorm:"not null"`
	FoodQualityComments        string `json:"food_quality_comments" gorm:"type:text;not null;default:''"`
	SeatingArrangement         int    `json:"seating_arrangement" gorm:"not null"`
	SeatingArrangementComments string `json:"seating_arrangement_comments" gorm:"type:text;not null;default:''"`
	Parking                    int    `json:"parking" gorm:"not null"`
	ParkingComments            string `json:"parking_comments" gorm:"type:text;not null;default:''"`
	Washroom                   int    `json:"washroom" gorm:"not null"`
	WashroomComments           string `json:"washroom_comments" gorm:"type:text;not null;default:''"`
	HotelService               int    `json:"hotel_service" gorm:"not null"`
	HotelServiceComments       string `json:"hotel_service_comments" gorm:"type:text;not null;default:''"`
	GeneralComments            string `json:"general_comments" gorm:"type:text;not null;default:''"`
	CreatedAt                  string `json:"created_at" gorm:"type:varchar(19);not null;index"`
}

func (Feedback) TableName() string {
	return "feedback"
}

// OverallAverage - среднее пяти оценок отзыва
// Вычисляется на каждое чтение, нигде не хранится
func (f *Feedback) OverallAverage() float64 {
	sum := f.FoodQuality + f.SeatingArrangement + f.Parking + f.Washroom + f.HotelService
	return float64(sum) / 5.0
}

// ParseCreatedAt парсит created_at; ошибка означает повреждённую запись,
// вызывающий код сам решает, как деградировать
func (f *Feedback) ParseCreatedAt() (time.Time, error) {
	return time.Parse(TimestampLayout, f.CreatedAt)
}

// AlertEvent - нарушение порога одной категорией в одном отзыве
// Не персистится: вычисляется заново на каждый запрос, чтобы смена порогов
// сразу отражалась на всех выборках
type AlertEvent struct {
	Category  string  `json:"category"`  // Человекочитаемое имя категории ("Food Quality", "Overall")
	Rating    float64 `json:"rating"`    // Для обычных категорий целая оценка, для Overall - среднее
	Threshold float64 `json:"threshold"`
	Comments  string  `json:"comments"`
}

// AlertGroup - все алерты одного отзыва
type AlertGroup struct {
	FeedbackID uint         `json:"feedback_id"`
	Date       string       `json:"date"` // Сырая строка created_at
	Overall    float64      `json:"overall"`
	Alerts     []AlertEvent `json:"alerts"`
}

// FeedbackStats - агрегированная статистика по набору отзывов
// При пустом наборе все средние равны 0.0 (не NaN)
type FeedbackStats struct {
	TotalReviews          int     `json:"total_reviews"`
	AvgFoodQuality        float64 `json:"avg_food_quality"`
	AvgSeatingArrangement float64 `json:"avg_seating_arrangement"`
	AvgParking            float64 `json:"avg_parking"`
	AvgWashroom           float64 `json:"avg_washroom"`
	AvgHotelService       float64 `json:"avg_hotel_service"`
	AvgOverall            float64 `json:"avg_overall"`
}

// FeedbackEvent - событие для Kafka
type FeedbackEvent struct {
	EventType  string    `json:"event_type"` // FEEDBACK_CREATED
	FeedbackID uint      `json:"feedback_id"`
	Overall    float64   `json:"overall"`
	AlertCount int       `json:"alert_count"`
	Timestamp  time.Time `json:"timestamp"`
}
