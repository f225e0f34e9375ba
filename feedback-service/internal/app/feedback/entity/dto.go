package entity

// SubmitFeedbackRequest - запрос на отправку отзыва
// Все пять оценок обязательны и лежат в [1,5]; комментарии опциональны
type SubmitFeedbackRequest struct {
	FoodQuality                int    `json:"food_quality" validate:"required,min=1,max=5"`
	FoodQualityComments        string `json:"food_quality_comments" validate:"max=1000"`
	SeatingArrangement         int    `json:"seating_arrangement" validate:"required,min=1,max=5"`
	SeatingArrangementComments string `json:"seating_arrangement_comments" validate:"max=1000"`
	Parking                    int    `json:"parking" validate:"required,min=1,max=5"`
	ParkingComments            string `json:"parking_comments" validate:"max=1000"`
	Washroom                   int    `json:"washroom" validate:"required,min=1,max=5"`
	WashroomComments           string `json:"washroom_comments" validate:"max=1000"`
	HotelService               int    `json:"hotel_service" validate:"required,min=1,max=5"`
	HotelServiceComments       string `json:"hotel_service_comments" validate:"max=1000"`
	GeneralComments            string `json:"general_comments" validate:"max=2000"`
}

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse - стандартный ответ об успехе
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// FeedbackView - отзыв в ответе админ-панели: запись плюс вычисляемые
// поля, которые фронту не нужно пересчитывать самому
type FeedbackView struct {
	Feedback
	OverallAverage float64 `json:"overall_average"`
	HasLowRating   bool    `json:"has_low_rating"`
}

// FeedbackListResponse - ответ со списком отзывов для админ-панели
type FeedbackListResponse struct {
	Feedback []FeedbackView `json:"feedback"`
	Total    int            `json:"total"`
	Stats    FeedbackStats  `json:"stats"`
}

// RecentAlertsResponse - алерты за временное окно
type RecentAlertsResponse struct {
	Alerts      []AlertGroup `json:"alerts"`
	Total       int          `json:"total"`
	WindowHours int          `json:"window_hours"`
}
