package service

import (
	"testing"

	"guestvoice/feedback-service/internal/app/feedback/entity"

	"github.com/stretchr/testify/assert"
)

func defaultThresholds() Thresholds {
	return Thresholds{
		FoodQuality:        2.5,
		SeatingArrangement: 2.5,
		Parking:            2.5,
		Washroom:           2.0,
		HotelService:       2.0,
		Overall:            2.5,
	}
}

func TestEvaluateThresholds_NoBreaches(t *testing.T) {
	feedback := &entity.Feedback{FoodQuality: 4, SeatingArrangement: 5, Parking: 3, Washroom: 4, HotelService: 5}

	events := EvaluateThresholds(feedback, defaultThresholds())

	assert.Empty(t, events)
}

func TestEvaluateThresholds_SingleCategoryBreach(t *testing.T) {
	feedback := &entity.Feedback{
		FoodQuality:         2,
		FoodQualityComments: "Cold soup",
		SeatingArrangement:  4,
		Parking:             4,
		Washroom:            4,
		HotelService:        4,
	}

	events := EvaluateThresholds(feedback, defaultThresholds())

	assert.Len(t, events, 1)
	assert.Equal(t, "Food Quality", events[0].Category)
	assert.Equal(t, 2.0, events[0].Rating)
	assert.Equal(t, 2.5, events[0].Threshold)
	assert.Equal(t, "Cold soup", events[0].Comments)
}

func TestEvaluateThresholds_RatingAtThresholdDoesNotBreach(t *testing.T) {
	// Нарушение только при строго меньшей оценке
	feedback := &entity.Feedback{FoodQuality: 3, SeatingArrangement: 3, Parking: 3, Washroom: 2, HotelService: 2}

	events := EvaluateThresholds(feedback, defaultThresholds())

	assert.Empty(t, events)
}

func TestEvaluateThresholds_OverallBreachWithCategories(t *testing.T) {
	// Среднее (3+3+3+1+1)/5 = 2.2 ниже порога 2.5
	feedback := &entity.Feedback{
		FoodQuality:          3,
		SeatingArrangement:   3,
		Parking:              3,
		Washroom:             1,
		WashroomComments:     "Dirty",
		HotelService:         1,
		HotelServiceComments: "Rude staff",
	}

	events := EvaluateThresholds(feedback, defaultThresholds())

	assert.Len(t, events, 3)
	assert.Equal(t, "Washroom", events[0].Category)
	assert.Equal(t, "Hotel Service", events[1].Category)
	assert.Equal(t, OverallCategory, events[2].Category)
	assert.InDelta(t, 2.2, events[2].Rating, 0.0001)
	assert.Equal(t, "No comments", events[2].Comments)
}

func TestEvaluateThresholds_AllCategoriesBreach(t *testing.T) {
	feedback := &entity.Feedback{FoodQuality: 1, SeatingArrangement: 1, Parking: 1, Washroom: 1, HotelService: 1}

	events := EvaluateThresholds(feedback, defaultThresholds())

	assert.Len(t, events, 6)
	assert.Equal(t, OverallCategory, events[5].Category)
}

func TestEvaluateThresholds_Deterministic(t *testing.T) {
	feedback := &entity.Feedback{FoodQuality: 1, SeatingArrangement: 3, Parking: 2, Washroom: 1, HotelService: 3}

	first := EvaluateThresholds(feedback, defaultThresholds())
	second := EvaluateThresholds(feedback, defaultThresholds())

	assert.Equal(t, first, second)
}
