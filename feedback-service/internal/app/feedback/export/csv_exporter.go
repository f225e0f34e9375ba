package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"guestvoice/feedback-service/internal/app/feedback/entity"
)

// alertCommentLimit - предел длины комментария в экспорте алертов
const alertCommentLimit = 200

// recordsHeader - колонки экспорта отзывов, порядок фиксирован
var recordsHeader = []string{
	"ID", "Date", "Time",
	"Food Quality", "Food Comments",
	"Seating Arrangement", "Seating Comments",
	"Parking Facility", "Parking Comments",
	"Washroom Cleanliness", "Washroom Comments",
	"Hotel Service", "Service Comments",
	"General Comments", "Overall Average",
}

// alertsHeader - колонки экспорта алертов
var alertsHeader = []string{
	"Feedback ID", "Date", "Time",
	"Alert Category", "Rating", "Threshold",
	"Comments", "Overall Rating",
}

// RenderRecords выгружает отзывы в CSV, одна строка на отзыв
// Экспорт тотален: повреждённая запись деградирует по полям, но не
// срывает выгрузку целиком
func RenderRecords(records []entity.Feedback) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	writer.Write(recordsHeader)
	for i := range records {
		record := &records[i]
		date, timeOfDay := splitTimestamp(record.CreatedAt)

		writer.Write([]string{
			strconv.FormatUint(uint64(record.ID), 10),
			date,
			timeOfDay,
			strconv.Itoa(record.FoodQuality),
			record.FoodQualityComments,
			strconv.Itoa(record.SeatingArrangement),
			record.SeatingArrangementComments,
			strconv.Itoa(record.Parking),
			record.ParkingComments,
			strconv.Itoa(record.Washroom),
			record.WashroomComments,
			strconv.Itoa(record.HotelService),
			record.HotelServiceComments,
			record.GeneralComments,
			fmt.Sprintf("%.2f", record.OverallAverage()),
		})
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to render feedback csv: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderAlerts выгружает алерты в CSV, одна строка на событие
// Среднее отзыва повторяется в каждой его строке
func RenderAlerts(groups []entity.AlertGroup) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	writer.Write(alertsHeader)
	for _, group := range groups {
		date, timeOfDay := splitTimestamp(group.Date)

		for _, alert := range group.Alerts {
			writer.Write([]string{
				strconv.FormatUint(uint64(group.FeedbackID), 10),
				date,
				timeOfDay,
				alert.Category,
				strconv.FormatFloat(alert.Rating, 'g', -1, 64),
				strconv.FormatFloat(alert.Threshold, 'g', -1, 64),
				truncateComment(alert.Comments, alertCommentLimit),
				fmt.Sprintf("%.2f", group.Overall),
			})
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to render alerts csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename строит имя файла выгрузки: имя отеля, вид выгрузки, момент времени
func Filename(hotelName, kind string, now time.Time) string {
	hotel := strings.ReplaceAll(hotelName, " ", "_")
	return fmt.Sprintf("%s_%s_%s.csv", hotel, kind, now.Format("20060102_150405"))
}

// splitTimestamp разбивает created_at на дату и время
// Невалидная строка режется по позициям вместо ошибки: одна повреждённая
// запись не должна срывать экспорт
func splitTimestamp(raw string) (string, string) {
	if ts, err := time.Parse(entity.TimestampLayout, raw); err == nil {
		return ts.Format("2006-01-02"), ts.Format("15:04:05")
	}

	date := raw
	if len(raw) > 10 {
		date = raw[:10]
	}
	timeOfDay := ""
	if len(raw) >= 19 {
		timeOfDay = raw[11:19]
	}
	return date, timeOfDay
}

// truncateComment обрезает длинный комментарий с многоточием
func truncateComment(comment string, limit int) string {
	runes := []rune(comment)
	if len(runes) <= limit {
		return comment
	}
	return string(runes[:limit]) + "..."
}
