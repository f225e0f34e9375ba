package notifier

import (
	"context"
	"errors"
	"net/textproto"
	"strings"
	"testing"

	"guestvoice/feedback-service/internal/app/feedback/config"
	"guestvoice/feedback-service/internal/app/feedback/entity"

	"github.com/stretchr/testify/assert"
)

func testConfig(enabled bool) config.SMTPConfig {
	return config.SMTPConfig{
		Host:           "127.0.0.1",
		Port:           "1",
		SenderEmail:    "noreply@example.com",
		SenderPassword: "secret",
		Enabled:        enabled,
		DialTimeoutSec: 1,
	}
}

func testEvents() []entity.AlertEvent {
	return []entity.AlertEvent{
		{Category: "Food Quality", Rating: 2, Threshold: 2.5, Comments: "Cold soup"},
	}
}

func TestNotify_DisabledSkipsDelivery(t *testing.T) {
	notifier := NewEmailNotifier(testConfig(false), []string{"manager@example.com"}, "Hotel Yash Undri")

	delivered, err := notifier.Notify(context.Background(), testEvents(), 1)

	assert.NoError(t, err)
	assert.False(t, delivered)
}

func TestNotify_TransportFailure(t *testing.T) {
	// Порт 1 закрыт: соединение не установится
	notifier := NewEmailNotifier(testConfig(true), []string{"manager@example.com"}, "Hotel Yash Undri")

	delivered, err := notifier.Notify(context.Background(), testEvents(), 1)

	assert.False(t, delivered)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestSendDigest_DisabledSkipsDelivery(t *testing.T) {
	notifier := NewEmailNotifier(testConfig(false), []string{"manager@example.com"}, "Hotel Yash Undri")

	groups := []entity.AlertGroup{{FeedbackID: 1, Date: "2026-08-27 10:00:00", Overall: 2.0, Alerts: testEvents()}}
	delivered, err := notifier.SendDigest(context.Background(), groups)

	assert.NoError(t, err)
	assert.False(t, delivered)
}

func TestClassifySMTPError(t *testing.T) {
	authCodes := []int{530, 534, 535}
	for _, code := range authCodes {
		err := classifySMTPError("auth", &textproto.Error{Code: code, Msg: "authentication failed"})
		assert.ErrorIs(t, err, ErrAuthentication, "code %d", code)
	}

	err := classifySMTPError("mail from", &textproto.Error{Code: 421, Msg: "service not available"})
	assert.ErrorIs(t, err, ErrTransport)

	err = classifySMTPError("dial", errors.New("connection refused"))
	assert.ErrorIs(t, err, ErrTransport)
}

func TestComposeAlertBody(t *testing.T) {
	notifier := NewEmailNotifier(testConfig(true), []string{"manager@example.com"}, "Hotel Yash Undri")

	body := notifier.composeAlertBody(testEvents(), 42)

	assert.Contains(t, body, "LOW RATING ALERT")
	assert.Contains(t, body, "Hotel Yash Undri")
	assert.Contains(t, body, "Feedback ID:</strong> #42")
	assert.Contains(t, body, "Food Quality")
	assert.Contains(t, body, "2/5")
	assert.Contains(t, body, "2.5/5")
	assert.Contains(t, body, "Cold soup")
}

func TestComposeAlertBody_TruncatesLongComments(t *testing.T) {
	notifier := NewEmailNotifier(testConfig(true), []string{"manager@example.com"}, "Hotel Yash Undri")

	events := []entity.AlertEvent{
		{Category: "Parking", Rating: 1, Threshold: 2.5, Comments: strings.Repeat("a", 150)},
	}
	body := notifier.composeAlertBody(events, 1)

	assert.Contains(t, body, strings.Repeat("a", 100)+"...")
	assert.NotContains(t, body, strings.Repeat("a", 101))
}

func TestComposeAlertBody_EscapesHTML(t *testing.T) {
	notifier := NewEmailNotifier(testConfig(true), []string{"manager@example.com"}, "Hotel Yash Undri")

	events := []entity.AlertEvent{
		{Category: "Washroom", Rating: 1, Threshold: 2, Comments: "<script>alert(1)</script>"},
	}
	body := notifier.composeAlertBody(events, 1)

	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestComposeDigestBody(t *testing.T) {
	notifier := NewEmailNotifier(testConfig(true), []string{"manager@example.com"}, "Hotel Yash Undri")

	groups := []entity.AlertGroup{
		{FeedbackID: 3, Date: "2026-08-27 08:00:00", Overall: 2.2, Alerts: testEvents()},
		{FeedbackID: 4, Date: "2026-08-27 09:00:00", Overall: 1.8, Alerts: testEvents()},
	}
	body := notifier.composeDigestBody(groups)

	assert.Contains(t, body, "DAILY ALERT DIGEST")
	assert.Contains(t, body, "Feedback #3")
	assert.Contains(t, body, "Feedback #4")
	assert.Contains(t, body, "overall 2.20/5")
	assert.Contains(t, body, "overall 1.80/5")
}

func TestBuildMessage_Headers(t *testing.T) {
	notifier := NewEmailNotifier(testConfig(true), []string{"a@example.com", "b@example.com"}, "Hotel Yash Undri")

	msg := notifier.buildMessage("Test Subject", "<p>body</p>")

	assert.True(t, strings.HasPrefix(msg, "From: noreply@example.com\r\n"))
	assert.Contains(t, msg, "To: a@example.com, b@example.com\r\n")
	assert.Contains(t, msg, "Subject: Test Subject\r\n")
	assert.Contains(t, msg, "Content-Type: text/html; charset=\"utf-8\"\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n<p>body</p>"))
}

func TestTruncateComment_ShortCommentUnchanged(t *testing.T) {
	assert.Equal(t, "fine", truncateComment("fine", 100))
	assert.Equal(t, "", truncateComment("", 100))
}
