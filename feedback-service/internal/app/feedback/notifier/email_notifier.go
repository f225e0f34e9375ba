package notifier

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"guestvoice/feedback-service/internal/app/feedback/config"
	"guestvoice/feedback-service/internal/app/feedback/entity"
	"guestvoice/pkg/logger"
	"guestvoice/pkg/metrics"
)

var (
	// ErrAuthentication - SMTP-сервер отверг учётные данные отправителя
	ErrAuthentication = errors.New("smtp authentication failed")
	// ErrTransport - сетевой или протокольный сбой доставки
	ErrTransport = errors.New("smtp transport failure")
)

// alertCommentLimit - предел длины комментария в теле письма
const alertCommentLimit = 100

// EmailNotifier шлёт алерты операторам по SMTP (STARTTLS + PLAIN auth)
// При Enabled=false все вызовы логируют пропуск и возвращают delivered=false
type EmailNotifier struct {
	cfg        config.SMTPConfig
	recipients []string
	hotelName  string
}

// NewEmailNotifier создает новый почтовый нотификатор
func NewEmailNotifier(cfg config.SMTPConfig, recipients []string, hotelName string) *EmailNotifier {
	return &EmailNotifier{
		cfg:        cfg,
		recipients: recipients,
		hotelName:  hotelName,
	}
}

// Notify отправляет одно письмо со всеми алертами одного отзыва
// Ошибка классифицируется (ErrAuthentication/ErrTransport) и возвращается
// вместе с delivered=false - решать, фатальна ли она, должен вызывающий
func (n *EmailNotifier) Notify(ctx context.Context, events []entity.AlertEvent, feedbackID uint) (bool, error) {
	if !n.cfg.Enabled {
		metrics.AlertEmails.WithLabelValues("skipped").Inc()
		logger.Info().
			Uint("feedback_id", feedbackID).
			Int("alerts", len(events)).
			Msg("Email alerts disabled, skipping delivery")
		return false, nil
	}

	subject := fmt.Sprintf("LOW RATING ALERT - %s - Feedback #%d", n.hotelName, feedbackID)
	body := n.composeAlertBody(events, feedbackID)

	if err := n.send(subject, body); err != nil {
		if errors.Is(err, ErrAuthentication) {
			metrics.AlertEmails.WithLabelValues("auth_error").Inc()
		} else {
			metrics.AlertEmails.WithLabelValues("transport_error").Inc()
		}
		logger.Error().Err(err).
			Uint("feedback_id", feedbackID).
			Msg("Failed to deliver alert email")
		return false, err
	}

	metrics.AlertEmails.WithLabelValues("sent").Inc()
	logger.Info().
		Uint("feedback_id", feedbackID).
		Int("alerts", len(events)).
		Strs("recipients", n.recipients).
		Msg("Alert email sent")
	return true, nil
}

// SendDigest отправляет сводку алертов одним письмом
func (n *EmailNotifier) SendDigest(ctx context.Context, groups []entity.AlertGroup) (bool, error) {
	if !n.cfg.Enabled {
		metrics.AlertEmails.WithLabelValues("skipped").Inc()
		logger.Info().Int("groups", len(groups)).Msg("Email alerts disabled, skipping digest")
		return false, nil
	}

	subject := fmt.Sprintf("DAILY ALERT DIGEST - %s - %d feedback entries", n.hotelName, len(groups))
	body := n.composeDigestBody(groups)

	if err := n.send(subject, body); err != nil {
		if errors.Is(err, ErrAuthentication) {
			metrics.AlertEmails.WithLabelValues("auth_error").Inc()
		} else {
			metrics.AlertEmails.WithLabelValues("transport_error").Inc()
		}
		logger.Error().Err(err).Msg("Failed to deliver alert digest")
		return false, err
	}

	metrics.AlertEmails.WithLabelValues("sent").Inc()
	return true, nil
}

// send выполняет полную SMTP-сессию: dial, STARTTLS, auth, отправка
// Дедлайн ставится на всё соединение, чтобы зависший сервер не держал горутину
func (n *EmailNotifier) send(subject, body string) error {
	timeout := time.Duration(n.cfg.DialTimeoutSec) * time.Second

	conn, err := net.DialTimeout("tcp", n.cfg.Address(), timeout)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %v", ErrTransport, n.cfg.Address(), err)
	}
	conn.SetDeadline(time.Now().Add(timeout))

	client, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("%w: handshake: %v", ErrTransport, err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: n.cfg.Host}); err != nil {
			return fmt.Errorf("%w: starttls: %v", ErrTransport, err)
		}
	}

	auth := smtp.PlainAuth("", n.cfg.SenderEmail, n.cfg.SenderPassword, n.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return classifySMTPError("auth", err)
	}

	if err := client.Mail(n.cfg.SenderEmail); err != nil {
		return classifySMTPError("mail from", err)
	}
	for _, recipient := range n.recipients {
		if err := client.Rcpt(recipient); err != nil {
			return classifySMTPError("rcpt to", err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("%w: data: %v", ErrTransport, err)
	}
	if _, err := writer.Write([]byte(n.buildMessage(subject, body))); err != nil {
		return fmt.Errorf("%w: write body: %v", ErrTransport, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("%w: close body: %v", ErrTransport, err)
	}

	if err := client.Quit(); err != nil {
		return fmt.Errorf("%w: quit: %v", ErrTransport, err)
	}
	return nil
}

// buildMessage собирает RFC 5322 сообщение с HTML-телом
func (n *EmailNotifier) buildMessage(subject, body string) string {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", n.cfg.SenderEmail)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(n.recipients, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)
	return msg.String()
}

// composeAlertBody строит HTML-тело алерта: шапка с контекстом отзыва и
// таблица нарушенных порогов
func (n *EmailNotifier) composeAlertBody(events []entity.AlertEvent, feedbackID uint) string {
	var body strings.Builder
	body.WriteString("<h2>LOW RATING ALERT</h2>")
	fmt.Fprintf(&body, "<p><strong>Hotel:</strong> %s</p>", html.EscapeString(n.hotelName))
	fmt.Fprintf(&body, "<p><strong>Feedback ID:</strong> #%d</p>", feedbackID)
	fmt.Fprintf(&body, "<p><strong>Time:</strong> %s</p>", time.Now().UTC().Format(entity.TimestampLayout))

	body.WriteString("<table border=\"1\" cellpadding=\"5\">")
	body.WriteString("<tr><th>Category</th><th>Rating</th><th>Threshold</th><th>Comments</th></tr>")
	for _, event := range events {
		fmt.Fprintf(&body,
			"<tr><td>%s</td><td>%s/5</td><td>%s/5</td><td>%s</td></tr>",
			html.EscapeString(event.Category),
			formatRating(event.Rating),
			formatRating(event.Threshold),
			html.EscapeString(truncateComment(event.Comments, alertCommentLimit)),
		)
	}
	body.WriteString("</table>")
	return body.String()
}

// composeDigestBody строит HTML-тело дайджеста: по блоку на отзыв
func (n *EmailNotifier) composeDigestBody(groups []entity.AlertGroup) string {
	var body strings.Builder
	body.WriteString("<h2>DAILY ALERT DIGEST</h2>")
	fmt.Fprintf(&body, "<p><strong>Hotel:</strong> %s</p>", html.EscapeString(n.hotelName))
	fmt.Fprintf(&body, "<p><strong>Feedback entries with alerts:</strong> %d</p>", len(groups))

	for _, group := range groups {
		fmt.Fprintf(&body,
			"<h3>Feedback #%d - %s (overall %.2f/5)</h3>",
			group.FeedbackID, html.EscapeString(group.Date), group.Overall,
		)
		body.WriteString("<table border=\"1\" cellpadding=\"5\">")
		body.WriteString("<tr><th>Category</th><th>Rating</th><th>Threshold</th><th>Comments</th></tr>")
		for _, alert := range group.Alerts {
			fmt.Fprintf(&body,
				"<tr><td>%s</td><td>%s/5</td><td>%s/5</td><td>%s</td></tr>",
				html.EscapeString(alert.Category),
				formatRating(alert.Rating),
				formatRating(alert.Threshold),
				html.EscapeString(truncateComment(alert.Comments, alertCommentLimit)),
			)
		}
		body.WriteString("</table>")
	}
	return body.String()
}

// classifySMTPError разделяет отказ аутентификации и транспортный сбой
// по коду ответа сервера (RFC 4954)
func classifySMTPError(stage string, err error) error {
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		switch protoErr.Code {
		case 530, 534, 535:
			return fmt.Errorf("%w: %s: %v", ErrAuthentication, stage, err)
		}
	}
	return fmt.Errorf("%w: %s: %v", ErrTransport, stage, err)
}

func formatRating(rating float64) string {
	return strconv.FormatFloat(rating, 'g', -1, 64)
}

// truncateComment обрезает длинный комментарий с многоточием
func truncateComment(comment string, limit int) string {
	runes := []rune(comment)
	if len(runes) <= limit {
		return comment
	}
	return string(runes[:limit]) + "..."
}
