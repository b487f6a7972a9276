// Package notifier sends the availability mail. Templates follow the
// japanese phrasing of the monitored site; the scheduler's operator is
// the only audience.
package notifier

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"ticketwatch-backend/internal/checker"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("ticketwatch.notifier")

type SmtpConfig struct {
	Server string `json:"server"`
	Port   int    `json:"port"`
	// sender identity, e.g. a gmail address with an app password
	Address  string `json:"address"`
	Password string `json:"password"`
}

type Notifier struct {
	smtp SmtpConfig
	to   string
}

func New(smtpConfig SmtpConfig, to string) Notifier {
	return Notifier{
		smtp: smtpConfig,
		to:   to,
	}
}

const signature = "---\nこのメールはチケット空き通知システムにより自動送信されました。"

func (n Notifier) compose(msg checker.Notification) (subject, body string) {
	detectedAt := msg.DetectedAt.Format("2006-01-02 15:04:05 JST")

	if msg.Test {
		subject = "【チケット空き通知】テスト送信（現在空きなし）"
		body = fmt.Sprintf(`これはテスト送信です。

現在、空きのある日程はありません。

確認URL:
%s

確認時刻: %s

%s`, msg.URL, detectedAt, signature)
		return subject, body
	}

	subject = "【チケット空き通知】チケットの空きが出ました！"

	var dates strings.Builder
	for _, d := range msg.OpenDates {
		fmt.Fprintf(&dates, "  ・%s（残席: %d席, 料金: ¥%s～）\n", d.Date, d.Seats, d.MinPrice)
	}
	if dates.Len() > 0 {
		body = fmt.Sprintf(`チケットの空きが検出されました。

空きのある日程:
%s
確認時刻: %s

今すぐ予約してください:
%s

%s`, dates.String(), detectedAt, msg.URL, signature)
	} else {
		body = fmt.Sprintf(`チケットの空きが検出されました。

確認時刻: %s

今すぐ予約してください:
%s

%s`, detectedAt, msg.URL, signature)
	}
	return subject, body
}

// Notify composes and sends the mail for msg. Gmail's smtps endpoint
// (:465) needs an implicit TLS dial; any other port goes through plain
// SMTP with STARTTLS left to the library, which is also what the
// fake-smtp test container speaks.
func (n Notifier) Notify(ctx context.Context, msg checker.Notification) error {
	ctx, span := tracer.Start(ctx, "Notify")
	defer span.End()

	subject, body := n.compose(msg)

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("チケット空き通知 <%s>", n.smtp.Address)
	mail.To = []string{n.to}
	mail.Subject = subject
	mail.Text = []byte(body)

	addr := fmt.Sprintf("%s:%d", n.smtp.Server, n.smtp.Port)
	auth := smtp.PlainAuth("", n.smtp.Address, n.smtp.Password, n.smtp.Server)

	var err error
	if n.smtp.Port == 465 {
		err = mail.SendWithTLS(addr, auth, &tls.Config{ServerName: n.smtp.Server})
	} else {
		err = mail.Send(addr, auth)
		if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
			err = mail.Send(addr, nil)
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return &checker.NotifyError{Err: err}
	}

	return nil
}
