package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"os"
	"strings"
)

// EmailChannel sends plaintext mail over SMTP with STARTTLS-capable auth.
// Connection settings come from SMTP_HOST, SMTP_PORT, SMTP_USER,
// SMTP_PASSWORD and SMTP_FROM; the recipient list from
// MAIL_ADDRESS_NOTIFICATION_TO (comma separated).
type EmailChannel struct{}

func NewEmailChannel() *EmailChannel { return &EmailChannel{} }

func (e *EmailChannel) Name() string { return "email" }

func (e *EmailChannel) Send(ctx context.Context, msg Message) error {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	password := os.Getenv("SMTP_PASSWORD")
	from := os.Getenv("SMTP_FROM")
	toRaw := os.Getenv("MAIL_ADDRESS_NOTIFICATION_TO")
	if host == "" || user == "" || password == "" || toRaw == "" {
		return fmt.Errorf("SMTP settings incomplete")
	}
	if port == "" {
		port = "587"
	}
	if from == "" {
		from = user
	}

	var to []string
	for _, addr := range strings.Split(toRaw, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}
	if len(to) == 0 {
		return fmt.Errorf("no recipients configured")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Title)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)

	if err := ctx.Err(); err != nil {
		return err
	}
	auth := smtp.PlainAuth("", user, password, host)
	if err := smtp.SendMail(host+":"+port, auth, from, to, []byte(b.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
