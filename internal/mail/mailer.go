// Package mail renders and sends registration confirmation emails over SMTP.
package mail

import (
    "bytes"
    "context"
    "fmt"
    "net"
    "net/smtp"
    "strconv"
    "strings"
    "text/template"
    "time"

    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/config"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/queue"
)

var bodyTmpl = template.Must(template.New("confirmation").Parse(
    `Hi {{if .RecipientName}}{{.RecipientName}}{{else}}there{{end}},

Your registration is confirmed for:
{{range .EventNames}}  - {{.}}
{{end}}
Total paid: {{.Total}}
Order ID:   {{.OrderID}}
Payment ID: {{.PaymentID}}

See you there!
`))

// SendFunc matches smtp.SendMail so tests can capture messages.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer implements queue.Mailer using net/smtp.
type SMTPMailer struct {
    cfg  config.MailConfig
    send SendFunc
}

// NewSMTPMailer returns a mailer for cfg.  A nil send uses smtp.SendMail.
func NewSMTPMailer(cfg config.MailConfig, send SendFunc) *SMTPMailer {
    if send == nil {
        send = smtp.SendMail
    }
    return &SMTPMailer{cfg: cfg, send: send}
}

// SendConfirmation renders and sends the confirmation for ev.  smtp.SendMail
// has no context support, so cancellation is only honoured before sending.
func (m *SMTPMailer) SendConfirmation(ctx context.Context, ev queue.RegistrationConfirmedEvent) error {
    if err := ctx.Err(); err != nil {
        return err
    }
    msg, err := Render(m.cfg.From, ev, time.Now().UTC())
    if err != nil {
        return err
    }
    var auth smtp.Auth
    if m.cfg.User != "" {
        auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
    }
    addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
    return m.send(addr, auth, m.cfg.From, []string{ev.RecipientEmail}, msg)
}

// Render builds the RFC 5322 message for ev.
func Render(from string, ev queue.RegistrationConfirmedEvent, now time.Time) ([]byte, error) {
    var body bytes.Buffer
    if err := bodyTmpl.Execute(&body, ev); err != nil {
        return nil, fmt.Errorf("render confirmation: %w", err)
    }
    var b bytes.Buffer
    fmt.Fprintf(&b, "From: %s\r\n", sanitizeHeader(from))
    fmt.Fprintf(&b, "To: %s\r\n", sanitizeHeader(ev.RecipientEmail))
    fmt.Fprintf(&b, "Subject: Registration confirmed (%d event%s)\r\n", len(ev.EventNames), plural(len(ev.EventNames)))
    fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
    b.WriteString("MIME-Version: 1.0\r\n")
    b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
    b.WriteString(strings.ReplaceAll(body.String(), "\n", "\r\n"))
    return b.Bytes(), nil
}

// sanitizeHeader strips CR/LF so user-supplied values cannot inject headers.
func sanitizeHeader(s string) string {
    return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}

func plural(n int) string {
    if n == 1 {
        return ""
    }
    return "s"
}
