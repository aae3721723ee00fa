package config

// MailConfig holds SMTP settings for confirmation emails.  When Host is
// empty the notification consumer is not started.
type MailConfig struct {
    Host     string
    Port     int
    User     string
    Password string
    From     string
}

// LoadMailConfig reads MAIL_* variables.
func LoadMailConfig() MailConfig {
    return MailConfig{
        Host:     envStr("MAIL_HOST", ""),
        Port:     envInt("MAIL_PORT", 587),
        User:     envStr("MAIL_USER", ""),
        Password: envStr("MAIL_PASS", ""),
        From:     envStr("MAIL_FROM", "no-reply@localhost"),
    }
}

// Enabled reports whether enough settings are present to send mail.
func (m MailConfig) Enabled() bool { return m.Host != "" }
