// Package email delivers roast reminder emails over SMTP.
package email

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	mail "github.com/xhit/go-simple-mail/v2"

	"github.com/dsagrinders/dsagrinders/config"
)

// Sender sends roast reminder emails.
type Sender struct {
	config *config.EmailConfig
}

// RoastNotification contains everything a single reminder email needs.
type RoastNotification struct {
	UserEmail   string
	UserName    string
	Message     string
	TotalSolved int
	TodayPoints int
	Ranking     int
	ServerURL   string
}

// New creates a new email sender.
func New(cfg *config.EmailConfig) *Sender {
	return &Sender{
		config: cfg,
	}
}

// Enabled reports whether the channel is configured to send at all.
func (s *Sender) Enabled() bool {
	return s.config != nil && s.config.Enabled
}

//go:embed templates/*.html
var templatesFS embed.FS

type templateData struct {
	RoastNotification
	TotalSolvedText string
	RankingText     string
}

// SendRoast sends a roast reminder email to a single user.
func (s *Sender) SendRoast(notification RoastNotification) error {
	if !s.config.Enabled {
		log.Debug("Email notifications are disabled, skipping roast email")
		return nil
	}

	if notification.UserEmail == "" {
		log.Warn("User email is empty, skipping roast email", "user", notification.UserName)
		return nil
	}

	subject := fmt.Sprintf("[DSA Grinders] Daily Grind Reminder - %s", notification.UserName)

	body, err := s.generateBody(notification)
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}

	return s.sendEmail(notification.UserEmail, subject, body)
}

func (s *Sender) generateBody(notification RoastNotification) (string, error) {
	t, err := template.New("").ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return "", err
	}

	data := templateData{
		RoastNotification: notification,
		TotalSolvedText:   humanize.Comma(int64(notification.TotalSolved)),
		RankingText:       humanize.Comma(int64(notification.Ranking)),
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "roast.html", data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *Sender) sendEmail(to, subject, body string) error {
	server := mail.NewSMTPClient()
	server.Host = s.config.SMTPHost
	server.Port = s.config.SMTPPort
	server.Username = s.config.Username
	server.Password = s.config.Password

	if s.config.UseSSL {
		server.Encryption = mail.EncryptionSSLTLS
	} else if s.config.UseTLS {
		server.Encryption = mail.EncryptionSTARTTLS
	} else {
		server.Encryption = mail.EncryptionNone
	}

	if s.config.InsecureSkipVerify {
		server.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	server.KeepAlive = false
	server.ConnectTimeout = 10 * time.Second
	server.SendTimeout = 10 * time.Second

	smtpClient, err := server.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() {
		if closeErr := smtpClient.Close(); closeErr != nil {
			log.Warn("Failed to close SMTP client", "error", closeErr)
		}
	}()

	email := mail.NewMSG()

	fromName := s.config.FromName
	if fromName == "" {
		fromName = "DSA Grinders"
	}
	email.SetFrom(fmt.Sprintf("%s <%s>", fromName, s.config.FromEmail))
	email.AddTo(to)
	email.SetSubject(subject)
	email.SetBody(mail.TextHTML, body)

	if err := email.Send(smtpClient); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Info("Roast email sent", "to", to)
	return nil
}
