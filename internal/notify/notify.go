/*
Package notify emails the post-run summary when SMTP settings are configured.
*/
package notify

import (
	"fmt"
	"log"
	"strings"
	"time"

	gomail "gopkg.in/mail.v2"
)

// EmailConfig holds SMTP configuration for the run summary email.
type EmailConfig struct {
	SMTPServer string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	FromEmail  string
	ToEmail    string
	Enabled    bool
}

// Summary is a rendered run report: a stage name plus the labeled counters
// the stage collected.
type Summary struct {
	Stage    string
	Finished time.Time
	Lines    []string
}

// Addf appends a formatted counter line.
func (s *Summary) Addf(format string, args ...any) {
	s.Lines = append(s.Lines, fmt.Sprintf(format, args...))
}

func (s *Summary) subject() string {
	return fmt.Sprintf("quotewire %s run: %s", s.Stage, s.Finished.Format("2006-01-02 15:04"))
}

func (s *Summary) body() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s run finished at %s\n", s.Stage, s.Finished.Format(time.RFC1123)))
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")
	for _, line := range s.Lines {
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

// SendSummary delivers the run summary over SMTP. Disabled config is a no-op
// so callers never need to branch.
func SendSummary(cfg EmailConfig, summary *Summary) error {
	if !cfg.Enabled {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", cfg.FromEmail)
	m.SetHeader("To", cfg.ToEmail)
	m.SetHeader("Subject", summary.subject())
	m.SetBody("text/plain", summary.body())

	dialer := gomail.NewDialer(cfg.SMTPServer, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	dialer.Timeout = 10 * time.Second

	if err := dialer.DialAndSend(m); err != nil {
		log.Printf("Email error: failed to send to %s: %v", cfg.ToEmail, err)
		return err
	}

	log.Printf("Email sent: %s", summary.subject())
	return nil
}
