package mail

import (
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	cfgpkg "github.com/oceanview/backend/pkg/config"
)

// Sender delivers transactional email to residents.
type Sender interface {
	Send(to, subject, htmlBody string) error
	SendAsync(to, subject, htmlBody string)
}

// SMTPSender implements Sender over a plain SMTP relay.
type SMTPSender struct {
	cfg    *cfgpkg.SMTPConfig
	log    *zap.SugaredLogger
	dialer *gomail.Dialer
}

func NewSMTPSender(cfg *cfgpkg.Config, log *zap.SugaredLogger) *SMTPSender {
	dialer := gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
	return &SMTPSender{cfg: &cfg.SMTP, log: log, dialer: dialer}
}

func (s *SMTPSender) Send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("mail: send to %s: %w", to, err)
	}
	return nil
}

// SendAsync delivers in the background. Failures are logged, never
// surfaced to the caller.
func (s *SMTPSender) SendAsync(to, subject, htmlBody string) {
	go func() {
		if err := s.Send(to, subject, htmlBody); err != nil {
			s.log.Errorw("async mail delivery failed", "to", to, "error", err)
		}
	}()
}

var Module = fx.Options(
	fx.Provide(
		NewSMTPSender,
		func(s *SMTPSender) Sender { return s },
	),
)
