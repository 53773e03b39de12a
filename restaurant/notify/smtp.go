package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gomail "gopkg.in/gomail.v2"
)

// SMTPConfig configures the email channel to the kitchen.
type SMTPConfig struct {
	Host     string `envconfig:"HOST" split_words:"true" default:"smtp.gmail.com"`
	Port     int    `envconfig:"PORT" split_words:"true" default:"465"`
	Sender   string `envconfig:"SENDER" split_words:"true" required:"true"`
	Password string `envconfig:"PASSWORD" split_words:"true" required:"true"`
}

// SMTPSender delivers kitchen notifications as plain-text email.
type SMTPSender struct {
	cfg  SMTPConfig
	send func(msg *gomail.Message) error
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errors.New("smtp host is required")
	}
	if strings.TrimSpace(cfg.Sender) == "" {
		return nil, errors.New("smtp sender is required")
	}
	if cfg.Port <= 0 {
		cfg.Port = 465
	}

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Sender, cfg.Password)
	dialer.SSL = cfg.Port == 465

	return &SMTPSender{
		cfg:  cfg,
		send: func(msg *gomail.Message) error { return dialer.DialAndSend(msg) },
	}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return errors.New("recipient address is empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.Sender)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if err := s.send(m); err != nil {
		return fmt.Errorf("send kitchen email: %w", err)
	}
	return nil
}
