package notifiers

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/9seconds/footprint/footlib"
)

const (
	DefaultSMTPHost = "smtp.gmail.com"
	DefaultSMTPPort = 587
)

// SMTPConfig is a configuration of email notifier. If From is empty,
// Username is used. If To is empty, From is used: by default you send
// notifications to yourself.
type SMTPConfig struct {
	Host               string
	Port               int
	Username           string
	Password           string
	From               string
	To                 []string
	InsecureSkipVerify bool
}

type smtpNotifier struct {
	conf SMTPConfig
}

func (s smtpNotifier) Name() string {
	return NameSMTP
}

func (s smtpNotifier) Send(ctx context.Context, msg footlib.NotificationMessage) error {
	client, err := s.client()
	if err != nil {
		return err
	}

	mailMsg, err := s.message(msg)
	if err != nil {
		return err
	}

	if err := client.DialAndSendWithContext(ctx, mailMsg); err != nil {
		return fmt.Errorf("cannot send an email: %w", err)
	}

	return nil
}

// Verify checks that SMTP server is reachable and accepts credentials.
func (s smtpNotifier) Verify(ctx context.Context) error {
	client, err := s.client()
	if err != nil {
		return err
	}

	if err := client.DialWithContext(ctx); err != nil {
		return fmt.Errorf("cannot connect to smtp server: %w", err)
	}

	return client.Close()
}

func (s smtpNotifier) client() (*mail.Client, error) {
	if s.conf.Username == "" || s.conf.Password == "" {
		return nil, ErrNoCredentials
	}

	client, err := mail.NewClient(s.conf.Host,
		mail.WithPort(s.conf.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.conf.Username),
		mail.WithPassword(s.conf.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTLSConfig(&tls.Config{
			ServerName:         s.conf.Host,
			InsecureSkipVerify: s.conf.InsecureSkipVerify, // nolint: gosec
		}))
	if err != nil {
		return nil, fmt.Errorf("cannot create smtp client: %w", err)
	}

	return client, nil
}

func (s smtpNotifier) message(msg footlib.NotificationMessage) (*mail.Msg, error) {
	mailMsg := mail.NewMsg()

	if err := mailMsg.From(s.conf.From); err != nil {
		return nil, fmt.Errorf("incorrect sender: %w", err)
	}

	if err := mailMsg.To(s.conf.To...); err != nil {
		return nil, fmt.Errorf("incorrect recipients: %w", err)
	}

	mailMsg.Subject(msg.Subject)
	mailMsg.SetDate()
	mailMsg.SetBodyString(mail.TypeTextHTML, msg.Body)

	return mailMsg, nil
}

// NewSMTP creates email notifier. Missing credentials are not an error
// here: such notifier fails on each Send with ErrNoCredentials.
func NewSMTP(conf SMTPConfig) (footlib.Notifier, error) {
	if conf.Host == "" {
		conf.Host = DefaultSMTPHost
	}

	if conf.Port == 0 {
		conf.Port = DefaultSMTPPort
	}

	if conf.From == "" {
		conf.From = conf.Username
	}

	if len(conf.To) == 0 && conf.From != "" {
		conf.To = []string{conf.From}
	}

	if len(conf.To) == 0 && conf.Password != "" {
		return nil, ErrNoRecipients
	}

	return smtpNotifier{
		conf: conf,
	}, nil
}
