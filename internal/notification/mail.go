package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"hotel/internal/domain"

	"github.com/sirupsen/logrus"
)

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	FromName string
}

func (c SMTPConfig) configured() bool {
	return c.Host != "" && c.Port != "" && c.Username != "" && c.Password != ""
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// MailChannel emails the guest. Without SMTP settings it logs a mock email instead.
type MailChannel struct {
	cfg  SMTPConfig
	log  *logrus.Logger
	send sendFunc
}

func NewMailChannel(cfg SMTPConfig, log *logrus.Logger) *MailChannel {
	return &MailChannel{cfg: cfg, log: log, send: smtp.SendMail}
}

func (m *MailChannel) Name() string { return "email" }

func (m *MailChannel) Send(ctx context.Context, ev domain.BookingEvent) error {
	if ev.Recipient == nil || strings.TrimSpace(ev.Recipient.Email) == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	subj := subject(ev)
	body := renderBody(ev)
	if !m.cfg.configured() {
		m.log.WithFields(logrus.Fields{
			"to":      ev.Recipient.Email,
			"subject": subj,
		}).Info("[MOCK EMAIL]")
		return nil
	}

	from := fmt.Sprintf("%s <%s>", safe(m.cfg.FromName), m.cfg.Username)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)

	var sb strings.Builder
	sb.WriteString("From: " + from + "\r\n")
	sb.WriteString("To: " + safe(ev.Recipient.Email) + "\r\n")
	sb.WriteString("Subject: " + safe(subj) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	sb.WriteString(body)

	return m.send(addr, auth, m.cfg.Username, []string{ev.Recipient.Email}, []byte(sb.String()))
}

func renderBody(ev domain.BookingEvent) string {
	var sb strings.Builder
	name := "guest"
	if ev.Recipient != nil && ev.Recipient.Name != "" {
		name = ev.Recipient.Name
	}
	b := ev.Booking

	fmt.Fprintf(&sb, "Hi %s,\r\n\r\n", safe(name))
	fmt.Fprintf(&sb, "%s.\r\n\r\n", subject(ev))
	fmt.Fprintf(&sb, "Check-in:  %s\r\n", b.CheckInDate)
	fmt.Fprintf(&sb, "Check-out: %s (%d nights)\r\n", b.CheckOutDate, b.Nights())
	for _, r := range ev.Rooms {
		fmt.Fprintf(&sb, "Room %s (%s): %.2f per night\r\n", r.RoomNumber, r.RoomType, r.PricePerNight)
	}
	for _, s := range ev.Services {
		fmt.Fprintf(&sb, "Service %s: %.2f\r\n", s.Name, s.Price)
	}
	fmt.Fprintf(&sb, "Total: %.2f\r\nStatus: %s\r\n", b.TotalPrice, b.Status)
	return sb.String()
}

func safe(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
