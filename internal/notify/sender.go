package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"buildingportal/internal/config"
)

// CardIssued describes a newly minted access card.
type CardIssued struct {
	Email  string
	Name   string
	Room   string
	CardID string
}

type Sender interface {
	SendCardIssued(ctx context.Context, n CardIssued) error
}

type LogSender struct {
	logger *zap.Logger
}

func (s LogSender) SendCardIssued(ctx context.Context, n CardIssued) error {
	_ = ctx
	logger := s.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("access card issued",
		zap.String("email", n.Email),
		zap.String("room", n.Room),
		zap.String("card_id", n.CardID),
	)
	return nil
}

type SMTPSender struct {
	host string
	port int
	from string
}

func NewSender(cfg config.Config, logger *zap.Logger) Sender {
	switch cfg.NotifySender {
	case "smtp":
		return SMTPSender{host: cfg.SMTPHost, port: cfg.SMTPPort, from: cfg.NotifyFrom}
	default:
		return LogSender{logger: logger}
	}
}

func (s SMTPSender) SendCardIssued(ctx context.Context, n CardIssued) error {
	_ = ctx
	if strings.TrimSpace(n.Email) == "" {
		return fmt.Errorf("card notification: recipient email is empty")
	}
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{n.Email}, []byte(cardIssuedMessage(s.from, n)))
}

func cardIssuedMessage(from string, n CardIssued) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", n.Email)
	b.WriteString("Subject: Access card issued\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	fmt.Fprintf(&b, "%s님, 입주 카드 신청이 승인되었습니다.\r\n", n.Name)
	fmt.Fprintf(&b, "Room: %s\r\nAccess card: %s\r\n", n.Room, n.CardID)
	return b.String()
}
