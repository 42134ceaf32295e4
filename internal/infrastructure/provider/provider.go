package provider

import (
	"context"

	"marketnotify/internal/domain/entity"
	"marketnotify/pkg/logger"
)

// Provider is an outbound delivery channel for notifications (email, SMS,
// push). Implementations are best-effort: failures are logged by the caller
// and never affect the durable notification record.
type Provider interface {
	Name() string
	Send(ctx context.Context, notification *entity.Notification) error
}

// The concrete adapters below are stubs that log instead of calling a real
// gateway.

type EmailProvider struct{}

func NewEmailProvider() *EmailProvider { return &EmailProvider{} }

func (p *EmailProvider) Name() string { return "email" }

func (p *EmailProvider) Send(ctx context.Context, n *entity.Notification) error {
	logger.Info("email provider: would send %q to user %s", n.Title, n.UserID)
	return nil
}

type SMSProvider struct{}

func NewSMSProvider() *SMSProvider { return &SMSProvider{} }

func (p *SMSProvider) Name() string { return "sms" }

func (p *SMSProvider) Send(ctx context.Context, n *entity.Notification) error {
	logger.Info("sms provider: would send %q to user %s", n.Title, n.UserID)
	return nil
}

type PushProvider struct{}

func NewPushProvider() *PushProvider { return &PushProvider{} }

func (p *PushProvider) Name() string { return "push" }

func (p *PushProvider) Send(ctx context.Context, n *entity.Notification) error {
	logger.Info("push provider: would send %q to user %s", n.Title, n.UserID)
	return nil
}
