package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	cfgpkg "github.com/oceanview/backend/pkg/config"
)

// Sender delivers push notifications to device tokens or broadcast topics.
type Sender interface {
	SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) error
	SendToTopic(ctx context.Context, topic, title, body string, data map[string]string) error
}

// FCMSender implements Sender on top of Firebase Cloud Messaging.
type FCMSender struct {
	cfg    *cfgpkg.FCMConfig
	log    *zap.SugaredLogger
	client *messaging.Client
}

func NewFCMSender(cfg *cfgpkg.Config, log *zap.SugaredLogger) (*FCMSender, error) {
	ctx := context.Background()
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.FCM.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("push: init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("push: init messaging client: %w", err)
	}
	return &FCMSender{cfg: &cfg.FCM, log: log, client: client}, nil
}

func (s *FCMSender) SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	if len(tokens) == 0 {
		return nil
	}
	msg := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	resp, err := s.client.SendEachForMulticast(ctx, msg)
	if err != nil {
		return fmt.Errorf("push: multicast send: %w", err)
	}
	if resp.FailureCount > 0 {
		s.log.Warnw("push multicast partially failed",
			"success", resp.SuccessCount, "failure", resp.FailureCount)
	}
	return nil
}

func (s *FCMSender) SendToTopic(ctx context.Context, topic, title, body string, data map[string]string) error {
	msg := &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	if _, err := s.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("push: topic send %q: %w", topic, err)
	}
	return nil
}

var Module = fx.Options(
	fx.Provide(
		NewFCMSender,
		func(s *FCMSender) Sender { return s },
	),
)
