package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMMessenger implements Multicaster on Firebase Cloud Messaging.
type FCMMessenger struct {
	client *messaging.Client
}

// NewFCMMessenger initializes the Firebase app and its messaging client.
// With an empty credentials file it falls back to application default
// credentials.
func NewFCMMessenger(ctx context.Context, credentialsFile string) (*FCMMessenger, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp error: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase messaging client error: %w", err)
	}
	return &FCMMessenger{client: client}, nil
}

// SendMulticast sends one message to all tokens in a single batched call and
// maps per-token rejections back onto the token values.
func (m *FCMMessenger) SendMulticast(ctx context.Context, tokens []string, notification Notification, data map[string]string) (*MulticastResult, error) {
	msg := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: notification.Title,
			Body:  notification.Body,
		},
		Data: data,
	}

	resp, err := m.client.SendEachForMulticast(ctx, msg)
	if err != nil {
		return nil, err
	}

	result := &MulticastResult{
		SuccessCount: resp.SuccessCount,
		FailureCount: resp.FailureCount,
	}
	for i, r := range resp.Responses {
		if !r.Success {
			result.FailedTokens = append(result.FailedTokens, tokens[i])
		}
	}
	return result, nil
}
