// Package push turns due-evaluation results into delivered notifications and
// keeps the per-account token set clean.
package push

import "context"

// Notification is the visible part of a push message.
type Notification struct {
	Title string
	Body  string
}

// MulticastResult reports the outcome of one batched send.
type MulticastResult struct {
	SuccessCount int
	FailureCount int
	// FailedTokens are the tokens the transport rejected; they are pruned
	// from the account afterwards.
	FailedTokens []string
}

// Multicaster sends one notification to many delivery tokens in a single
// batched call. A returned error means the whole send failed; per-token
// rejections come back in the result instead.
type Multicaster interface {
	SendMulticast(ctx context.Context, tokens []string, notification Notification, data map[string]string) (*MulticastResult, error)
}

// TokenStore removes rejected delivery tokens from an account. The removal
// must be idempotent set subtraction.
type TokenStore interface {
	RemoveFCMTokens(ctx context.Context, userID string, tokens []string) error
}
