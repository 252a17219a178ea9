package ratelimit

import (
	"context"
	"fmt"
	"strings"
)

const (
	keyCheckoutUser = "checkout:user:%s"

	// A user retrying a failed checkout is normal; scripted hammering of
	// the session endpoint is not.
	checkoutRate  = 0.5
	checkoutBurst = 5
)

// CheckoutLimiter throttles checkout-session creation per user. Disabled
// (always-allow) when redis is not configured.
type CheckoutLimiter struct {
	bucket *TokenBucket
}

func NewCheckoutLimiter(bucket *TokenBucket) *CheckoutLimiter {
	return &CheckoutLimiter{bucket: bucket}
}

func (l *CheckoutLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *CheckoutLimiter) Allow(ctx context.Context, userID string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	key := fmt.Sprintf(keyCheckoutUser, strings.TrimSpace(userID))
	return l.bucket.Allow(ctx, key, checkoutRate, checkoutBurst)
}
