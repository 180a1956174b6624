package datasource

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/logger"
)

// maxAttempts bounds calls to a throttled API, the first one included
const maxAttempts = 5

// throttleInitialInterval is the first backoff delay. It doubles on each retry.
var throttleInitialInterval = time.Second

// IsThrottle reports whether err is an AWS throttling response
func IsThrottle(err error) bool {
	aerr, ok := errors.Cause(err).(awserr.Error)
	if !ok {
		return false
	}
	switch aerr.Code() {
	case "Throttling", "ThrottlingException":
		return true
	}
	return false
}

func newThrottleBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = throttleInitialInterval
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, maxAttempts-1), ctx)
}

// RetryThrottled runs op, retrying with exponential backoff while AWS throttles it.
// Any other error is returned unchanged on the first attempt.
func RetryThrottled(ctx context.Context, op string, fn func() error) error {
	attempt := func() error {
		err := fn()
		if err == nil || IsThrottle(err) {
			return err
		}
		return backoff.Permanent(err)
	}
	notify := func(err error, wait time.Duration) {
		logger.WithFields(logrus.Fields{"op": op, "wait": wait}).Debugf("throttled, retrying: %v", err)
	}
	return backoff.RetryNotify(attempt, newThrottleBackOff(ctx), notify)
}
