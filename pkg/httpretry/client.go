package httpretry

import (
	"time"

	"github.com/ybbus/httpretry"
)

var Client = httpretry.NewDefaultClient(
	httpretry.WithMaxRetryCount(5),

	// Retry on any error, 5xx status codes, 0 status codes and rate limits.
	httpretry.WithRetryPolicy(func(statusCode int, err error) bool {
		return err != nil || statusCode >= 500 || statusCode == 0 || statusCode == 429
	}),

	// Retry with an incremental backoff policy.
	httpretry.WithBackoffPolicy(func(attemptNum int) time.Duration {
		return time.Duration(attemptNum+1) * time.Second
	}),
)
