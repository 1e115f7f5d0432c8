package db

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// Operation is a function that performs an action and returns an error if it fails.
type Operation func() error

// RetryPredicate decides whether a failed operation may be attempted again.
type RetryPredicate func(err error) bool

const DefaultMaxRetries = 3

// Try executes an operation with default retry settings for transient errors.
// It uses DefaultMaxRetries and IsTransientError.
func Try(op Operation) error {
	return WithRetries(op, DefaultMaxRetries, IsTransientError)
}

// WithRetries executes op, retrying up to maxRetries times while shouldRetry
// accepts the error. Attempts are spaced by a small incremental backoff.
// Only idempotent operations (reads) should be passed here.
func WithRetries(op Operation, maxRetries int, shouldRetry RetryPredicate) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err = op()
		if err == nil {
			return nil
		}

		if attempt == maxRetries {
			break
		}

		if !shouldRetry(err) {
			return err
		}
		time.Sleep(time.Duration(50*(attempt+1)) * time.Millisecond)
	}
	return err
}

// IsTransientError reports whether err is an infrastructure failure that may
// succeed on a later attempt (network errors, timeouts, labelled retryable errors).
// Caller cancellation is never transient.
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, mongo.ErrClientDisconnected) {
		return true
	}
	var labeled mongo.LabeledError
	if errors.As(err, &labeled) {
		return labeled.HasErrorLabel("RetryableWriteError") || labeled.HasErrorLabel("TransientTransactionError")
	}
	return false
}

// IsMongoDuplicateKeyError checks if an error from MongoDB is a duplicate key error (code 11000).
func IsMongoDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	var e mongo.WriteException
	if errors.As(err, &e) {
		for _, we := range e.WriteErrors {
			if we.Code == 11000 {
				return true
			}
		}
	}
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		for _, writeError := range bwe.WriteErrors {
			if writeError.Code == 11000 {
				return true
			}
		}
	}
	return false
}
