package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

// mockMongoDuplicateKeyError creates an error that IsMongoDuplicateKeyError will recognize.
func mockMongoDuplicateKeyError(key string) error {
	mongoErr := mongo.WriteError{
		Code:    11000,
		Message: fmt.Sprintf("E11000 duplicate key error collection: test.inquiries index: active_per_buyer_property dup key: { : \"%s\" }", key),
	}
	return mongo.WriteException{WriteErrors: []mongo.WriteError{mongoErr}}
}

func TestWithRetries_SuccessfulFirstAttempt(t *testing.T) {
	var opCalled int
	operation := func() error {
		opCalled++
		return nil
	}

	err := WithRetries(operation, 3, IsTransientError)
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if opCalled != 1 {
		t.Errorf("Expected operation to be called 1 time, got %d", opCalled)
	}
}

func TestWithRetries_NonRetryableStopsImmediately(t *testing.T) {
	var opCalled int
	expectedErr := errors.New("some other error")
	operation := func() error {
		opCalled++
		return expectedErr
	}

	err := WithRetries(operation, 3, IsTransientError)
	if !errors.Is(err, expectedErr) {
		t.Errorf("Expected error %v, got %v", expectedErr, err)
	}
	if opCalled != 1 {
		t.Errorf("Expected operation to be called 1 time, got %d", opCalled)
	}
}

func TestWithRetries_ExhaustRetries(t *testing.T) {
	var opCalled int
	operation := func() error {
		opCalled++
		return context.DeadlineExceeded
	}

	maxRetries := 2
	err := WithRetries(operation, maxRetries, IsTransientError)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected deadline exceeded after retries, got %v", err)
	}
	if opCalled != maxRetries+1 {
		t.Errorf("Expected operation to be called %d times, got %d", maxRetries+1, opCalled)
	}
}

func TestWithRetries_TransientResolves(t *testing.T) {
	var opCalled int
	operation := func() error {
		opCalled++
		if opCalled < 3 {
			return fmt.Errorf("find inquiry: %w", context.DeadlineExceeded)
		}
		return nil
	}

	if err := WithRetries(operation, 3, IsTransientError); err != nil {
		t.Fatalf("Expected success after transient failures, got %v", err)
	}
	if opCalled != 3 {
		t.Errorf("Expected operation to be called 3 times, got %d", opCalled)
	}
}

func TestIsTransientError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"wrapped deadline", fmt.Errorf("load: %w", context.DeadlineExceeded), true},
		{"canceled", context.Canceled, false},
		{"client disconnected", mongo.ErrClientDisconnected, true},
		{"no documents", mongo.ErrNoDocuments, false},
		{"duplicate key", mockMongoDuplicateKeyError("x"), false},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTransientError(tc.err); got != tc.want {
				t.Errorf("IsTransientError(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestIsMongoDuplicateKeyError(t *testing.T) {
	if !IsMongoDuplicateKeyError(mockMongoDuplicateKeyError("buyer|property")) {
		t.Error("Expected write exception with code 11000 to be a duplicate key error")
	}
	bulk := mongo.BulkWriteException{WriteErrors: []mongo.BulkWriteError{{WriteError: mongo.WriteError{Code: 11000}}}}
	if !IsMongoDuplicateKeyError(bulk) {
		t.Error("Expected bulk write exception with code 11000 to be a duplicate key error")
	}
	if IsMongoDuplicateKeyError(errors.New("E11000 lookalike")) {
		t.Error("Plain errors must not be classified as duplicate key errors")
	}
	if IsMongoDuplicateKeyError(nil) {
		t.Error("nil is not a duplicate key error")
	}
}
