package email

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStore struct {
	values map[string][]byte
	ttls   map[string]time.Duration
}

func newRecordingStore() *recordingStore {
	return &recordingStore{values: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (r *recordingStore) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := r.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (r *recordingStore) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	r.values[key] = value.([]byte)
	r.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (r *recordingStore) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(r.values, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

type failingSender struct{ err error }

func (f failingSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	return f.err
}

const sampleMessage = "To: buyer@example.com\r\nSubject: Visit time proposed\r\nX-Template-ID: appointment_proposed\r\n\r\nBody text\r\n"

func TestRedisSender_StoresByRecipientAndTemplate(t *testing.T) {
	store := newRecordingStore()
	sender := NewRedisSender(store)

	err := sender.Send(context.Background(), []string{"buyer@example.com"}, "Visit time proposed", []byte(sampleMessage))
	require.NoError(t, err)

	key := MockEmailKey("buyer@example.com", "appointment_proposed")
	require.Contains(t, store.values, key)
	assert.Equal(t, MockEmailTTL, store.ttls[key])

	var stored MockEmail
	require.NoError(t, json.Unmarshal(store.values[key], &stored))
	assert.Equal(t, "appointment_proposed", stored.TemplateID)
	assert.Equal(t, "Visit time proposed", stored.Subject)
	assert.Contains(t, stored.Body, "Body text")
}

func TestRedisSender_UnknownTemplate(t *testing.T) {
	store := newRecordingStore()
	sender := NewRedisSender(store)

	require.NoError(t, sender.Send(context.Background(), []string{"a@example.com"}, "s", []byte("Subject: s\r\n\r\nX-Template-ID: not-a-header\r\n")))
	assert.Contains(t, store.values, MockEmailKey("a@example.com", "unknown"))
}

func TestCompositeEmailSender_CollectsErrors(t *testing.T) {
	store := newRecordingStore()
	boom := errors.New("smtp down")
	cs := NewCompositeEmailSender(failingSender{err: boom}, nil, NewRedisSender(store))

	err := cs.Send(context.Background(), []string{"buyer@example.com"}, "s", []byte(sampleMessage))
	assert.ErrorIs(t, err, boom)
	assert.Len(t, store.values, 1, "later senders still run after a failure")

	assert.Error(t, NewCompositeEmailSender().Send(context.Background(), nil, "s", nil))
}

func TestFileEmailSender_AppendsMessages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mail", "emails.log")
	sender, err := NewFileEmailSender(path)
	require.NoError(t, err)

	require.NoError(t, sender.Send(context.Background(), []string{"a@example.com"}, "first", []byte("one\r\n")))
	require.NoError(t, sender.Send(context.Background(), []string{"b@example.com"}, "second", []byte("two\r\n")))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Subject: first")
	assert.Contains(t, string(content), "Subject: second")
	assert.Contains(t, string(content), "two")

	_, err = NewFileEmailSender("  ")
	assert.Error(t, err)
}
