package email

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/SIYAM1809/Real-Estate-Management-System/internal/cache"
)

// TemplateHeader carries the notification template id inside the raw message
// so mock senders can key stored emails by it.
const TemplateHeader = "X-Template-ID"

// MockEmailTTL is how long RedisSender keeps a captured email.
const MockEmailTTL = 5 * time.Minute

// MockEmail is the JSON document RedisSender stores.
type MockEmail struct {
	To         string `json:"to"`
	Subject    string `json:"subject"`
	TemplateID string `json:"template_id"`
	Body       string `json:"body"`
	SentAt     string `json:"sent_at"`
}

// RedisSender captures emails in Redis instead of delivering them.
// Tests and the service API read them back with MockEmailKey.
type RedisSender struct {
	store cache.Store
}

func NewRedisSender(store cache.Store) *RedisSender {
	return &RedisSender{store: store}
}

// MockEmailKey is the Redis key of the last captured email of a template for a recipient.
func MockEmailKey(to, templateID string) string {
	return fmt.Sprintf("mockemail:%s:%s", to, templateID)
}

func (s *RedisSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}
	templateID := headerValue(rawMessage, TemplateHeader)
	if templateID == "" {
		templateID = "unknown"
	}

	data, err := json.Marshal(MockEmail{
		To:         strings.Join(to, ", "),
		Subject:    subject,
		TemplateID: templateID,
		Body:       string(rawMessage),
		SentAt:     time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email data: %w", err)
	}

	for _, recipient := range to {
		key := MockEmailKey(recipient, templateID)
		if err := s.store.Set(ctx, key, data, MockEmailTTL).Err(); err != nil {
			return fmt.Errorf("failed to store email in Redis key '%s': %w", key, err)
		}
		log.Printf("Mock email stored in Redis key '%s' (Subject: %s)", key, subject)
	}
	return nil
}

// headerValue returns the value of a header in the header block of a raw message.
func headerValue(raw []byte, name string) string {
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	prefix := strings.ToLower(name) + ":"
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			break
		}
		if strings.HasPrefix(strings.ToLower(line), prefix) {
			return strings.TrimSpace(line[len(prefix):])
		}
	}
	return ""
}
