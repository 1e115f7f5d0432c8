package email

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileEmailSender appends every message to a local file.
type FileEmailSender struct {
	mu       sync.Mutex
	filePath string
}

// NewFileEmailSender creates a new FileEmailSender and the directory for its file.
func NewFileEmailSender(filePath string) (*FileEmailSender, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, fmt.Errorf("email log file path cannot be empty")
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for email log file '%s': %w", dir, err)
	}

	return &FileEmailSender{filePath: filePath}, nil
}

func (s *FileEmailSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open email log file: %w", err)
	}
	defer file.Close()

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Email Logged at %s (To: %v, Subject: %s) ---\n", time.Now().Format(time.RFC3339Nano), to, subject)
	sb.Write(rawMessage)
	sb.WriteString("--- End Logged Email ---\n\n")

	if _, err := file.WriteString(sb.String()); err != nil {
		return fmt.Errorf("failed to write email to log file: %w", err)
	}

	log.Printf("FileEmailSender: email to %v logged to %s", to, s.filePath)
	return nil
}
