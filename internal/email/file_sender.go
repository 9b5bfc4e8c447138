package email

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileEmailSender appends every message to a plain-text log. Enabled with LOG_EMAILS.
type FileEmailSender struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

func NewFileEmailSender(path string) (*FileEmailSender, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("email log file path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for email log %q: %w", path, err)
	}
	return &FileEmailSender{path: path, now: time.Now}, nil
}

func (s *FileEmailSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open email log: %w", err)
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "=== %s | to: %s | subject: %s\n%s\n=== end\n\n",
		s.now().UTC().Format(time.RFC3339), strings.Join(to, ", "), subject,
		strings.TrimRight(string(rawMessage), "\r\n"))
	if err != nil {
		return fmt.Errorf("failed to write email log: %w", err)
	}
	return nil
}
