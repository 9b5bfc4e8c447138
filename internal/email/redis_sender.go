package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// TemplateHeader names the header carrying the notification template id.
const TemplateHeader = "X-Template-ID"

const mockEmailTTL = 5 * time.Minute

// MockEmailKey is the Redis key the mock sender stores a message under.
func MockEmailKey(to, templateID string) string {
	return fmt.Sprintf("mockemail:%s:%s", strings.ToLower(to), templateID)
}

// RedisSender stores emails in Redis instead of delivering them, so end-to-end
// tests can fetch them through the service API. Enabled with MOCK_SERVICES.
type RedisSender struct {
	client *redis.Client
	from   string
}

func NewRedisSender(client *redis.Client, from string) *RedisSender {
	return &RedisSender{client: client, from: from}
}

func (s *RedisSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	templateID := "unknown"
	body := string(rawMessage)
	if msg, err := mail.ReadMessage(bytes.NewReader(rawMessage)); err == nil {
		if id := msg.Header.Get(TemplateHeader); id != "" {
			templateID = id
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(msg.Body); err == nil {
			body = buf.String()
		}
	}

	emailData := map[string]interface{}{
		"to":          strings.Join(to, ", "),
		"from":        s.from,
		"subject":     subject,
		"body":        body,
		"sent_at":     time.Now().UTC().Format(time.RFC3339Nano),
		"template_id": templateID,
	}
	jsonData, err := json.Marshal(emailData)
	if err != nil {
		return fmt.Errorf("failed to marshal email data: %w", err)
	}

	for _, recipient := range to {
		key := MockEmailKey(recipient, templateID)
		if err := s.client.Set(ctx, key, jsonData, mockEmailTTL).Err(); err != nil {
			return fmt.Errorf("failed to store email in Redis key '%s': %w", key, err)
		}
		zerolog.Ctx(ctx).Debug().Str("key", key).Str("subject", subject).Msg("mock email stored in Redis")
	}
	return nil
}
