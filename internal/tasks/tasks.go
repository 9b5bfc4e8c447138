package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"homznspace/backend/internal/config"
	"homznspace/backend/internal/email"
	"homznspace/backend/internal/models"
	"homznspace/backend/internal/services"
)

// TaskType defines the type of a background task.
const (
	TypeEmailDelivery = "email:deliver"
)

const (
	QueueNotifications = "notifications"
	QueueDefault       = "default"
)

const fallbackFromAddress = "noreply@homznspace.com"

// --- Task Client (Enqueuing tasks) ---

// RedisClientOpt builds asynq connection options from an existing Redis client.
func RedisClientOpt(rdb *redis.Client) asynq.RedisClientOpt {
	opts := rdb.Options()
	return asynq.RedisClientOpt{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}
}

func NewClient(rdb *redis.Client) *asynq.Client {
	return asynq.NewClient(RedisClientOpt(rdb))
}

// --- Task Server (Processing tasks) ---

// TaskProcessor renders and delivers notification emails.
type TaskProcessor struct {
	cfg                  *config.Config
	emailSender          email.Sender
	emailTemplateService services.IEmailTemplateService
	now                  func() time.Time
}

func NewTaskProcessor(cfg *config.Config, emailSender email.Sender, emailTemplateService services.IEmailTemplateService) *TaskProcessor {
	return &TaskProcessor{
		cfg:                  cfg,
		emailSender:          emailSender,
		emailTemplateService: emailTemplateService,
		now:                  time.Now,
	}
}

// SetupServer configures an Asynq server and the mux holding the task handlers.
// The caller runs it with srv.Run(mux).
func SetupServer(rdb *redis.Client, processor *TaskProcessor) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(
		RedisClientOpt(rdb),
		asynq.Config{
			Concurrency: 4,
			Queues: map[string]int{
				QueueNotifications: 6,
				QueueDefault:       3,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Error().Err(err).Str("task_type", task.Type()).Msg("asynq task failed")
			}),
			Logger: asynqLogger{},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeEmailDelivery, processor.HandleEmailDeliveryTask)
	return srv, mux
}

// --- Task Handlers ---

// ErrBadPayload marks a notification that can never be delivered as is.
var ErrBadPayload = errors.New("invalid email payload")

// HandleEmailDeliveryTask processes email delivery tasks.
func (p *TaskProcessor) HandleEmailDeliveryTask(ctx context.Context, t *asynq.Task) error {
	var payload models.EmailTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal email task payload: %v: %w", err, asynq.SkipRetry)
	}
	err := p.Deliver(ctx, payload)
	if errors.Is(err, ErrBadPayload) || errors.Is(err, services.ErrTemplateNotFound) {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return err
}

// Deliver renders payload with its template and hands it to the sender.
func (p *TaskProcessor) Deliver(ctx context.Context, payload models.EmailTaskPayload) error {
	if strings.TrimSpace(payload.To) == "" || payload.TemplateID == "" {
		return fmt.Errorf("%w: recipient and template are required", ErrBadPayload)
	}

	tmpl, err := p.emailTemplateService.GetTemplate(ctx, payload.TemplateID, payload.Locale)
	if err != nil {
		return err
	}

	data := map[string]interface{}{"app_name": p.cfg.AppName}
	for k, v := range payload.Data {
		data[k] = v
	}
	subject, err := render(tmpl.TemplateID+".subject", tmpl.Subject, data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	body, err := render(tmpl.TemplateID+".body", tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	fromAddress := p.cfg.SmtpFromAddress
	if fromAddress == "" {
		fromAddress = fallbackFromAddress
	}
	raw := BuildMessage(fromAddress, payload, subject, body, p.now())

	if err := p.emailSender.Send(ctx, []string{payload.To}, subject, raw); err != nil {
		return fmt.Errorf("email delivery to %s failed: %w", payload.To, err)
	}
	zerolog.Ctx(ctx).Info().Str("to", payload.To).Str("template", payload.TemplateID).Msg("email delivered")
	return nil
}

func render(name, source string, data map[string]interface{}) (string, error) {
	t, err := template.New(name).Option("missingkey=zero").Parse(source)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", name, err)
	}
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}
	return strings.ReplaceAll(sb.String(), "<no value>", ""), nil
}

// BuildMessage assembles a plain-text RFC 5322 message.
func BuildMessage(from string, payload models.EmailTaskPayload, subject, body string, date time.Time) []byte {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("To: %s\r\n", sanitizeHeader(payload.To)))
	sb.WriteString(fmt.Sprintf("From: %s\r\n", sanitizeHeader(from)))
	if payload.ReplyTo != "" {
		sb.WriteString(fmt.Sprintf("Reply-To: %s\r\n", sanitizeHeader(payload.ReplyTo)))
	}
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", sanitizeHeader(subject)))
	sb.WriteString(fmt.Sprintf("%s: %s\r\n", email.TemplateHeader, sanitizeHeader(payload.TemplateID)))
	sb.WriteString("Date: " + date.Format(time.RFC1123Z) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)
	sb.WriteString("\r\n")
	return []byte(sb.String())
}

// sanitizeHeader strips line breaks so user input cannot inject extra headers.
func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

// asynqLogger routes asynq's internal logging through zerolog.
type asynqLogger struct{}

func (asynqLogger) Debug(args ...interface{}) { log.Debug().Msg(fmt.Sprint(args...)) }
func (asynqLogger) Info(args ...interface{})  { log.Info().Msg(fmt.Sprint(args...)) }
func (asynqLogger) Warn(args ...interface{})  { log.Warn().Msg(fmt.Sprint(args...)) }
func (asynqLogger) Error(args ...interface{}) { log.Error().Msg(fmt.Sprint(args...)) }
func (asynqLogger) Fatal(args ...interface{}) { log.Fatal().Msg(fmt.Sprint(args...)) }
