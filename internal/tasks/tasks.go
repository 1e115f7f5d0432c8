package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"text/template"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/SIYAM1809/Real-Estate-Management-System/internal/config"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/email"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/services"
)

// TaskType defines the type of a background task.
const (
	TypeEmailDelivery = "email:deliver"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
)

// --- Task Client (Enqueuing tasks) ---

func redisOpt(rdb *redis.Client) asynq.RedisClientOpt {
	opts := rdb.Options()
	return asynq.RedisClientOpt{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}
}

func NewClient(rdb *redis.Client) *asynq.Client {
	return asynq.NewClient(redisOpt(rdb))
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	cfg                  *config.Config
	emailSender          email.Sender
	emailTemplateService services.IEmailTemplateService
}

func NewTaskProcessor(cfg *config.Config, emailSender email.Sender, emailTemplateService services.IEmailTemplateService) *TaskProcessor {
	return &TaskProcessor{
		cfg:                  cfg,
		emailSender:          emailSender,
		emailTemplateService: emailTemplateService,
	}
}

// SetupServer configures an Asynq server and the mux with every task handler
// registered. The caller runs it with srv.Run(mux) or srv.Start(mux).
func SetupServer(rdb *redis.Client, processor *TaskProcessor) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(
		redisOpt(rdb),
		asynq.Config{
			Queues: map[string]int{
				QueueCritical: 6,
				QueueDefault:  3,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("ERROR: task %s failed: %v (payload: %s)", task.Type(), err, string(task.Payload()))
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeEmailDelivery, processor.HandleEmailDeliveryTask)
	log.Println("Registered background task handlers.")

	return srv, mux
}

// --- Task Handlers ---

// EmailTaskPayload is the payload of TypeEmailDelivery tasks.
type EmailTaskPayload struct {
	To         string                 `json:"to"`
	TemplateID string                 `json:"template_id"`
	Locale     string                 `json:"locale,omitempty"` // Optional locale
	InquiryID  string                 `json:"inquiry_id,omitempty"`
	Data       map[string]interface{} `json:"data"`
}

// NewEmailDeliveryTask builds a TypeEmailDelivery task.
func NewEmailDeliveryTask(payload EmailTaskPayload) (*asynq.Task, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal email task payload: %w", err)
	}
	return asynq.NewTask(TypeEmailDelivery, raw), nil
}

// HandleEmailDeliveryTask renders the template named in the payload and sends it.
// Bad payloads and missing or broken templates are not retried.
func (p *TaskProcessor) HandleEmailDeliveryTask(ctx context.Context, t *asynq.Task) error {
	var payload EmailTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal email task payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.To == "" {
		return fmt.Errorf("email task without recipient: %w", asynq.SkipRetry)
	}

	locale := payload.Locale
	if locale == "" {
		locale = services.DefaultLocale
	}

	tmpl, err := p.emailTemplateService.GetTemplate(ctx, payload.TemplateID, locale)
	if err != nil {
		log.Printf("ERROR: getting email template %s/%s: %v", payload.TemplateID, locale, err)
		return fmt.Errorf("email template not found: %w", asynq.SkipRetry)
	}

	subject, err := render(payload.TemplateID+".subject", tmpl.Subject, payload.Data)
	if err != nil {
		return fmt.Errorf("render subject: %v: %w", err, asynq.SkipRetry)
	}
	body, err := render(payload.TemplateID+".body", tmpl.Body, payload.Data)
	if err != nil {
		return fmt.Errorf("render body: %v: %w", err, asynq.SkipRetry)
	}
	subject = strings.ReplaceAll(strings.ReplaceAll(subject, "\r", ""), "\n", " ")

	fromAddress := p.cfg.SmtpFromAddress
	if fromAddress == "" {
		fromAddress = "noreply@example.com"
		log.Printf("WARN: SmtpFromAddress not configured, using fallback %s for email to %s", fromAddress, payload.To)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("To: %s\r\n", payload.To))
	sb.WriteString(fmt.Sprintf("From: %s\r\n", fromAddress))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	sb.WriteString(fmt.Sprintf("%s: %s\r\n", email.TemplateHeader, payload.TemplateID))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)
	sb.WriteString("\r\n")

	if err := p.emailSender.Send(ctx, []string{payload.To}, subject, []byte(sb.String())); err != nil {
		log.Printf("ERROR: email delivery failed for inquiry %s, will retry: %v", payload.InquiryID, err)
		return err
	}

	log.Printf("Email task processed: To=%s, Template=%s, Inquiry=%s", payload.To, payload.TemplateID, payload.InquiryID)
	return nil
}

func render(name, text string, data map[string]interface{}) (string, error) {
	t, err := template.New(name).Parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
