package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/noah-isme/gema-code-advisor/internal/observability"
	"github.com/noah-isme/gema-code-advisor/internal/review"
)

// SecurityEventPublisher fans security events out to other consumers.
type SecurityEventPublisher interface {
	Publish(ctx context.Context, event review.SecurityEvent) error
}

// SecurityEventMessage is the message body published for each security event.
type SecurityEventMessage struct {
	UserID          string    `json:"user_id"`
	EventType       string    `json:"event_type"`
	CodeSnippet     string    `json:"code_snippet"`
	MatchedPatterns []string  `json:"detected_patterns"`
	DetectedAt      time.Time `json:"detected_at"`
}

type natsSecurityPublisher struct {
	conn    *nats.Conn
	subject string
	now     func() time.Time
}

// NewNATSSecurityPublisher publishes security events to a NATS subject.
// A nil connection or empty subject yields a nil publisher.
func NewNATSSecurityPublisher(conn *nats.Conn, subject string) SecurityEventPublisher {
	if conn == nil || subject == "" {
		return nil
	}
	return &natsSecurityPublisher{conn: conn, subject: subject, now: time.Now}
}

func (p *natsSecurityPublisher) Publish(_ context.Context, event review.SecurityEvent) error {
	payload, err := json.Marshal(SecurityEventMessage{
		UserID:          event.UserID,
		EventType:       event.EventType,
		CodeSnippet:     event.CodeSnippet,
		MatchedPatterns: event.MatchedPatterns,
		DetectedAt:      p.now().UTC(),
	})
	if err != nil {
		return err
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		observability.SecurityEventsPublished().WithLabelValues("error").Inc()
		return err
	}

	observability.SecurityEventsPublished().WithLabelValues("ok").Inc()
	return nil
}
