// Package events publishes complaint lifecycle notifications.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-complaint-api/internal/observability"
)

// Lifecycle event types.
const (
	ComplaintCreated  = "complaint.created"
	ComplaintUpdated  = "complaint.updated"
	ComplaintResolved = "complaint.resolved"
	ComplaintDeleted  = "complaint.deleted"
	ResponseCreated   = "response.created"
)

// Event is the JSON payload published for every lifecycle change.
type Event struct {
	Type          string                 `json:"type"`
	OccurredAt    time.Time              `json:"occurred_at"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	ActorID       uint                   `json:"actor_id"`
	ActorRole     string                 `json:"actor_role"`
	ComplaintID   uint                   `json:"complaint_id"`
	ResponseID    *uint                  `json:"response_id,omitempty"`
	Data          map[string]interface{} `json:"data,omitempty"`
}

// Publisher delivers lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type natsConn interface {
	PublishMsg(msg *nats.Msg) error
}

type natsPublisher struct {
	conn    natsConn
	subject string
	logger  zerolog.Logger
}

// NewNATSPublisher publishes events to "<subject>.<event type>".
func NewNATSPublisher(conn *nats.Conn, subject string, logger zerolog.Logger) Publisher {
	if conn == nil {
		return NewNopPublisher()
	}
	return newNATSPublisher(conn, subject, logger)
}

func newNATSPublisher(conn natsConn, subject string, logger zerolog.Logger) *natsPublisher {
	subject = strings.Trim(strings.TrimSpace(subject), ".")
	if subject == "" {
		subject = "complaints"
	}
	return &natsPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "event_publisher").Logger(),
	}
}

func (p *natsPublisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if event.Type == "" {
		return fmt.Errorf("event type is required")
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if event.CorrelationID == "" {
		event.CorrelationID = observability.CorrelationID(ctx)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	msg := nats.NewMsg(p.subject + "." + event.Type)
	msg.Data = payload
	if event.CorrelationID != "" {
		msg.Header.Set(observability.HeaderCorrelationID, event.CorrelationID)
	}
	subject := msg.Subject
	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	p.logger.Debug().Str("subject", subject).Uint("complaint_id", event.ComplaintID).Msg("event published")
	return nil
}

type nopPublisher struct{}

// NewNopPublisher returns a publisher that drops every event.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, Event) error {
	return nil
}

// Connect dials the NATS server at url.
func Connect(url, name string) (*nats.Conn, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("nats url must not be empty")
	}
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return conn, nil
}
