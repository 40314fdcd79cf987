package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Event types emitted by the drive engine.
const (
	EventRoundDeclared  = "round.declared"
	EventOffersIssued   = "offers.issued"
	EventOfferResponded = "offer.responded"
)

// DriveEvent is the notification payload fanned out to NATS and the Redis
// stream after a drive state change.
type DriveEvent struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	DriveID    uint                   `json:"drive_id"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// DriveEventPublisher fans drive events out to downstream consumers. Both
// sinks are best-effort: a publish failure is logged, never surfaced to the
// caller, because the state change has already been committed.
type DriveEventPublisher struct {
	nats    *nats.Conn
	redis   *redis.Client
	subject string
	stream  string
	logger  zerolog.Logger
}

// NewDriveEventPublisher builds a publisher rooted at the given channel base,
// e.g. "placement:drives" yields subject "placement.drives.events" and
// stream "placement:drives:events". Either sink may be nil.
func NewDriveEventPublisher(natsConn *nats.Conn, redisClient *redis.Client, channelBase string, logger zerolog.Logger) *DriveEventPublisher {
	return &DriveEventPublisher{
		nats:    natsConn,
		redis:   redisClient,
		subject: strings.ReplaceAll(channelBase, ":", ".") + ".events",
		stream:  channelBase + ":events",
		logger:  logger.With().Str("component", "drive_events").Logger(),
	}
}

// Publish emits the event to NATS and appends it to the Redis stream.
func (p *DriveEventPublisher) Publish(ctx context.Context, eventType string, driveID uint, payload map[string]interface{}) {
	event := DriveEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		DriveID:    driveID,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to encode drive event")
		return
	}

	if p.nats != nil {
		if err := p.nats.Publish(p.subject, body); err != nil {
			p.logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to publish drive event to nats")
		}
	}

	if p.redis != nil {
		err := p.redis.XAdd(ctx, &redis.XAddArgs{
			Stream: p.stream,
			MaxLen: 1024,
			Approx: true,
			Values: map[string]interface{}{"event": string(body)},
		}).Err()
		if err != nil {
			p.logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to append drive event to stream")
		}
	}
}
