// Package events publishes rule-change notifications to NATS JetStream so
// other console instances and the notification pipeline can react.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// StreamName is the JetStream stream holding rule-change events
const StreamName = "SMARTNOTIFY"

// Event types published on rules.* subjects
const (
	TypeRuleCreated = "created"
	TypeRuleToggled = "toggled"
	TypeRuleDeleted = "deleted"
)

// Event describes one change to an alert rule
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	RuleID    string    `json:"rule_id"`
	ActorID   string    `json:"actor_id"`
	IsActive  *bool     `json:"is_active,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher publishes rule-change events. Publishing is fire-and-forget
// from the mutation path: a publish failure is logged, never propagated.
type Publisher struct {
	logger *zap.Logger
	js     nats.JetStreamContext
}

// NewPublisher creates a publisher and ensures the stream exists
func NewPublisher(logger *zap.Logger, js nats.JetStreamContext) (*Publisher, error) {
	_, err := js.StreamInfo(StreamName)
	if err != nil {
		if err != nats.ErrStreamNotFound {
			return nil, fmt.Errorf("failed to get stream info: %w", err)
		}
		_, err = js.AddStream(&nats.StreamConfig{
			Name:     StreamName,
			Subjects: []string{"rules.*"},
			Storage:  nats.FileStorage,
			MaxAge:   24 * time.Hour,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create stream: %w", err)
		}
	}

	return &Publisher{
		logger: logger.Named("events"),
		js:     js,
	}, nil
}

// RuleCreated publishes a creation event
func (p *Publisher) RuleCreated(ruleID, actorID string) {
	p.publish(Event{Type: TypeRuleCreated, RuleID: ruleID, ActorID: actorID})
}

// RuleToggled publishes a toggle event with the new active value
func (p *Publisher) RuleToggled(ruleID, actorID string, active bool) {
	p.publish(Event{Type: TypeRuleToggled, RuleID: ruleID, ActorID: actorID, IsActive: &active})
}

// RuleDeleted publishes a deletion event
func (p *Publisher) RuleDeleted(ruleID, actorID string) {
	p.publish(Event{Type: TypeRuleDeleted, RuleID: ruleID, ActorID: actorID})
}

func (p *Publisher) publish(event Event) {
	event.ID = uuid.New().String()
	event.Timestamp = time.Now()

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal rule event", zap.Error(err))
		return
	}

	if _, err := p.js.Publish("rules."+event.Type, data); err != nil {
		p.logger.Error("Failed to publish rule event",
			zap.String("type", event.Type),
			zap.String("rule_id", event.RuleID),
			zap.Error(err))
		return
	}

	p.logger.Debug("Rule event published",
		zap.String("type", event.Type),
		zap.String("rule_id", event.RuleID))
}
