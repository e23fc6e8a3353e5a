// Package sink provides eviction-sink implementations for the lessor
// library.
package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/arloliu/lessor/types"
)

// DefaultSubject is the default NATS subject disconnect events are
// published to.
const DefaultSubject = "lessor.disconnects"

// ErrConnectionRequired is returned when the NATS connection is nil.
var ErrConnectionRequired = errors.New("NATS connection is required")

// DisconnectEvent is the JSON payload published for each evicted
// connection.
type DisconnectEvent struct {
	// ConnectID identifies the connection whose lease expired.
	ConnectID string `json:"connectId"`

	// Timestamp is the wall-clock time the eviction was decided.
	Timestamp time.Time `json:"timestamp"`
}

// NATS publishes disconnect notifications to a NATS subject.
//
// Publishing is fire-and-forget core NATS: subscribers that need replay or
// at-least-once delivery should bind the subject to a JetStream stream on
// the consuming side.
type NATS struct {
	conn    *nats.Conn
	subject string
}

var _ types.EvictionSink = (*NATS)(nil)

// NewNATS creates a sink publishing disconnect events to subject.
//
// Parameters:
//   - conn: Established NATS connection
//   - subject: Subject to publish to (DefaultSubject when empty)
//
// Returns:
//   - *NATS: Initialized sink
//   - error: ErrConnectionRequired when conn is nil
//
// Example:
//
//	snk, err := sink.NewNATS(natsConn, sink.DefaultSubject)
//	if err != nil { /* handle */ }
//	mgr, err := lessor.NewManager(&cfg, src, snk)
func NewNATS(conn *nats.Conn, subject string) (*NATS, error) {
	if conn == nil {
		return nil, ErrConnectionRequired
	}
	if subject == "" {
		subject = DefaultSubject
	}

	return &NATS{conn: conn, subject: subject}, nil
}

// NotifyDisconnect publishes a DisconnectEvent for connectID.
//
// Returns:
//   - error: Marshal or publish error (nil on success)
func (s *NATS) NotifyDisconnect(_ context.Context, connectID string, timestamp time.Time) error {
	data, err := json.Marshal(DisconnectEvent{ConnectID: connectID, Timestamp: timestamp})
	if err != nil {
		return fmt.Errorf("failed to marshal disconnect event: %w", err)
	}

	if err := s.conn.Publish(s.subject, data); err != nil {
		return fmt.Errorf("failed to publish disconnect event: %w", err)
	}

	return nil
}

// Subject returns the subject disconnect events are published to.
func (s *NATS) Subject() string {
	return s.subject
}
