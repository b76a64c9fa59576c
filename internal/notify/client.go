package notify

import (
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/coursecal/coursecal/internal/apperrors"
	"github.com/coursecal/coursecal/internal/logger"
)

const (
	// Stream
	CalendarEventsStream   = "CALENDAR_EVENTS"
	CalendarEventsWildcard = "events.calendar.*"

	// Subjects
	SubjectEventCreated      = "events.calendar.eventCreated"
	SubjectInvitationCreated = "events.calendar.invitationCreated"
)

type ClientConfig struct {
	URL           string
	MaxReconnect  int
	ReconnectWait time.Duration
	Timeout       time.Duration
}

type Client struct {
	conn *nats.Conn
	js   jetstream.JetStream
}

func NewClient(cfg *ClientConfig, log *logger.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnect),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.Timeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalServer, "failed to connect to NATS")
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, apperrors.Wrap(err, apperrors.CodeInternalServer, "failed to create JetStream context")
	}

	return &Client{conn: nc, js: js}, nil
}

func (c *Client) Close() error {
	if c.conn != nil {
		c.conn.Close()
	}
	return nil
}

func (c *Client) JetStream() jetstream.JetStream {
	return c.js
}

func (c *Client) IsConnected() bool {
	return c.conn != nil && c.conn.IsConnected()
}

// StreamConfig describes the calendar notification stream.
func StreamConfig() jetstream.StreamConfig {
	return jetstream.StreamConfig{
		Name:     CalendarEventsStream,
		Subjects: []string{CalendarEventsWildcard},
	}
}
