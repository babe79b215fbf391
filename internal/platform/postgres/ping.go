// Package postgres checks that a provisioned database accepts connections.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5"
)

// DefaultPingTimeout bounds a single reachability check.
const DefaultPingTimeout = 10 * time.Second

// Pinger checks that a connection URI is reachable.
type Pinger interface {
	Ping(ctx context.Context, uri string) error
}

// PgxPinger connects with pgx and pings the server.
type PgxPinger struct {
	Timeout time.Duration
}

// NewPinger returns a pinger with the default timeout.
func NewPinger() *PgxPinger {
	return &PgxPinger{Timeout: DefaultPingTimeout}
}

// Ping opens one connection to uri, pings it and closes it.
func (p *PgxPinger) Ping(ctx context.Context, uri string) error {
	if uri == "" {
		return errors.New("database URI is empty")
	}
	cfg, err := pgx.ParseConfig(uri)
	if err != nil {
		return fmt.Errorf("invalid database URI %s: %w", Redact(uri), err)
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultPingTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", Redact(uri), err)
	}
	defer conn.Close(context.Background())

	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("ping %s failed: %w", Redact(uri), err)
	}
	return nil
}

// Redact hides the password in a connection URI for logging.
func Redact(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "<unparseable uri>"
	}
	return u.Redacted()
}
