package audit

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/Azure/go-amqp"

	"github.com/ClearPeaks/knime-audit/pkg/log"
)

// SenderOptions configures the broker connection.
type SenderOptions struct {
	// URL is the broker endpoint, e.g. amqps://broker:5671.
	URL string
	// Queue is the target queue name.
	Queue string
	// CACertFile, when set, pins the broker's CA.
	CACertFile string

	Logger log.Logger
}

// Sender delivers audit events to an AMQP 1.0 broker. Each Send dials a
// fresh connection and closes it after the delivery is settled; delivery is
// best-effort single-shot, and the caller owns retries.
type Sender struct {
	opts    SenderOptions
	tlsConf *tls.Config
	logger  log.Logger
}

// NewSender builds a Sender.
func NewSender(opts SenderOptions) (*Sender, error) {
	var tlsConf *tls.Config
	if opts.CACertFile != "" {
		pem, err := os.ReadFile(opts.CACertFile)
		if err != nil {
			return nil, fmt.Errorf("read CA cert: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", opts.CACertFile)
		}
		tlsConf = &tls.Config{RootCAs: pool}
	}
	return &Sender{opts: opts, tlsConf: tlsConf, logger: opts.Logger}, nil
}

// Send delivers one event and waits for the broker to settle it.
func (s *Sender) Send(ctx context.Context, event Event) error {
	s.logger.Info("sending audit event", log.Str("job_id", event.JobID), log.Str("queue", s.opts.Queue))

	conn, err := amqp.Dial(ctx, s.opts.URL, &amqp.ConnOptions{TLSConfig: s.tlsConf})
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer conn.Close()

	session, err := conn.NewSession(ctx, nil)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	sender, err := session.NewSender(ctx, s.opts.Queue, nil)
	if err != nil {
		return fmt.Errorf("open sender: %w", err)
	}
	defer sender.Close(ctx)

	if err := sender.Send(ctx, amqp.NewMessage([]byte(event.XML())), nil); err != nil {
		return fmt.Errorf("send audit event for %s: %w", event.JobID, err)
	}
	return nil
}
