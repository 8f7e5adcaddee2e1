package jetstream

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/feral-file/ff-token-sweeper/internal/adapter"
	"github.com/feral-file/ff-token-sweeper/internal/domain"
	"github.com/feral-file/ff-token-sweeper/internal/logger"
	"github.com/feral-file/ff-token-sweeper/internal/messaging"
	"github.com/feral-file/ff-token-sweeper/internal/metrics"
)

const (
	DEFAULT_SUBJECT_PREFIX = "sweep.batches"
	// DEFAULT_MAX_AGE bounds how long an unconsumed batch stays in the stream
	DEFAULT_MAX_AGE = 24 * time.Hour
)

// Config holds the configuration for NATS JetStream connection
type Config struct {
	URL            string
	StreamName     string
	SubjectPrefix  string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
	// SigningSecret enables HMAC signing of published batches when set
	SigningSecret string
}

type publisher struct {
	nc            adapter.NatsConn
	js            adapter.JetStream
	subjectPrefix string
	signingSecret string
	json          adapter.JSON
	clock         adapter.Clock
}

// NewPublisher connects to NATS and makes sure the batch stream exists
func NewPublisher(ctx context.Context, cfg Config, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON, clock adapter.Clock) (messaging.Publisher, error) {
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = DEFAULT_SUBJECT_PREFIX
	}

	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, js, err := natsJS.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	err = js.EnsureStream(ctx, jetstream.StreamConfig{
		Name:      cfg.StreamName,
		Subjects:  []string{cfg.SubjectPrefix + ".>"},
		Retention: jetstream.WorkQueuePolicy,
		MaxAge:    DEFAULT_MAX_AGE,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to ensure stream %s: %w", cfg.StreamName, err)
	}

	return &publisher{
		nc:            nc,
		js:            js,
		subjectPrefix: cfg.SubjectPrefix,
		signingSecret: cfg.SigningSecret,
		json:          jsonAdapter,
		clock:         clock,
	}, nil
}

// PublishBatch publishes a transfer batch to NATS JetStream.
// The batch ID is the message ID so a retried publish is deduplicated by the stream.
func (p *publisher) PublishBatch(ctx context.Context, batch *domain.TransferBatch) error {
	if batch == nil || len(batch.Calls) == 0 {
		return domain.ErrNoValidTransfers
	}

	data, err := p.json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to marshal batch: %w", err)
	}

	msg := nats.NewMsg(p.buildSubject(batch.Chain))
	msg.Data = data
	if p.signingSecret != "" {
		timestamp := p.clock.Now().Unix()
		msg.Header.Set(messaging.TIMESTAMP_HEADER, strconv.FormatInt(timestamp, 10))
		msg.Header.Set(messaging.SIGNATURE_HEADER, messaging.SignPayload(p.signingSecret, batch.ID, data, timestamp))
	}

	logger.DebugCtx(ctx, "Publishing transfer batch",
		zap.String("batch_id", batch.ID),
		zap.String("subject", msg.Subject),
		zap.Int("calls", len(batch.Calls)),
		zap.Bool("signed", p.signingSecret != ""))

	_, err = p.js.PublishMsg(ctx, msg, jetstream.WithMsgID(batch.ID))
	if err != nil {
		metrics.BatchesPublished.WithLabelValues(string(batch.Chain), "error").Inc()
		return fmt.Errorf("failed to publish batch: %w", err)
	}

	metrics.BatchesPublished.WithLabelValues(string(batch.Chain), "published").Inc()
	return nil
}

// buildSubject constructs the NATS subject for a chain
func (p *publisher) buildSubject(chain domain.Chain) string {
	// Format: {prefix}.{namespace}.{reference}
	// e.g., sweep.batches.eip155.1
	return fmt.Sprintf("%s.%s.%s", p.subjectPrefix, strings.ToLower(chain.Namespace()), chain.Reference())
}

// Close closes the NATS connection
func (p *publisher) Close() {
	if p.nc == nil {
		return
	}

	p.nc.Close()
}
