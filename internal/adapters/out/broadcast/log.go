package broadcast

import (
	"context"

	"freight/internal/core/ports"

	"go.uber.org/zap"
)

// LogTransport writes messages to the log instead of a broker. It is the
// default for local runs.
type LogTransport struct {
	logger *zap.Logger
}

func NewLogTransport(logger *zap.Logger) *LogTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogTransport{logger: logger.Named("broadcast")}
}

func (t *LogTransport) Publish(_ context.Context, msg ports.BroadcastMessage) error {
	t.logger.Info("broadcast",
		zap.String("channel", msg.Channel),
		zap.String("event", string(msg.Event)),
		zap.Stringer("event_id", msg.EventID),
		zap.Int("recipients", len(msg.Recipients)),
		zap.ByteString("data", msg.Data))
	return nil
}

func (t *LogTransport) Close() error { return nil }
