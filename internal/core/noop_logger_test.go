package core

import (
	"context"
	"testing"
)

func TestNoopImplementations(_ *testing.T) {
	ctx := context.Background()
	logger := noopLogger{}
	logger.Debug("debug", "key", "value")
	logger.Info("info", "key", "value")
	logger.Warn("warn", "key", "value")
	logger.Error("error", "key", "value")

	noopMetrics{}.Observe(ctx, "op", true, 0)
	_, span := noopTracer{}.Start(ctx, "op")
	span.End(nil)
	noopAudit{}.Record(ctx, AuditEntry{})
}
