package logger_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/warp/staffing-engine/pkg/logger"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestWithContext_EnrichesRecords(t *testing.T) {
	buf := capture(t)

	ctx := context.WithValue(context.Background(), logger.RequestIDKey, "req-42")
	ctx = context.WithValue(ctx, logger.OrgKey, "org-1")

	logger.Error(ctx, "stored status is corrupt", "value", "bogus")

	out := buf.String()
	assert.Contains(t, out, "request_id=req-42")
	assert.Contains(t, out, "org_id=org-1")
	assert.Contains(t, out, "stored status is corrupt")
}

func TestWithContext_BareContext(t *testing.T) {
	buf := capture(t)

	logger.Info(context.Background(), "hello")

	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.NotContains(t, out, "request_id")
	assert.NotContains(t, out, "org_id")
}
