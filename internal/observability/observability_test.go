package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/geocoder89/blogspace/internal/actorctx"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestClassifyDBErr(t *testing.T) {
	assert.Equal(t, "unique_violation", ClassifyDBErr(&pgconn.PgError{Code: "23505"}))
	assert.Equal(t, "pg_42P01", ClassifyDBErr(&pgconn.PgError{Code: "42P01"}))
	assert.Equal(t, "timeout", ClassifyDBErr(context.DeadlineExceeded))
	assert.Equal(t, "connection", ClassifyDBErr(errors.New("connection refused")))
	assert.Equal(t, "unknown", ClassifyDBErr(errors.New("boom")))
}

func TestObserveDB_CountsErrors(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	err := p.ObserveDB("posts.get", func() error { return &pgconn.PgError{Code: "23505"} })
	require.Error(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("posts.get", "unique_violation")))
	assert.NoError(t, p.ObserveDB("posts.get", func() error { return nil }))
}

func TestLogger_AddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod")

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	log.InfoContext(ctx, "hello")
	span.End()

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, span.SpanContext().TraceID().String(), rec["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), rec["span_id"])
}

func TestLogger_AddsCallerID(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod")

	ctx := actorctx.WithUserID(context.Background(), "acct-123")
	log.InfoContext(ctx, "hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "acct-123", rec["user_id"])
	assert.NotContains(t, rec, "trace_id")

	buf.Reset()
	log.With("component", "test").InfoContext(ctx, "again")
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "acct-123", rec["user_id"])
	assert.Equal(t, "test", rec["component"])
}

func TestLogger_DebugOnlyInDev(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "prod").Debug("hidden")
	assert.Zero(t, buf.Len())

	newLogger(&buf, "dev").Debug("shown")
	assert.NotZero(t, buf.Len())
}
