package store

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Clark-Hu/parks-catalog/internal/store"

type queryStartKey struct{}

type queryStart struct {
	at   time.Time
	span trace.Span
	sql  string
}

// queryTracer opens a client span per statement and warns about slow queries.
// It implements pgx.QueryTracer.
type queryTracer struct {
	tracer    trace.Tracer
	threshold time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

func newQueryTracer(threshold time.Duration, logger *slog.Logger) *queryTracer {
	return &queryTracer{
		tracer:    otel.Tracer(tracerName),
		threshold: threshold,
		logger:    logger,
		now:       time.Now,
	}
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	op := operation(data.SQL)
	ctx, span := t.tracer.Start(ctx, "db."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", op),
			attribute.String("db.statement", data.SQL),
		),
	)
	return context.WithValue(ctx, queryStartKey{}, queryStart{at: t.now(), span: span, sql: data.SQL})
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok {
		return
	}
	if data.Err != nil {
		start.span.RecordError(data.Err)
		start.span.SetStatus(codes.Error, data.Err.Error())
	}
	start.span.SetAttributes(attribute.Int64("db.rows_affected", data.CommandTag.RowsAffected()))
	start.span.End()

	if t.threshold <= 0 || t.logger == nil {
		return
	}
	if elapsed := t.now().Sub(start.at); elapsed >= t.threshold {
		attrs := []any{
			slog.String("statement", compact(start.sql)),
			slog.Duration("duration", elapsed),
		}
		if data.Err != nil {
			attrs = append(attrs, slog.String("error", data.Err.Error()))
		}
		t.logger.WarnContext(ctx, "slow query detected", attrs...)
	}
}

// operation returns the leading SQL keyword, upper-cased.
func operation(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "QUERY"
	}
	return strings.ToUpper(fields[0])
}

func compact(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}
