package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/invoiceflow/backend/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls query spans
type DBTracingConfig struct {
	Enabled bool
	// LogFullSQL keeps bound variables in span statements. Invoices carry
	// client addresses, so leave it off outside development.
	LogFullSQL      bool
	SlowQueryThresh time.Duration
	DBSystem        string
}

// DefaultDBTracingConfig traces nothing until enabled and flags queries over 200ms
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{SlowQueryThresh: defaultSlowQueryThreshold, DBSystem: "postgresql"}
}

// DBTracingConfigFromTelemetry derives query tracing from the app config.
// Tracing needs both the global and the db switch.
func DBTracingConfigFromTelemetry(cfg config.TelemetryConfig, driver string) DBTracingConfig {
	out := DefaultDBTracingConfig()
	out.Enabled = cfg.Enabled && cfg.DBTraceEnabled
	out.LogFullSQL = cfg.DBLogFullSQL
	if cfg.DBSlowQueryThresh > 0 {
		out.SlowQueryThresh = cfg.DBSlowQueryThresh
	}
	if driver == config.DriverSQLite {
		out.DBSystem = "sqlite"
	}
	return out
}

// DBTracingPlugin installs otelgorm and decorates its spans with row
// counts, table names and slow-query events
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a DBTracingPlugin
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = defaultSlowQueryThreshold
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

// Register wires the plugin into db; disabled plugins register nothing
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	err := db.Use(otelgorm.NewPlugin(opts...))
	if err == nil {
		err = registerAround(db, "otel_timing", markQueryStart, p.decorate)
	}
	if err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.String("db_system", p.config.DBSystem),
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh))
	return nil
}

func (p *DBTracingPlugin) decorate(tx *gorm.DB, _ string) {
	if tx.Statement.Context == nil {
		return
	}
	span := trace.SpanFromContext(tx.Statement.Context)
	if !span.IsRecording() {
		return
	}

	stmt := tx.Statement
	if stmt.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", stmt.RowsAffected))
	}
	if stmt.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", stmt.Table))
	}
	// lookups of missing rows are reported as NOT_FOUND, not as failures
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		RecordError(span, tx.Error)
	}

	elapsed, ok := queryElapsed(stmt.Context)
	if !ok || elapsed <= p.config.SlowQueryThresh {
		return
	}
	ms := elapsed.Milliseconds()
	span.SetAttributes(attribute.Bool("db.slow_query", true), attribute.Int64("db.query_duration_ms", ms))
	span.AddEvent("slow_query_warning", trace.WithAttributes(
		attribute.Int64("duration_ms", ms),
		attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds())))
}

type queryStartKey struct{}

// markQueryStart stamps the statement context; queryElapsed reads it back
func markQueryStart(tx *gorm.DB) {
	ctx := tx.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tx.Statement.Context = context.WithValue(ctx, queryStartKey{}, time.Now())
}

func queryElapsed(ctx context.Context) (time.Duration, bool) {
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return 0, false
	}
	return time.Since(start), true
}
