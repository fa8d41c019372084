package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultSlowQueryThreshold = 200 * time.Millisecond

// DBMetricsConfig controls query and pool metrics
type DBMetricsConfig struct {
	Enabled            bool
	SlowQueryThreshold time.Duration
}

// DefaultDBMetricsConfig enables metrics with a 200ms slow-query threshold
func DefaultDBMetricsConfig() DBMetricsConfig {
	return DBMetricsConfig{Enabled: true, SlowQueryThreshold: defaultSlowQueryThreshold}
}

// DBMetrics counts and times GORM queries and observes the sql.DB pool
type DBMetrics struct {
	queries      *Counter
	latency      *Histogram
	slow         *Counter
	threshold    time.Duration
	registration metric.Registration
	logger       *zap.Logger
}

// NewDBMetrics registers the query instruments on meter. With a non-nil
// pool it also registers gauges read from pool.Stats at collection time.
func NewDBMetrics(meter metric.Meter, pool *sql.DB, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &DBMetrics{threshold: cfg.SlowQueryThreshold, logger: logger}
	if m.threshold <= 0 {
		m.threshold = defaultSlowQueryThreshold
	}

	var errQueries, errLatency, errSlow error
	m.queries, errQueries = NewCounter(meter, "db_query_total", "Database queries by operation", "{query}")
	m.latency, errLatency = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	m.slow, errSlow = NewCounter(meter, "db_slow_query_total", "Database queries slower than the threshold, by table", "{query}")
	if err := errors.Join(errQueries, errLatency, errSlow); err != nil {
		return nil, err
	}

	if pool != nil {
		reg, err := observePool(meter, pool)
		if err != nil {
			return nil, err
		}
		m.registration = reg
	}
	return m, nil
}

func observePool(meter metric.Meter, pool *sql.DB) (metric.Registration, error) {
	conns, errConns := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Pool connections by state"), metric.WithUnit("{connection}"))
	maxConns, errMax := meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Maximum open connections"), metric.WithUnit("{connection}"))
	if err := errors.Join(errConns, errMax); err != nil {
		return nil, err
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := pool.Stats()
		o.ObserveInt64(maxConns, int64(s.MaxOpenConnections))
		for state, n := range map[string]int{"idle": s.Idle, "in_use": s.InUse, "open": s.OpenConnections} {
			o.ObserveInt64(conns, int64(n), metric.WithAttributes(AttrDBState.String(state)))
		}
		return nil
	}, conns, maxConns)
}

// Stop unregisters the pool callback. Later calls do nothing.
func (m *DBMetrics) Stop() {
	if m == nil || m.registration == nil {
		return
	}
	if err := m.registration.Unregister(); err != nil {
		m.logger.Debug("Failed to unregister pool metrics", zap.Error(err))
	}
	m.registration = nil
}

// RecordQuery records one query. Queries over the threshold are also
// counted per table.
func (m *DBMetrics) RecordQuery(ctx context.Context, operation, table string, d time.Duration) {
	op := AttrDBOperation.String(orDefault(strings.ToUpper(operation), "UNKNOWN"))
	m.queries.Inc(ctx, op)
	m.latency.RecordDuration(ctx, d, op)
	if d > m.threshold {
		m.slow.Inc(ctx, AttrDBTable.String(orDefault(table, "unknown")))
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// DBMetricsPlugin feeds DBMetrics from GORM callbacks
type DBMetricsPlugin struct {
	metrics *DBMetrics
}

// NewDBMetricsPlugin wraps metrics as a GORM plugin
func NewDBMetricsPlugin(metrics *DBMetrics) *DBMetricsPlugin {
	return &DBMetricsPlugin{metrics: metrics}
}

// Name implements gorm.Plugin
func (p *DBMetricsPlugin) Name() string {
	return "db_metrics"
}

// Initialize implements gorm.Plugin
func (p *DBMetricsPlugin) Initialize(db *gorm.DB) error {
	return registerAround(db, p.Name(), markQueryStart, func(tx *gorm.DB, operation string) {
		ctx := tx.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		elapsed, _ := queryElapsed(ctx)
		p.metrics.RecordQuery(ctx, operation, tx.Statement.Table, elapsed)
	})
}

// RegisterDBMetrics installs query and pool metrics on db. It returns nil
// metrics and no error when cfg or the provider is disabled.
func RegisterDBMetrics(db *gorm.DB, provider *MeterProvider, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled || !provider.IsEnabled() {
		logger.Debug("Database metrics disabled, skipping registration")
		return nil, nil
	}

	pool, err := db.DB()
	if err != nil {
		return nil, err
	}
	metrics, err := NewDBMetrics(provider.Meter("db.client"), pool, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := db.Use(NewDBMetricsPlugin(metrics)); err != nil {
		metrics.Stop()
		return nil, err
	}
	logger.Info("Database metrics registered", zap.Duration("slow_query_threshold", metrics.threshold))
	return metrics, nil
}
