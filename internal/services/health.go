package services

import (
	"context"
	"runtime"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// HealthCheck pings one dependency.
type HealthCheck func(ctx context.Context) error

type HealthService struct {
	logger   *logrus.Logger
	critical map[string]HealthCheck
	optional map[string]HealthCheck
	pool     *pgxpool.Pool

	healthCheckStatus   *prometheus.GaugeVec
	lastHealthCheck     *prometheus.GaugeVec
	systemMetrics       *prometheus.GaugeVec
	dbConnectionMetrics *prometheus.GaugeVec
}

type HealthStatus struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Services    map[string]string `json:"services"`
	Critical    []string          `json:"critical_failures,omitempty"`
	NonCritical []string          `json:"non_critical_failures,omitempty"`
}

func NewHealthService(logger *logrus.Logger, registerer prometheus.Registerer) *HealthService {
	hs := &HealthService{
		logger:   logger,
		critical: make(map[string]HealthCheck),
		optional: make(map[string]HealthCheck),
	}

	hs.healthCheckStatus = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "health_check_status",
		Help: "Health check status (1 = healthy, 0 = unhealthy)",
	}, []string{"service"})

	hs.lastHealthCheck = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "health_check_timestamp",
		Help: "Timestamp of last health check",
	}, []string{"service"})

	hs.systemMetrics = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "system_info",
		Help: "System information metrics",
	}, []string{"metric_type"})

	hs.dbConnectionMetrics = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "database_connection_pool_usage",
		Help: "Database connection pool usage",
	}, []string{"database", "state"})

	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	hs.healthCheckStatus = registerCollector(registerer, hs.healthCheckStatus, logger)
	hs.lastHealthCheck = registerCollector(registerer, hs.lastHealthCheck, logger)
	hs.systemMetrics = registerCollector(registerer, hs.systemMetrics, logger)
	hs.dbConnectionMetrics = registerCollector(registerer, hs.dbConnectionMetrics, logger)

	return hs
}

// WithPostgres adds the pool as a critical dependency and as the source of
// connection pool metrics.
func (s *HealthService) WithPostgres(pool *pgxpool.Pool) *HealthService {
	s.pool = pool
	s.critical["postgresql"] = pool.Ping
	return s
}

func (s *HealthService) WithRedis(client *redis.Client) *HealthService {
	s.critical["redis"] = func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
	return s
}

// AddCheck registers an extra dependency. Failing optional checks degrade
// the status instead of failing it.
func (s *HealthService) AddCheck(name string, check HealthCheck, critical bool) {
	if critical {
		s.critical[name] = check
	} else {
		s.optional[name] = check
	}
}

func (s *HealthService) CheckHealth(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Timestamp: time.Now(),
		Services:  make(map[string]string),
	}

	allCriticalHealthy := true
	for name, check := range s.critical {
		if err := s.run(ctx, check); err != nil {
			status.Services[name] = "unhealthy"
			status.Critical = append(status.Critical, name)
			allCriticalHealthy = false
			s.logger.WithError(err).Errorf("Critical service %s is unhealthy", name)
			s.UpdateHealthMetrics(name, false)
		} else {
			status.Services[name] = "healthy"
			s.UpdateHealthMetrics(name, true)
		}
	}

	for name, check := range s.optional {
		if err := s.run(ctx, check); err != nil {
			status.Services[name] = "unhealthy"
			status.NonCritical = append(status.NonCritical, name)
			s.logger.WithError(err).Warnf("Non-critical service %s is unhealthy", name)
			s.UpdateHealthMetrics(name, false)
		} else {
			status.Services[name] = "healthy"
			s.UpdateHealthMetrics(name, true)
		}
	}

	switch {
	case !allCriticalHealthy:
		status.Status = "unhealthy"
	case len(status.NonCritical) > 0:
		status.Status = "degraded"
	default:
		status.Status = "healthy"
	}

	return status
}

func (s *HealthService) run(ctx context.Context, check HealthCheck) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return check(ctx)
}

// CollectMetrics samples runtime and pool statistics until ctx is done.
func (s *HealthService) CollectMetrics(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.collectSystemMetrics()
			s.collectDatabaseMetrics()
		}
	}
}

func (s *HealthService) collectSystemMetrics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	s.systemMetrics.WithLabelValues("memory_alloc_bytes").Set(float64(memStats.Alloc))
	s.systemMetrics.WithLabelValues("memory_sys_bytes").Set(float64(memStats.Sys))
	s.systemMetrics.WithLabelValues("goroutines_count").Set(float64(runtime.NumGoroutine()))
	s.systemMetrics.WithLabelValues("gc_runs_total").Set(float64(memStats.NumGC))
}

func (s *HealthService) collectDatabaseMetrics() {
	if s.pool == nil {
		return
	}
	stats := s.pool.Stat()

	s.dbConnectionMetrics.WithLabelValues("postgresql", "acquired_conns").Set(float64(stats.AcquiredConns()))
	s.dbConnectionMetrics.WithLabelValues("postgresql", "idle_conns").Set(float64(stats.IdleConns()))
	s.dbConnectionMetrics.WithLabelValues("postgresql", "max_conns").Set(float64(stats.MaxConns()))
	s.dbConnectionMetrics.WithLabelValues("postgresql", "total_conns").Set(float64(stats.TotalConns()))

	if stats.MaxConns() > 0 {
		usage := float64(stats.AcquiredConns()) / float64(stats.MaxConns()) * 100
		s.dbConnectionMetrics.WithLabelValues("postgresql", "usage_percent").Set(usage)
	}
}

func (s *HealthService) UpdateHealthMetrics(serviceName string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1
	}
	s.healthCheckStatus.WithLabelValues(serviceName).Set(value)
	s.lastHealthCheck.WithLabelValues(serviceName).Set(float64(time.Now().Unix()))
}
