package services

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/arlenwu/teamforge/internal/config"
	"github.com/arlenwu/teamforge/internal/database"
)

type HealthService struct {
	config *config.Config
	logger *logrus.Logger
	db     *database.Database

	healthCheckStatus *prometheus.GaugeVec
	lastHealthCheck   *prometheus.GaugeVec
	systemMetrics     *prometheus.GaugeVec
	poolMetrics       *prometheus.GaugeVec
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Critical  []string          `json:"critical_failures,omitempty"`
	Degraded  []string          `json:"degraded,omitempty"`
}

func NewHealthService(cfg *config.Config, logger *logrus.Logger, db *database.Database) *HealthService {
	hs := &HealthService{
		config: cfg,
		logger: logger,
		db:     db,
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

	hs.poolMetrics = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "database_connection_pool_usage",
		Help: "Database connection pool state",
	}, []string{"state"})

	for _, collector := range []prometheus.Collector{
		hs.healthCheckStatus, hs.lastHealthCheck, hs.systemMetrics, hs.poolMetrics,
	} {
		if err := prometheus.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				logger.WithError(err).Warn("Failed to register health metric")
			}
		}
	}

	go hs.collectSystemMetrics()

	return hs
}

// CheckHealth pings every dependency. PostgreSQL failing makes the whole
// service unhealthy; Redis failing only degrades it, since sessions and
// rate limits fail open.
func (s *HealthService) CheckHealth() *HealthStatus {
	status := &HealthStatus{
		Timestamp: time.Now(),
		Services:  make(map[string]string),
	}

	healthy := true
	if err := s.checkPostgreSQL(); err != nil {
		status.Services["postgresql"] = "unhealthy"
		status.Critical = append(status.Critical, "postgresql")
		healthy = false
		s.logger.WithError(err).Error("PostgreSQL is unhealthy")
		s.recordCheck("postgresql", false)
	} else {
		status.Services["postgresql"] = "healthy"
		s.recordCheck("postgresql", true)
	}

	if err := s.checkRedis(); err != nil {
		status.Services["redis"] = "unhealthy"
		status.Degraded = append(status.Degraded, "redis")
		s.logger.WithError(err).Warn("Redis is unhealthy")
		s.recordCheck("redis", false)
	} else {
		status.Services["redis"] = "healthy"
		s.recordCheck("redis", true)
	}

	switch {
	case !healthy:
		status.Status = "unhealthy"
	case len(status.Degraded) > 0:
		status.Status = "degraded"
	default:
		status.Status = "healthy"
	}

	return status
}

// Ready reports whether the service can take traffic at all.
func (s *HealthService) Ready() bool {
	return s.checkPostgreSQL() == nil
}

func (s *HealthService) checkPostgreSQL() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.db.PG.Ping(ctx)
}

func (s *HealthService) checkRedis() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.db.Redis.Ping(ctx).Err()
}

func (s *HealthService) recordCheck(service string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	s.healthCheckStatus.WithLabelValues(service).Set(value)
	s.lastHealthCheck.WithLabelValues(service).SetToCurrentTime()
}

func (s *HealthService) collectSystemMetrics() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		s.systemMetrics.WithLabelValues("goroutines").Set(float64(runtime.NumGoroutine()))
		s.systemMetrics.WithLabelValues("heap_alloc_bytes").Set(float64(m.HeapAlloc))
		s.systemMetrics.WithLabelValues("heap_objects").Set(float64(m.HeapObjects))

		if s.db.PG != nil {
			stat := s.db.PG.Stat()
			s.poolMetrics.WithLabelValues("total").Set(float64(stat.TotalConns()))
			s.poolMetrics.WithLabelValues("idle").Set(float64(stat.IdleConns()))
			s.poolMetrics.WithLabelValues("acquired").Set(float64(stat.AcquiredConns()))
		}
	}
}
