// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"sync"
	"time"

	"github.com/artisanbridge/artisanbridge/internal/app/store/audit"
	"github.com/artisanbridge/artisanbridge/internal/app/system/auditlog"
	"github.com/artisanbridge/artisanbridge/internal/app/system/ratelimit"
	"github.com/artisanbridge/artisanbridge/internal/app/system/timeouts"
	"github.com/artisanbridge/artisanbridge/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// services are built once in Startup and shared with BuildHandler and
// Shutdown.
type services struct {
	audit      *auditlog.Logger
	reconciler *workers.CapacityReconciler
	writes     *ratelimit.Limiter // nil when write limiting is off
}

var (
	svcMu sync.Mutex
	svc   *services
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})
	cur := timeouts.Current()
	logger.Info("timeouts configured",
		zap.Duration("short", cur.Short),
		zap.Duration("medium", cur.Medium),
		zap.Duration("long", cur.Long))

	s := &services{audit: newAuditLogger(appCfg, deps, logger)}
	s.reconciler = workers.NewCapacityReconciler(deps.MongoDatabase, s.audit, logger, appCfg.CapacityReconcileInterval)
	s.reconciler.Start()
	if appCfg.WriteRateLimit > 0 {
		s.writes = ratelimit.New(appCfg.WriteRateLimit, time.Minute)
	}

	svcMu.Lock()
	svc = s
	svcMu.Unlock()
	return nil
}

func newAuditLogger(appCfg AppConfig, deps DBDeps, logger *zap.Logger) *auditlog.Logger {
	return auditlog.New(audit.New(deps.MongoDatabase), logger, auditlog.Config{
		Help:     appCfg.AuditLogHelp,
		Capacity: appCfg.AuditLogCapacity,
	})
}

// current returns the services built by Startup, building the audit logger
// on demand when Startup was skipped (tests).
func current(appCfg AppConfig, deps DBDeps, logger *zap.Logger) *services {
	svcMu.Lock()
	defer svcMu.Unlock()
	if svc == nil {
		svc = &services{audit: newAuditLogger(appCfg, deps, logger)}
	}
	return svc
}
