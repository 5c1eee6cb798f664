// internal/app/bootstrap/routes.go
package bootstrap

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	errorsfeature "github.com/artisanbridge/artisanbridge/internal/app/features/errors"
	healthfeature "github.com/artisanbridge/artisanbridge/internal/app/features/health"
	helpfeature "github.com/artisanbridge/artisanbridge/internal/app/features/help"
	ngofeature "github.com/artisanbridge/artisanbridge/internal/app/features/ngo"
	userstore "github.com/artisanbridge/artisanbridge/internal/app/store/users"
	"github.com/artisanbridge/artisanbridge/internal/app/system/auth"
	"github.com/artisanbridge/artisanbridge/internal/app/system/helpflow"
	"github.com/artisanbridge/artisanbridge/internal/app/system/notify"
	"github.com/artisanbridge/artisanbridge/internal/app/system/ratelimit"
	"github.com/artisanbridge/artisanbridge/internal/app/system/uploads"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

// Upload directories under storage_local_path.
const (
	helpUploadDir  = "help-requests"
	proofUploadDir = "proofs"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. The router carries:
//   - /health: liveness of MongoDB and the event publisher
//   - /api/help: seller operations plus shared request details
//   - /api/ngo: verified-NGO operations
//   - the local file server for uploaded attachments and proofs
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	key, err := sessionKey(coreCfg, appCfg, logger)
	if err != nil {
		return nil, err
	}
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(key, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	// Fresh user data on every request: role changes and disabled accounts
	// take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))
	if appCfg.JWTSecret != "" {
		sessionMgr.EnableTokens(appCfg.JWTSecret, appCfg.JWTIssuer)
	}

	disk, err := uploads.NewDisk(appCfg.StorageLocalPath)
	if err != nil {
		logger.Error("upload storage init failed", zap.String("path", appCfg.StorageLocalPath), zap.Error(err))
		return nil, err
	}
	fileURL := "/" + strings.Trim(appCfg.StorageLocalURL, "/")
	attachments := uploads.New(disk, fileURL, helpUploadDir, logger)
	proofs := uploads.New(disk, fileURL, proofUploadDir, logger)

	s := current(appCfg, deps, logger)
	flow := helpflow.New(deps.MongoDatabase, logger, helpflow.Options{
		Strict:   appCfg.StrictTransactions,
		Audit:    s.audit,
		Notifier: notifier(appCfg, deps, logger),
	})

	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	// Loads the caller (bearer token or session cookie) into context.
	r.Use(sessionMgr.LoadSessionUser)

	r.NotFound(errorsfeature.NotFound)
	r.MethodNotAllowed(errorsfeature.MethodNotAllowed)

	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Redis, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Handle(fileURL+"/*", fileserver.Handler(fileURL, appCfg.StorageLocalPath))

	r.Route("/api", func(api chi.Router) {
		api.Use(ratelimit.Writes(s.writes))

		helpHandler := helpfeature.NewHandler(deps.MongoDatabase, flow, attachments, errLog, s.audit, logger)
		api.Mount("/help", helpfeature.Routes(helpHandler, sessionMgr))

		ngoHandler := ngofeature.NewHandler(deps.MongoDatabase, flow, proofs, errLog, s.audit, logger)
		api.Mount("/ngo", ngofeature.Routes(ngoHandler, sessionMgr))
	})

	return r, nil
}

// sessionKey returns the configured key, or in dev a random per-process key
// (sessions then do not survive a restart).
func sessionKey(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (string, error) {
	if appCfg.SessionKey != "" {
		return appCfg.SessionKey, nil
	}
	if coreCfg.Env == "prod" {
		return "", fmt.Errorf("session_key is required in prod")
	}
	raw := securecookie.GenerateRandomKey(32)
	if raw == nil {
		return "", fmt.Errorf("generate session key: no randomness available")
	}
	logger.Warn("session_key not set; using a random key for this process")
	return base64.RawStdEncoding.EncodeToString(raw), nil
}

func notifier(appCfg AppConfig, deps DBDeps, logger *zap.Logger) notify.Notifier {
	if deps.Redis == nil {
		return notify.Noop{}
	}
	return notify.NewRedisPublisher(deps.Redis, appCfg.RedisChannel, logger)
}
