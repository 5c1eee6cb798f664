// internal/app/features/help/handler.go
package help

import (
	errorsfeature "github.com/artisanbridge/artisanbridge/internal/app/features/errors"
	"github.com/artisanbridge/artisanbridge/internal/app/system/auditlog"
	"github.com/artisanbridge/artisanbridge/internal/app/system/helpflow"
	"github.com/artisanbridge/artisanbridge/internal/app/system/uploads"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the seller side of help requests: create, list own,
// view, edit and delete while pending.
type Handler struct {
	DB       *mongo.Database
	Flow     *helpflow.Service
	Uploads  *uploads.Uploader
	Log      *zap.Logger
	ErrLog   *errorsfeature.ErrorLogger
	AuditLog *auditlog.Logger
}

// NewHandler constructs a help Handler.
func NewHandler(db *mongo.Database, flow *helpflow.Service, up *uploads.Uploader, errLog *errorsfeature.ErrorLogger, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Flow:     flow,
		Uploads:  up,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: auditLog,
	}
}
