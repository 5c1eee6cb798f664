// internal/app/features/ngo/handler.go
package ngo

import (
	errorsfeature "github.com/artisanbridge/artisanbridge/internal/app/features/errors"
	ngostore "github.com/artisanbridge/artisanbridge/internal/app/store/ngos"
	"github.com/artisanbridge/artisanbridge/internal/app/system/auditlog"
	"github.com/artisanbridge/artisanbridge/internal/app/system/helpflow"
	"github.com/artisanbridge/artisanbridge/internal/app/system/uploads"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the NGO side of help requests: triage listing, details,
// assignment, status changes, fulfillment and the dashboard.
type Handler struct {
	DB       *mongo.Database
	NGOs     *ngostore.Store
	Flow     *helpflow.Service
	Proofs   *uploads.Uploader
	Log      *zap.Logger
	ErrLog   *errorsfeature.ErrorLogger
	AuditLog *auditlog.Logger
}

// NewHandler constructs an ngo Handler. proofs stores fulfillment evidence.
func NewHandler(db *mongo.Database, flow *helpflow.Service, proofs *uploads.Uploader, errLog *errorsfeature.ErrorLogger, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		NGOs:     ngostore.New(db),
		Flow:     flow,
		Proofs:   proofs,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: auditLog,
	}
}
