// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net"
	"net/http"
	"strconv"

	"github.com/artisanbridge/artisanbridge/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Help controls logging for help-request lifecycle events.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Help string
	// Capacity controls logging for NGO capacity bookkeeping events.
	Capacity string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func userAgent(r *http.Request) string {
	if r == nil {
		return ""
	}
	return r.UserAgent()
}

type sourceKey struct{}

// source is the client a request-scoped context was created for.
type source struct {
	ip, userAgent string
}

// WithSource records the client of r in ctx so events logged further down
// the call chain without access to r still carry IP and user agent.
func WithSource(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, sourceKey{}, source{ip: getClientIP(r), userAgent: userAgent(r)})
}

// clientOf returns the client of r, or of ctx when r is nil.
func clientOf(ctx context.Context, r *http.Request) (ip, ua string) {
	if r != nil {
		return getClientIP(r), userAgent(r)
	}
	if s, ok := ctx.Value(sourceKey{}).(source); ok {
		return s.ip, s.userAgent
	}
	return "", ""
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.NGOUserID != nil {
		fields = append(fields, zap.String("ngo_user_id", event.NGOUserID.Hex()))
	}
	if event.RequestID != nil {
		fields = append(fields, zap.String("request_id", event.RequestID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
// Logging destination is controlled by config: "all", "db", "log", or "off".
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryHelp:
		setting = l.config.Help
	case audit.CategoryCapacity:
		setting = l.config.Capacity
	}
	if setting == "" {
		setting = "all"
	}

	if setting == "off" {
		return
	}
	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}
	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Help request events ---

// helpEvent logs a help-request event. r may be nil when the caller only has
// a context prepared with WithSource.
func (l *Logger) helpEvent(ctx context.Context, r *http.Request, eventType string, actor, requestID primitive.ObjectID, ngoUser *primitive.ObjectID, details map[string]string) {
	ip, ua := clientOf(ctx, r)
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryHelp,
		EventType: eventType,
		ActorID:   &actor,
		NGOUserID: ngoUser,
		RequestID: &requestID,
		IP:        ip,
		UserAgent: ua,
		Success:   true,
		Details:   details,
	})
}

// RequestCreated logs a seller creating a help request.
func (l *Logger) RequestCreated(ctx context.Context, r *http.Request, sellerID, requestID primitive.ObjectID, requestType string) {
	l.helpEvent(ctx, r, audit.EventHelpRequestCreated, sellerID, requestID, nil, map[string]string{
		"request_type": requestType,
	})
}

// RequestUpdated logs a seller editing a pending request.
func (l *Logger) RequestUpdated(ctx context.Context, r *http.Request, sellerID, requestID primitive.ObjectID) {
	l.helpEvent(ctx, r, audit.EventHelpRequestUpdated, sellerID, requestID, nil, nil)
}

// RequestDeleted logs a seller deleting a pending request.
func (l *Logger) RequestDeleted(ctx context.Context, r *http.Request, sellerID, requestID primitive.ObjectID) {
	l.helpEvent(ctx, r, audit.EventHelpRequestDeleted, sellerID, requestID, nil, nil)
}

// Assigned logs an NGO claiming a request.
func (l *Logger) Assigned(ctx context.Context, r *http.Request, ngoUser, requestID primitive.ObjectID) {
	l.helpEvent(ctx, r, audit.EventHelpRequestAssigned, ngoUser, requestID, &ngoUser, map[string]string{
		"status_from": "pending",
		"status_to":   "under_review",
	})
}

// StatusChanged logs an NGO moving a request between lifecycle states.
func (l *Logger) StatusChanged(ctx context.Context, r *http.Request, ngoUser, requestID primitive.ObjectID, from, to string) {
	l.helpEvent(ctx, r, audit.EventHelpRequestStatusChanged, ngoUser, requestID, &ngoUser, map[string]string{
		"status_from": from,
		"status_to":   to,
	})
}

// Fulfilled logs an NGO completing a request.
func (l *Logger) Fulfilled(ctx context.Context, r *http.Request, ngoUser, requestID primitive.ObjectID, proofs int) {
	l.helpEvent(ctx, r, audit.EventHelpRequestFulfilled, ngoUser, requestID, &ngoUser, map[string]string{
		"proof_count": strconv.Itoa(proofs),
	})
}

// --- Capacity events ---

// CapacityUpdateFailed records a capacity write that failed after the
// request itself was already updated.
func (l *Logger) CapacityUpdateFailed(ctx context.Context, ngoUser, requestID primitive.ObjectID, delta int, err error) {
	reason := ""
	if err != nil {
		reason = err.Error()
	}
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryCapacity,
		EventType:     audit.EventCapacityUpdateFailed,
		NGOUserID:     &ngoUser,
		RequestID:     &requestID,
		Success:       false,
		FailureReason: reason,
		Details: map[string]string{
			"delta": strconv.Itoa(delta),
		},
	})
}

// CapacityReconciled records a drift correction made by the reconciler.
func (l *Logger) CapacityReconciled(ctx context.Context, ngoUser primitive.ObjectID, was, now int) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryCapacity,
		EventType: audit.EventCapacityReconciled,
		NGOUserID: &ngoUser,
		Success:   true,
		Details: map[string]string{
			"was": strconv.Itoa(was),
			"now": strconv.Itoa(now),
		},
	})
}
