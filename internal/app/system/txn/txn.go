// internal/app/system/txn/txn.go
package txn

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Server error codes returned when the deployment cannot run transactions
// (standalone servers, some managed offerings).
var unsupportedCodes = map[int32]bool{
	20:  true, // IllegalOperation: transaction numbers require a replica set
	51:  true, // IllegalOperation (older servers)
	263: true, // OperationNotSupportedInTransaction
}

// IsNotSupported reports whether err means the deployment cannot run
// multi-document transactions.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && unsupportedCodes[ce.Code] {
		return true
	}

	s := strings.ToLower(err.Error())
	has := func(sub string) bool { return strings.Contains(s, sub) }

	if has("transaction") && (has("replica set") || has("session") || has("illegal operation")) {
		return true
	}
	return has("session") && has("not supported")
}

var warnOnce sync.Once

// Run executes fn inside a multi-document transaction. If the deployment
// does not support transactions, fn runs once without one; this is logged
// the first time it happens.
//
// fn may be retried by the driver on transient errors, so it must only
// return results through values it resets on each call.
func Run(ctx context.Context, client *mongo.Client, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			warnFallback(log, err)
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		warnFallback(log, err)
		return fn(ctx)
	}
	return err
}

func warnFallback(log *zap.Logger, err error) {
	warnOnce.Do(func() {
		if log != nil {
			log.Warn("transactions not supported; falling back to ordered writes", zap.Error(err))
		}
	})
}
