// internal/app/system/workers/capacityreconcile.go
package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/artisanbridge/artisanbridge/internal/app/store/helprequests"
	"github.com/artisanbridge/artisanbridge/internal/app/store/ngos"
	"github.com/artisanbridge/artisanbridge/internal/app/system/auditlog"
	"github.com/artisanbridge/artisanbridge/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// activeCounter is the help-request side of reconciliation.
type activeCounter interface {
	ActiveCounts(ctx context.Context) (map[primitive.ObjectID]int, error)
	CountActiveByNGO(ctx context.Context, ngoUserID primitive.ObjectID) (int64, error)
}

// loadStore is the NGO-profile side of reconciliation.
type loadStore interface {
	Loads(ctx context.Context) ([]ngos.Load, error)
	CorrectHandling(ctx context.Context, userID primitive.ObjectID, observed, n int) error
}

// CapacityReconciler is a background worker that recomputes every NGO's
// capacity.currently_handling from the help requests actually assigned to it.
// Status changes update the counter without a transaction, so a failed
// counter write leaves drift that only this worker repairs.
type CapacityReconciler struct {
	requests activeCounter
	ngos     loadStore
	audit    *auditlog.Logger
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewCapacityReconciler creates the worker. It does nothing until Start.
func NewCapacityReconciler(db *mongo.Database, auditLog *auditlog.Logger, logger *zap.Logger, interval time.Duration) *CapacityReconciler {
	return &CapacityReconciler{
		requests: helprequests.New(db),
		ngos:     ngos.New(db),
		audit:    auditLog,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background loop. A non-positive interval disables it.
func (w *CapacityReconciler) Start() {
	if w.interval <= 0 {
		w.log.Info("capacity reconciler disabled")
		return
	}
	w.wg.Add(1)
	go w.run()
	w.log.Info("capacity reconciler started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
// It is safe to call when Start never launched the loop.
func (w *CapacityReconciler) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("capacity reconciler stopped")
}

func (w *CapacityReconciler) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), timeouts.Long())
			if _, err := w.Reconcile(ctx); err != nil {
				w.log.Error("capacity reconciliation failed", zap.Error(err))
			}
			cancel()
		}
	}
}

// Reconcile runs one pass and returns how many profiles were corrected.
//
// A profile is corrected only when its drift is stable: the per-NGO recount
// taken just before the write agrees with the bulk count, and the write is
// conditional on the counter value read at the start of the pass. Anything
// that moved during the pass is left for the next one. A failed correction
// is logged and the pass continues.
func (w *CapacityReconciler) Reconcile(ctx context.Context) (int, error) {
	loads, err := w.ngos.Loads(ctx)
	if err != nil {
		return 0, err
	}
	actual, err := w.requests.ActiveCounts(ctx)
	if err != nil {
		return 0, err
	}

	fixed := 0
	for _, l := range loads {
		want := actual[l.User]
		if l.Handling == want {
			continue
		}

		recount, err := w.requests.CountActiveByNGO(ctx, l.User)
		if err != nil {
			w.log.Warn("failed to recount ngo load",
				zap.String("ngo_user_id", l.User.Hex()),
				zap.Error(err))
			continue
		}
		if int(recount) != want {
			w.log.Debug("ngo load changed during reconciliation; skipping",
				zap.String("ngo_user_id", l.User.Hex()),
				zap.Int("counted", want),
				zap.Int64("recounted", recount))
			continue
		}

		err = w.ngos.CorrectHandling(ctx, l.User, l.Handling, want)
		if errors.Is(err, mongo.ErrNoDocuments) {
			w.log.Debug("ngo counter moved during reconciliation; skipping",
				zap.String("ngo_user_id", l.User.Hex()),
				zap.Int("recorded", l.Handling))
			continue
		}
		if err != nil {
			w.log.Warn("failed to correct ngo load",
				zap.String("ngo_user_id", l.User.Hex()),
				zap.Int("recorded", l.Handling),
				zap.Int("actual", want),
				zap.Error(err))
			continue
		}
		w.audit.CapacityReconciled(ctx, l.User, l.Handling, want)
		fixed++
	}

	if fixed > 0 {
		w.log.Info("corrected ngo capacity drift", zap.Int("count", fixed))
	}
	return fixed, nil
}
