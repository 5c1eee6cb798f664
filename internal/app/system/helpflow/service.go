// internal/app/system/helpflow/service.go
package helpflow

import (
	"context"
	"errors"
	"time"

	"github.com/artisanbridge/artisanbridge/internal/app/store/helprequests"
	ngostore "github.com/artisanbridge/artisanbridge/internal/app/store/ngos"
	"github.com/artisanbridge/artisanbridge/internal/app/system/auditlog"
	"github.com/artisanbridge/artisanbridge/internal/app/system/capacity"
	"github.com/artisanbridge/artisanbridge/internal/app/system/htmlsanitize"
	"github.com/artisanbridge/artisanbridge/internal/app/system/notify"
	"github.com/artisanbridge/artisanbridge/internal/app/system/txn"
	"github.com/artisanbridge/artisanbridge/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// DefaultFulfillmentNote is recorded when an NGO fulfils a request without notes.
const DefaultFulfillmentNote = "Request fulfilled successfully"

// Principal is the authenticated caller as seen by the service.
type Principal struct {
	ID   primitive.ObjectID
	Role string
}

// Options configures a Service.
type Options struct {
	// Strict runs each request write and its capacity write in one
	// transaction when the deployment supports it.
	Strict   bool
	Audit    *auditlog.Logger
	Notifier notify.Notifier
}

// Service owns the help-request lifecycle: creation and edits by sellers,
// assignment and status changes by NGOs, and the capacity bookkeeping that
// follows each transition.
type Service struct {
	helps    *helprequests.Store
	ngos     *ngostore.Store
	tracker  *capacity.Tracker
	client   *mongo.Client
	strict   bool
	audit    *auditlog.Logger
	notifier notify.Notifier
	log      *zap.Logger
}

// New creates a Service over db. client is used for transactions in strict mode.
func New(db *mongo.Database, log *zap.Logger, opts Options) *Service {
	ngos := ngostore.New(db)
	n := opts.Notifier
	if n == nil {
		n = notify.Noop{}
	}
	return &Service{
		helps:    helprequests.New(db),
		ngos:     ngos,
		tracker:  capacity.NewTracker(ngos),
		client:   db.Client(),
		strict:   opts.Strict,
		audit:    opts.Audit,
		notifier: n,
		log:      log,
	}
}

// Create stores a new pending request for the seller.
func (s *Service) Create(ctx context.Context, sellerID primitive.ObjectID, in NewRequest, attachments []models.FileRef) (models.HelpRequest, error) {
	h, err := in.toModel()
	if err != nil {
		return models.HelpRequest{}, err
	}
	h.Seller = sellerID
	h.Attachments = attachments

	created, err := s.helps.Create(ctx, h)
	if err != nil {
		return models.HelpRequest{}, err
	}
	s.publish(ctx, notify.TypeRequestCreated, created, "")
	return created, nil
}

// UpdateOwn edits a pending request owned by the seller and appends
// attachments. Anything else is ErrNotFound.
func (s *Service) UpdateOwn(ctx context.Context, requestID, sellerID primitive.ObjectID, in Update, attachments []models.FileRef) (models.HelpRequest, error) {
	p, err := in.toPatch()
	if err != nil {
		return models.HelpRequest{}, err
	}
	h, err := s.helps.UpdatePending(ctx, requestID, sellerID, p, attachments)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.HelpRequest{}, ErrNotFound
	}
	return h, err
}

// DeleteOwn removes a pending request owned by the seller.
func (s *Service) DeleteOwn(ctx context.Context, requestID, sellerID primitive.ObjectID) error {
	err := s.helps.DeletePending(ctx, requestID, sellerID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

// GetForCaller loads a request the caller may see: sellers their own,
// NGOs those assigned to them, admins any.
func (s *Service) GetForCaller(ctx context.Context, requestID primitive.ObjectID, p Principal) (models.HelpRequest, error) {
	var (
		h   models.HelpRequest
		err error
	)
	switch p.Role {
	case models.RoleSeller:
		h, err = s.helps.GetOwned(ctx, requestID, p.ID)
	case models.RoleNGO:
		h, err = s.helps.GetAssigned(ctx, requestID, p.ID)
	case models.RoleAdmin:
		h, err = s.helps.GetByID(ctx, requestID)
	default:
		return models.HelpRequest{}, ErrNotFound
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.HelpRequest{}, ErrNotFound
	}
	return h, err
}

// Get loads any request by id.
func (s *Service) Get(ctx context.Context, requestID primitive.ObjectID) (models.HelpRequest, error) {
	h, err := s.helps.GetByID(ctx, requestID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.HelpRequest{}, ErrNotFound
	}
	return h, err
}

// Assign claims a pending request for the NGO user.
//
// NGO-side operations write their own audit events; callers attach the
// client with auditlog.WithSource.
//
// Checks run in order: profile, capacity, existence, assignment, status.
// The claim itself is a conditional write, so of several concurrent callers
// exactly one succeeds and the rest get ErrAlreadyAssigned or ErrNotAvailable.
func (s *Service) Assign(ctx context.Context, requestID, ngoUserID primitive.ObjectID) (models.HelpRequest, error) {
	profile, err := s.ngos.GetByUser(ctx, ngoUserID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.HelpRequest{}, ErrProfileNotFound
	}
	if err != nil {
		return models.HelpRequest{}, err
	}
	if !capacity.CanAccept(profile) {
		return models.HelpRequest{}, ErrAtCapacity
	}

	h, err := s.Get(ctx, requestID)
	if err != nil {
		return models.HelpRequest{}, err
	}
	if err := claimable(h); err != nil {
		return models.HelpRequest{}, err
	}

	var claimed models.HelpRequest
	err = s.write(ctx, func(ctx context.Context) error {
		var err error
		claimed, err = s.helps.Claim(ctx, requestID, ngoUserID)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return s.explainLostClaim(ctx, requestID)
		}
		if err != nil {
			return err
		}
		return s.applyCapacity(ctx, ngoUserID, requestID, models.StatusPending, models.StatusUnderReview)
	})
	if err != nil {
		return models.HelpRequest{}, err
	}

	s.audit.Assigned(ctx, nil, ngoUserID, requestID)
	s.publish(ctx, notify.TypeRequestAssigned, claimed, models.StatusPending)
	return claimed, nil
}

func claimable(h models.HelpRequest) error {
	if h.IsAssigned() {
		return ErrAlreadyAssigned
	}
	if h.Status != models.StatusPending {
		return ErrNotAvailable
	}
	return nil
}

// explainLostClaim re-reads a request whose claim matched nothing.
func (s *Service) explainLostClaim(ctx context.Context, requestID primitive.ObjectID) error {
	h, err := s.Get(ctx, requestID)
	if err != nil {
		return err
	}
	if err := claimable(h); err != nil {
		return err
	}
	return ErrNotAvailable
}

// UpdateStatus moves a request assigned to the NGO user to a new status.
// Any non-terminal request may move to any status except pending.
func (s *Service) UpdateStatus(ctx context.Context, requestID, ngoUserID primitive.ObjectID, in StatusUpdate) (models.HelpRequest, error) {
	to, err := in.target()
	if err != nil {
		return models.HelpRequest{}, err
	}

	h, err := s.helps.GetAssigned(ctx, requestID, ngoUserID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.HelpRequest{}, ErrNotFound
	}
	if err != nil {
		return models.HelpRequest{}, err
	}
	if h.Status.IsTerminal() {
		return models.HelpRequest{}, ErrRequestClosed
	}

	t := helprequests.Transition{From: h.Status, To: to}
	notes := htmlsanitize.PlainTextPtr(in.Notes)
	if notes != nil && *notes != "" {
		t.Notes = notes
	}
	if to == models.StatusFulfilled {
		t.Fulfillment = fulfillment(ngoUserID, notes, nil)
	}
	return s.transition(ctx, requestID, ngoUserID, t)
}

// Fulfill completes an in-progress request assigned to the NGO user,
// recording notes and proof files.
func (s *Service) Fulfill(ctx context.Context, requestID, ngoUserID primitive.ObjectID, notes string, proofs []models.FileRef) (models.HelpRequest, error) {
	h, err := s.helps.GetAssigned(ctx, requestID, ngoUserID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.HelpRequest{}, ErrNotInProgress
	}
	if err != nil {
		return models.HelpRequest{}, err
	}
	if h.Status != models.StatusInProgress {
		return models.HelpRequest{}, ErrNotInProgress
	}

	clean := htmlsanitize.PlainText(notes)
	return s.transition(ctx, requestID, ngoUserID, helprequests.Transition{
		From:        models.StatusInProgress,
		To:          models.StatusFulfilled,
		Fulfillment: fulfillment(ngoUserID, &clean, proofs),
	})
}

func fulfillment(ngoUserID primitive.ObjectID, notes *string, proofs []models.FileRef) *models.FulfillmentDetails {
	n := DefaultFulfillmentNote
	if notes != nil && *notes != "" {
		n = *notes
	}
	if proofs == nil {
		proofs = []models.FileRef{}
	}
	return &models.FulfillmentDetails{
		FulfilledBy:        ngoUserID,
		FulfillmentDate:    time.Now().UTC(),
		Notes:              n,
		ProofOfFulfillment: proofs,
	}
}

// transition applies t and its capacity side effects.
func (s *Service) transition(ctx context.Context, requestID, ngoUserID primitive.ObjectID, t helprequests.Transition) (models.HelpRequest, error) {
	var updated models.HelpRequest
	err := s.write(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.helps.ApplyTransition(ctx, requestID, ngoUserID, t)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrStatusChanged
		}
		if err != nil {
			return err
		}
		return s.applyCapacity(ctx, ngoUserID, requestID, t.From, t.To)
	})
	if err != nil {
		return models.HelpRequest{}, err
	}

	s.audit.StatusChanged(ctx, nil, ngoUserID, requestID, string(t.From), string(t.To))
	s.publish(ctx, notify.TypeRequestStatusChanged, updated, t.From)
	if t.To == models.StatusFulfilled {
		proofs := 0
		if t.Fulfillment != nil {
			proofs = len(t.Fulfillment.ProofOfFulfillment)
		}
		s.audit.Fulfilled(ctx, nil, ngoUserID, requestID, proofs)
		s.publish(ctx, notify.TypeRequestFulfilled, updated, t.From)
	}
	return updated, nil
}

// write runs fn in a transaction in strict mode, directly otherwise.
func (s *Service) write(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.strict && s.client != nil {
		return txn.Run(ctx, s.client, s.log, fn)
	}
	return fn(ctx)
}

// applyCapacity updates the NGO counter after a request write. Outside
// strict mode a failure here is logged and audited but not returned: the
// request write already happened and the reconciler corrects the drift.
func (s *Service) applyCapacity(ctx context.Context, ngoUserID, requestID primitive.ObjectID, from, to models.HelpStatus) error {
	_, err := s.tracker.Apply(ctx, ngoUserID, from, to)
	if err == nil {
		return nil
	}
	if s.strict {
		return err
	}
	s.log.Error("capacity update failed after request write",
		zap.Error(err),
		zap.String("request_id", requestID.Hex()),
		zap.String("ngo_user_id", ngoUserID.Hex()),
		zap.String("status_from", string(from)),
		zap.String("status_to", string(to)))
	s.audit.CapacityUpdateFailed(ctx, ngoUserID, requestID, capacity.Delta(from, to), err)
	return nil
}

func (s *Service) publish(ctx context.Context, typ string, h models.HelpRequest, prev models.HelpStatus) {
	e := notify.NewEvent(typ, h.ID)
	e.SellerID = h.Seller.Hex()
	if h.NGOAssigned != nil {
		e.NGOUserID = h.NGOAssigned.Hex()
	}
	e.Status = string(h.Status)
	e.PrevStatus = string(prev)
	e.Title = h.Title
	if err := s.notifier.Publish(ctx, e); err != nil {
		s.log.Warn("help event publish failed",
			zap.Error(err),
			zap.String("type", typ),
			zap.String("request_id", h.ID.Hex()))
	}
}
