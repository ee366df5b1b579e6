// Package checkout turns a (bootcamp, session, participant) tuple into a
// payable order and keeps that order in step with the gateway's charge.
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/bootcamp-booking/internal/djamo"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
	"github.com/robertarktes/bootcamp-booking/internal/observability"
)

type Gateway interface {
	Configured() bool
	CreateCharge(ctx context.Context, req djamo.CreateChargeRequest) (*domain.Charge, error)
	GetCharge(ctx context.Context, chargeID string) (*domain.Charge, error)
	RefundCharge(ctx context.Context, chargeID string, amount *int64) (*domain.Charge, error)
	VerifySignature(body []byte, signature string) bool
}

// Locker serialises charge creation for one correlation id across API
// replicas.
type Locker interface {
	AcquireChargeLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseChargeLock(ctx context.Context, key string) error
}

type Auditor interface {
	LogCharge(ctx context.Context, o domain.Order) error
	LogSettlement(ctx context.Context, o domain.Order, source string) error
}

type Options struct {
	PublicBaseURL    string
	StaticPaymentURL string
	LockTTL          time.Duration
}

type Service struct {
	catalog domain.Catalog
	store   domain.Store
	gateway Gateway
	locker  Locker
	audit   Auditor
	opts    Options
	logger  observability.Logger
	now     func() time.Time
}

// NewService wires the checkout. A nil locker or auditor disables locking
// and auditing respectively.
func NewService(catalog domain.Catalog, store domain.Store, gateway Gateway, locker Locker, audit Auditor, opts Options, logger observability.Logger) *Service {
	if locker == nil {
		locker = nopLocker{}
	}
	if audit == nil {
		audit = nopAuditor{}
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 30 * time.Second
	}
	opts.PublicBaseURL = strings.TrimRight(opts.PublicBaseURL, "/")
	return &Service{
		catalog: catalog,
		store:   store,
		gateway: gateway,
		locker:  locker,
		audit:   audit,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
	}
}

type CreateChargeInput struct {
	BootcampSlug string              `json:"bootcampSlug"`
	SessionID    string              `json:"sessionId"`
	Participant  *domain.Participant `json:"participant"`
	Newsletter   bool                `json:"newsletter"`
	AcceptTerms  *bool               `json:"acceptTerms,omitempty"`
	ExternalID   string              `json:"externalId,omitempty"`
}

type ChargeResult struct {
	Mode       domain.PaymentMode  `json:"mode"`
	ChargeID   *string             `json:"chargeId"`
	ExternalID string              `json:"externalId"`
	PaymentURL string              `json:"paymentUrl"`
	Amount     int64               `json:"amount,omitempty"`
	Status     domain.ChargeStatus `json:"status,omitempty"`
	Message    string              `json:"message,omitempty"`
}

// ChargeView is the gateway's current view of a charge.
type ChargeView struct {
	ChargeID   string              `json:"chargeId"`
	Status     domain.ChargeStatus `json:"status"`
	Amount     int64               `json:"amount"`
	ExternalID string              `json:"externalId"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

func newChargeView(ch *domain.Charge) *ChargeView {
	return &ChargeView{
		ChargeID:   ch.ID,
		Status:     ch.Status,
		Amount:     ch.Amount,
		ExternalID: ch.ExternalID,
		CreatedAt:  ch.CreatedAt,
		UpdatedAt:  ch.UpdatedAt,
	}
}

var externalIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{16,64}$`)

// CreateCharge validates the request, persists the pending order and asks
// the gateway for a payment URL. Retrying with the same externalId returns
// the stored result without a second gateway call.
func (s *Service) CreateCharge(ctx context.Context, in CreateChargeInput) (*ChargeResult, error) {
	if strings.TrimSpace(in.BootcampSlug) == "" || strings.TrimSpace(in.SessionID) == "" || in.Participant == nil {
		return nil, domain.Invalid("bootcampSlug, sessionId and participant are required")
	}

	form := NewForm()
	if err := form.SubmitParticipant(*in.Participant); err != nil {
		return nil, err
	}
	participant, err := form.Submit(in.AcceptTerms == nil || *in.AcceptTerms, in.Newsletter)
	if err != nil {
		return nil, err
	}

	offering, session, err := s.lookup(ctx, in.BootcampSlug, in.SessionID)
	if err != nil {
		return nil, err
	}
	if !session.Selectable() {
		return nil, errors.Wrapf(domain.ErrSessionFull, "session %q", session.ID)
	}

	externalID := strings.TrimSpace(in.ExternalID)
	if externalID == "" {
		externalID = domain.NewExternalID(s.now())
	} else if !externalIDPattern.MatchString(externalID) {
		return nil, &domain.ValidationError{
			Message: "invalid externalId",
			Fields:  map[string]string{"externalId": "must be 16 to 64 letters, digits, '-' or '_'"},
		}
	}

	log := observability.LoggerFrom(ctx, s.logger).WithFields(map[string]interface{}{
		"external_id":   externalID,
		"bootcamp_slug": offering.Slug,
		"session_id":    session.ID,
	})

	existing, err := s.existingOrder(ctx, externalID, offering.Slug, session.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Submitted() {
		log.Info("returning existing order for retried charge creation")
		return resultFromOrder(existing), nil
	}

	data := domain.NewOrderData(participant, *offering, *session, in.Newsletter, s.now())

	if !s.gateway.Configured() {
		return s.createStatic(ctx, log, externalID, existing, data)
	}

	lockKey := "charge:" + externalID
	ok, err := s.locker.AcquireChargeLock(ctx, lockKey, s.opts.LockTTL)
	if err != nil {
		return nil, errors.Wrap(err, "acquire charge lock")
	}
	if !ok {
		return nil, errors.Wrapf(domain.ErrConflict, "charge creation for %s already in progress", externalID)
	}
	defer func() {
		if err := s.locker.ReleaseChargeLock(context.WithoutCancel(ctx), lockKey); err != nil {
			log.WithError(err).Warn("failed to release charge lock")
		}
	}()

	// Another replica may have finished while we waited for the lock.
	existing, err = s.existingOrder(ctx, externalID, offering.Slug, session.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Submitted() {
		return resultFromOrder(existing), nil
	}
	if existing == nil {
		order, err := domain.NewOrder(externalID, domain.ModeAPI, data, s.now())
		if err != nil {
			return nil, err
		}
		if err := s.store.CreateOrder(ctx, order); err != nil {
			return nil, errors.Wrap(err, "persist pending order")
		}
	} else {
		data, err = existing.Snapshot()
		if err != nil {
			return nil, err
		}
	}

	charge, err := s.gateway.CreateCharge(ctx, s.chargeRequest(externalID, *offering, *session, data))
	if err != nil {
		log.WithError(err).Error("charge creation failed")
		return nil, &GatewayError{Err: err, FallbackURL: s.staticPaymentURL(ctx, log)}
	}

	order, err := s.update(ctx, externalID, func(o *domain.Order) error {
		o.Mode = domain.ModeAPI
		if o.ChargeID == "" {
			o.ChargeID = charge.ID
		}
		o.PaymentURL = charge.PaymentURL
		// A webhook may already have settled the order.
		if o.ChargeStatus == "" {
			o.ChargeStatus = charge.Status
			if o.ChargeStatus == "" {
				o.ChargeStatus = domain.ChargeDue
			}
		}
		return withChargeID(o, charge.ID)
	})
	if err != nil {
		return nil, err
	}

	if err := s.audit.LogCharge(ctx, *order); err != nil {
		log.WithError(err).Warn("failed to audit charge creation")
	}
	observability.ChargesCreated.WithLabelValues(string(domain.ModeAPI)).Inc()
	log.WithFields(map[string]interface{}{"charge_id": charge.ID, "amount": charge.Amount}).Info("charge created")

	res := resultFromOrder(order)
	res.Amount = charge.Amount
	if charge.Status != "" {
		res.Status = charge.Status
	}
	return res, nil
}

func (s *Service) createStatic(ctx context.Context, log observability.Logger, externalID string, existing *domain.Order, data domain.OrderData) (*ChargeResult, error) {
	log.Warn("payment gateway not configured, using the static payment link")
	link := s.staticPaymentURL(ctx, log)

	var order *domain.Order
	if existing == nil {
		o, err := domain.NewOrder(externalID, domain.ModeStatic, data, s.now())
		if err != nil {
			return nil, err
		}
		o.PaymentURL = link
		if err := s.store.CreateOrder(ctx, o); err != nil {
			return nil, errors.Wrap(err, "persist pending order")
		}
		order = &o
	} else {
		var err error
		order, err = s.update(ctx, externalID, func(o *domain.Order) error {
			o.Mode = domain.ModeStatic
			o.PaymentURL = link
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if err := s.audit.LogCharge(ctx, *order); err != nil {
		log.WithError(err).Warn("failed to audit charge creation")
	}
	observability.ChargesCreated.WithLabelValues(string(domain.ModeStatic)).Inc()
	return resultFromOrder(order), nil
}

// staticPaymentURL prefers the link saved from the admin settings over the
// configured one.
func (s *Service) staticPaymentURL(ctx context.Context, log observability.Logger) string {
	site, err := s.store.GetSiteSettings(ctx)
	if err == nil && site.PaymentLink != "" {
		return site.PaymentLink
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		log.WithError(err).Warn("failed to load site settings")
	}
	return s.opts.StaticPaymentURL
}

func (s *Service) existingOrder(ctx context.Context, externalID, slug, sessionID string) (*domain.Order, error) {
	o, err := s.store.GetOrder(ctx, externalID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "load order")
	}
	if o.OfferingSlug != slug || o.SessionID != sessionID {
		return nil, errors.Wrapf(domain.ErrConflict, "externalId %s belongs to another session", externalID)
	}
	return o, nil
}

func resultFromOrder(o *domain.Order) *ChargeResult {
	res := &ChargeResult{
		Mode:       o.Mode,
		ExternalID: o.ExternalID,
		PaymentURL: o.PaymentURL,
		Amount:     o.Amount,
		Status:     o.ChargeStatus,
	}
	if o.Mode == domain.ModeStatic {
		res.Message = "static payment link, the payment gateway API is not configured"
		return res
	}
	if o.ChargeID != "" {
		id := o.ChargeID
		res.ChargeID = &id
	}
	return res
}

func (s *Service) chargeRequest(externalID string, o domain.Offering, sess domain.Session, data domain.OrderData) djamo.CreateChargeRequest {
	completed := url.Values{}
	completed.Set("bootcamp", o.Slug)
	completed.Set("session", sess.ID)
	completed.Set("ref", externalID)
	completed.Set("status", "completed")

	canceled := url.Values{}
	canceled.Set("bootcamp", o.Slug)
	canceled.Set("session", sess.ID)
	canceled.Set("canceled", "true")

	p := data.Participant
	return djamo.CreateChargeRequest{
		Amount:                    o.Price,
		ExternalID:                externalID,
		Description:               fmt.Sprintf("Bootcamp %q - Session %s (%s - %s)", o.Title, sess.City, sess.DateStart, sess.DateEnd),
		OnCompletedRedirectionURL: s.opts.PublicBaseURL + "/confirmation?" + completed.Encode(),
		OnCanceledRedirectionURL:  s.opts.PublicBaseURL + "/checkout?" + canceled.Encode(),
		Metadata: map[string]string{
			"bootcampSlug":       o.Slug,
			"sessionId":          sess.ID,
			"participantName":    p.FullName(),
			"participantEmail":   p.Email,
			"participantPhone":   p.Phone,
			"participantCompany": p.Company,
			"newsletter":         strconv.FormatBool(data.Newsletter),
		},
	}
}

// withChargeID records the charge id inside the stored snapshot.
func withChargeID(o *domain.Order, chargeID string) error {
	data, err := o.Snapshot()
	if err != nil {
		return err
	}
	if data.ChargeID == chargeID {
		return nil
	}
	data.ChargeID = chargeID
	raw, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "encode order data")
	}
	o.Data = raw
	return nil
}

// lookup resolves the offering and one of its sessions.
func (s *Service) lookup(ctx context.Context, slug, sessionID string) (*domain.Offering, *domain.Session, error) {
	offering, err := s.catalog.GetOfferingBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	session, err := s.catalog.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.OfferingSlug != offering.Slug {
		return nil, nil, errors.Wrapf(domain.ErrNotFound, "session %q of bootcamp %q", sessionID, slug)
	}
	return offering, session, nil
}

// CheckCharge reads the charge from the gateway and reconciles the local
// order with it.
func (s *Service) CheckCharge(ctx context.Context, chargeID string) (*ChargeView, error) {
	chargeID = strings.TrimSpace(chargeID)
	if chargeID == "" {
		return nil, &domain.ValidationError{
			Message: "chargeId is required",
			Fields:  map[string]string{"chargeId": "this field is required"},
		}
	}
	ch, err := s.getCharge(ctx, chargeID)
	if err != nil {
		return nil, err
	}
	if err := s.applyCharge(ctx, ch, "poll"); err != nil && !errors.Is(err, domain.ErrNotFound) {
		observability.LoggerFrom(ctx, s.logger).WithError(err).WithField("charge_id", chargeID).Warn("failed to reconcile order")
	}
	return newChargeView(ch), nil
}

func (s *Service) getCharge(ctx context.Context, chargeID string) (*domain.Charge, error) {
	if !s.gateway.Configured() {
		return nil, djamo.ErrNotConfigured
	}
	ch, err := s.gateway.GetCharge(ctx, chargeID)
	if djamo.IsNotFound(err) {
		return nil, errors.Wrapf(domain.ErrNotFound, "charge %q", chargeID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "get charge")
	}
	return ch, nil
}

type PollPolicy struct {
	MaxAttempts int
	Interval    time.Duration
}

// PollCharge checks the charge until it leaves the due state, the attempts
// run out or ctx is done. The last observed view is returned in the second
// case.
func (s *Service) PollCharge(ctx context.Context, chargeID string, policy PollPolicy) (*ChargeView, error) {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	var view *ChargeView
	for attempt := 1; ; attempt++ {
		var err error
		view, err = s.CheckCharge(ctx, chargeID)
		if err != nil {
			return nil, err
		}
		if view.Status.Resolved() || attempt >= policy.MaxAttempts {
			return view, nil
		}
		select {
		case <-ctx.Done():
			return view, ctx.Err()
		case <-time.After(policy.Interval):
		}
	}
}

// HandleWebhook authenticates a gateway delivery and settles the order it
// refers to. Deliveries for unknown orders are acknowledged and dropped.
func (s *Service) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !s.gateway.VerifySignature(body, signature) {
		return errors.Wrap(domain.ErrUnauthorized, "invalid webhook signature")
	}
	ev, err := djamo.ParseEvent(body)
	if err != nil {
		return err
	}
	log := observability.LoggerFrom(ctx, s.logger).WithFields(map[string]interface{}{
		"event_id":  ev.ID,
		"event":     ev.Type,
		"charge_id": ev.Data.ID,
	})

	ch := &ev.Data
	reread := s.gateway.Configured()
	if reread {
		fresh, err := s.gateway.GetCharge(ctx, ch.ID)
		if err != nil {
			return errors.Wrap(err, "re-read charge")
		}
		ch = fresh
	}

	o, err := s.findOrder(ctx, ch)
	if errors.Is(err, domain.ErrNotFound) {
		log.Warn("webhook for unknown order ignored")
		return nil
	}
	if err != nil {
		return err
	}
	// Static-link orders are paid outside the gateway; only a charge read
	// back from the gateway may settle them.
	if o.Mode == domain.ModeStatic && !reread {
		log.WithField("external_id", o.ExternalID).Warn("unverified webhook for static order ignored")
		return nil
	}
	_, err = s.settle(ctx, *o, ch.ID, ch.Status, "webhook")
	return err
}

// RefundCharge refunds a charge, fully when amount is nil.
func (s *Service) RefundCharge(ctx context.Context, chargeID string, amount *int64) (*ChargeView, error) {
	chargeID = strings.TrimSpace(chargeID)
	if chargeID == "" {
		return nil, domain.Invalid("chargeId is required")
	}
	if amount != nil && *amount <= 0 {
		return nil, &domain.ValidationError{
			Message: "invalid refund amount",
			Fields:  map[string]string{"amount": "must be positive"},
		}
	}
	if !s.gateway.Configured() {
		return nil, djamo.ErrNotConfigured
	}
	ch, err := s.gateway.RefundCharge(ctx, chargeID, amount)
	if djamo.IsNotFound(err) {
		return nil, errors.Wrapf(domain.ErrNotFound, "charge %q", chargeID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "refund charge")
	}
	if err := s.applyCharge(ctx, ch, "refund"); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return newChargeView(ch), nil
}

type nopLocker struct{}

func (nopLocker) AcquireChargeLock(context.Context, string, time.Duration) (bool, error) {
	return true, nil
}

func (nopLocker) ReleaseChargeLock(context.Context, string) error { return nil }

type nopAuditor struct{}

func (nopAuditor) LogCharge(context.Context, domain.Order) error { return nil }

func (nopAuditor) LogSettlement(context.Context, domain.Order, string) error { return nil }
