// Package checkout turns a shopper's selection into a priced session, takes
// payment for it and writes the resulting orders.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/food-order-backend/internal/address"
	"github.com/wichananm65/food-order-backend/internal/apperror"
	"github.com/wichananm65/food-order-backend/internal/cart"
	"github.com/wichananm65/food-order-backend/internal/infrastructure/cache"
	"github.com/wichananm65/food-order-backend/internal/infrastructure/docstore"
	"github.com/wichananm65/food-order-backend/internal/infrastructure/events"
	"github.com/wichananm65/food-order-backend/internal/infrastructure/logger"
	"github.com/wichananm65/food-order-backend/internal/infrastructure/metrics"
	"github.com/wichananm65/food-order-backend/internal/infrastructure/payment"
	"github.com/wichananm65/food-order-backend/internal/selection"
	"github.com/wichananm65/food-order-backend/internal/user"
)

type SelectionStore interface {
	Load(ctx context.Context, userID string) (*selection.Store, error)
	Save(ctx context.Context, userID string, s *selection.Store) error
	Clear(ctx context.Context, userID string) error
}

type ProfileLookup interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type AddressLookup interface {
	GetDefault(ctx context.Context, userID string) (address.Address, error)
}

// Settings are the checkout constants read from configuration.
type Settings struct {
	Charges        Charges
	Currency       string
	FeePolicy      FeePolicy
	RedirectDelay  time.Duration
	IdempotencyTTL time.Duration
}

// Dependencies wires the service to its collaborators. Events, Logger and
// Metrics may be left nil.
type Dependencies struct {
	Selections      SelectionStore
	Sessions        *SessionRepository
	Profiles        ProfileLookup
	Addresses       AddressLookup
	FoodItems       FoodItemLookup
	DeliveryFees    DeliveryFeeLookup
	Orders          OrderWriter
	Cart            CartPruner
	Gateway         payment.Gateway
	Idempotency     cache.Store
	Reconciliations ReconciliationWriter
	Events          events.Publisher
	Logger          *logger.Logger
	Metrics         *metrics.CheckoutMetrics
}

type Service struct {
	deps     Dependencies
	settings Settings
	fees     feeResolver
	now      func() time.Time
}

func NewService(deps Dependencies, settings Settings) *Service {
	if deps.Events == nil {
		deps.Events = events.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	if settings.FeePolicy == "" {
		settings.FeePolicy = FeePolicyMax
	}
	return &Service{
		deps:     deps,
		settings: settings,
		fees:     feeResolver{items: deps.FoodItems, fees: deps.DeliveryFees, policy: settings.FeePolicy},
		now:      time.Now,
	}
}

func (s *Service) stamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *Service) move(ctx context.Context, sess *Session, to State) error {
	if !canTransition(sess.State, to) {
		return transitionError(sess.State, to)
	}
	s.deps.Metrics.ObserveTransition(string(sess.State), string(to))
	s.deps.Logger.Debug(s.deps.Logger.WithFields(ctx, map[string]any{
		"checkout_id": sess.ID,
		"from":        sess.State,
		"to":          to,
	}), "checkout transition")
	sess.State = to
	sess.UpdatedAt = s.stamp()
	return nil
}

func unauthorized() error {
	return apperror.New(apperror.CodeUnauthorized, "sign in required").
		WithDetails(map[string]any{"redirect": user.LoginRedirect})
}

func (s *Service) load(ctx context.Context, userID string) (*Session, error) {
	if userID == "" {
		return nil, unauthorized()
	}
	sess, err := s.deps.Sessions.Load(ctx, userID)
	if errors.Is(err, errNoSession) {
		return nil, apperror.New(apperror.CodeNotFound, "no checkout in progress")
	}
	return sess, err
}

// Current returns the shopper's latest checkout session.
func (s *Service) Current(ctx context.Context, userID string) (*Session, error) {
	return s.load(ctx, userID)
}

// Begin prices the shopper's selection. An empty selection aborts the
// session before any lookup or pricing happens.
func (s *Service) Begin(ctx context.Context, userID string) (*Session, error) {
	if userID == "" {
		return nil, unauthorized()
	}
	ctx = s.deps.Logger.WithUserID(ctx, userID)

	if prev, err := s.deps.Sessions.Load(ctx, userID); err == nil {
		if prev.State == StatePaymentPending || prev.State == StateFulfilling {
			return nil, apperror.New(apperror.CodeStateConflict, "a payment is already in progress").
				WithDetails(map[string]any{"checkoutId": prev.ID, "state": prev.State})
		}
	} else if !errors.Is(err, errNoSession) {
		return nil, err
	}

	sess := &Session{ID: uuid.NewString(), UserID: userID, State: StateGathering, UpdatedAt: s.stamp()}
	ctx = s.deps.Logger.WithField(ctx, "checkout_id", sess.ID)

	sel, err := s.deps.Selections.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sel.IsEmpty() {
		if err := s.move(ctx, sess, StateAborted); err != nil {
			return nil, err
		}
		sess.Redirect = RedirectCart
		if err := s.deps.Sessions.Save(ctx, sess); err != nil {
			return nil, err
		}
		return sess, apperror.New(apperror.CodeSelectionEmpty, "no items selected for checkout").
			WithDetails(map[string]any{"redirect": RedirectCart, "checkoutId": sess.ID})
	}

	lines := sel.Lines()
	premium := s.premium(ctx, userID)
	sess.Address = s.defaultAddress(ctx, userID)
	fee := s.deliveryFee(ctx, lines)

	summary := Price(lines, fee, premium, s.settings.Charges)
	sess.Summary = &summary
	if err := s.move(ctx, sess, StateReady); err != nil {
		return nil, err
	}
	if err := s.deps.Sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Service) premium(ctx context.Context, userID string) bool {
	profile, err := s.deps.Profiles.GetByID(ctx, userID)
	if err != nil {
		s.deps.Metrics.IncLookupFallback("profile")
		s.deps.Logger.WarnErr(ctx, "profile lookup failed, pricing without premium", err)
		return false
	}
	return profile.IsPremiumActive(s.now())
}

func (s *Service) defaultAddress(ctx context.Context, userID string) *address.Address {
	addr, err := s.deps.Addresses.GetDefault(ctx, userID)
	if err != nil {
		if !errors.Is(err, address.ErrNotFound) {
			s.deps.Metrics.IncLookupFallback("address")
			s.deps.Logger.WarnErr(ctx, "address lookup failed, continuing without address", err)
		}
		return nil
	}
	return &addr
}

func (s *Service) deliveryFee(ctx context.Context, lines []cart.Line) decimal.Decimal {
	fee, err := s.fees.resolve(ctx, lines)
	if err != nil {
		s.deps.Metrics.IncLookupFallback("delivery_fee")
		s.deps.Logger.WarnErr(ctx, "delivery fee lookup failed, charging no delivery fee", err)
		return decimal.Zero
	}
	return fee
}

// SelectionLocked refuses selection edits while a payment for the priced
// selection is open or its orders are being written.
func (s *Service) SelectionLocked(ctx context.Context, userID string) error {
	sess, err := s.deps.Sessions.Load(ctx, userID)
	if errors.Is(err, errNoSession) {
		return nil
	}
	if err != nil {
		return err
	}
	if sess.State == StatePaymentPending || sess.State == StateFulfilling {
		return apperror.New(apperror.CodeStateConflict, "selection is locked while payment is in progress").
			WithDetails(map[string]any{"checkoutId": sess.ID, "state": sess.State})
	}
	return nil
}

// InitiatePayment opens a payment intent for the priced total. A selection
// edited since pricing must be priced again first.
func (s *Service) InitiatePayment(ctx context.Context, userID string) (*Session, error) {
	sess, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sess.State == StateReady {
		if err := s.checkPriced(ctx, sess); err != nil {
			return nil, err
		}
	}
	if err := s.move(ctx, sess, StatePaymentPending); err != nil {
		return nil, err
	}
	sess.Intent = &PaymentIntent{
		ID:          uuid.NewString(),
		AmountMinor: MinorUnits(sess.Summary.TotalPayable, s.settings.Currency),
		Currency:    s.settings.Currency,
		Description: describe(sess.Summary),
		CreatedAt:   s.stamp(),
	}
	if err := s.deps.Sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// checkPriced compares the live selection with the lines frozen in the
// summary by id and quantity.
func (s *Service) checkPriced(ctx context.Context, sess *Session) error {
	sel, err := s.deps.Selections.Load(ctx, sess.UserID)
	if err != nil {
		return err
	}
	priced := make(map[string]int, len(sess.Summary.Lines))
	for _, lp := range sess.Summary.Lines {
		priced[lp.Line.ID] = lp.Line.Quantity
	}
	lines := sel.Lines()
	stale := len(lines) != len(priced)
	for _, l := range lines {
		if qty, ok := priced[l.ID]; !ok || qty != l.Quantity {
			stale = true
			break
		}
	}
	if stale {
		return apperror.New(apperror.CodeStateConflict, "selection changed since it was priced").
			WithDetails(map[string]any{"checkoutId": sess.ID, "reprice": true})
	}
	return nil
}

// CancelPayment returns to Ready; the selection is untouched. Cancelling
// claims the intent's confirmation key, so an intent that is already being
// confirmed cannot be cancelled and a cancelled intent cannot be confirmed.
func (s *Service) CancelPayment(ctx context.Context, userID string) (*Session, error) {
	sess, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !canTransition(sess.State, StateReady) || sess.Intent == nil {
		return nil, transitionError(sess.State, StateReady)
	}

	key := cache.IdempotencyKey("checkout", sess.Intent.ID)
	claimed, err := s.deps.Idempotency.SetNX(ctx, key, "cancelled:"+sess.ID, s.settings.IdempotencyTTL)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeDependency, err, "could not cancel payment")
	}
	if !claimed {
		return nil, apperror.New(apperror.CodeStateConflict, "payment is already being confirmed").
			WithDetails(map[string]any{"checkoutId": sess.ID, "intentId": sess.Intent.ID})
	}

	if err := s.move(ctx, sess, StateReady); err != nil {
		return nil, err
	}
	sess.Intent = nil
	if err := s.deps.Sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// ConfirmPayment charges the open intent and, once paid, writes the orders.
// Each intent can be confirmed once.
func (s *Service) ConfirmPayment(ctx context.Context, userID, sourceToken string) (*Session, error) {
	sess, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !canTransition(sess.State, StateFulfilling) || sess.Intent == nil {
		return nil, transitionError(sess.State, StateFulfilling)
	}
	ctx = s.deps.Logger.WithFields(ctx, map[string]any{
		"user_id":     userID,
		"checkout_id": sess.ID,
		"intent_id":   sess.Intent.ID,
	})

	key := cache.IdempotencyKey("checkout", sess.Intent.ID)
	claimed, err := s.deps.Idempotency.SetNX(ctx, key, sess.ID, s.settings.IdempotencyTTL)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeDependency, err, "could not reserve payment confirmation")
	}
	if !claimed {
		if _, err := s.reloadPending(ctx, userID, sess.Intent.ID); apperror.CodeOf(err) == apperror.CodeStateConflict {
			return nil, err
		}
		return nil, apperror.New(apperror.CodeIdempotency, "payment already being confirmed").
			WithDetails(map[string]any{"checkoutId": sess.ID, "intentId": sess.Intent.ID})
	}

	// The session may have moved between the first load and the claim.
	sess, err = s.reloadPending(ctx, userID, sess.Intent.ID)
	if err != nil {
		s.release(ctx, key)
		return nil, err
	}

	charge, err := s.deps.Gateway.Charge(ctx, payment.ChargeRequest{
		IntentID:    sess.Intent.ID,
		AmountMinor: sess.Intent.AmountMinor,
		Currency:    sess.Intent.Currency,
		Description: sess.Intent.Description,
		SourceToken: sourceToken,
		ShopperRef:  userID,
	})
	if err != nil {
		return nil, s.chargeFailed(ctx, sess, key, err)
	}

	sess.PaymentRef = charge.Reference
	if err := s.move(ctx, sess, StateFulfilling); err != nil {
		return nil, err
	}
	if err := s.deps.Sessions.Save(ctx, sess); err != nil {
		s.deps.Logger.Error(ctx, "could not persist fulfilling session", err)
	}
	return s.fulfil(ctx, sess)
}

// reloadPending reads the session again and checks that intentID is still
// the open intent awaiting payment.
func (s *Service) reloadPending(ctx context.Context, userID, intentID string) (*Session, error) {
	sess, err := s.deps.Sessions.Load(ctx, userID)
	if errors.Is(err, errNoSession) {
		return nil, apperror.New(apperror.CodeStateConflict, "payment intent is no longer open").
			WithDetails(map[string]any{"intentId": intentID})
	}
	if err != nil {
		return nil, err
	}
	if sess.State != StatePaymentPending || sess.Intent == nil || sess.Intent.ID != intentID {
		return nil, apperror.New(apperror.CodeStateConflict, "payment intent is no longer open").
			WithDetails(map[string]any{"checkoutId": sess.ID, "intentId": intentID, "state": sess.State})
	}
	return sess, nil
}

func (s *Service) release(ctx context.Context, key string) {
	if err := s.deps.Idempotency.Del(ctx, key); err != nil {
		s.deps.Logger.WarnErr(ctx, "could not release payment confirmation key", err)
	}
}

// chargeFailed puts the session back to Ready and frees the intent key so
// the shopper can try again.
func (s *Service) chargeFailed(ctx context.Context, sess *Session, key string, chargeErr error) error {
	s.release(ctx, key)
	if err := s.move(ctx, sess, StateReady); err != nil {
		return err
	}
	sess.Intent = nil
	if err := s.deps.Sessions.Save(ctx, sess); err != nil {
		return err
	}

	if errors.Is(chargeErr, payment.ErrDeclined) {
		s.deps.Logger.WarnErr(ctx, "payment declined", chargeErr)
		if typed := apperror.As(chargeErr); typed != nil && typed.Code() == apperror.CodePaymentDeclined {
			return typed
		}
		return apperror.Wrap(apperror.CodePaymentDeclined, chargeErr, "payment was declined").
			WithDetails(map[string]any{"checkoutId": sess.ID})
	}
	s.deps.Logger.Error(ctx, "payment gateway error", chargeErr)
	if typed := apperror.As(chargeErr); typed != nil {
		return typed
	}
	return apperror.Wrap(apperror.CodeDependency, chargeErr, "payment could not be processed")
}

func (s *Service) fulfil(ctx context.Context, sess *Session) (*Session, error) {
	started := s.now()
	p := plan{
		items:     s.deps.FoodItems,
		orders:    s.deps.Orders,
		cart:      s.deps.Cart,
		publisher: s.deps.Events,
		onLine:    s.deps.Metrics.IncOrderLine,
		warn:      s.deps.Logger.WarnErr,
	}
	orders, report := p.run(ctx, sess, s.settings.Currency, s.stamp())
	s.deps.Metrics.ObserveFulfilment(s.now().Sub(started))
	sess.Orders = orders

	if report.Complete() {
		if err := s.deps.Selections.Clear(ctx, sess.UserID); err != nil {
			s.deps.Logger.WarnErr(ctx, "could not clear selection after checkout", err)
		}
		if err := s.move(ctx, sess, StateCompleted); err != nil {
			return nil, err
		}
		sess.Redirect = RedirectOrders
		sess.RedirectAfter = s.settings.RedirectDelay.Milliseconds()
		if err := s.deps.Sessions.Save(ctx, sess); err != nil {
			s.deps.Logger.WarnErr(ctx, "could not persist completed session", err)
		}
		s.deps.Logger.Info(ctx, fmt.Sprintf("checkout completed with %d orders", len(orders)))
		return sess, nil
	}

	s.deps.Logger.Error(ctx, "checkout fulfilment stopped part way", report.Err())
	rec, err := s.deps.Reconciliations.Insert(ctx, docstore.Reconciliations,
		reconciliationData(sess, report, orders, s.settings.Currency, s.stamp()))
	if err != nil {
		s.deps.Logger.Error(ctx, "could not record reconciliation", err)
	} else {
		report.ReconciliationID = rec.ID
	}
	s.dropEmitted(ctx, sess.UserID, report.Emitted)

	sess.Report = report
	if err := s.move(ctx, sess, StateFailed); err != nil {
		return nil, err
	}
	if err := s.deps.Sessions.Save(ctx, sess); err != nil {
		s.deps.Logger.WarnErr(ctx, "could not persist failed session", err)
	}
	return sess, apperror.Wrap(apperror.CodeFulfilmentPartial, report.Err(), "some orders could not be placed").
		WithDetails(map[string]any{
			"checkoutId":       sess.ID,
			"paymentReference": sess.PaymentRef,
			"emitted":          report.Emitted,
			"failed":           report.Failed,
			"notAttempted":     report.NotAttempted,
			"reconciliationId": report.ReconciliationID,
		})
}

// dropEmitted removes lines that became orders so only unplaced lines stay
// selected.
func (s *Service) dropEmitted(ctx context.Context, userID string, emitted []string) {
	if len(emitted) == 0 {
		return
	}
	sel, err := s.deps.Selections.Load(ctx, userID)
	if err != nil {
		s.deps.Logger.WarnErr(ctx, "could not load selection to drop placed lines", err)
		return
	}
	for _, id := range emitted {
		sel.Remove(id)
	}
	if err := s.deps.Selections.Save(ctx, userID, sel); err != nil {
		s.deps.Logger.WarnErr(ctx, "could not save selection after dropping placed lines", err)
	}
}

func describe(s *Summary) string {
	names := make([]string, 0, len(s.Lines))
	seen := map[string]bool{}
	for _, lp := range s.Lines {
		if n := lp.Line.HotelName; n != "" && !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return fmt.Sprintf("%d items", s.TotalItems)
	}
	return fmt.Sprintf("%d items from %s", s.TotalItems, strings.Join(names, ", "))
}
