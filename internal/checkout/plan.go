package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/wichananm65/food-order-backend/internal/infrastructure/docstore"
	"github.com/wichananm65/food-order-backend/internal/infrastructure/events"
	"github.com/wichananm65/food-order-backend/internal/order"
	"go.uber.org/multierr"
)

type OrderWriter interface {
	Create(ctx context.Context, o order.Order) (order.Order, error)
}

// CartPruner deletes every persisted cart line a shopper holds for a food item.
type CartPruner interface {
	RemoveFoodItem(ctx context.Context, userID, foodItemID string) (int, error)
}

// ReconciliationWriter records fulfilments that stopped part way.
type ReconciliationWriter interface {
	Insert(ctx context.Context, collection string, data map[string]any) (docstore.Document, error)
}

// FailedLine names the line whose order could not be written.
type FailedLine struct {
	LineID string `json:"lineId"`
	Reason string `json:"reason"`
}

// Report is the outcome of running the fulfilment plan.
type Report struct {
	Emitted          []string    `json:"emitted"`
	Failed           *FailedLine `json:"failed,omitempty"`
	NotAttempted     []string    `json:"notAttempted"`
	ReconciliationID string      `json:"reconciliationId,omitempty"`

	err error
}

// Complete reports whether every line became an order.
func (r *Report) Complete() bool {
	return r.Failed == nil && len(r.NotAttempted) == 0
}

// Err returns every failure seen while fulfilling, including non-fatal ones.
func (r *Report) Err() error {
	return r.err
}

// plan writes one order per priced line. Steps run strictly in order:
// resolve every restaurant, then for each line write its order and prune the
// cart. The first order that cannot be written stops the plan; nothing
// already written is undone.
type plan struct {
	items     FoodItemLookup
	orders    OrderWriter
	cart      CartPruner
	publisher events.Publisher
	onLine    func(outcome string)
	warn      func(ctx context.Context, msg string, err error)
}

func (p plan) run(ctx context.Context, sess *Session, currency string, now time.Time) ([]order.Order, *Report) {
	lines := sess.Summary.Lines
	report := &Report{Emitted: []string{}, NotAttempted: []string{}}

	restaurants := make([]string, len(lines))
	for i, lp := range lines {
		rid, err := p.items.RestaurantOf(ctx, lp.Line.FoodItemID)
		if err != nil {
			report.Failed = &FailedLine{LineID: lp.Line.ID, Reason: "restaurant lookup failed"}
			report.err = multierr.Append(report.err, fmt.Errorf("resolve restaurant for line %s: %w", lp.Line.ID, err))
			// no order is written before every restaurant is known
			report.NotAttempted = append(lineIDs(lines[:i]), lineIDs(lines[i+1:])...)
			return nil, report
		}
		restaurants[i] = rid
	}

	created := make([]order.Order, 0, len(lines))
	for i, lp := range lines {
		o, err := p.orders.Create(ctx, p.orderFor(sess, lp, restaurants[i], currency, now))
		if err != nil {
			p.outcome("failed")
			report.Failed = &FailedLine{LineID: lp.Line.ID, Reason: "order could not be saved"}
			report.err = multierr.Append(report.err, fmt.Errorf("write order for line %s: %w", lp.Line.ID, err))
			report.NotAttempted = lineIDs(lines[i+1:])
			return created, report
		}
		p.outcome("emitted")
		created = append(created, o)
		report.Emitted = append(report.Emitted, lp.Line.ID)

		if _, err := p.cart.RemoveFoodItem(ctx, sess.UserID, lp.Line.FoodItemID); err != nil {
			err = fmt.Errorf("prune cart for food item %s: %w", lp.Line.FoodItemID, err)
			report.err = multierr.Append(report.err, err)
			p.warning(ctx, "cart prune failed after order was written", err)
		}
		if err := p.publisher.PublishOrderPlaced(ctx, placedEvent(o)); err != nil {
			err = fmt.Errorf("publish order %s: %w", o.ID, err)
			report.err = multierr.Append(report.err, err)
			p.warning(ctx, "order event not published", err)
		}
	}
	return created, report
}

func (p plan) orderFor(sess *Session, lp LinePrice, restaurantID, currency string, now time.Time) order.Order {
	s := sess.Summary
	return order.Order{
		CheckoutID:       sess.ID,
		UserID:           sess.UserID,
		FoodItemID:       lp.Line.FoodItemID,
		RestaurantID:     restaurantID,
		Name:             lp.Line.Name,
		HotelName:        lp.Line.HotelName,
		Image:            lp.Line.Image,
		Quantity:         lp.Line.Quantity,
		UnitPrice:        lp.Line.Price,
		Subtotal:         lp.Discounted,
		DiscountAmount:   lp.Discount,
		DeliveryFee:      s.DeliveryFeeCharged,
		PlatformFee:      s.PlatformFee,
		Tax:              s.Tax,
		Total:            s.TotalPayable,
		Currency:         currency,
		PaymentReference: sess.PaymentRef,
		Status:           order.StatusPlaced,
		CreatedAt:        now,
	}
}

func (p plan) outcome(v string) {
	if p.onLine != nil {
		p.onLine(v)
	}
}

func (p plan) warning(ctx context.Context, msg string, err error) {
	if p.warn != nil {
		p.warn(ctx, msg, err)
	}
}

func placedEvent(o order.Order) events.OrderPlaced {
	return events.OrderPlaced{
		OrderID:      o.ID,
		UserID:       o.UserID,
		RestaurantID: o.RestaurantID,
		FoodItemID:   o.FoodItemID,
		Quantity:     o.Quantity,
		Total:        o.Subtotal,
		PaymentRef:   o.PaymentReference,
		PlacedAt:     o.CreatedAt,
	}
}

func lineIDs(lines []LinePrice) []string {
	out := make([]string, 0, len(lines))
	for _, lp := range lines {
		out = append(out, lp.Line.ID)
	}
	return out
}

func reconciliationData(sess *Session, report *Report, orders []order.Order, currency string, now time.Time) map[string]any {
	orderIDs := make([]string, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
	}
	data := map[string]any{
		"checkoutId":       sess.ID,
		"userId":           sess.UserID,
		"paymentReference": sess.PaymentRef,
		"amount":           sess.Summary.TotalPayable.String(),
		"currency":         currency,
		"emittedLineIds":   report.Emitted,
		"orderIds":         orderIDs,
		"notAttempted":     report.NotAttempted,
		"status":           "open",
		"createdAt":        now,
	}
	if report.Failed != nil {
		data["failedLineId"] = report.Failed.LineID
		data["reason"] = report.Failed.Reason
	}
	if report.err != nil {
		data["error"] = report.err.Error()
	}
	return data
}
