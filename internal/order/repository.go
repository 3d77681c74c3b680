package order

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/food-order-backend/internal/infrastructure/docstore"
	"github.com/wichananm65/food-order-backend/internal/record"
)

var ErrNotFound = errors.New("order not found")

type Repository interface {
	Create(ctx context.Context, o Order) (Order, error)
	Get(ctx context.Context, id string) (Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	ListByRestaurant(ctx context.Context, restaurantID string) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
}

type DocstoreRepository struct {
	store docstore.Store
}

func NewDocstoreRepository(store docstore.Store) *DocstoreRepository {
	return &DocstoreRepository{store: store}
}

func (r *DocstoreRepository) Create(ctx context.Context, o Order) (Order, error) {
	doc, err := r.store.Insert(ctx, docstore.Orders, map[string]any{
		"checkoutId":       o.CheckoutID,
		"userId":           o.UserID,
		"foodItemId":       o.FoodItemID,
		"restaurantId":     o.RestaurantID,
		"name":             o.Name,
		"hotelName":        o.HotelName,
		"image":            o.Image,
		"quantity":         o.Quantity,
		"unitPrice":        o.UnitPrice.String(),
		"subtotal":         o.Subtotal.String(),
		"discountAmount":   o.DiscountAmount.String(),
		"deliveryFee":      o.DeliveryFee.String(),
		"platformFee":      o.PlatformFee.String(),
		"tax":              o.Tax.String(),
		"total":            o.Total.String(),
		"currency":         o.Currency,
		"paymentReference": o.PaymentReference,
		"status":           o.Status,
		"createdAt":        o.CreatedAt,
	})
	if err != nil {
		return Order{}, err
	}
	return fromDocument(doc)
}

func (r *DocstoreRepository) Get(ctx context.Context, id string) (Order, error) {
	doc, err := r.store.Get(ctx, docstore.Orders, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	return fromDocument(doc)
}

func (r *DocstoreRepository) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return r.find(ctx, docstore.Eq("userId", userID))
}

func (r *DocstoreRepository) ListByRestaurant(ctx context.Context, restaurantID string) ([]Order, error) {
	return r.find(ctx, docstore.Eq("restaurantId", restaurantID))
}

func (r *DocstoreRepository) ListAll(ctx context.Context) ([]Order, error) {
	return r.find(ctx)
}

func (r *DocstoreRepository) find(ctx context.Context, filters ...docstore.Filter) ([]Order, error) {
	docs, err := r.store.Find(ctx, docstore.Orders, filters...)
	if err != nil {
		return nil, err
	}
	out := make([]Order, 0, len(docs))
	for _, doc := range docs {
		o, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// fromDocument accepts createdAt as written by this service or as a
// {seconds, nanoseconds} timestamp from older imports.
func fromDocument(doc docstore.Document) (Order, error) {
	rd := record.NewReader(docstore.Orders, doc.ID, doc.Data)
	o := Order{
		ID:               doc.ID,
		CheckoutID:       rd.OptString("checkoutId"),
		UserID:           rd.String("userId"),
		FoodItemID:       rd.String("foodItemId"),
		RestaurantID:     rd.OptString("restaurantId"),
		Name:             rd.OptString("name"),
		HotelName:        rd.OptString("hotelName"),
		Image:            rd.OptString("image"),
		Quantity:         rd.Int("quantity"),
		UnitPrice:        rd.Decimal("unitPrice"),
		Subtotal:         rd.Decimal("subtotal"),
		DiscountAmount:   optDecimal(rd, "discountAmount"),
		DeliveryFee:      optDecimal(rd, "deliveryFee"),
		PlatformFee:      optDecimal(rd, "platformFee"),
		Tax:              optDecimal(rd, "tax"),
		Total:            rd.Decimal("total"),
		Currency:         rd.OptString("currency"),
		PaymentReference: rd.OptString("paymentReference"),
		Status:           rd.OptString("status"),
		CreatedAt:        doc.CreatedAt,
	}
	if t := rd.OptTime("createdAt"); t != nil {
		o.CreatedAt = *t
	}
	if err := rd.Err(); err != nil {
		return Order{}, err
	}
	if o.Status == "" {
		o.Status = StatusPlaced
	}
	return o, nil
}

func optDecimal(rd *record.Reader, field string) (d decimal.Decimal) {
	if v := rd.OptDecimal(field); v != nil {
		d = *v
	}
	return d
}
