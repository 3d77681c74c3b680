package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	sq "github.com/square/square-go-sdk"
	sqclient "github.com/square/square-go-sdk/client"
	sqcore "github.com/square/square-go-sdk/core"
	sqoption "github.com/square/square-go-sdk/option"

	"github.com/wichananm65/food-order-backend/internal/apperror"
	"github.com/wichananm65/food-order-backend/internal/infrastructure/config"
	"github.com/wichananm65/food-order-backend/internal/infrastructure/logger"
)

const (
	sandboxEnv    = "sandbox"
	productionEnv = "production"

	paymentMethodErrorCategory = "PAYMENT_METHOD_ERROR"
)

var baseURLs = map[string]string{
	sandboxEnv:    "https://connect.squareupsandbox.com",
	productionEnv: "https://connect.squareup.com",
}

type paymentsAPI interface {
	Create(ctx context.Context, request *sq.CreatePaymentRequest, opts ...sqoption.RequestOption) (*sq.CreatePaymentResponse, error)
}

// Square charges the card nonce produced by the Web Payments SDK.
type Square struct {
	payments   paymentsAPI
	locationID string
	logger     *logger.Logger
}

func NewSquare(ctx context.Context, cfg config.SquareConfig, logg *logger.Logger) (*Square, error) {
	token := strings.TrimSpace(cfg.AccessToken)
	if token == "" {
		return nil, errors.New("square access token is required")
	}
	env := strings.ToLower(strings.TrimSpace(cfg.Env))
	baseURL, ok := baseURLs[env]
	if !ok {
		return nil, fmt.Errorf("square environment must be %q or %q", sandboxEnv, productionEnv)
	}
	sdk := sqclient.NewClient(
		sqoption.WithBaseURL(baseURL),
		sqoption.WithToken(token),
	)
	if logg != nil {
		logg.Info(logg.WithField(ctx, "environment", env), "square gateway initialized")
	}
	return &Square{payments: sdk.Payments, locationID: cfg.LocationID, logger: logg}, nil
}

func (s *Square) Charge(ctx context.Context, req ChargeRequest) (Charge, error) {
	if strings.TrimSpace(req.SourceToken) == "" {
		return Charge{}, ErrDeclined
	}
	request := &sq.CreatePaymentRequest{
		IdempotencyKey: req.IntentID,
		SourceID:       req.SourceToken,
		AmountMoney:    moneyPtr(req.AmountMinor, req.Currency),
		LocationID:     ptrString(s.locationID),
		Note:           ptrString(paymentNote(req)),
		ReferenceID:    ptrString(req.IntentID),
	}
	s.log(ctx, "request", map[string]any{"intent_id": req.IntentID, "amount": req.AmountMinor, "currency": req.Currency})

	resp, err := s.payments.Create(ctx, request)
	if err != nil {
		s.log(ctx, "error", map[string]any{"intent_id": req.IntentID, "error": err.Error()})
		return Charge{}, mapSquareError(err)
	}

	p := resp.GetPayment()
	status := stringValue(p.GetStatus())
	s.log(ctx, "response", map[string]any{"payment_id": stringValue(p.GetID()), "status": status})
	switch status {
	case "FAILED", "CANCELED":
		return Charge{}, ErrDeclined
	}
	return Charge{Reference: stringValue(p.GetID()), Status: status, Provider: "square"}, nil
}

func (s *Square) log(ctx context.Context, phase string, fields map[string]any) {
	if s.logger == nil {
		return
	}
	fields["operation"] = "create_payment"
	fields["phase"] = phase
	ctx = s.logger.WithFields(ctx, fields)
	if phase == "error" {
		s.logger.Error(ctx, "square create_payment", errors.New(fmt.Sprint(fields["error"])))
		return
	}
	s.logger.Info(ctx, "square "+phase)
}

func mapSquareError(err error) error {
	var apiErr *sqcore.APIError
	if !errors.As(err, &apiErr) {
		return apperror.Wrap(apperror.CodeDependency, err, "square create payment failed")
	}
	if apiErr.StatusCode == http.StatusPaymentRequired {
		return apperror.Wrap(apperror.CodePaymentDeclined, errors.Join(ErrDeclined, err), "card was declined")
	}
	for _, sqErr := range extractSquareErrors(apiErr) {
		if sqErr == nil {
			continue
		}
		if string(sqErr.Category) == paymentMethodErrorCategory {
			return apperror.Wrap(apperror.CodePaymentDeclined, errors.Join(ErrDeclined, err), "card was declined")
		}
		if sqErr.Code == sq.ErrorCodeIdempotencyKeyReused {
			return apperror.Wrap(apperror.CodeIdempotency, err, "payment already submitted")
		}
	}
	return apperror.Wrap(domainCodeForStatus(apiErr.StatusCode), err, "square create payment failed")
}

func extractSquareErrors(apiErr *sqcore.APIError) []*sq.Error {
	inner := apiErr.Unwrap()
	if inner == nil {
		return nil
	}
	raw := strings.TrimSpace(inner.Error())
	if raw == "" {
		return nil
	}
	var payload struct {
		Errors []*sq.Error `json:"errors"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil
	}
	return payload.Errors
}

func domainCodeForStatus(status int) apperror.Code {
	switch status {
	case http.StatusUnauthorized:
		return apperror.CodeUnauthorized
	case http.StatusForbidden:
		return apperror.CodeForbidden
	case http.StatusNotFound:
		return apperror.CodeNotFound
	case http.StatusConflict:
		return apperror.CodeConflict
	case http.StatusBadRequest:
		return apperror.CodeValidation
	default:
		if status >= 400 && status < 500 {
			return apperror.CodeValidation
		}
		return apperror.CodeDependency
	}
}

// paymentNote carries the shopper id for dashboard lookups; customer_id is
// reserved for Square customer ids.
func paymentNote(req ChargeRequest) string {
	ref := strings.TrimSpace(req.ShopperRef)
	if ref == "" {
		return req.Description
	}
	if req.Description == "" {
		return "shopper " + ref
	}
	return fmt.Sprintf("%s (shopper %s)", req.Description, ref)
}

func ptrString(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

func stringValue(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

func moneyPtr(amount int64, currency string) *sq.Money {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		code = "USD"
	}
	c := sq.Currency(code)
	return &sq.Money{Amount: &amount, Currency: &c}
}
