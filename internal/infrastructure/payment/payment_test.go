package payment

import (
	"context"
	"errors"
	"testing"

	sq "github.com/square/square-go-sdk"
	sqcore "github.com/square/square-go-sdk/core"
	sqoption "github.com/square/square-go-sdk/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/food-order-backend/internal/apperror"
	"github.com/wichananm65/food-order-backend/internal/infrastructure/config"
	"github.com/wichananm65/food-order-backend/internal/infrastructure/logger"
)

type fakePayments struct {
	got  *sq.CreatePaymentRequest
	resp *sq.CreatePaymentResponse
	err  error
}

func (f *fakePayments) Create(_ context.Context, req *sq.CreatePaymentRequest, _ ...sqoption.RequestOption) (*sq.CreatePaymentResponse, error) {
	f.got = req
	return f.resp, f.err
}

func strPtr(s string) *string { return &s }

func TestPassthroughUsesWidgetReference(t *testing.T) {
	gw := NewPassthrough()

	charge, err := gw.Charge(context.Background(), ChargeRequest{SourceToken: " pay_123 "})
	require.NoError(t, err)
	assert.Equal(t, "pay_123", charge.Reference)

	_, err = gw.Charge(context.Background(), ChargeRequest{})
	assert.ErrorIs(t, err, ErrDeclined)
}

func TestSquareChargeBuildsRequest(t *testing.T) {
	fake := &fakePayments{resp: &sq.CreatePaymentResponse{Payment: &sq.Payment{ID: strPtr("sq-pay-1"), Status: strPtr("COMPLETED")}}}
	gw := &Square{payments: fake, locationID: "LOC1", logger: logger.Nop()}

	charge, err := gw.Charge(context.Background(), ChargeRequest{
		IntentID:    "intent-1",
		AmountMinor: 25200,
		Currency:    "inr",
		Description: "Food order",
		SourceToken: "cnon:card-nonce-ok",
		ShopperRef:  "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, "sq-pay-1", charge.Reference)
	assert.Equal(t, "square", charge.Provider)

	require.NotNil(t, fake.got)
	assert.Equal(t, "intent-1", fake.got.IdempotencyKey)
	assert.Equal(t, "cnon:card-nonce-ok", fake.got.SourceID)
	require.NotNil(t, fake.got.AmountMoney)
	assert.EqualValues(t, 25200, *fake.got.AmountMoney.Amount)
	assert.Equal(t, sq.Currency("INR"), *fake.got.AmountMoney.Currency)
	assert.Equal(t, "LOC1", *fake.got.LocationID)
	assert.Nil(t, fake.got.CustomerID, "shopper ids are not Square customer ids")
	require.NotNil(t, fake.got.Note)
	assert.Equal(t, "Food order (shopper u1)", *fake.got.Note)
	assert.Equal(t, "intent-1", *fake.got.ReferenceID)
}

func TestPaymentNote(t *testing.T) {
	assert.Equal(t, "2 items", paymentNote(ChargeRequest{Description: "2 items"}))
	assert.Equal(t, "shopper u9", paymentNote(ChargeRequest{ShopperRef: "u9"}))
	assert.Equal(t, "2 items (shopper u9)", paymentNote(ChargeRequest{Description: "2 items", ShopperRef: " u9 "}))
}

func TestSquareChargeFailedStatusIsDecline(t *testing.T) {
	fake := &fakePayments{resp: &sq.CreatePaymentResponse{Payment: &sq.Payment{ID: strPtr("sq-pay-2"), Status: strPtr("FAILED")}}}
	gw := &Square{payments: fake}

	_, err := gw.Charge(context.Background(), ChargeRequest{IntentID: "i", AmountMinor: 1, SourceToken: "cnon:x"})
	assert.ErrorIs(t, err, ErrDeclined)
}

func TestSquareChargeMapsErrors(t *testing.T) {
	gw := &Square{payments: &fakePayments{err: &sqcore.APIError{StatusCode: 402}}}
	_, err := gw.Charge(context.Background(), ChargeRequest{IntentID: "i", AmountMinor: 1, SourceToken: "cnon:x"})
	assert.ErrorIs(t, err, ErrDeclined)
	assert.Equal(t, apperror.CodePaymentDeclined, apperror.CodeOf(err))

	gw = &Square{payments: &fakePayments{err: errors.New("dial tcp: timeout")}}
	_, err = gw.Charge(context.Background(), ChargeRequest{IntentID: "i", AmountMinor: 1, SourceToken: "cnon:x"})
	assert.Equal(t, apperror.CodeDependency, apperror.CodeOf(err))
	assert.NotErrorIs(t, err, ErrDeclined)
}

func TestNewSquareValidatesConfig(t *testing.T) {
	_, err := NewSquare(context.Background(), config.SquareConfig{Env: "sandbox"}, nil)
	assert.Error(t, err)

	_, err = NewSquare(context.Background(), config.SquareConfig{AccessToken: "tok", Env: "staging"}, nil)
	assert.Error(t, err)

	gw, err := NewSquare(context.Background(), config.SquareConfig{AccessToken: "tok", Env: "Sandbox"}, nil)
	require.NoError(t, err)
	assert.NotNil(t, gw.payments)
}

func TestDomainCodeForStatus(t *testing.T) {
	assert.Equal(t, apperror.CodeUnauthorized, domainCodeForStatus(401))
	assert.Equal(t, apperror.CodeValidation, domainCodeForStatus(422))
	assert.Equal(t, apperror.CodeDependency, domainCodeForStatus(503))
}
