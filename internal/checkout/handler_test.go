package checkout

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

type sessionBody struct {
	ID      string `json:"checkoutId"`
	State   State  `json:"state"`
	Summary *struct {
		TotalPayable string `json:"totalPayable"`
	} `json:"summary"`
	Intent *struct {
		AmountMinor int64 `json:"amountMinor"`
	} `json:"paymentIntent"`
	Redirect      string `json:"redirect"`
	RedirectAfter int64  `json:"redirectAfterMs"`
	Error         *struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newCheckoutApp(t *testing.T) (*fiber.App, *fixture) {
	f := newFixture(t)
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"user_id": v}})
		}
		return c.Next()
	})
	NewHandler(f.svc).RegisterProtectedRoutes(app)
	return app, f
}

func call(t *testing.T, app *fiber.App, method, path, body, userID string) (int, sessionBody) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer res.Body.Close()
	var out sessionBody
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode %s %s: %v", method, path, err)
	}
	return res.StatusCode, out
}

func TestCheckoutRoutes_HappyPath(t *testing.T) {
	app, f := newCheckoutApp(t)
	f.selectLines(t, paneer("c1", 2))

	status, got := call(t, app, "POST", "/api/v1/checkout", "", "u1")
	if status != fiber.StatusOK {
		t.Fatalf("begin status = %d", status)
	}
	if got.State != StateReady || got.Summary == nil || got.Summary.TotalPayable != "232" {
		t.Fatalf("unexpected begin response: %+v", got)
	}

	status, got = call(t, app, "POST", "/api/v1/checkout/payment", "", "u1")
	if status != fiber.StatusCreated {
		t.Fatalf("initiate status = %d", status)
	}
	if got.Intent == nil || got.Intent.AmountMinor != 23200 {
		t.Fatalf("unexpected intent: %+v", got.Intent)
	}

	status, got = call(t, app, "POST", "/api/v1/checkout/payment/confirm", `{"sourceToken":"widget-ref-1"}`, "u1")
	if status != fiber.StatusOK {
		t.Fatalf("confirm status = %d (%+v)", status, got.Error)
	}
	if got.State != StateCompleted || got.Redirect != RedirectOrders || got.RedirectAfter != 3000 {
		t.Fatalf("unexpected confirm response: %+v", got)
	}

	status, got = call(t, app, "GET", "/api/v1/checkout", "", "u1")
	if status != fiber.StatusOK || got.State != StateCompleted {
		t.Fatalf("current = %d %+v", status, got)
	}
}

func TestCheckoutRoutes_Errors(t *testing.T) {
	app, f := newCheckoutApp(t)

	status, got := call(t, app, "POST", "/api/v1/checkout", "", "")
	if status != fiber.StatusUnauthorized || got.Error.Details["redirect"] != "/login" {
		t.Fatalf("anonymous begin = %d %+v", status, got.Error)
	}

	status, got = call(t, app, "POST", "/api/v1/checkout", "", "u1")
	if status != fiber.StatusUnprocessableEntity || got.Error.Code != "SELECTION_EMPTY" {
		t.Fatalf("empty begin = %d %+v", status, got.Error)
	}
	if got.Error.Details["redirect"] != RedirectCart {
		t.Fatalf("empty begin should send the shopper to the cart: %+v", got.Error.Details)
	}

	f.selectLines(t, paneer("c1", 1))
	status, _ = call(t, app, "POST", "/api/v1/checkout", "", "u1")
	if status != fiber.StatusOK {
		t.Fatalf("begin status = %d", status)
	}

	status, got = call(t, app, "POST", "/api/v1/checkout/payment/confirm", `{"sourceToken":"x"}`, "u1")
	if status != fiber.StatusUnprocessableEntity || got.Error.Code != "STATE_CONFLICT" {
		t.Fatalf("confirm before initiate = %d %+v", status, got.Error)
	}

	call(t, app, "POST", "/api/v1/checkout/payment", "", "u1")
	status, got = call(t, app, "POST", "/api/v1/checkout/payment/confirm", `{}`, "u1")
	if status != fiber.StatusBadRequest || got.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("confirm without token = %d %+v", status, got.Error)
	}

	status, got = call(t, app, "POST", "/api/v1/checkout/payment/cancel", "", "u1")
	if status != fiber.StatusOK || got.State != StateReady {
		t.Fatalf("cancel = %d %+v", status, got)
	}
}
