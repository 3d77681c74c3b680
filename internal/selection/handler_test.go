package selection

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/wichananm65/food-order-backend/internal/apperror"
	"github.com/wichananm65/food-order-backend/internal/cart"
	"github.com/wichananm65/food-order-backend/internal/infrastructure/cache"
)

type fakeCart struct {
	lines map[string]cart.Line
}

func (f fakeCart) Lines(_ context.Context, userID string, ids []string) ([]cart.Line, error) {
	out := make([]cart.Line, 0, len(ids))
	for _, id := range ids {
		l, ok := f.lines[id]
		if !ok || l.UserID != userID {
			return nil, cart.ErrNotFound
		}
		if l.Quantity > 0 {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeGuard struct {
	locked bool
}

func (g *fakeGuard) SelectionLocked(context.Context, string) error {
	if g.locked {
		return apperror.New(apperror.CodeStateConflict, "selection is locked while payment is in progress")
	}
	return nil
}

func newSelectionApp() (*fiber.App, *Repository) {
	app, repo, _ := newGuardedSelectionApp()
	return app, repo
}

func newGuardedSelectionApp() (*fiber.App, *Repository, *fakeGuard) {
	repo := NewRepository(cache.NewMemory(), time.Hour)
	carts := fakeCart{lines: map[string]cart.Line{
		"c1": {ID: "c1", UserID: "u1", FoodItemID: "f1", Quantity: 2},
		"c2": {ID: "c2", UserID: "u1", FoodItemID: "f2", Quantity: 1},
		"c0": {ID: "c0", UserID: "u1", FoodItemID: "f3", Quantity: 0},
	}}
	guard := &fakeGuard{}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"user_id": v}})
		}
		return c.Next()
	})
	NewHandler(repo, carts, guard).RegisterProtectedRoutes(app)
	return app, repo, guard
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, selectionResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-User-ID", "u1")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	var out selectionResponse
	if res.StatusCode == fiber.StatusOK {
		_ = json.NewDecoder(res.Body).Decode(&out)
	}
	return res.StatusCode, out
}

func TestSelectionFlow(t *testing.T) {
	app, repo := newSelectionApp()

	status, sel := do(t, app, "PUT", "/api/v1/checkout/selection", `{"lineIds":["c2","c0","c1"]}`)
	if status != fiber.StatusOK {
		t.Fatalf("replace: expected 200, got %d", status)
	}
	if sel.Count != 2 || sel.Items[0].ID != "c2" || sel.Items[1].ID != "c1" {
		t.Fatalf("unexpected selection: %+v", sel)
	}

	status, sel = do(t, app, "PATCH", "/api/v1/checkout/selection/c1", `{"quantity":5}`)
	if status != fiber.StatusOK || sel.Items[1].Quantity != 5 {
		t.Fatalf("update: status %d, selection %+v", status, sel)
	}

	// zero quantity from the caller removes the line
	status, sel = do(t, app, "PATCH", "/api/v1/checkout/selection/c2", `{"quantity":0}`)
	if status != fiber.StatusOK || sel.Count != 1 || sel.Items[0].ID != "c1" {
		t.Fatalf("zero update: status %d, selection %+v", status, sel)
	}

	status, sel = do(t, app, "DELETE", "/api/v1/checkout/selection/missing", "")
	if status != fiber.StatusOK || sel.Count != 1 {
		t.Fatalf("remove absent: status %d, selection %+v", status, sel)
	}

	status, _ = do(t, app, "DELETE", "/api/v1/checkout/selection", "")
	if status != fiber.StatusNoContent {
		t.Fatalf("clear: expected 204, got %d", status)
	}
	s, _ := repo.Load(context.Background(), "u1")
	if !s.IsEmpty() {
		t.Fatalf("expected empty selection after clear")
	}
}

func TestSelectionReplace_UnknownLine(t *testing.T) {
	app, _ := newSelectionApp()
	status, _ := do(t, app, "PUT", "/api/v1/checkout/selection", `{"lineIds":["nope"]}`)
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
}

func TestSelection_Unauthorized(t *testing.T) {
	app, _ := newSelectionApp()
	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/checkout/selection", nil))
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}
}

func TestSelection_LockedDuringPayment(t *testing.T) {
	app, repo, guard := newGuardedSelectionApp()
	status, _ := do(t, app, "PUT", "/api/v1/checkout/selection", `{"lineIds":["c1","c2"]}`)
	if status != fiber.StatusOK {
		t.Fatalf("replace: expected 200, got %d", status)
	}

	guard.locked = true
	edits := []struct{ method, path, body string }{
		{"PUT", "/api/v1/checkout/selection", `{"lineIds":["c2"]}`},
		{"PATCH", "/api/v1/checkout/selection/c1", `{"quantity":9}`},
		{"DELETE", "/api/v1/checkout/selection/c1", ""},
		{"DELETE", "/api/v1/checkout/selection", ""},
	}
	for _, e := range edits {
		if status, _ := do(t, app, e.method, e.path, e.body); status != fiber.StatusUnprocessableEntity {
			t.Fatalf("%s %s: expected 422, got %d", e.method, e.path, status)
		}
	}

	// reads stay open
	status, sel := do(t, app, "GET", "/api/v1/checkout/selection", "")
	if status != fiber.StatusOK || sel.Count != 2 || sel.Items[0].Quantity != 2 {
		t.Fatalf("get: status %d, selection %+v", status, sel)
	}
	s, _ := repo.Load(context.Background(), "u1")
	if s.Len() != 2 {
		t.Fatalf("locked edits must not change the selection, got %d lines", s.Len())
	}
}
