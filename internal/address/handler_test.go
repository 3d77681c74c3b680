package address

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/wichananm65/food-order-backend/internal/infrastructure/docstore"
)

func makeAppWithAddressHandler(a *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"user_id": v}})
		}
		return c.Next()
	})
	a.RegisterProtectedRoutes(app)
	return app
}

func TestAddressRoute(t *testing.T) {
	store := docstore.NewMemoryStore()
	store.Seed(docstore.Addresses, "a1", map[string]any{"userId": "42", "address": "123 Main", "type": "Home", "isDefault": true})
	store.Seed(docstore.Addresses, "a9", map[string]any{"userId": "7", "address": "elsewhere", "type": "Office"})
	svc := NewService(NewDocstoreRepository(store))
	app := makeAppWithAddressHandler(NewHandler(svc))

	routes := map[string]bool{}
	for _, grp := range app.Stack() {
		for _, r := range grp {
			routes[r.Path] = true
		}
	}
	if !routes["/api/v1/address"] {
		t.Fatalf("expected /api/v1/address registered")
	}

	// unauthorized
	req := httptest.NewRequest("GET", "/api/v1/address", nil)
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}

	// authorized GET returns only the caller's addresses
	req2 := httptest.NewRequest("GET", "/api/v1/address", nil)
	req2.Header.Set("X-User-ID", "42")
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res2.StatusCode)
	}
	b, _ := io.ReadAll(res2.Body)
	if !strings.Contains(string(b), "123 Main") || strings.Contains(string(b), "elsewhere") {
		t.Fatalf("unexpected body: %s", string(b))
	}

	// POST new address
	req3 := httptest.NewRequest("POST", "/api/v1/address", strings.NewReader(`{"address":"foo","type":"office"}`))
	req3.Header.Set("Content-Type", "application/json")
	req3.Header.Set("X-User-ID", "42")
	res3, _ := app.Test(req3)
	if res3.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201 for add, got %d", res3.StatusCode)
	}
	var created Address
	if err := json.NewDecoder(res3.Body).Decode(&created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.Type != TypeOffice || created.IsDefault {
		t.Fatalf("unexpected created address: %+v", created)
	}

	req4 := httptest.NewRequest("PATCH", "/api/v1/address/"+created.ID, strings.NewReader(`{"address":"bar"}`))
	req4.Header.Set("Content-Type", "application/json")
	req4.Header.Set("X-User-ID", "42")
	res4, _ := app.Test(req4)
	if res4.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for patch, got %d", res4.StatusCode)
	}
	b4, _ := io.ReadAll(res4.Body)
	if !strings.Contains(string(b4), "bar") {
		t.Fatalf("patch response unexpected: %s", string(b4))
	}

	// another shopper's address is invisible
	req5 := httptest.NewRequest("DELETE", "/api/v1/address/a9", nil)
	req5.Header.Set("X-User-ID", "42")
	res5, _ := app.Test(req5)
	if res5.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 deleting foreign address, got %d", res5.StatusCode)
	}

	req6 := httptest.NewRequest("DELETE", "/api/v1/address/"+created.ID, nil)
	req6.Header.Set("X-User-ID", "42")
	res6, _ := app.Test(req6)
	if res6.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204 for delete, got %d", res6.StatusCode)
	}
	req7 := httptest.NewRequest("GET", "/api/v1/address", nil)
	req7.Header.Set("X-User-ID", "42")
	res7, _ := app.Test(req7)
	b7, _ := io.ReadAll(res7.Body)
	if strings.Contains(string(b7), "bar") {
		t.Fatalf("delete did not remove entry: %s", string(b7))
	}
}

func TestSetDefault_ClearsPriorDefault(t *testing.T) {
	store := docstore.NewMemoryStore()
	store.Seed(docstore.Addresses, "a1", map[string]any{"userId": "42", "address": "first", "isDefault": true})
	store.Seed(docstore.Addresses, "a2", map[string]any{"userId": "42", "address": "second"})
	svc := NewService(NewDocstoreRepository(store))
	app := makeAppWithAddressHandler(NewHandler(svc))

	req := httptest.NewRequest("POST", "/api/v1/address/a2/default", nil)
	req.Header.Set("X-User-ID", "42")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	addrs, err := svc.GetAddresses(context.Background(), "42")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	defaults := 0
	for _, a := range addrs {
		if a.IsDefault {
			defaults++
			if a.ID != "a2" {
				t.Fatalf("wrong default: %s", a.ID)
			}
		}
	}
	if defaults != 1 {
		t.Fatalf("expected exactly one default, got %d", defaults)
	}

	def, err := svc.GetDefault(context.Background(), "42")
	if err != nil || def.Address != "second" {
		t.Fatalf("GetDefault = %+v, %v", def, err)
	}
}

func TestGetDefault_NoneOnFile(t *testing.T) {
	svc := NewService(NewDocstoreRepository(docstore.NewMemoryStore()))
	app := makeAppWithAddressHandler(NewHandler(svc))

	req := httptest.NewRequest("GET", "/api/v1/address/default", nil)
	req.Header.Set("X-User-ID", "42")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.StatusCode)
	}
}
