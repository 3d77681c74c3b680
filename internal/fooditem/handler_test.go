package fooditem

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/food-order-backend/internal/infrastructure/docstore"
	"github.com/wichananm65/food-order-backend/internal/restaurant"
)

func setup(t *testing.T) (*fiber.App, *Service) {
	t.Helper()
	store := docstore.NewMemoryStore()
	store.Seed(docstore.Restaurants, "r1", map[string]any{"ownerId": "owner-1", "name": "Spice Hub", "deliveryFee": "30"})
	store.Seed(docstore.FoodItems, "f1", map[string]any{"restaurantId": "r1", "name": "Paneer Tikka", "price": "100", "discount": "10", "category": "starters", "deliveryTime": 25})
	store.Seed(docstore.FoodItems, "f2", map[string]any{"restaurantId": "r2", "name": "Dal", "price": json.Number("80"), "category": "mains"})

	restaurants := restaurant.NewService(restaurant.NewDocstoreRepository(store))
	svc := NewService(NewDocstoreRepository(store), restaurants)
	h := NewHandler(svc)

	app := fiber.New()
	h.RegisterPublicRoutes(app)
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"user_id": v, "role": c.Get("X-Role")}})
		}
		return c.Next()
	})
	h.RegisterProtectedRoutes(app)
	return app, svc
}

func TestListFoodItems_FilterByRestaurant(t *testing.T) {
	app, _ := setup(t)

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/food-items?restaurantId=r1", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var items []FoodItem
	if err := json.NewDecoder(res.Body).Decode(&items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 || items[0].ID != "f1" {
		t.Fatalf("unexpected items: %+v", items)
	}
	if items[0].Discount == nil || !items[0].Discount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("discount not carried: %+v", items[0].Discount)
	}
}

func TestGetFoodItem_NotFound(t *testing.T) {
	app, _ := setup(t)
	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/food-items/nope", nil))
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.StatusCode)
	}
}

func TestUpdateFoodItem_OwnerScoped(t *testing.T) {
	app, svc := setup(t)

	patch := func(userID, body string) int {
		req := httptest.NewRequest("PATCH", "/api/v1/food-items/f1", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", userID)
		req.Header.Set("X-Role", "restaurant_owner")
		res, err := app.Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		return res.StatusCode
	}

	if got := patch("owner-9", `{"price":"120"}`); got != fiber.StatusForbidden {
		t.Fatalf("expected 403 for foreign owner, got %d", got)
	}
	if got := patch("owner-1", `{"discount":"150"}`); got != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for discount over 100, got %d", got)
	}
	if got := patch("owner-1", `{"price":"120","clearDiscount":true}`); got != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", got)
	}

	item, err := svc.GetByID(context.Background(), "f1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !item.Price.Equal(decimal.NewFromInt(120)) || item.Discount != nil {
		t.Fatalf("unexpected item after patch: %+v", item)
	}
}

func TestRestaurantOf(t *testing.T) {
	_, svc := setup(t)
	id, err := svc.RestaurantOf(context.Background(), "f2")
	if err != nil || id != "r2" {
		t.Fatalf("RestaurantOf = %q, %v", id, err)
	}
	if _, err := svc.RestaurantOf(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
