package user

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/wichananm65/food-order-backend/internal/infrastructure/docstore"
)

// helper to build an app with a simple "bootstrap" middleware that injects a
// jwt.Token into locals when the X-User-ID header is provided. This avoids
// pulling in the full jwtware middleware and keeps tests lightweight.
func makeAppWithUserHandler(uHandler *Handler) *fiber.App {
	app := fiber.New()
	uHandler.RegisterPublicRoutes(app)
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			claims := jwt.MapClaims{"user_id": v, "role": c.Get("X-Role")}
			c.Locals("user", &jwt.Token{Claims: claims})
		}
		return c.Next()
	})
	uHandler.RegisterProtectedRoutes(app)
	return app
}

func seededService(t *testing.T) (*Service, *docstore.MemoryStore) {
	t.Helper()
	store := docstore.NewMemoryStore()
	store.Seed(docstore.Users, "u-7", map[string]any{
		"email":     "j@example.com",
		"password":  "hashed",
		"firstName": "Jenny",
		"lastName":  "Test",
		"phone":     "123",
		"role":      "customer",
	})
	return NewService(NewDocstoreRepository(store)), store
}

func TestProfileRoute_RegistrationAndAuth(t *testing.T) {
	service, _ := seededService(t)
	app := makeAppWithUserHandler(NewHandler(service, "secret", time.Hour))

	routes := map[string]bool{}
	for _, grp := range app.Stack() {
		for _, r := range grp {
			routes[r.Path] = true
		}
	}
	if !routes["/api/v1/profile"] {
		t.Fatalf("expected route '/api/v1/profile' to be registered")
	}

	// unauthorized request should yield 401 with a login redirect
	req := httptest.NewRequest("GET", "/api/v1/profile", nil)
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("profile request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected unauthorized status, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), `"redirect":"/login"`) {
		t.Fatalf("expected login redirect, got %s", string(b))
	}

	req2 := httptest.NewRequest("GET", "/api/v1/profile", nil)
	req2.Header.Set("X-User-ID", "u-7")
	res2, err := app.Test(req2)
	if err != nil {
		t.Fatalf("authorized profile request failed: %v", err)
	}
	if res2.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 OK for authorized profile, got %d", res2.StatusCode)
	}

	b2, _ := io.ReadAll(res2.Body)
	body := string(b2)
	if !strings.Contains(body, "j@example.com") {
		t.Fatalf("response body does not contain expected email, got %s", body)
	}
	if strings.Contains(body, "hashed") {
		t.Fatalf("password leaked in profile response: %s", body)
	}
}

func TestProfileUpdate_PartialFields(t *testing.T) {
	service, _ := seededService(t)
	app := makeAppWithUserHandler(NewHandler(service, "secret", time.Hour))

	req := httptest.NewRequest("PATCH", "/api/v1/profile", strings.NewReader(`{"phone":"999"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "u-7")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	got, err := service.GetByID(context.Background(), "u-7")
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Phone != "999" || got.FirstName != "Jenny" {
		t.Fatalf("unexpected profile after patch: %+v", got)
	}
}

func TestSignUpThenSignIn(t *testing.T) {
	service, _ := seededService(t)
	app := makeAppWithUserHandler(NewHandler(service, "secret", time.Hour))

	signUp := `{"email":"New@Example.com","password":"supersecret","firstName":"N","lastName":"U","phone":"1"}`
	req := httptest.NewRequest("POST", "/api/v1/sign-up", strings.NewReader(signUp))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("sign-up failed: %v", err)
	}
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", res.StatusCode)
	}

	// same email again is a conflict
	req2 := httptest.NewRequest("POST", "/api/v1/sign-up", strings.NewReader(signUp))
	req2.Header.Set("Content-Type", "application/json")
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", res2.StatusCode)
	}

	req3 := httptest.NewRequest("POST", "/api/v1/sign-in", strings.NewReader(`{"email":"new@example.com","password":"supersecret"}`))
	req3.Header.Set("Content-Type", "application/json")
	res3, err := app.Test(req3)
	if err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}
	if res3.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res3.StatusCode)
	}
	b, _ := io.ReadAll(res3.Body)
	if !strings.Contains(string(b), `"token"`) {
		t.Fatalf("expected token in sign-in response: %s", string(b))
	}

	req4 := httptest.NewRequest("POST", "/api/v1/sign-in", strings.NewReader(`{"email":"new@example.com","password":"wrong-password"}`))
	req4.Header.Set("Content-Type", "application/json")
	res4, _ := app.Test(req4)
	if res4.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", res4.StatusCode)
	}
}

func TestIssueToken_CarriesStringUserID(t *testing.T) {
	h := NewHandler(nil, "secret", time.Hour)
	signed, err := h.IssueToken(User{ID: "u-7", Email: "j@example.com", Role: RoleRestaurantOwner})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	parsed, err := jwt.Parse(signed, func(*jwt.Token) (any, error) { return []byte("secret"), nil })
	if err != nil || !parsed.Valid {
		t.Fatalf("token did not verify: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["user_id"] != "u-7" || claims["role"] != "restaurant_owner" {
		t.Fatalf("unexpected claims: %v", claims)
	}
}

func TestAdminPremium_RequiresAdminRole(t *testing.T) {
	service, _ := seededService(t)
	app := makeAppWithUserHandler(NewHandler(service, "secret", time.Hour))
	payload := `{"premiumStart":"2024-01-01T00:00:00Z","premiumEnd":"2024-12-31T23:59:59Z"}`

	req := httptest.NewRequest("PUT", "/api/v1/admin/users/u-7/premium", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "u-7")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403 for customer, got %d", res.StatusCode)
	}

	req2 := httptest.NewRequest("PUT", "/api/v1/admin/users/u-7/premium", strings.NewReader(payload))
	req2.Header.Set("Content-Type", "application/json")
	req2.Header.Set("X-User-ID", "admin-1")
	req2.Header.Set("X-Role", "admin")
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", res2.StatusCode)
	}

	got, _ := service.GetByID(context.Background(), "u-7")
	if !got.IsPremiumActive(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected premium to be active mid-window: %+v", got)
	}

	// inverted window is rejected
	req3 := httptest.NewRequest("PUT", "/api/v1/admin/users/u-7/premium",
		strings.NewReader(`{"premiumStart":"2024-12-31T00:00:00Z","premiumEnd":"2024-01-01T00:00:00Z"}`))
	req3.Header.Set("Content-Type", "application/json")
	req3.Header.Set("X-User-ID", "admin-1")
	req3.Header.Set("X-Role", "admin")
	res3, _ := app.Test(req3)
	if res3.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for inverted window, got %d", res3.StatusCode)
	}
}
