package user

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/wichananm65/food-order-backend/internal/apperror"
)

// LoginRedirect is where clients send a shopper who is not signed in.
const LoginRedirect = "/login"

func unauthorized() error {
	return apperror.New(apperror.CodeUnauthorized, "sign in required").
		WithDetails(fiber.Map{"redirect": LoginRedirect})
}

func claimsFromCtx(c *fiber.Ctx) (jwt.MapClaims, bool) {
	tok, ok := c.Locals("user").(*jwt.Token)
	if !ok || tok == nil {
		return nil, false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	return claims, ok
}

// GetUserIDFromCtx extracts the user_id claim from the JWT token stored
// in `c.Locals("user")` by the auth middleware.
func GetUserIDFromCtx(c *fiber.Ctx) (string, error) {
	claims, ok := claimsFromCtx(c)
	if !ok {
		return "", unauthorized()
	}
	id, ok := claims["user_id"].(string)
	if !ok || id == "" {
		return "", unauthorized()
	}
	return id, nil
}

// GetRoleFromCtx returns the role claim, defaulting to customer.
func GetRoleFromCtx(c *fiber.Ctx) Role {
	claims, ok := claimsFromCtx(c)
	if !ok {
		return RoleCustomer
	}
	if r, ok := claims["role"].(string); ok && Role(r).Valid() {
		return Role(r)
	}
	return RoleCustomer
}

// RequireRole rejects requests whose token does not carry one of roles.
func RequireRole(roles ...Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := GetUserIDFromCtx(c); err != nil {
			return apperror.Respond(c, err)
		}
		have := GetRoleFromCtx(c)
		for _, r := range roles {
			if r == have {
				return c.Next()
			}
		}
		return apperror.Respond(c, apperror.New(apperror.CodeForbidden, "insufficient role"))
	}
}
