package user

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/wichananm65/food-order-backend/internal/apperror"
	"github.com/wichananm65/food-order-backend/internal/validate"
)

type Handler struct {
	service   *Service
	jwtSecret []byte
	tokenTTL  time.Duration
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Role      string `json:"role" validate:"omitempty,oneof=customer restaurant_owner"`
}

type profileUpdateRequest struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

type premiumRequest struct {
	Start *time.Time `json:"premiumStart"`
	End   *time.Time `json:"premiumEnd"`
}

type roleRequest struct {
	Role string `json:"role" validate:"required,oneof=customer restaurant_owner admin"`
}

func NewHandler(service *Service, jwtSecret string, tokenTTL time.Duration) *Handler {
	if tokenTTL <= 0 {
		tokenTTL = 72 * time.Hour
	}
	return &Handler{service: service, jwtSecret: []byte(jwtSecret), tokenTTL: tokenTTL}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/v1/sign-in", h.login)
	app.Post("/api/v1/sign-up", h.register)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/profile", h.getProfile)
	// PATCH semantics on both verbs: absent fields are left alone
	app.Put("/api/v1/profile", h.updateProfile)
	app.Patch("/api/v1/profile", h.updateProfile)
	app.Get("/api/v1/profile/premium", h.getPremium)

	app.Get("/api/v1/admin/users", RequireRole(RoleAdmin), h.listUsers)
	app.Put("/api/v1/admin/users/:id/premium", RequireRole(RoleAdmin), h.setPremium)
	app.Put("/api/v1/admin/users/:id/role", RequireRole(RoleAdmin), h.setRole)
}

// IssueToken signs the claims the auth middleware and GetUserIDFromCtx read.
func (h *Handler) IssueToken(u User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": u.ID,
		"email":   u.Email,
		"role":    string(u.Role),
		"exp":     time.Now().Add(h.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.jwtSecret)
}

func (h *Handler) login(c *fiber.Ctx) error {
	payload := new(loginRequest)
	if err := validate.Body(c, payload); err != nil {
		return apperror.Respond(c, err)
	}

	user, err := h.service.Authenticate(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeUnauthorized, "Invalid email or password"))
	}

	signed, err := h.IssueToken(user)
	if err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, err, "failed to generate token"))
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    sanitizeUser(user),
		"token":   signed,
	})
}

func (h *Handler) register(c *fiber.Ctx) error {
	payload := new(registerRequest)
	if err := validate.Body(c, payload); err != nil {
		return apperror.Respond(c, err)
	}

	created, err := h.service.Register(c.UserContext(), User{
		Email:     payload.Email,
		Password:  payload.Password,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Phone:     payload.Phone,
		Role:      Role(payload.Role),
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(sanitizeUser(created))
}

// getProfile returns the user record for the currently authenticated user.
func (h *Handler) getProfile(c *fiber.Ctx) error {
	userID, err := GetUserIDFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}

	user, err := h.service.GetByID(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(sanitizeUser(user))
}

func (h *Handler) updateProfile(c *fiber.Ctx) error {
	userID, err := GetUserIDFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}

	var payload profileUpdateRequest
	if err := validate.Body(c, &payload); err != nil {
		return apperror.Respond(c, err)
	}

	updated, err := h.service.UpdateProfile(c.UserContext(), userID, ProfilePatch{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Phone:     payload.Phone,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"user": sanitizeUser(updated)})
}

func (h *Handler) getPremium(c *fiber.Ctx) error {
	userID, err := GetUserIDFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	active, u, err := h.service.PremiumStatus(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"active":       active,
		"premiumStart": u.PremiumStart,
		"premiumEnd":   u.PremiumEnd,
	})
}

func (h *Handler) listUsers(c *fiber.Ctx) error {
	users, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	response := make([]User, 0, len(users))
	for _, u := range users {
		response = append(response, sanitizeUser(u))
	}
	return c.JSON(response)
}

func (h *Handler) setPremium(c *fiber.Ctx) error {
	var payload premiumRequest
	if err := validate.Body(c, &payload); err != nil {
		return apperror.Respond(c, err)
	}
	updated, err := h.service.SetPremium(c.UserContext(), c.Params("id"), payload.Start, payload.End)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sanitizeUser(updated))
}

func (h *Handler) setRole(c *fiber.Ctx) error {
	var payload roleRequest
	if err := validate.Body(c, &payload); err != nil {
		return apperror.Respond(c, err)
	}
	updated, err := h.service.SetRole(c.UserContext(), c.Params("id"), Role(payload.Role))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sanitizeUser(updated))
}

func respondError(c *fiber.Ctx, err error) error {
	switch err {
	case ErrNotFound:
		return apperror.Respond(c, apperror.New(apperror.CodeNotFound, "user not found"))
	case ErrEmailExists:
		return apperror.Respond(c, apperror.New(apperror.CodeConflict, "Email already exists"))
	case ErrInvalidWindow:
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, err.Error()))
	default:
		return apperror.Respond(c, err)
	}
}
