package restaurant

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/food-order-backend/internal/apperror"
	"github.com/wichananm65/food-order-backend/internal/user"
	"github.com/wichananm65/food-order-backend/internal/validate"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler { return &Handler{service: s} }

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/restaurants", h.list)
	app.Get("/api/v1/restaurants/:id", h.get)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	manage := user.RequireRole(user.RoleRestaurantOwner, user.RoleAdmin)
	app.Get("/api/v1/owner/restaurants", manage, h.listMine)
	app.Post("/api/v1/restaurants", manage, h.create)
	app.Put("/api/v1/restaurants/:id/delivery-fee", manage, h.updateDeliveryFee)
}

type createRequest struct {
	Name        string          `json:"name" validate:"required"`
	OwnerID     string          `json:"ownerId"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Image       string          `json:"image"`
}

type deliveryFeeRequest struct {
	DeliveryFee *decimal.Decimal `json:"deliveryFee" validate:"required"`
}

// ActorFromCtx reads the caller identity placed by the auth middleware.
func ActorFromCtx(c *fiber.Ctx) (Actor, error) {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return Actor{}, err
	}
	return Actor{UserID: userID, Admin: user.GetRoleFromCtx(c) == user.RoleAdmin}, nil
}

func (h *Handler) list(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

func (h *Handler) get(c *fiber.Ctx) error {
	r, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(r)
}

func (h *Handler) listMine(c *fiber.Ctx) error {
	actor, err := ActorFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	items, err := h.service.ListByOwner(c.UserContext(), actor.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

func (h *Handler) create(c *fiber.Ctx) error {
	actor, err := ActorFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	payload := new(createRequest)
	if err := validate.Body(c, payload); err != nil {
		return apperror.Respond(c, err)
	}
	created, err := h.service.Create(c.UserContext(), actor, Restaurant{
		Name:        payload.Name,
		OwnerID:     payload.OwnerID,
		DeliveryFee: payload.DeliveryFee,
		Image:       payload.Image,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateDeliveryFee(c *fiber.Ctx) error {
	actor, err := ActorFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	payload := new(deliveryFeeRequest)
	if err := validate.Body(c, payload); err != nil {
		return apperror.Respond(c, err)
	}
	updated, err := h.service.UpdateDeliveryFee(c.UserContext(), actor, c.Params("id"), *payload.DeliveryFee)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updated)
}

func respondError(c *fiber.Ctx, err error) error {
	switch err {
	case ErrNotFound:
		return apperror.Respond(c, apperror.New(apperror.CodeNotFound, "restaurant not found"))
	case ErrForbidden:
		return apperror.Respond(c, apperror.New(apperror.CodeForbidden, err.Error()))
	case ErrInvalidFee:
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, err.Error()))
	default:
		return apperror.Respond(c, err)
	}
}
