package fooditem

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/food-order-backend/internal/apperror"
	"github.com/wichananm65/food-order-backend/internal/restaurant"
	"github.com/wichananm65/food-order-backend/internal/user"
	"github.com/wichananm65/food-order-backend/internal/validate"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/food-items", h.list)
	app.Get("/api/v1/food-items/:id", h.get)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	manage := user.RequireRole(user.RoleRestaurantOwner, user.RoleAdmin)
	app.Post("/api/v1/food-items", manage, h.create)
	app.Patch("/api/v1/food-items/:id", manage, h.update)
	app.Delete("/api/v1/food-items/:id", manage, h.delete)
}

type createRequest struct {
	RestaurantID string           `json:"restaurantId" validate:"required"`
	Name         string           `json:"name" validate:"required"`
	Price        decimal.Decimal  `json:"price"`
	Discount     *decimal.Decimal `json:"discount"`
	Image        string           `json:"image"`
	DeliveryTime int              `json:"deliveryTime" validate:"gte=0"`
	Description  string           `json:"description"`
	Category     string           `json:"category"`
}

type updateRequest struct {
	Name          *string          `json:"name" validate:"omitempty,min=1"`
	Price         *decimal.Decimal `json:"price"`
	Discount      *decimal.Decimal `json:"discount"`
	ClearDiscount bool             `json:"clearDiscount"`
	Image         *string          `json:"image"`
	DeliveryTime  *int             `json:"deliveryTime" validate:"omitempty,gte=0"`
	Description   *string          `json:"description"`
	Category      *string          `json:"category"`
}

func (h *Handler) list(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext(), Filter{
		RestaurantID: c.Query("restaurantId"),
		Category:     c.Query("category"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

func (h *Handler) get(c *fiber.Ctx) error {
	item, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

func (h *Handler) create(c *fiber.Ctx) error {
	actor, err := restaurant.ActorFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	payload := new(createRequest)
	if err := validate.Body(c, payload); err != nil {
		return apperror.Respond(c, err)
	}
	created, err := h.service.Create(c.UserContext(), actor, FoodItem{
		RestaurantID: payload.RestaurantID,
		Name:         payload.Name,
		Price:        payload.Price,
		Discount:     payload.Discount,
		Image:        payload.Image,
		DeliveryTime: payload.DeliveryTime,
		Description:  payload.Description,
		Category:     payload.Category,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) update(c *fiber.Ctx) error {
	actor, err := restaurant.ActorFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	payload := new(updateRequest)
	if err := validate.Body(c, payload); err != nil {
		return apperror.Respond(c, err)
	}
	updated, err := h.service.Update(c.UserContext(), actor, c.Params("id"), Patch{
		Name:          payload.Name,
		Price:         payload.Price,
		Discount:      payload.Discount,
		ClearDiscount: payload.ClearDiscount,
		Image:         payload.Image,
		DeliveryTime:  payload.DeliveryTime,
		Description:   payload.Description,
		Category:      payload.Category,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) delete(c *fiber.Ctx) error {
	actor, err := restaurant.ActorFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	if err := h.service.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func respondError(c *fiber.Ctx, err error) error {
	switch err {
	case ErrNotFound:
		return apperror.Respond(c, apperror.New(apperror.CodeNotFound, "food item not found"))
	case ErrInvalidDiscount, ErrInvalidPrice:
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, err.Error()))
	case restaurant.ErrNotFound:
		return apperror.Respond(c, apperror.New(apperror.CodeNotFound, "restaurant not found"))
	case restaurant.ErrForbidden:
		return apperror.Respond(c, apperror.New(apperror.CodeForbidden, err.Error()))
	default:
		return apperror.Respond(c, err)
	}
}
