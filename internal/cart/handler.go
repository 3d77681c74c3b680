package cart

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/food-order-backend/internal/apperror"
	"github.com/wichananm65/food-order-backend/internal/fooditem"
	"github.com/wichananm65/food-order-backend/internal/user"
	"github.com/wichananm65/food-order-backend/internal/validate"
)

// Handler delegates cart operations to the cart service.
// This keeps cart-specific HTTP routing isolated.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/cart", h.getCart)
	app.Delete("/api/v1/cart", h.clearCart)
	app.Post("/api/v1/cart/items", h.addToCart)
	app.Delete("/api/v1/cart/:id", h.removeLine)
}

type cartRequest struct {
	FoodItemID string `json:"foodItemId" validate:"required"`
	Quantity   int    `json:"quantity"`
}

// addToCart applies a signed quantity change; negative values decrement.
func (h *Handler) addToCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	payload := new(cartRequest)
	if err := validate.Body(c, payload); err != nil {
		return apperror.Respond(c, err)
	}
	if payload.Quantity == 0 {
		payload.Quantity = 1
	}

	items, err := h.service.AddToCart(c.UserContext(), userID, payload.FoodItemID, payload.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	items, err := h.service.GetCart(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

func (h *Handler) removeLine(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	if err := h.service.RemoveLine(c.UserContext(), userID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	if err := h.service.ClearCart(c.UserContext(), userID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func respondError(c *fiber.Ctx, err error) error {
	switch err {
	case ErrNotFound:
		return apperror.Respond(c, apperror.New(apperror.CodeNotFound, "cart line not found"))
	case fooditem.ErrNotFound:
		return apperror.Respond(c, apperror.New(apperror.CodeNotFound, "food item not found"))
	default:
		return apperror.Respond(c, err)
	}
}
