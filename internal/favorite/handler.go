package favorite

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/food-order-backend/internal/apperror"
	"github.com/wichananm65/food-order-backend/internal/fooditem"
	"github.com/wichananm65/food-order-backend/internal/user"
	"github.com/wichananm65/food-order-backend/internal/validate"
)

// Handler delegates favorite operations to the favorite service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/favorites", h.getFavorites)
	app.Post("/api/v1/favorites", h.addFavorite)
	app.Delete("/api/v1/favorites", h.removeFavorite)
}

type favoriteRequest struct {
	FoodItemID string `json:"foodItemId" validate:"required"`
}

func (h *Handler) addFavorite(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	payload := new(favoriteRequest)
	if err := validate.Body(c, payload); err != nil {
		return apperror.Respond(c, err)
	}

	favs, err := h.service.AddFavorite(c.UserContext(), userID, payload.FoodItemID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"foodItemId": payload.FoodItemID, "favoriteFoodItemIds": favs})
}

func (h *Handler) removeFavorite(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	payload := new(favoriteRequest)
	if err := validate.Body(c, payload); err != nil {
		return apperror.Respond(c, err)
	}

	favs, err := h.service.RemoveFavorite(c.UserContext(), userID, payload.FoodItemID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"foodItemId": payload.FoodItemID, "favoriteFoodItemIds": favs})
}

func (h *Handler) getFavorites(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	items, err := h.service.GetFavorites(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, fooditem.ErrNotFound):
		return apperror.Respond(c, apperror.New(apperror.CodeNotFound, "food item not found"))
	case errors.Is(err, ErrAlreadyFavorite):
		return apperror.Respond(c, apperror.New(apperror.CodeConflict, "food item already in favorites"))
	case errors.Is(err, ErrNotFavorite):
		return apperror.Respond(c, apperror.New(apperror.CodeNotFound, "food item not in favorites"))
	default:
		return apperror.Respond(c, err)
	}
}
