package category

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/food-order-backend/internal/apperror"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/categories", h.getCategories)
}

func (h *Handler) getCategories(c *fiber.Ctx) error {
	limit := 100
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}
	items, err := h.service.List(c.UserContext(), c.Query("restaurantId"), limit)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(items)
}
