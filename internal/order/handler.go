package order

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/food-order-backend/internal/apperror"
	"github.com/wichananm65/food-order-backend/internal/user"
)

// Handler exposes order history. Orders are created by checkout only.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/orders", h.getOrders)
	app.Get("/api/v1/orders/:id", h.getOrder)
}

func viewerFromCtx(c *fiber.Ctx) (Viewer, error) {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return Viewer{}, err
	}
	return Viewer{UserID: userID, Role: user.GetRoleFromCtx(c)}, nil
}

func (h *Handler) getOrders(c *fiber.Ctx) error {
	v, err := viewerFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	orders, err := h.service.ListForViewer(c.UserContext(), v)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(orders)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	v, err := viewerFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	o, err := h.service.Get(c.UserContext(), v, c.Params("id"))
	if err != nil {
		if err == ErrNotFound {
			return apperror.Respond(c, apperror.New(apperror.CodeNotFound, "order not found"))
		}
		return apperror.Respond(c, err)
	}
	return c.JSON(o)
}
