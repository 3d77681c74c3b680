package selection

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/food-order-backend/internal/apperror"
	"github.com/wichananm65/food-order-backend/internal/cart"
	"github.com/wichananm65/food-order-backend/internal/user"
	"github.com/wichananm65/food-order-backend/internal/validate"
)

// CartReader copies the shopper's persisted lines by id.
type CartReader interface {
	Lines(ctx context.Context, userID string, ids []string) ([]cart.Line, error)
}

// EditGuard refuses edits while a checkout holds the selection.
type EditGuard interface {
	SelectionLocked(ctx context.Context, userID string) error
}

type Handler struct {
	repo  *Repository
	carts CartReader
	guard EditGuard
}

// NewHandler builds the selection routes. guard may be nil.
func NewHandler(repo *Repository, carts CartReader, guard EditGuard) *Handler {
	return &Handler{repo: repo, carts: carts, guard: guard}
}

// editor resolves the shopper and checks the selection is open for edits.
func (h *Handler) editor(c *fiber.Ctx) (string, error) {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return "", err
	}
	if h.guard != nil {
		if err := h.guard.SelectionLocked(c.UserContext(), userID); err != nil {
			return "", err
		}
	}
	return userID, nil
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/checkout/selection", h.get)
	app.Put("/api/v1/checkout/selection", h.replace)
	app.Delete("/api/v1/checkout/selection", h.clear)
	app.Patch("/api/v1/checkout/selection/:id", h.updateQuantity)
	app.Delete("/api/v1/checkout/selection/:id", h.remove)
}

type replaceRequest struct {
	LineIDs []string `json:"lineIds"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type selectionResponse struct {
	Items []cart.Line `json:"items"`
	Count int         `json:"count"`
}

func respond(c *fiber.Ctx, s *Store) error {
	return c.JSON(selectionResponse{Items: s.Lines(), Count: s.Len()})
}

func (h *Handler) get(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	s, err := h.repo.Load(c.UserContext(), userID)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return respond(c, s)
}

func (h *Handler) replace(c *fiber.Ctx) error {
	userID, err := h.editor(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	payload := new(replaceRequest)
	if err := validate.Body(c, payload); err != nil {
		return apperror.Respond(c, err)
	}
	lines, err := h.carts.Lines(c.UserContext(), userID, payload.LineIDs)
	if err != nil {
		if err == cart.ErrNotFound {
			return apperror.Respond(c, apperror.New(apperror.CodeNotFound, "cart line not found"))
		}
		return apperror.Respond(c, err)
	}
	s := NewStore(lines...)
	if err := h.repo.Save(c.UserContext(), userID, s); err != nil {
		return apperror.Respond(c, err)
	}
	return respond(c, s)
}

func (h *Handler) clear(c *fiber.Ctx) error {
	userID, err := h.editor(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	if err := h.repo.Clear(c.UserContext(), userID); err != nil {
		return apperror.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// updateQuantity drops the line when the new quantity is not positive.
func (h *Handler) updateQuantity(c *fiber.Ctx) error {
	userID, err := h.editor(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	payload := new(quantityRequest)
	if err := validate.Body(c, payload); err != nil {
		return apperror.Respond(c, err)
	}
	s, err := h.repo.Load(c.UserContext(), userID)
	if err != nil {
		return apperror.Respond(c, err)
	}
	if *payload.Quantity <= 0 {
		s.Remove(c.Params("id"))
	} else {
		s.UpdateQuantity(c.Params("id"), *payload.Quantity)
	}
	if err := h.repo.Save(c.UserContext(), userID, s); err != nil {
		return apperror.Respond(c, err)
	}
	return respond(c, s)
}

func (h *Handler) remove(c *fiber.Ctx) error {
	userID, err := h.editor(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	s, err := h.repo.Load(c.UserContext(), userID)
	if err != nil {
		return apperror.Respond(c, err)
	}
	s.Remove(c.Params("id"))
	if err := h.repo.Save(c.UserContext(), userID, s); err != nil {
		return apperror.Respond(c, err)
	}
	return respond(c, s)
}
