package address

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/food-order-backend/internal/apperror"
	"github.com/wichananm65/food-order-backend/internal/user"
	"github.com/wichananm65/food-order-backend/internal/validate"
)

// Handler delegates address operations to the address service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/address", h.getAddresses)
	app.Get("/api/v1/address/default", h.getDefault)
	app.Post("/api/v1/address", h.addAddress)
	app.Patch("/api/v1/address/:id", h.updateAddress)
	app.Delete("/api/v1/address/:id", h.deleteAddress)
	app.Post("/api/v1/address/:id/default", h.setDefault)
}

type addressCreateRequest struct {
	Address   string `json:"address" validate:"required"`
	Type      string `json:"type" validate:"omitempty,oneof=Home Office Other home office other"`
	IsDefault bool   `json:"isDefault"`
}

type addressUpdateRequest struct {
	Address *string `json:"address,omitempty" validate:"omitempty,min=1"`
	Type    *string `json:"type,omitempty" validate:"omitempty,oneof=Home Office Other home office other"`
}

func (h *Handler) getAddresses(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	addrs, err := h.service.GetAddresses(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(addrs)
}

func (h *Handler) getDefault(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	addr, err := h.service.GetDefault(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(addr)
}

func (h *Handler) addAddress(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	payload := new(addressCreateRequest)
	if err := validate.Body(c, payload); err != nil {
		return apperror.Respond(c, err)
	}
	addr, err := h.service.AddAddress(c.UserContext(), userID, payload.Address, Type(payload.Type), payload.IsDefault)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(addr)
}

func (h *Handler) updateAddress(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	payload := new(addressUpdateRequest)
	if err := validate.Body(c, payload); err != nil {
		return apperror.Respond(c, err)
	}
	patch := AddressPatch{Address: payload.Address}
	if payload.Type != nil {
		t := Type(*payload.Type)
		patch.Type = &t
	}
	addr, err := h.service.UpdateAddress(c.UserContext(), userID, c.Params("id"), patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(addr)
}

func (h *Handler) deleteAddress(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	if err := h.service.DeleteAddress(c.UserContext(), userID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) setDefault(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	addr, err := h.service.SetDefault(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(addr)
}

func respondError(c *fiber.Ctx, err error) error {
	if err == ErrNotFound {
		return apperror.Respond(c, apperror.New(apperror.CodeNotFound, "address not found"))
	}
	return apperror.Respond(c, err)
}
