package checkout

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/food-order-backend/internal/apperror"
	"github.com/wichananm65/food-order-backend/internal/user"
	"github.com/wichananm65/food-order-backend/internal/validate"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/checkout", h.begin)
	app.Get("/api/v1/checkout", h.current)
	app.Post("/api/v1/checkout/payment", h.initiatePayment)
	app.Post("/api/v1/checkout/payment/cancel", h.cancelPayment)
	app.Post("/api/v1/checkout/payment/confirm", h.confirmPayment)
}

type confirmRequest struct {
	SourceToken string `json:"sourceToken" validate:"required"`
}

func (h *Handler) begin(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	sess, err := h.service.Begin(c.UserContext(), userID)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(sess)
}

func (h *Handler) current(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	sess, err := h.service.Current(c.UserContext(), userID)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(sess)
}

func (h *Handler) initiatePayment(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	sess, err := h.service.InitiatePayment(c.UserContext(), userID)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sess)
}

func (h *Handler) cancelPayment(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	sess, err := h.service.CancelPayment(c.UserContext(), userID)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(sess)
}

func (h *Handler) confirmPayment(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	payload := new(confirmRequest)
	if err := validate.Body(c, payload); err != nil {
		return apperror.Respond(c, err)
	}
	sess, err := h.service.ConfirmPayment(c.UserContext(), userID, payload.SourceToken)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(sess)
}
