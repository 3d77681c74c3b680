package apperror

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type body struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Respond writes err as the JSON error envelope. Untyped errors are reported
// as internal errors without leaking their text.
func Respond(c *fiber.Ctx, err error) error {
	typed := As(err)
	if typed == nil {
		typed = Wrap(CodeInternal, err, "unexpected error")
	}
	meta := MetadataFor(typed.Code())

	msg := typed.Message()
	if msg == "" || typed.Code() == CodeInternal {
		msg = meta.PublicMessage
	}
	out := body{Code: typed.Code(), Message: msg}
	if meta.DetailsAllowed {
		out.Details = typed.Details()
	}
	return c.Status(meta.HTTPStatus).JSON(fiber.Map{"error": out})
}

// ErrorHandler is installed on the fiber app so errors returned from
// middleware end up in the same envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := CodeInternal
		switch fe.Code {
		case fiber.StatusBadRequest:
			code = CodeValidation
		case fiber.StatusUnauthorized:
			code = CodeUnauthorized
		case fiber.StatusForbidden:
			code = CodeForbidden
		case fiber.StatusNotFound:
			code = CodeNotFound
		}
		if code == CodeInternal && fe.Code < fiber.StatusInternalServerError {
			return c.Status(fe.Code).JSON(fiber.Map{"error": body{Code: CodeValidation, Message: fe.Message}})
		}
		return Respond(c, New(code, fe.Message))
	}
	return Respond(c, err)
}
