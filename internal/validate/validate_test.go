package validate

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/food-order-backend/internal/apperror"
)

type addressPayload struct {
	Address string `json:"address" validate:"required"`
	Type    string `json:"type" validate:"omitempty,oneof=Home Office Other"`
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	err := Struct(&addressPayload{Type: "Beach"})
	require.Error(t, err)

	typed := apperror.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, apperror.CodeValidation, typed.Code())

	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["address"])
	assert.Equal(t, "must be one of [Home Office Other]", details["type"])
}

func TestBodyParsesAndValidates(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		var p addressPayload
		if err := Body(c, &p); err != nil {
			return apperror.Respond(c, err)
		}
		return c.JSON(p)
	})

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"address":"12 MG Road","type":"Home"}`))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{"type":"Home"}`))
	req.Header.Set("Content-Type", "application/json")
	res, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
}
