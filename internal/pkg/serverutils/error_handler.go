package serverutils

import (
	"errors"

	"kisan-advisory-be/pkg/errorsx"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns any error returned by a handler into the JSON
// error envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		} else if errorsx.HasReason(err, errorsx.ReasonInvalidPayload) {
			code = fiber.StatusBadRequest
		}
		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}
