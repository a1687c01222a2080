package serverutils

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"support-desk-be/internal/apperror"
)

// ErrorHandlerMiddleware translates service errors into HTTP responses.
// Controllers just return the error and this middleware owns the mapping.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var authErr *apperror.AuthError
		if errors.As(err, &authErr) {
			return ctx.Status(fiber.StatusUnauthorized).JSON(FailResponse(authErr.Reason))
		}

		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return ctx.Status(fiber.StatusBadRequest).JSON(FailResponse(validationErrs.Error()))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(FailResponse(fiberErr.Message))
		}

		switch {
		case errors.Is(err, apperror.ErrNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(FailResponse(err.Error()))
		case errors.Is(err, apperror.ErrForbidden):
			return ctx.Status(fiber.StatusForbidden).JSON(FailResponse(err.Error()))
		case errors.Is(err, apperror.ErrConflict):
			return ctx.Status(fiber.StatusConflict).JSON(FailResponse(err.Error()))
		case errors.Is(err, apperror.ErrAlreadyClosed),
			errors.Is(err, apperror.ErrNotAssigned),
			errors.Is(err, apperror.ErrInvalidReference),
			errors.Is(err, apperror.ErrValidation):
			return ctx.Status(fiber.StatusBadRequest).JSON(FailResponse(err.Error()))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(FailResponse("Internal server error"))
	}
}
