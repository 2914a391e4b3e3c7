package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/batiflow/batiflow-api/internal/repository"
	"github.com/batiflow/batiflow-api/internal/validation"
)

// Response envelope helpers. Every resource endpoint answers with one
// canonical shape: success carries {status, message, data}, a client
// fault {status:"fail", message[, errors]}, and an unexpected fault
// {status:"error", message:"Server error", error}.

func success(c echo.Context, code int, message string, data interface{}) error {
	return c.JSON(code, echo.Map{"status": "success", "message": message, "data": data})
}

func fail(c echo.Context, code int, message string) error {
	return c.JSON(code, echo.Map{"status": "fail", "message": message})
}

func failValidation(c echo.Context, errs []validation.FieldError) error {
	return c.JSON(http.StatusBadRequest, echo.Map{
		"status":  "fail",
		"message": "Validation error",
		"errors":  errs,
	})
}

func serverError(c echo.Context, err error) error {
	return c.JSON(http.StatusInternalServerError, echo.Map{
		"status":  "error",
		"message": "Server error",
		"error":   err.Error(),
	})
}

// storageError maps repository errors onto the envelope: missing
// referenced entities become 404 fails, duplicate associations 400
// fails with their specific message, anything else a 500.
func storageError(c echo.Context, err error) error {
	var nf *repository.NotFoundError
	if errors.As(err, &nf) {
		return fail(c, http.StatusNotFound, nf.Error())
	}
	var cf *repository.ConflictError
	if errors.As(err, &cf) {
		return fail(c, http.StatusBadRequest, cf.Error())
	}
	return serverError(c, err)
}

// idParamError is the validation failure for a non-integer path id.
func idParamError(c echo.Context, field string) error {
	return failValidation(c, []validation.FieldError{{Field: field, Message: "ID doit être un entier"}})
}
