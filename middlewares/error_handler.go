package middlewares

import (
	"errors"
	"net/http"

	"StaffBox/services"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// ErrorHandler maps service-layer errors onto HTTP statuses. Auth
// failures become 401/403 before any table work happened; fatal
// document errors become 400; everything unexpected is a 500.
func ErrorHandler() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				return err
			}

			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, services.ErrUnauthorized):
				status = http.StatusUnauthorized
			case errors.Is(err, services.ErrForbidden):
				status = http.StatusForbidden
			case errors.Is(err, services.ErrNotFound):
				status = http.StatusNotFound
			case errors.Is(err, services.ErrTenantBusy):
				status = http.StatusConflict
			case errors.Is(err, services.ErrUnknownVersion),
				errors.Is(err, services.ErrMalformedDocument),
				errors.Is(err, services.ErrUnknownTable),
				errors.Is(err, services.ErrRecordNotRestorable):
				status = http.StatusBadRequest
			default:
				logrus.Error("Error request: ", err)
			}
			return c.JSON(status, map[string]interface{}{"error": err.Error()})
		}
	}
}
