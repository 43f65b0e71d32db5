// middleware/auth_middleware.go
package middleware

import (
	"net/http"

	"github.com/eilanhub/eilan_backend/models"
	"github.com/eilanhub/eilan_backend/utils"
	"github.com/labstack/echo/v4"
)

// RequireRole checks if the authenticated user has the given role.
// Must run after JWTMiddleware.
func RequireRole(required string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := utils.CallerRole(c)

			if role == "" {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Authentication failed: role not found",
				})
			}

			if decision := utils.RequireRole(role, required); !decision.Allowed {
				return c.JSON(http.StatusForbidden, models.Response{
					Status:  http.StatusForbidden,
					Message: decision.Reason,
				})
			}

			return next(c)
		}
	}
}

// RequireAdmin guards admin-only routes
func RequireAdmin() echo.MiddlewareFunc {
	return RequireRole(models.RoleAdmin)
}
