package middlewares

import (
	"net/http"
	"strings"

	"StaffBox/models"
	"StaffBox/repositories"
	"StaffBox/utils"

	"github.com/labstack/echo/v4"
)

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(token string) (*utils.TokenClaims, error)
}

// TokenValidatorFunc adapts a function to the TokenValidator
// interface.
type TokenValidatorFunc func(token string) (*utils.TokenClaims, error)

func (f TokenValidatorFunc) ValidateToken(token string) (*utils.TokenClaims, error) {
	return f(token)
}

type AuthMiddleware struct {
	tokenValidator TokenValidator
	userRepo       repositories.UserRepository
}

func NewAuthMiddleware(validator TokenValidator, userRepo repositories.UserRepository) *AuthMiddleware {
	if validator == nil {
		validator = TokenValidatorFunc(utils.ValidateToken)
	}
	return &AuthMiddleware{
		tokenValidator: validator,
		userRepo:       userRepo,
	}
}

// RequireAuth resolves the bearer token to a platform user and stores
// it under the "user" context key. Authorization decisions stay with
// the services; this only establishes identity.
func (am *AuthMiddleware) RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authorization token not found")
			}

			claims, err := am.tokenValidator.ValidateToken(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			user, err := am.userRepo.FindByID(claims.UserID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "user not found")
			}

			c.Set("user", user)
			return next(c)
		}
	}
}

// ActorFromContext returns the authenticated user set by RequireAuth.
func ActorFromContext(c echo.Context) *models.User {
	user, _ := c.Get("user").(*models.User)
	return user
}

func extractToken(c echo.Context) string {
	token := c.Request().Header.Get("Authorization")
	return strings.TrimPrefix(token, "Bearer ")
}
