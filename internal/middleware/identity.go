package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/eventsdhaka/discovery/internal/models"
	"github.com/eventsdhaka/discovery/internal/service"
)

// HeaderUserID carries the user id authenticated by the upstream gateway.
const HeaderUserID = "X-User-ID"

const identityKey = "identity"

type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Identity resolves the caller from X-User-ID and loads the role from the
// users table. Requests without the header continue anonymously; users
// missing from the table get the plain user role.
func Identity(users UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get(HeaderUserID)
			if raw == "" {
				SetIdentity(c, service.Identity{})
				return next(c)
			}
			id, err := uuid.Parse(raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid user id")
			}

			who := service.Identity{UserID: id, Role: models.RoleUser}
			user, err := users.FindByID(c.Request().Context(), id)
			switch {
			case err == nil:
				who.Role = user.Role
			case errors.Is(err, gorm.ErrRecordNotFound):
			default:
				return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
			}
			SetIdentity(c, who)
			return next(c)
		}
	}
}

func SetIdentity(c echo.Context, who service.Identity) {
	c.Set(identityKey, who)
}

func IdentityFrom(c echo.Context) service.Identity {
	who, _ := c.Get(identityKey).(service.Identity)
	return who
}

func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !IdentityFrom(c).Authenticated() {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}
			return next(c)
		}
	}
}

// RequireRole lets through authenticated callers holding one of roles.
func RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			who := IdentityFrom(c)
			if !who.Authenticated() {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}
			for _, r := range roles {
				if who.Role == r {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
		}
	}
}
