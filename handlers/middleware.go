package handlers

import (
	"github.com/labstack/echo/v4"

	"tubely/auth"
)

const userIDKey = "user_id"

// RequireUser validates the bearer token and stores the user id in the context.
func (a *API) RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := auth.BearerToken(c.Request().Header)
		if err != nil {
			return err
		}
		userID, err := auth.Validate(token, a.JWTSecret)
		if err != nil {
			return err
		}
		c.Set(userIDKey, userID)
		return next(c)
	}
}

func currentUser(c echo.Context) string {
	userID, _ := c.Get(userIDKey).(string)
	return userID
}
