package handlers

import (
	"github.com/labstack/echo/v4"
)

// TempGet serves an object from the local storage backend for a live token.
func (a *API) TempGet(c echo.Context) error {
	key, err := a.TempURLs.Lookup(c.Request().Context(), c.Param("token"))
	if err != nil {
		return err
	}
	path, err := a.Local.Path(key)
	if err != nil {
		return err
	}
	return c.File(path)
}
