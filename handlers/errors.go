package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"tubely/auth"
	"tubely/database"
	"tubely/ffmpeg"
	"tubely/ingest"
	"tubely/storage"
	"tubely/users"
)

type errorBody struct {
	Error string `json:"error"`
}

// statusFor maps an error to its HTTP status and the message shown to clients.
func statusFor(err error) (int, string) {
	var (
		validation   *ingest.ValidationError
		forbidden    *ingest.ForbiddenError
		notFound     *ingest.NotFoundError
		unauthorized *auth.UnauthorizedError
		probeErr     *ffmpeg.ProbeError
		rewriteErr   *ffmpeg.RewriteError
		publishErr   *storage.PublishError
		httpErr      *echo.HTTPError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Msg
	case errors.As(err, &unauthorized), errors.Is(err, users.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Couldn't validate credentials"
	case errors.As(err, &forbidden):
		return http.StatusForbidden, "You can't modify this video"
	case errors.As(err, &notFound), errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound, "Couldn't find video"
	case errors.As(err, &probeErr):
		return http.StatusInternalServerError, "Couldn't read video metadata"
	case errors.As(err, &rewriteErr):
		return http.StatusInternalServerError, "Couldn't process video"
	case errors.As(err, &publishErr):
		return http.StatusInternalServerError, "Couldn't store video"
	case errors.As(err, &httpErr):
		if msg, ok := httpErr.Message.(string); ok {
			return httpErr.Code, msg
		}
		return httpErr.Code, http.StatusText(httpErr.Code)
	}
	return http.StatusInternalServerError, "Something went wrong"
}

// ErrorHandler writes every handler error as a JSON body.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code, msg := statusFor(err)
	if code >= http.StatusInternalServerError {
		log.WithField("path", c.Path()).Errorln(err)
	} else {
		log.WithField("path", c.Path()).Debugln(err)
	}
	if err := c.JSON(code, errorBody{Error: msg}); err != nil {
		log.Errorln(err)
	}
}

func badRequest(msg string) error {
	return &ingest.ValidationError{Msg: msg}
}
