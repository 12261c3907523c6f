package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"tubely/auth"
	"tubely/users"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) CreateUser(c echo.Context) error {
	var req credentials
	if err := c.Bind(&req); err != nil {
		return badRequest("Couldn't decode parameters")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest("Email and password are required")
	}
	user, err := users.Create(c.Request().Context(), a.DB, req.Email, req.Password)
	if err != nil {
		log.Errorln("create user:", err)
		return badRequest("Couldn't create user")
	}
	return c.JSON(http.StatusCreated, user)
}

type loginResponse struct {
	users.User
	Token string `json:"token"`
}

func (a *API) Login(c echo.Context) error {
	var req credentials
	if err := c.Bind(&req); err != nil {
		return badRequest("Couldn't decode parameters")
	}
	user, err := users.Authenticate(c.Request().Context(), a.DB, req.Email, req.Password)
	if err != nil {
		return err
	}
	token, err := auth.Issue(user.ID, a.JWTSecret, a.TokenTTL)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loginResponse{User: user, Token: token})
}
