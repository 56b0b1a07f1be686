package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-service/internal/api/metrics"
	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	cookieName  string
}

func NewAuthHandler(authService ports.AuthService, cookieName string) *AuthHandler {
	return &AuthHandler{authService: authService, cookieName: cookieName}
}

type registerRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
	Role     string `json:"role,omitempty" form:"role"`
}

type loginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  response{data=domain.User}
// @Failure      400   {object}  response
// @Failure      500   {object}  response
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) (err error) {
	defer func() { metrics.RegistrationsTotal.WithLabelValues(outcome(err)).Inc() }()

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return domain.BadRequest("Bad request: invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return domain.BadRequest(domain.MsgCredentialsRequired)
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, response{
		Success: true,
		Data:    user,
		Message: "User created successfully",
	})
}

// Login authenticates a user and sets the credential cookie.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  response
// @Header       200   {string}  Set-Cookie  "user=<credential>; Path=/; HttpOnly"
// @Failure      400   {object}  response
// @Failure      401   {object}  response
// @Failure      500   {object}  response
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) (err error) {
	defer func() { metrics.LoginsTotal.WithLabelValues(outcome(err)).Inc() }()

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return domain.BadRequest("Bad request: invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return domain.BadRequest(domain.MsgCredentialsRequired)
	}

	token, err := h.authService.Login(c.Request().Context(), ports.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
	return c.JSON(http.StatusOK, response{
		Success: true,
		Message: "Logged in successfully",
	})
}

// outcome is the metrics label for a handler result.
func outcome(err error) string {
	if err == nil {
		return "success"
	}
	return domain.KindOf(err).String()
}
