package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/library-tracker/internal/core/ports"
)

type AuthHandler struct {
	userService ports.UserService
}

func NewAuthHandler(userService ports.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  messageResponse
// @Failure      409   {object}  messageResponse
// @Failure      500   {object}  messageResponse
// @Router       /api/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.userService.Register(c.Request().Context(), ports.RegisterInput{
		UserID:      req.UserID,
		Username:    req.Username,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{
		Success: true,
		Message: "User registered successfully",
		User:    res.User,
		Token:   res.Token,
	})
}

// Login authenticates a user by id and phone number.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /api/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.userService.Authenticate(c.Request().Context(), req.UserID, req.PhoneNumber)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{
		Success: true,
		Message: "Login successful",
		User:    res.User,
		Token:   res.Token,
	})
}
