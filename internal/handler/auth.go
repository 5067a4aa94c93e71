package handler

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/goldenfork/reservation-api/internal/config"
	"github.com/goldenfork/reservation-api/internal/queue"
	"github.com/goldenfork/reservation-api/internal/service"
	"github.com/goldenfork/reservation-api/internal/utils"
)

// AuthHandler implements the two-step operator login.  Step one checks
// the password and mails a numeric code; step two exchanges the code
// (bound to a short-lived verify token) for an access token.  No login
// state lives on the server between the two steps.
type AuthHandler struct {
	cfg      config.Config
	notifier service.Notifier
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(cfg config.Config, notifier service.Notifier) *AuthHandler {
	return &AuthHandler{cfg: cfg, notifier: notifier}
}

// Login handles POST /v1/admin/login.  On a correct password it mails
// a 6-digit code and returns a verify token that embeds the code's
// hash.  Wrong email and wrong password produce the same response.
func (h *AuthHandler) Login(c echo.Context) error {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if in.Email != h.cfg.AdminEmail || !utils.VerifyPassword(h.cfg.AdminPassHash, in.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	code, err := utils.RandomDigits(6)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	tok, err := utils.NewVerifyToken(h.cfg.JWTSecret, in.Email, utils.HashCode(code), h.cfg.VerifyTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	if h.notifier != nil {
		err := h.notifier.Publish(c.Request().Context(), queue.EmailEvent{
			Kind:      queue.EmailLoginCode,
			Recipient: in.Email,
			Fields:    map[string]string{"code": code},
		})
		if err != nil {
			log.Printf("auth: failed to queue login code mail: %v", err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"verify_token": tok.Value,
		"expires_at":   tok.Exp,
	})
}

// Verify handles POST /v1/admin/verify.  The emailed code is checked
// against the hash carried inside the verify token; a match yields the
// operator access token.
func (h *AuthHandler) Verify(c echo.Context) error {
	var in struct {
		VerifyToken string `json:"verify_token"`
		Code        string `json:"code"`
	}
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	claims, err := utils.ParseToken(h.cfg.JWTSecret, in.VerifyToken, utils.PurposeVerify)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired verify token"})
	}
	wantHash, _ := claims["code"].(string)
	if wantHash == "" || utils.HashCode(in.Code) != wantHash {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "wrong verification code"})
	}
	subject, _ := claims["sub"].(string)

	tok, err := utils.NewAccessToken(h.cfg.JWTSecret, subject, "ADMIN", h.cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token": tok.Value,
		"expires_at":   tok.Exp,
	})
}
