package handler

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/middleware"
	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/port"
	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/service"
	"github.com/gofiber/fiber/v3"
)

// authCookieMaxAge matches the JWT lifetime for a one-week session.
const authCookieMaxAge = 7 * 24 * time.Hour

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	frontendURL string
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService *service.AuthService, frontendURL string) *AuthHandler {
	return &AuthHandler{authService: authService, frontendURL: frontendURL}
}

// Register sets up the public auth routes.
func (h *AuthHandler) Register(app *fiber.App) {
	auth := app.Group("/api/auth")
	auth.Get("/login", h.Login)

	// Google redirects here after the consent screen
	app.Get("/auth/callback", h.Callback)
}

// RegisterProtected sets up auth routes behind the JWT middleware.
func (h *AuthHandler) RegisterProtected(group fiber.Router) {
	group.Get("/auth/me", h.Me)
	group.Post("/auth/logout", h.Logout)
}

// Login redirects to the Google consent screen.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	return c.Redirect().To(h.authService.GetAuthURL(generateState()))
}

// Callback handles the OAuth2 callback: exchange the code, set the session
// cookie, and send the browser back to the frontend.
func (h *AuthHandler) Callback(c fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing authorization code",
		})
	}

	jwt, _, err := h.authService.HandleCallback(c.Context(), code)
	if err != nil {
		if errors.Is(err, port.ErrConsentRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "no refresh token granted, revoke access and sign in again",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     "auth_token",
		Value:    jwt,
		Path:     "/",
		MaxAge:   int(authCookieMaxAge.Seconds()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.Redirect().To(h.frontendURL)
}

// Me returns the profile of the authenticated user.
func (h *AuthHandler) Me(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}

	user, err := h.authService.GetUser(c.Context(), uc.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"id":      user.ID,
		"email":   user.Email,
		"name":    user.FullName,
		"picture": user.PictureURL,
	})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "auth_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"status": "ok"})
}

func generateState() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
