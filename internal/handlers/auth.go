package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/newswire/backend/internal/auth"
	"github.com/newswire/backend/internal/middleware"
	"github.com/newswire/backend/internal/models"
	"github.com/newswire/backend/internal/repositories"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	passwordMinLength = 5
	// Registration and login report the identical message for a short
	// password; only the status code differs.
	passwordTooShortMessage = "Password must be at least 5 characters long"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	tokenIssuer    *auth.TokenIssuer
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, issuer *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		tokenIssuer:    issuer,
	}
}

// RegisterAuthRoutes registers public authentication routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
}

// RegisterProfileRoutes registers routes that require a valid session token
func (h *AuthHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.Profile)
}

// Register handles user registration with username, email and password
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	// Length is checked before struct validation so every password under the
	// minimum, the empty string included, gets the same message.
	if len(req.Password) < passwordMinLength {
		return echo.NewHTTPError(http.StatusBadRequest, passwordTooShortMessage)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	// Username and email are both unique across all users
	if _, err := h.userRepository.GetUserByEmail(req.Email); err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "User with this email or username already exists")
	}
	if _, err := h.userRepository.GetUserByUsername(req.Username); err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "User with this email or username already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
	}
	if err := h.userRepository.CreateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to register user")
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "User registered"})
}

// Login authenticates by email or username and returns a session token
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	// A password shorter than the minimum can never match a stored hash;
	// reject it before struct validation with the same message registration
	// uses, empty string included.
	if len(req.Password) < passwordMinLength {
		return echo.NewHTTPError(http.StatusUnauthorized, passwordTooShortMessage)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByLogin(req.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	token, err := h.tokenIssuer.Generate(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(http.StatusOK, echo.Map{"token": token})
}

// Profile returns the authenticated user's profile, password hash omitted
func (h *AuthHandler) Profile(c echo.Context) error {
	userID := middleware.UserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	user, err := h.userRepository.GetUserByID(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load profile")
	}

	return c.JSON(http.StatusOK, user)
}
