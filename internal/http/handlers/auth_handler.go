package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/studybuddy/go-study-backend/internal/domain"
	"github.com/studybuddy/go-study-backend/internal/services"
)

// AuthService defines the account operations consumed by HTTP handlers.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*services.LoginResult, error)
	Logout(ctx context.Context, token string) error
	Validate(ctx context.Context, token string) (*domain.User, error)
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles POST /auth/register.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body registerRequest true "Account details"
// @Success      201 {object} map[string]string
// @Failure      400 {object} ErrorResponse
// @Router       /auth/register [post]
func (h *Handlers) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Email == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "Missing required fields")
		return
	}
	u, err := h.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user_id": u.ID,
	})
}

// Login handles POST /auth/login.
//
// @Summary      Authenticate and open a session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body loginRequest true "Credentials"
// @Success      200 {object} map[string]string
// @Failure      401 {object} ErrorResponse
// @Router       /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "Missing username or password")
		return
	}
	res, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Login successful",
		"user_id":       res.UserID,
		"username":      res.Username,
		"session_token": res.SessionToken,
	})
}

// Logout handles POST /auth/logout.
//
// @Summary      Close the current session
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]string
// @Failure      400 {object} ErrorResponse
// @Router       /auth/logout [post]
func (h *Handlers) Logout(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		fail(c, http.StatusBadRequest, "No valid session token provided")
		return
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}
