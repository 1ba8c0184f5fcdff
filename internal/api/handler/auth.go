package handler

import (
	"civicdesk/backend/internal/api/middleware"
	"civicdesk/backend/internal/config"
	"civicdesk/backend/internal/models"
	"civicdesk/backend/internal/storage"
	"civicdesk/backend/internal/validation"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type registerRequest struct {
	Name     validation.Text `json:"name" binding:"required,min=2,max=50"`
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,password,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	Name        *validation.Text `json:"name" binding:"omitempty,min=2,max=50"`
	PhoneNumber *string          `json:"phoneNumber" binding:"omitempty,max=20"`
	Address     *validation.Text `json:"address" binding:"omitempty,max=200"`
}

type authResponse struct {
	Message string            `json:"message"`
	Token   string            `json:"token"`
	User    models.PublicUser `json:"user"`
}

// Register creates a citizen account. Any role sent by the client is ignored.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err, "")
		return
	}

	ctx := c.Request.Context()
	if _, err := h.Store.GetUserByEmail(ctx, req.Email); err == nil {
		c.JSON(http.StatusConflict, message("User already exists"))
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		h.respondError(c, err, "")
		return
	}

	user := &models.User{
		Name:     req.Name.String(),
		Email:    req.Email,
		Password: req.Password,
		Role:     config.RoleCitizen,
	}
	if err := h.Store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			c.JSON(http.StatusConflict, message("User already exists"))
			return
		}
		h.respondError(c, err, "")
		return
	}

	token, err := h.Tokens.Issue(user.ID, user.Role)
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	h.Logger.Info("user registered", zap.String("user_id", user.ID))
	c.JSON(http.StatusCreated, authResponse{
		Message: "User registered successfully",
		Token:   token,
		User:    user.Public(),
	})
}

// Login exchanges credentials for a token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err, "")
		return
	}

	user, err := h.Store.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.respondError(c, err, "User not found")
		return
	}
	if !user.CheckPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, message("Invalid credentials"))
		return
	}

	token, err := h.Tokens.Issue(user.ID, user.Role)
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, authResponse{
		Message: "Login successful",
		Token:   token,
		User:    user.Public(),
	})
}

// Me returns the caller's profile.
func (h *Handler) Me(c *gin.Context) {
	user, ok := middleware.UserFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, message("Access denied. No token provided."))
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateMe edits the caller's own name, phone number and address.
func (h *Handler) UpdateMe(c *gin.Context) {
	user, ok := middleware.UserFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, message("Access denied. No token provided."))
		return
	}

	var req updateProfileRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err, "")
		return
	}
	if req.Name != nil {
		user.Name = req.Name.String()
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
	if req.Address != nil {
		user.Address = req.Address.String()
	}

	if err := h.Store.UpdateUser(c.Request.Context(), user); err != nil {
		h.respondError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, user)
}
