package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/contenthub/contenthub/internal/users"
	"github.com/contenthub/contenthub/pkg/logger"
)

// SignupRequest is the validated payload for creating a user account.
type SignupRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phone_number" binding:"required"`
	Country     string `json:"country" binding:"required,min=2,max=100"`
	State       string `json:"state" binding:"required,min=2,max=100"`
}

// UpdateUserRequest is a partial user update; absent fields are left
// unchanged.
type UpdateUserRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email" binding:"omitempty,email"`
	PhoneNumber *string `json:"phone_number"`
}

// UserHandler holds dependencies
type UserHandler struct {
	users *users.Service
}

func NewUserHandler(u *users.Service) *UserHandler {
	return &UserHandler{users: u}
}

// Register routes under the given group
func (h *UserHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/signup", h.Signup)
	rg.GET("/users", h.ListUsers)
	rg.GET("/users/:id", h.GetUser)
	rg.PUT("/users/:id", h.UpdateUser)
}

// Signup creates a new user account. Email and phone uniqueness are
// checked here before the insert; the store's unique constraints
// remain the authoritative backstop for concurrent signups.
func (h *UserHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	name, err := validateName(req.Name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validatePhone(req.PhoneNumber); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if existing, err := h.users.GetByEmail(ctx, req.Email); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	} else if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}
	if existing, err := h.users.GetByPhone(ctx, req.PhoneNumber); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	} else if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Phone number already registered"})
		return
	}

	u, err := h.users.Create(ctx, users.CreateInput{
		Name:        name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Country:     req.Country,
		State:       req.State,
	})
	if err != nil {
		// pre-check raced with a concurrent signup; constraint wins
		if errors.Is(err, users.ErrEmailTaken) || errors.Is(err, users.ErrPhoneTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		logger.Errorf("signup: create user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, u)
}

// ListUsers returns all users with their associated content.
func (h *UserHandler) ListUsers(c *gin.Context) {
	list, err := h.users.ListWithContents(c.Request.Context())
	if err != nil {
		logger.Errorf("list users: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetUser returns a single user with their associated content.
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	u, err := h.users.GetWithContents(c.Request.Context(), id)
	if err != nil {
		logger.Errorf("get user %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("User with id %d not found", id)})
		return
	}
	c.JSON(http.StatusOK, u)
}

// UpdateUser applies a partial update (name, email, phone_number).
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name != nil {
		name, err := validateName(*req.Name)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req.Name = &name
	}
	if req.PhoneNumber != nil {
		if err := validatePhone(*req.PhoneNumber); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	u, err := h.users.Update(c.Request.Context(), id, users.UpdateInput{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		switch {
		case errors.Is(err, users.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("User with id %d not found", id)})
		case errors.Is(err, users.ErrEmailTaken), errors.Is(err, users.ErrPhoneTaken):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Errorf("update user %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, u)
}

// pathID parses the :id path param, writing a 400 on failure.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
