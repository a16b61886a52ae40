package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RonaldAllanRivera/ride-info/internal/domain"
	"github.com/RonaldAllanRivera/ride-info/internal/pagination"
	"github.com/RonaldAllanRivera/ride-info/internal/repository"
	"github.com/RonaldAllanRivera/ride-info/internal/service"
)

// UserHandler handles HTTP requests for users.
type UserHandler struct {
	userService *service.UserService
	paginator   pagination.Paginator
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService, paginator pagination.Paginator) *UserHandler {
	return &UserHandler{userService: userService, paginator: paginator}
}

// UserRequest is the HTTP request body for writing a user. Password is
// write-only.
type UserRequest struct {
	Role        *string `json:"role"`
	FirstName   *string `json:"first_name" binding:"omitempty,max=150"`
	LastName    *string `json:"last_name" binding:"omitempty,max=150"`
	Email       *string `json:"email" binding:"omitempty,max=254"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,max=50"`
	Password    *string `json:"password"`
	IsActive    *bool   `json:"is_active"`
}

// UserResponse is the HTTP representation of a user.
type UserResponse struct {
	ID          int64  `json:"id"`
	Role        string `json:"role"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Role:        string(u.Role),
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
	}
}

func (r UserRequest) input() service.UserInput {
	return service.UserInput{
		Role:        r.Role,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		Password:    r.Password,
		IsActive:    r.IsActive,
	}
}

// List handles GET /users
func (h *UserHandler) List(c *gin.Context) {
	params, err := h.paginator.Parse(c.Request.URL.Query())
	if err != nil {
		RespondError(c, err)
		return
	}

	filter := repository.UserFilter{
		Role:  c.Query("role"),
		Email: c.Query("email"),
	}
	users, total, err := h.userService.List(c.Request.Context(), filter, params)
	if err != nil {
		RespondError(c, err)
		return
	}

	results := make([]UserResponse, len(users))
	for i, u := range users {
		results[i] = newUserResponse(u)
	}
	respondJSON(c, http.StatusOK, pagination.NewPage(requestURL(c), params, total, results))
}

// Get handles GET /users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, newUserResponse(user))
}

// Create handles POST /users
func (h *UserHandler) Create(c *gin.Context) {
	var req UserRequest
	if err := bindJSON(c, &req); err != nil {
		RespondError(c, err)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), req.input())
	if err != nil {
		RespondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, newUserResponse(user))
}

// Update handles PUT /users/:id
func (h *UserHandler) Update(c *gin.Context) {
	h.update(c, false)
}

// Patch handles PATCH /users/:id
func (h *UserHandler) Patch(c *gin.Context) {
	h.update(c, true)
}

func (h *UserHandler) update(c *gin.Context, partial bool) {
	id, err := parseID(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	var req UserRequest
	if err := bindJSON(c, &req); err != nil {
		RespondError(c, err)
		return
	}

	user, err := h.userService.Update(c.Request.Context(), id, req.input(), partial)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, newUserResponse(user))
}

// Delete handles DELETE /users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	if err := h.userService.Delete(c.Request.Context(), id); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
