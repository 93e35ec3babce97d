package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/daap14/teamhub/internal/api/middleware"
	"github.com/daap14/teamhub/internal/api/response"
	"github.com/daap14/teamhub/internal/api/validation"
	"github.com/daap14/teamhub/internal/auth"
)

// UserStore is the subset of auth.UserRepository used by UserHandler.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*auth.User, error)
	List(ctx context.Context) ([]auth.User, error)
	Revoke(ctx context.Context, id uuid.UUID) error
}

type createUserRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	IsSuperuser bool   `json:"isSuperuser"`
}

type userResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	ApiKeyPrefix string  `json:"apiKeyPrefix"`
	IsSuperuser  bool    `json:"isSuperuser"`
	CreatedAt    string  `json:"createdAt"`
	RevokedAt    *string `json:"revokedAt,omitempty"`
}

type userWithKeyResponse struct {
	userResponse
	ApiKey string `json:"apiKey"`
}

func toUserResponse(u *auth.User) userResponse {
	return userResponse{
		ID:           u.ID.String(),
		Name:         u.Name,
		Email:        u.Email,
		ApiKeyPrefix: u.ApiKeyPrefix,
		IsSuperuser:  u.IsSuperuser,
		CreatedAt:    response.Time(u.CreatedAt),
		RevokedAt:    response.TimePtr(u.RevokedAt),
	}
}

// UserHandler handles the superuser user endpoints.
type UserHandler struct {
	users UserService
	store UserStore
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users UserService, store UserStore) *UserHandler {
	return &UserHandler{users: users, store: store}
}

// Create handles POST /users. The raw API key is only returned here.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if rejectFieldErrors(w, r, validation.ValidateCreateUserRequest(validation.CreateUserRequest{
		Name:  req.Name,
		Email: req.Email,
	})) {
		return
	}

	u, rawKey, err := h.users.CreateUser(r.Context(), req.Name, req.Email, req.IsSuperuser)
	if err != nil {
		writeError(w, r, err, "Failed to create user")
		return
	}

	response.Success(w, http.StatusCreated, userWithKeyResponse{
		userResponse: toUserResponse(u),
		ApiKey:       rawKey,
	}, requestID)
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	users, err := h.store.List(r.Context())
	if err != nil {
		writeError(w, r, err, "Failed to list users")
		return
	}

	items := make([]userResponse, 0, len(users))
	for i := range users {
		items = append(items, toUserResponse(&users[i]))
	}

	response.SuccessList(w, http.StatusOK, items, len(items), 1, len(items), requestID)
}

// Delete handles DELETE /users/{id} (soft-revoke).
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	u, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "Failed to revoke user")
		return
	}
	if u.IsSuperuser {
		response.Err(w, http.StatusForbidden, "FORBIDDEN", "Cannot revoke a superuser", requestID)
		return
	}

	if err := h.store.Revoke(r.Context(), id); err != nil {
		if errors.Is(err, auth.ErrUserRevoked) {
			// Already revoked: idempotent.
			response.NoContent(w)
			return
		}
		writeError(w, r, err, "Failed to revoke user")
		return
	}

	response.NoContent(w)
}
