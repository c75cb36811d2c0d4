package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/bitebank/internal/auth/service"
	"github.com/aussiebroadwan/bitebank/pkg/authsdk"
	"github.com/aussiebroadwan/bitebank/pkg/httpx"
	"github.com/aussiebroadwan/bitebank/pkg/slogx"
)

// RegisterHandler serves POST /auth/register.
type RegisterHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Register a user
//	@Description	Creates a new account and returns an access token for it. Role defaults to USER.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest	true	"username, email, password, role"
//	@Success		200		{object}	authsdk.TokenResponse	"access_token, token_type, expires_in"
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid input, username or email taken"
//	@Failure		429		{object}	authsdk.ErrorResponse	"rate limit exceeded"
//	@Failure		500		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/auth/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	res, err := h.AuthService.Register(ctx, service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			authsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		case errors.Is(err, service.ErrDuplicateUsername):
			authsdk.ErrUsernameExists.WriteError(w)
		case errors.Is(err, service.ErrDuplicateEmail):
			authsdk.ErrEmailExists.WriteError(w)
		default:
			log.Error("register failed", "err", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
		ExpiresIn:   res.ExpiresIn,
	})
}

func writeDecodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, errBodyTooLarge) {
		authsdk.ErrPayloadTooLarge.WriteError(w)
		return
	}
	authsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
}
