package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/bitebank/internal/auth/service"
	"github.com/aussiebroadwan/bitebank/pkg/authsdk"
	"github.com/aussiebroadwan/bitebank/pkg/httpx"
	"github.com/aussiebroadwan/bitebank/pkg/slogx"
)

// VerifyTokenHandler serves POST /auth/verify-token. Other services call it
// to turn a bearer token into an identity without holding the secret.
type VerifyTokenHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Verify an access token
//	@Description	Returns the identity carried by a valid token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.VerifyTokenRequest	true	"token"
//	@Success		200		{object}	authsdk.IdentityResponse	"username, id, role"
//	@Failure		400		{object}	authsdk.ErrorResponse		"malformed body"
//	@Failure		401		{object}	authsdk.ErrorResponse		"invalid or expired token"
//	@Router			/auth/verify-token [post].
func (h *VerifyTokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authsdk.VerifyTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	id, err := h.AuthService.Verify(ctx, req.Token)
	if err != nil {
		if !errors.Is(err, service.ErrUnauthorized) {
			slogx.FromContext(ctx).Error("verify token failed", "err", err)
		}
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.IdentityResponse{
		Username: id.Username,
		ID:       id.UserID,
		Role:     id.Role,
	})
}
