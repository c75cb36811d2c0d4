package http

import (
	"net/http"

	"github.com/aussiebroadwan/bitebank/pkg/authsdk"
	"github.com/aussiebroadwan/bitebank/pkg/httpx"
)

// MeHandler godoc
//
//	@Summary		Current user
//	@Description	Returns the identity of the bearer token's owner.
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.IdentityResponse	"username, id, role"
//	@Failure		401	{object}	authsdk.ErrorResponse		"missing or invalid token"
//	@Router			/auth/me [get].
func MeHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.IdentityResponse{
		Username: id.Username,
		ID:       id.UserID,
		Role:     id.Role,
	})
}
