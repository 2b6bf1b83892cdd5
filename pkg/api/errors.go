package api

import (
	"errors"
	"net/http"

	"github.com/platinummonkey/vortex-bridge/pkg/claims"
	"github.com/platinummonkey/vortex-bridge/pkg/httputil"
	"github.com/platinummonkey/vortex-bridge/pkg/invitations"
	"github.com/platinummonkey/vortex-bridge/pkg/observability"
	"github.com/platinummonkey/vortex-bridge/pkg/session"
)

// writeDomainError translates a core error into its HTTP response.
// Upstream failures, 404s included, surface as 500 with the upstream reason.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := observability.FromContext(r.Context()).WithError(err)

	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		httputil.WriteUnauthorized(w, "invalid credentials")
	case errors.Is(err, session.ErrUnauthenticated):
		httputil.WriteUnauthorized(w, "unauthorized")
	case errors.Is(err, invitations.ErrInvalidArgument):
		httputil.WriteCodedError(w, http.StatusBadRequest, string(invitations.KindInvalidArgument), err.Error())
	case errors.Is(err, invitations.ErrNotFound), errors.Is(err, invitations.ErrUpstreamFailure):
		logger.Warn("Upstream invitation call failed")
		httputil.WriteCodedError(w, http.StatusInternalServerError, string(invitations.KindOf(err)), err.Error())
	case errors.Is(err, claims.ErrSigningFailure), errors.Is(err, claims.ErrInvalidPrincipal):
		logger.Error("Assertion issuance failed")
		httputil.WriteCodedError(w, http.StatusInternalServerError, string(claims.KindOf(err)), err.Error())
	default:
		logger.Error("Request failed")
		httputil.WriteErrorMessage(w, http.StatusInternalServerError, "internal server error")
	}
}
