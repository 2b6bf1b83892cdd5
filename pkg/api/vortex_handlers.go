package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/vortex-bridge/pkg/claims"
	"github.com/platinummonkey/vortex-bridge/pkg/directory"
	"github.com/platinummonkey/vortex-bridge/pkg/httputil"
	"github.com/platinummonkey/vortex-bridge/pkg/invitations"
	"github.com/platinummonkey/vortex-bridge/pkg/middleware"
	"github.com/platinummonkey/vortex-bridge/pkg/observability"
	"github.com/platinummonkey/vortex-bridge/pkg/vortex"
)

// VortexHandlers handles assertion and invitation requests
type VortexHandlers struct {
	issuer      AssertionIssuer
	invitations InvitationService
	metrics     *observability.Metrics
}

// NewVortexHandlers creates a new vortex handlers instance
func NewVortexHandlers(issuer AssertionIssuer, invs InvitationService, metrics *observability.Metrics) *VortexHandlers {
	return &VortexHandlers{
		issuer:      issuer,
		invitations: invs,
		metrics:     metrics,
	}
}

// RegisterRoutes registers vortex routes on a router mounted at /vortex.
// Every route requires a session.
func (h *VortexHandlers) RegisterRoutes(router *mux.Router, sessions *middleware.SessionMiddleware, access *middleware.GroupAccess) {
	router.Use(sessions.Handler)

	router.HandleFunc("/jwt", h.generateJWT).Methods(http.MethodPost)

	router.HandleFunc("/invitations", h.listByTarget).Methods(http.MethodGet)
	router.HandleFunc("/invitations/accept", h.accept).Methods(http.MethodPost)
	router.Handle("/invitations/by-group/{type}/{id}", access.RequireMember(http.HandlerFunc(h.listByGroup))).Methods(http.MethodGet)
	router.Handle("/invitations/by-group/{type}/{id}", access.RequireAdmin(http.HandlerFunc(h.deleteByGroup))).Methods(http.MethodDelete)
	router.HandleFunc("/invitations/{id}", h.get).Methods(http.MethodGet)
	router.HandleFunc("/invitations/{id}", h.revoke).Methods(http.MethodDelete)
	router.HandleFunc("/invitations/{id}/reinvite", h.reinvite).Methods(http.MethodPost)
}

type jwtResponse struct {
	JWT       string    `json:"jwt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type invitationsResponse struct {
	Invitations []vortex.Invitation `json:"invitations"`
}

type acceptRequest struct {
	InvitationIDs []string           `json:"invitationIds"`
	Target        invitations.Target `json:"target"`
}

// generateJWT handles POST /vortex/jwt
func (h *VortexHandlers) generateJWT(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r)
	if principal == nil {
		httputil.WriteUnauthorized(w, "unauthorized")
		return
	}

	assertion, err := h.issuer.Issue(r.Context(), principal)
	if err != nil {
		h.countAssertion(string(claims.KindOf(err)))
		writeDomainError(w, r, err)
		return
	}

	h.countAssertion("success")
	_ = httputil.WriteSuccess(w, jwtResponse{
		JWT:       assertion.Token,
		ExpiresAt: assertion.ExpiresAt.UTC(),
	})
}

// listByTarget handles GET /vortex/invitations?targetType=&targetValue=
func (h *VortexHandlers) listByTarget(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target := invitations.Target{
		Type:  directory.GroupType(q.Get("targetType")),
		Value: q.Get("targetValue"),
	}

	invs, err := h.invitations.ListByTarget(r.Context(), target)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeInvitations(w, invs)
}

// get handles GET /vortex/invitations/{id}
func (h *VortexHandlers) get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	inv, err := h.invitations.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	_ = httputil.WriteSuccess(w, inv)
}

// revoke handles DELETE /vortex/invitations/{id}
func (h *VortexHandlers) revoke(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	if err := h.invitations.Revoke(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	_ = httputil.WriteSuccess(w, map[string]bool{"success": true})
}

// accept handles POST /vortex/invitations/accept
func (h *VortexHandlers) accept(w http.ResponseWriter, r *http.Request) {
	var req acceptRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	result, err := h.invitations.AcceptMany(r.Context(), req.InvitationIDs, req.Target)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if h.metrics != nil {
		for _, o := range result.Outcomes {
			h.metrics.AcceptOutcomesTotal.WithLabelValues(string(o.Status)).Inc()
		}
	}
	_ = httputil.WriteSuccess(w, result)
}

// listByGroup handles GET /vortex/invitations/by-group/{type}/{id}
func (h *VortexHandlers) listByGroup(w http.ResponseWriter, r *http.Request) {
	invs, err := h.invitations.ListByGroup(r.Context(), groupFromPath(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeInvitations(w, invs)
}

// deleteByGroup handles DELETE /vortex/invitations/by-group/{type}/{id}
func (h *VortexHandlers) deleteByGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.invitations.DeleteByGroup(r.Context(), groupFromPath(r)); err != nil {
		writeDomainError(w, r, err)
		return
	}
	_ = httputil.WriteSuccess(w, map[string]bool{"success": true})
}

// reinvite handles POST /vortex/invitations/{id}/reinvite
func (h *VortexHandlers) reinvite(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	inv, err := h.invitations.Reinvite(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	_ = httputil.WriteSuccess(w, inv)
}

func groupFromPath(r *http.Request) invitations.Target {
	vars := mux.Vars(r)
	return invitations.Target{
		Type:  directory.GroupType(vars["type"]),
		Value: vars["id"],
	}
}

func writeInvitations(w http.ResponseWriter, invs []vortex.Invitation) {
	if invs == nil {
		invs = []vortex.Invitation{}
	}
	_ = httputil.WriteSuccess(w, invitationsResponse{Invitations: invs})
}

func (h *VortexHandlers) countAssertion(result string) {
	if h.metrics != nil {
		h.metrics.AssertionsTotal.WithLabelValues(result).Inc()
	}
}
