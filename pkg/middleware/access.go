package middleware

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/vortex-bridge/pkg/directory"
	"github.com/platinummonkey/vortex-bridge/pkg/httputil"
	"github.com/platinummonkey/vortex-bridge/pkg/observability"
)

// GroupAccess gates group-scoped routes on the caller's memberships
type GroupAccess struct {
	enforce  bool
	typeVar  string
	groupVar string
}

// NewGroupAccess creates a group access check reading the group from the
// given mux path variables. When enforce is false every request passes.
func NewGroupAccess(enforce bool, typeVar, groupVar string) *GroupAccess {
	return &GroupAccess{
		enforce:  enforce,
		typeVar:  typeVar,
		groupVar: groupVar,
	}
}

// RequireMember allows the request only when the principal belongs to the group
func (g *GroupAccess) RequireMember(next http.Handler) http.Handler {
	return g.require("", next)
}

// RequireAdmin allows the request only for admins who belong to the group
func (g *GroupAccess) RequireAdmin(next http.Handler) http.Handler {
	return g.require(directory.RoleAdmin, next)
}

func (g *GroupAccess) require(role directory.Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.enforce {
			next.ServeHTTP(w, r)
			return
		}

		principal := GetPrincipal(r)
		if principal == nil {
			httputil.WriteUnauthorized(w, "unauthorized")
			return
		}

		vars := mux.Vars(r)
		groupType := directory.GroupType(vars[g.typeVar])
		groupID := vars[g.groupVar]

		if !principal.MemberOf(groupType, groupID) {
			observability.FromContext(r.Context()).WithFields(map[string]interface{}{
				"group_type": groupType,
				"group_id":   groupID,
			}).Warn("Group access denied")
			httputil.WriteForbidden(w, "not a member of this group")
			return
		}

		if role != "" && principal.Role != role {
			httputil.WriteForbidden(w, "insufficient role permissions")
			return
		}

		next.ServeHTTP(w, r)
	})
}
