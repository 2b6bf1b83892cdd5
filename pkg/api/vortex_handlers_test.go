package api

import (
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/vortex-bridge/pkg/config"
	"github.com/platinummonkey/vortex-bridge/pkg/invitations"
	"github.com/platinummonkey/vortex-bridge/pkg/vortex"
)

func seedInvitations(env *testEnv) {
	ws := []vortex.Group{{Type: "workspace", ID: "ws-1", Name: "Main Workspace"}}
	team := []vortex.Group{{Type: "team", ID: "team-1", Name: "Engineering"}}

	env.upstream.Add(vortex.Invitation{ID: "inv-1", TargetType: "workspace", TargetValue: "ws-1", Groups: ws})
	env.upstream.Add(vortex.Invitation{ID: "inv-2", TargetType: "workspace", TargetValue: "ws-1", Groups: ws})
	env.upstream.Add(vortex.Invitation{ID: "inv-3", TargetType: "team", TargetValue: "team-1", Groups: team})
}

func TestGenerateJWT(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "admin@example.com")

	before := time.Now()
	rec := env.do(http.MethodPost, "/api/vortex/jwt", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[jwtResponse](t, rec)
	assert.WithinDuration(t, before.Add(time.Hour), resp.ExpiresAt, 2*time.Second)

	claims, err := env.client.ParseJWT(resp.JWT)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, []vortex.Identifier{{Type: "email", Value: "admin@example.com"}}, claims.Identifiers)
	assert.Equal(t, []vortex.Group{
		{Type: "workspace", ID: "ws-1", Name: "Main Workspace"},
		{Type: "team", ID: "team-1", Name: "Engineering"},
	}, claims.Groups)

	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.AssertionsTotal.WithLabelValues("success")))
}

func TestGenerateJWT_DemoKeyFails(t *testing.T) {
	env := newTestEnv(t, withAPIKey(config.DemoAPIKey))
	cookie := env.login(t, "bob@example.com")

	rec := env.do(http.MethodPost, "/api/vortex/jwt", nil, cookie)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "signing_failure", body["code"])
	assert.Contains(t, body["error"], "invalid Vortex API key")
	assert.NotContains(t, rec.Body.String(), config.DemoAPIKey)
	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.AssertionsTotal.WithLabelValues("signing_failure")))
}

func TestListByTarget(t *testing.T) {
	env := newTestEnv(t)
	seedInvitations(env)
	cookie := env.login(t, "bob@example.com")

	t.Run("valid target", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/vortex/invitations?targetType=workspace&targetValue=ws-1", nil, cookie)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode[invitationsResponse](t, rec)
		require.Len(t, resp.Invitations, 2)
		assert.Equal(t, "inv-1", resp.Invitations[0].ID)
	})

	t.Run("no matches is an empty list", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/vortex/invitations?targetType=team&targetValue=team-9", nil, cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"invitations":[]}`, rec.Body.String())
	})

	t.Run("invalid target is rejected locally", func(t *testing.T) {
		calls := len(env.upstream.Calls())

		rec := env.do(http.MethodGet, "/api/vortex/invitations?targetType=org&targetValue=o-1", nil, cookie)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_argument", decode[map[string]string](t, rec)["code"])

		rec = env.do(http.MethodGet, "/api/vortex/invitations?targetType=workspace", nil, cookie)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		assert.Len(t, env.upstream.Calls(), calls)
	})
}

func TestGetAndRevoke(t *testing.T) {
	env := newTestEnv(t)
	seedInvitations(env)
	cookie := env.login(t, "admin@example.com")

	rec := env.do(http.MethodGet, "/api/vortex/invitations/inv-1", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, vortex.InvitationStatusPending, decode[vortex.Invitation](t, rec).Status)

	rec = env.do(http.MethodDelete, "/api/vortex/invitations/inv-1", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = env.do(http.MethodGet, "/api/vortex/invitations/inv-1", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, vortex.InvitationStatusRevoked, decode[vortex.Invitation](t, rec).Status)
}

func TestUpstreamNotFoundIs500(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "admin@example.com")

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/vortex/invitations/missing"},
		{http.MethodDelete, "/api/vortex/invitations/missing"},
		{http.MethodPost, "/api/vortex/invitations/missing/reinvite"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := env.do(tt.method, tt.path, nil, cookie)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)

			body := decode[map[string]string](t, rec)
			assert.Equal(t, "not_found", body["code"])
			assert.Equal(t, "invitation not found", body["error"])
		})
	}
}

func TestUpstreamFailureIs500(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "admin@example.com")
	env.upstream.FailWith("/invitations/by-group/workspace/ws-1", http.StatusServiceUnavailable)

	rec := env.do(http.MethodGet, "/api/vortex/invitations/by-group/workspace/ws-1", nil, cookie)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "upstream_failure", body["code"])
	assert.Equal(t, "injected failure", body["error"])
}

func TestAccept(t *testing.T) {
	env := newTestEnv(t)
	seedInvitations(env)
	cookie := env.login(t, "bob@example.com")

	t.Run("partial failure", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/api/vortex/invitations/accept", map[string]interface{}{
			"invitationIds": []string{"inv-1", "missing", "inv-1", "inv-2"},
			"target":        map[string]string{"type": "workspace", "value": "ws-1"},
		}, cookie)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		result := decode[invitations.AcceptResult](t, rec)
		require.Len(t, result.Outcomes, 3)
		assert.Equal(t, 2, result.Accepted)
		assert.Equal(t, 1, result.Failed)

		assert.Equal(t, "inv-1", result.Outcomes[0].InvitationID)
		assert.Equal(t, invitations.OutcomeAccepted, result.Outcomes[0].Status)
		assert.Equal(t, "missing", result.Outcomes[1].InvitationID)
		assert.Equal(t, invitations.OutcomeFailed, result.Outcomes[1].Status)
		assert.Equal(t, invitations.KindNotFound, result.Outcomes[1].Code)
		assert.Equal(t, "inv-2", result.Outcomes[2].InvitationID)
		assert.Equal(t, invitations.OutcomeAccepted, result.Outcomes[2].Status)

		inv, _ := env.upstream.Invitation("inv-2")
		assert.Equal(t, vortex.InvitationStatusAccepted, inv.Status)
	})

	t.Run("validation failures", func(t *testing.T) {
		bodies := []interface{}{
			map[string]interface{}{"invitationIds": []string{}, "target": map[string]string{"type": "workspace", "value": "ws-1"}},
			map[string]interface{}{"invitationIds": []string{"inv-3"}, "target": map[string]string{"type": "org", "value": "x"}},
			map[string]interface{}{"invitationIds": []string{"inv-3"}},
		}
		for i, body := range bodies {
			rec := env.do(http.MethodPost, "/api/vortex/invitations/accept", body, cookie)
			assert.Equal(t, http.StatusBadRequest, rec.Code, "body %d", i)
		}
	})
}

func TestAccept_TooManyIDs(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "bob@example.com")

	ids := make([]string, invitations.DefaultMaxAcceptIDs+1)
	for i := range ids {
		ids[i] = "inv-" + strconv.Itoa(i)
	}

	rec := env.do(http.MethodPost, "/api/vortex/invitations/accept", map[string]interface{}{
		"invitationIds": ids,
		"target":        map[string]string{"type": "workspace", "value": "ws-1"},
	}, cookie)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "invalid_argument", body["code"])
	assert.Contains(t, body["error"], "at most 100 invitation ids")
	assert.Empty(t, env.upstream.Calls())
}

func TestByGroup(t *testing.T) {
	env := newTestEnv(t)
	seedInvitations(env)
	cookie := env.login(t, "bob@example.com")

	rec := env.do(http.MethodGet, "/api/vortex/invitations/by-group/team/team-1", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[invitationsResponse](t, rec).Invitations, 1)

	rec = env.do(http.MethodDelete, "/api/vortex/invitations/by-group/team/team-1", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	_, ok := env.upstream.Invitation("inv-3")
	assert.False(t, ok)

	rec = env.do(http.MethodGet, "/api/vortex/invitations/by-group/nope/x", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestByGroup_EnforcedAccess(t *testing.T) {
	env := newTestEnv(t, withConfig(func(c *Config) { c.EnforceGroupAccess = true }))
	seedInvitations(env)
	bob := env.login(t, "bob@example.com")
	admin := env.login(t, "admin@example.com")

	tests := []struct {
		name   string
		method string
		path   string
		cookie *http.Cookie
		want   int
	}{
		{"member lists own group", http.MethodGet, "/api/vortex/invitations/by-group/workspace/ws-1", bob, http.StatusOK},
		{"member lists other group", http.MethodGet, "/api/vortex/invitations/by-group/team/team-1", bob, http.StatusForbidden},
		{"member deletes own group", http.MethodDelete, "/api/vortex/invitations/by-group/workspace/ws-1", bob, http.StatusForbidden},
		{"admin deletes own group", http.MethodDelete, "/api/vortex/invitations/by-group/team/team-1", admin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(tt.method, tt.path, nil, tt.cookie)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestReinvite(t *testing.T) {
	env := newTestEnv(t)
	seedInvitations(env)
	cookie := env.login(t, "admin@example.com")

	env.do(http.MethodDelete, "/api/vortex/invitations/inv-2", nil, cookie)

	rec := env.do(http.MethodPost, "/api/vortex/invitations/inv-2/reinvite", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	inv := decode[vortex.Invitation](t, rec)
	assert.Equal(t, "inv-2", inv.ID)
	assert.Equal(t, vortex.InvitationStatusPending, inv.Status)
}

func TestInvitationPaths_AreEscaped(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "admin@example.com")

	env.do(http.MethodGet, "/api/vortex/invitations/inv%3Fx%3D1", nil, cookie)

	calls := env.upstream.Calls()
	require.NotEmpty(t, calls)
	last := calls[len(calls)-1]
	assert.Empty(t, last.Query, "an id must never inject query parameters")
	assert.True(t, strings.HasPrefix(last.Path, "/invitations/inv"))
}
