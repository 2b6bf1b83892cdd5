package claims

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/vortex-bridge/pkg/directory"
	"github.com/platinummonkey/vortex-bridge/pkg/session"
	"github.com/platinummonkey/vortex-bridge/pkg/vortex"
)

const testAPIKey = "VRTX.AAECAwQFBgcICQoLDA0ODw.test-secret"

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

type stubSigner struct {
	calls  int
	params vortex.JWTParams
	err    error
}

func (s *stubSigner) GenerateJWT(_ context.Context, p vortex.JWTParams) (string, error) {
	s.calls++
	s.params = p
	if s.err != nil {
		return "", s.err
	}
	return "signed-token", nil
}

func bob() *session.Principal {
	return &session.Principal{
		SubjectID:   "user-3",
		Email:       "bob@example.com",
		DisplayName: "Bob Smith",
		Role:        directory.RoleMember,
		Groups:      []directory.Membership{{Type: directory.GroupTypeWorkspace, ID: "ws-1", Name: "Main Workspace"}},
	}
}

func TestIssue(t *testing.T) {
	signer := &stubSigner{}
	issuer := NewIssuer(signer, WithClock(func() time.Time { return testNow }))

	a, err := issuer.Issue(context.Background(), bob())
	require.NoError(t, err)

	assert.Equal(t, "signed-token", a.Token)
	assert.Equal(t, "user-3", a.SubjectID)
	assert.Equal(t, directory.RoleMember, a.Role)
	assert.Equal(t, []vortex.Identifier{{Type: "email", Value: "bob@example.com"}}, a.Identifiers)
	require.Len(t, a.Groups, 1)
	assert.Equal(t, vortex.Group{Type: "workspace", ID: "ws-1", Name: "Main Workspace"}, a.Groups[0])
	assert.Equal(t, testNow.Add(DefaultTTL), a.ExpiresAt)

	assert.Equal(t, 1, signer.calls)
	assert.Equal(t, "member", signer.params.Role)
	assert.Equal(t, a.ExpiresAt, signer.params.ExpiresAt)
}

func TestIssue_PreservesGroupOrder(t *testing.T) {
	p := bob()
	p.Role = directory.RoleAdmin
	p.Groups = []directory.Membership{
		{Type: directory.GroupTypeTeam, ID: "team-9", Name: "Zeta"},
		{Type: directory.GroupTypeWorkspace, ID: "ws-1", Name: "Main Workspace"},
		{Type: directory.GroupTypeTeam, ID: "team-1", Name: "Alpha"},
	}

	a, err := NewIssuer(&stubSigner{}).Issue(context.Background(), p)
	require.NoError(t, err)

	want := []vortex.Group{
		{Type: "team", ID: "team-9", Name: "Zeta"},
		{Type: "workspace", ID: "ws-1", Name: "Main Workspace"},
		{Type: "team", ID: "team-1", Name: "Alpha"},
	}
	assert.Equal(t, want, a.Groups)
}

func TestIssue_NoGroups(t *testing.T) {
	p := bob()
	p.Groups = nil

	a, err := NewIssuer(&stubSigner{}).Issue(context.Background(), p)
	require.NoError(t, err)
	assert.NotNil(t, a.Groups)
	assert.Empty(t, a.Groups)
}

func TestIssue_Deterministic(t *testing.T) {
	clock := testNow
	issuer := NewIssuer(&stubSigner{}, WithClock(func() time.Time { return clock }))

	first, err := issuer.Issue(context.Background(), bob())
	require.NoError(t, err)
	clock = clock.Add(time.Minute)
	second, err := issuer.Issue(context.Background(), bob())
	require.NoError(t, err)

	first.ExpiresAt, second.ExpiresAt = time.Time{}, time.Time{}
	assert.Equal(t, first, second)
}

func TestIssue_SigningFailure(t *testing.T) {
	cause := errors.New("quota exceeded")
	signer := &stubSigner{err: cause}

	_, err := NewIssuer(signer).Issue(context.Background(), bob())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSigningFailure)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindSigningFailure, KindOf(err))
	assert.Equal(t, "quota exceeded", err.Error())
	assert.Equal(t, 1, signer.calls, "signing must not be retried")
}

func TestIssue_InvalidPrincipal(t *testing.T) {
	tests := []struct {
		name      string
		principal func() *session.Principal
	}{
		{"nil", func() *session.Principal { return nil }},
		{"no subject", func() *session.Principal {
			p := bob()
			p.SubjectID = ""
			return p
		}},
		{"unknown role", func() *session.Principal {
			p := bob()
			p.Role = "owner"
			return p
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signer := &stubSigner{}
			_, err := NewIssuer(signer).Issue(context.Background(), tt.principal())
			assert.ErrorIs(t, err, ErrInvalidPrincipal)
			assert.Zero(t, signer.calls)
		})
	}
}

func TestIssue_WithVortexSigner(t *testing.T) {
	client := vortex.NewClient(testAPIKey, vortex.WithClock(func() time.Time { return testNow }))
	issuer := NewIssuer(client, WithClock(func() time.Time { return testNow }), WithTTL(10*time.Minute))

	a, err := issuer.Issue(context.Background(), bob())
	require.NoError(t, err)

	claims, err := client.ParseJWT(a.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-3", claims.UserID)
	assert.Equal(t, a.Groups, claims.Groups)
	assert.Equal(t, a.Identifiers, claims.Identifiers)
	assert.Equal(t, testNow.Add(10*time.Minute).Unix(), claims.Expires)
}

func TestIssue_PlaceholderKey(t *testing.T) {
	_, err := NewIssuer(vortex.NewClient("demo-api-key")).Issue(context.Background(), bob())
	assert.ErrorIs(t, err, ErrSigningFailure)
	assert.ErrorIs(t, err, vortex.ErrInvalidAPIKey)
}

func TestEndToEnd_BobLogin(t *testing.T) {
	mgr := session.NewManager(directory.Default(), session.NewMemoryStore())
	p, _, err := mgr.Login(context.Background(), "bob@example.com", "password123")
	require.NoError(t, err)

	a, err := NewIssuer(&stubSigner{}).Issue(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, a.Groups, 1)
	assert.Equal(t, "workspace", a.Groups[0].Type)
	assert.Equal(t, directory.RoleMember, a.Role)
}
