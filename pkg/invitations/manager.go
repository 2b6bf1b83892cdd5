package invitations

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/vortex-bridge/pkg/directory"
	"github.com/platinummonkey/vortex-bridge/pkg/observability"
	"github.com/platinummonkey/vortex-bridge/pkg/vortex"
)

const (
	// DefaultAcceptConcurrency bounds parallel upstream calls in AcceptMany
	DefaultAcceptConcurrency = 4
	// DefaultMaxAcceptIDs bounds the distinct ids one AcceptMany call may carry
	DefaultMaxAcceptIDs = 100
)

// Upstream is the invitation API the manager delegates to
type Upstream interface {
	GetInvitationsByTarget(ctx context.Context, targetType, targetValue string) ([]vortex.Invitation, error)
	GetInvitation(ctx context.Context, id string) (*vortex.Invitation, error)
	RevokeInvitation(ctx context.Context, id string) error
	AcceptInvitations(ctx context.Context, ids []string, target vortex.Target) (*vortex.Invitation, error)
	GetInvitationsByGroup(ctx context.Context, groupType, groupID string) ([]vortex.Invitation, error)
	DeleteInvitationsByGroup(ctx context.Context, groupType, groupID string) error
	Reinvite(ctx context.Context, id string) (*vortex.Invitation, error)
}

// Target is the group an invitation or query is scoped to
type Target struct {
	Type  directory.GroupType `json:"type"`
	Value string              `json:"value"`
}

// Validate checks the target locally before any upstream call
func (t Target) Validate() error {
	if !t.Type.Valid() {
		return invalid("unrecognized target type %q (allowed: %s)", t.Type, allowedTypes())
	}
	if strings.TrimSpace(t.Value) == "" {
		return invalid("target value is required")
	}
	return nil
}

func allowedTypes() string {
	types := directory.GroupTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// OutcomeStatus is the result of accepting one invitation
type OutcomeStatus string

const (
	OutcomeAccepted OutcomeStatus = "accepted"
	OutcomeFailed   OutcomeStatus = "failed"
)

// Outcome is the result for a single requested invitation id
type Outcome struct {
	InvitationID string             `json:"invitationId"`
	Status       OutcomeStatus      `json:"status"`
	Invitation   *vortex.Invitation `json:"invitation,omitempty"`
	Code         Kind               `json:"code,omitempty"`
	Error        string             `json:"error,omitempty"`
}

// AcceptResult holds one outcome per distinct requested id, in request order
type AcceptResult struct {
	Outcomes []Outcome `json:"outcomes"`
	Accepted int       `json:"accepted"`
	Failed   int       `json:"failed"`
}

// Manager validates invitation requests and forwards them upstream.
// Nothing is cached; every read goes to the upstream service.
type Manager struct {
	upstream    Upstream
	concurrency int
	maxIDs      int
	logger      *observability.Logger
}

// Option configures a Manager
type Option func(*Manager)

// WithAcceptConcurrency bounds parallel upstream calls in AcceptMany
func WithAcceptConcurrency(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.concurrency = n
		}
	}
}

// WithMaxAcceptIDs caps the distinct ids accepted in one AcceptMany call
func WithMaxAcceptIDs(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxIDs = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *observability.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a manager over upstream
func NewManager(upstream Upstream, opts ...Option) *Manager {
	m := &Manager{
		upstream:    upstream,
		concurrency: DefaultAcceptConcurrency,
		maxIDs:      DefaultMaxAcceptIDs,
		logger:      observability.NewLogger(observability.InfoLevel, nil),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.WithField("component", "invitations")
	return m
}

// ListByTarget lists invitations addressed to target
func (m *Manager) ListByTarget(ctx context.Context, target Target) ([]vortex.Invitation, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	invs, err := m.upstream.GetInvitationsByTarget(ctx, string(target.Type), target.Value)
	if err != nil {
		return nil, upstream(err)
	}
	return invs, nil
}

// ListByGroup lists invitations attached to a group
func (m *Manager) ListByGroup(ctx context.Context, group Target) ([]vortex.Invitation, error) {
	if err := group.Validate(); err != nil {
		return nil, err
	}
	invs, err := m.upstream.GetInvitationsByGroup(ctx, string(group.Type), group.Value)
	if err != nil {
		return nil, upstream(err)
	}
	return invs, nil
}

// Get fetches one invitation
func (m *Manager) Get(ctx context.Context, id string) (*vortex.Invitation, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	inv, err := m.upstream.GetInvitation(ctx, id)
	if err != nil {
		return nil, upstream(err)
	}
	return inv, nil
}

// Revoke revokes one invitation. A missing invitation is KindNotFound, never a silent success.
func (m *Manager) Revoke(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := m.upstream.RevokeInvitation(ctx, id); err != nil {
		return upstream(err)
	}
	return nil
}

// AcceptMany accepts each distinct id on behalf of target. Each id is sent
// upstream on its own, so one failing id never affects the others. Only local
// validation fails the whole call.
func (m *Manager) AcceptMany(ctx context.Context, ids []string, target Target) (*AcceptResult, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}

	distinct := dedupe(ids)
	if len(distinct) == 0 {
		return nil, invalid("at least one invitation id is required")
	}
	if len(distinct) > m.maxIDs {
		return nil, invalid("at most %d invitation ids per request", m.maxIDs)
	}

	upstreamTarget := vortex.Target{Type: string(target.Type), Value: target.Value}
	outcomes := make([]Outcome, len(distinct))

	var g errgroup.Group
	g.SetLimit(m.concurrency)
	for i, id := range distinct {
		g.Go(func() error {
			outcomes[i] = m.acceptOne(ctx, id, upstreamTarget)
			return nil
		})
	}
	_ = g.Wait()

	result := &AcceptResult{Outcomes: outcomes}
	for _, o := range outcomes {
		if o.Status == OutcomeAccepted {
			result.Accepted++
		} else {
			result.Failed++
		}
	}
	return result, nil
}

func (m *Manager) acceptOne(ctx context.Context, id string, target vortex.Target) Outcome {
	inv, err := m.upstream.AcceptInvitations(ctx, []string{id}, target)
	if err != nil {
		e := upstream(err)
		m.logger.WithFields(map[string]interface{}{
			"invitation_id": id,
			"code":          e.Kind,
		}).WithError(err).Warn("Invitation accept failed")
		return Outcome{InvitationID: id, Status: OutcomeFailed, Code: e.Kind, Error: e.Message}
	}
	return Outcome{InvitationID: id, Status: OutcomeAccepted, Invitation: inv}
}

// DeleteByGroup deletes every invitation attached to a group. The upstream
// delete is not transactional across invitations.
func (m *Manager) DeleteByGroup(ctx context.Context, group Target) error {
	if err := group.Validate(); err != nil {
		return err
	}
	if err := m.upstream.DeleteInvitationsByGroup(ctx, string(group.Type), group.Value); err != nil {
		return upstream(err)
	}
	return nil
}

// Reinvite re-sends an invitation and returns the refreshed handle
func (m *Manager) Reinvite(ctx context.Context, id string) (*vortex.Invitation, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	inv, err := m.upstream.Reinvite(ctx, id)
	if err != nil {
		return nil, upstream(err)
	}
	return inv, nil
}

func validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid("invitation id is required")
	}
	return nil
}

// dedupe drops blank and repeated ids, keeping first occurrences in order
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
