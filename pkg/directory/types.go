package directory

// Role represents the directory-level role carried into sessions and assertions
type Role string

const (
	RoleAdmin  Role = "admin"  // Can manage invitations for every group they belong to
	RoleMember Role = "member" // Regular group member
)

// Valid reports whether the role is one of the recognized roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMember:
		return true
	}
	return false
}

// GroupType represents the category of a group membership
type GroupType string

const (
	GroupTypeWorkspace GroupType = "workspace"
	GroupTypeTeam      GroupType = "team"
)

// GroupTypes lists every recognized group type
func GroupTypes() []GroupType {
	return []GroupType{GroupTypeWorkspace, GroupTypeTeam}
}

// Valid reports whether the group type is recognized
func (t GroupType) Valid() bool {
	switch t {
	case GroupTypeWorkspace, GroupTypeTeam:
		return true
	}
	return false
}

// Membership represents a user's membership of a single group
type Membership struct {
	Type GroupType `json:"type" yaml:"type"`
	ID   string    `json:"id" yaml:"id"`
	Name string    `json:"name" yaml:"name"`
}

// User represents a directory entry
type User struct {
	ID          string       `json:"id" yaml:"id"`
	Email       string       `json:"email" yaml:"email"`
	Secret      string       `json:"-" yaml:"secret"` // Never serialized to clients
	DisplayName string       `json:"name" yaml:"name"`
	Role        Role         `json:"role" yaml:"role"`
	Groups      []Membership `json:"groups" yaml:"groups"`
}

// PublicUser is the only view of a user that may be listed publicly
type PublicUser struct {
	Email string `json:"email"`
}

// MemberOf reports whether the user belongs to the given group
func (u *User) MemberOf(groupType GroupType, groupID string) bool {
	for _, g := range u.Groups {
		if g.Type == groupType && g.ID == groupID {
			return true
		}
	}
	return false
}

func (u *User) clone() *User {
	c := *u
	if u.Groups != nil {
		c.Groups = make([]Membership, len(u.Groups))
		copy(c.Groups, u.Groups)
	}
	return &c
}
