package directory

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyDirectory is returned when a directory is built without any users
var ErrEmptyDirectory = errors.New("directory has no users")

// Directory is an immutable, read-only table of users. It is safe for
// concurrent use without locking because nothing mutates it after New.
type Directory struct {
	users           []*User
	byID            map[string]*User
	byEmail         map[string]*User
	caseInsensitive bool
}

// Option configures a Directory
type Option func(*Directory)

// WithCaseInsensitiveEmail makes email lookups ignore case
func WithCaseInsensitiveEmail() Option {
	return func(d *Directory) {
		d.caseInsensitive = true
	}
}

// New builds a directory from the given users after validating them
func New(users []User, opts ...Option) (*Directory, error) {
	d := &Directory{
		byID:    make(map[string]*User, len(users)),
		byEmail: make(map[string]*User, len(users)),
	}
	for _, opt := range opts {
		opt(d)
	}

	if len(users) == 0 {
		return nil, ErrEmptyDirectory
	}

	for i := range users {
		u := users[i].clone()
		if err := validateUser(u); err != nil {
			return nil, fmt.Errorf("user %d: %w", i, err)
		}
		if _, exists := d.byID[u.ID]; exists {
			return nil, fmt.Errorf("duplicate user id %q", u.ID)
		}
		key := d.emailKey(u.Email)
		if _, exists := d.byEmail[key]; exists {
			return nil, fmt.Errorf("duplicate email %q", u.Email)
		}
		d.users = append(d.users, u)
		d.byID[u.ID] = u
		d.byEmail[key] = u
	}

	return d, nil
}

func validateUser(u *User) error {
	if u.ID == "" {
		return errors.New("id is required")
	}
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.Secret == "" {
		return errors.New("secret is required")
	}
	if !u.Role.Valid() {
		return fmt.Errorf("unknown role %q", u.Role)
	}
	for _, g := range u.Groups {
		if !g.Type.Valid() {
			return fmt.Errorf("unknown group type %q", g.Type)
		}
		if g.ID == "" {
			return fmt.Errorf("group of type %q has no id", g.Type)
		}
	}
	return nil
}

func (d *Directory) emailKey(email string) string {
	if d.caseInsensitive {
		return strings.ToLower(email)
	}
	return email
}

// FindByCredentials returns the user matching email and secret
func (d *Directory) FindByCredentials(email, secret string) (*User, bool) {
	u, ok := d.byEmail[d.emailKey(email)]
	if !ok {
		return nil, false
	}
	if subtle.ConstantTimeCompare([]byte(u.Secret), []byte(secret)) != 1 {
		return nil, false
	}
	return u.clone(), true
}

// FindByID returns the user with the given id
func (d *Directory) FindByID(id string) (*User, bool) {
	u, ok := d.byID[id]
	if !ok {
		return nil, false
	}
	return u.clone(), true
}

// ListPublic returns the emails of all users in table order
func (d *Directory) ListPublic() []PublicUser {
	out := make([]PublicUser, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, PublicUser{Email: u.Email})
	}
	return out
}

// Len returns the number of users
func (d *Directory) Len() int {
	return len(d.users)
}
