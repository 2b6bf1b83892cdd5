package directory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// file is the on-disk layout of a directory table
type file struct {
	Users []User `yaml:"users"`
}

// LoadFile reads a YAML directory table from path
//
// Example:
//
//	users:
//	  - id: user-1
//	    email: admin@example.com
//	    secret: password123
//	    name: Admin User
//	    role: admin
//	    groups:
//	      - {type: workspace, id: ws-1, name: Main Workspace}
func LoadFile(path string, opts ...Option) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory file: %w", err)
	}
	return Parse(data, opts...)
}

// Parse builds a directory from YAML bytes
func Parse(data []byte, opts ...Option) (*Directory, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid directory YAML: %w", err)
	}
	d, err := New(f.Users, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid directory: %w", err)
	}
	return d, nil
}

// DefaultUsers returns the built-in demo table
func DefaultUsers() []User {
	mainWorkspace := Membership{Type: GroupTypeWorkspace, ID: "ws-1", Name: "Main Workspace"}
	engineering := Membership{Type: GroupTypeTeam, ID: "team-1", Name: "Engineering"}

	return []User{
		{
			ID:          "user-1",
			Email:       "admin@example.com",
			Secret:      "password123",
			DisplayName: "Admin User",
			Role:        RoleAdmin,
			Groups:      []Membership{mainWorkspace, engineering},
		},
		{
			ID:          "user-2",
			Email:       "alice@example.com",
			Secret:      "password123",
			DisplayName: "Alice Johnson",
			Role:        RoleAdmin,
			Groups:      []Membership{mainWorkspace, engineering},
		},
		{
			ID:          "user-3",
			Email:       "bob@example.com",
			Secret:      "password123",
			DisplayName: "Bob Smith",
			Role:        RoleMember,
			Groups:      []Membership{mainWorkspace},
		},
	}
}

// Default builds a directory from the built-in demo table
func Default(opts ...Option) *Directory {
	d, err := New(DefaultUsers(), opts...)
	if err != nil {
		// The built-in table is static; failing here is a programming error.
		panic(fmt.Sprintf("default directory is invalid: %v", err))
	}
	return d
}
