package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/vortex-bridge/pkg/vortex/vortextest"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestUsersCommand(t *testing.T) {
	out, err := run(t, "users")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com\nalice@example.com\nbob@example.com\n", out)
	assert.NotContains(t, out, "password")
}

func TestAssertCommand(t *testing.T) {
	t.Run("signs for a known subject", func(t *testing.T) {
		t.Setenv("VORTEX_API_KEY", vortextest.APIKey)

		out, err := run(t, "assert", "--subject", "user-3")
		require.NoError(t, err)

		var got map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, "user-3", got["userId"])
		assert.Equal(t, "member", got["role"])
		assert.NotEmpty(t, got["jwt"])
	})

	t.Run("unknown subject", func(t *testing.T) {
		_, err := run(t, "assert", "--subject", "user-9")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no directory user")
	})

	t.Run("demo key cannot sign", func(t *testing.T) {
		t.Setenv("VORTEX_API_KEY", "")

		_, err := run(t, "assert", "--subject", "user-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid Vortex API key")
	})

	t.Run("subject is required", func(t *testing.T) {
		_, err := run(t, "assert")
		require.Error(t, err)
	})
}
