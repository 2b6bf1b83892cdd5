package httputil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	type payload struct {
		Email string `json:"email"`
	}

	tests := []struct {
		name    string
		body    string
		want    string
		wantErr string
	}{
		{name: "valid", body: `{"email":"bob@example.com"}`, want: "bob@example.com"},
		{name: "empty body", body: "", wantErr: "request body is required"},
		{name: "malformed", body: `{"email":`, wantErr: "invalid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := ParseJSON(r, &p)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Email)
		})
	}
}

func TestParseJSONOrError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("nope"))

	var dest map[string]string
	assert.False(t, ParseJSONOrError(w, r, &dest))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParsePathString(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/invitations/inv-1", nil)
	r = mux.SetURLVars(r, map[string]string{"id": "inv-1", "blank": "  "})

	id, err := ParsePathString(r, "id")
	require.NoError(t, err)
	assert.Equal(t, "inv-1", id)

	_, err = ParsePathString(r, "blank")
	assert.Error(t, err)

	w := httptest.NewRecorder()
	_, ok := ParsePathStringOrError(w, r, "missing")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
