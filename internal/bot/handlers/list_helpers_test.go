package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		wantVerb string
		wantUser int64
		wantErr  bool
	}{
		{name: "bare command defaults to list", text: "/whitelist", wantVerb: "list"},
		{name: "explicit list", text: "/whitelist list", wantVerb: "list"},
		{name: "add with id", text: "/whitelist add 12345", wantVerb: "add", wantUser: 12345},
		{name: "remove with id", text: "/blacklist remove 678", wantVerb: "remove", wantUser: 678},
		{name: "uppercase verb accepted", text: "/whitelist ADD 99", wantVerb: "add", wantUser: 99},
		{name: "add without id", text: "/whitelist add", wantErr: true},
		{name: "non-numeric id", text: "/whitelist add bob", wantErr: true},
		{name: "negative id", text: "/whitelist add -5", wantErr: true},
		{name: "unknown verb", text: "/whitelist purge 5", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cmd, err := parseListCommand(tc.text)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantVerb, cmd.verb)
			assert.Equal(t, tc.wantUser, cmd.userID)
		})
	}
}

func TestFormatUserList(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Whitelist is empty.", formatUserList("Whitelist", nil))

	out := formatUserList("Blacklist", []int64{1, 2, 3})
	assert.Contains(t, out, "Blacklist (3):")
	assert.Contains(t, out, "• 2\n")
}
