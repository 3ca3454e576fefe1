package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAllCommands(t *testing.T) {
	t.Parallel()

	cmds := RegisterAllCommands(HandlerDeps{})

	open := []string{"/start", "/help", "/status"}
	adminOnly := []string{"/strict", "/whitelist", "/blacklist", "/unstrike"}

	for _, name := range open {
		h, ok := cmds[name]
		require.True(t, ok, "missing command %s", name)
		assert.Empty(t, h.Middleware, "%s must be usable by anyone", name)
		assert.NotNil(t, h.Handler, name)
	}

	for _, name := range adminOnly {
		h, ok := cmds[name]
		require.True(t, ok, "missing command %s", name)
		assert.Len(t, h.Middleware, 1, "%s must be admin-gated", name)
		assert.NotNil(t, h.Handler, name)
	}

	assert.Len(t, cmds, len(open)+len(adminOnly))
}
