package hub

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mc-hub/database"
)

func runConsole(store database.Store, input string) string {
	var out bytes.Buffer
	NewConsole(store, strings.NewReader(input), &out).Run()
	return out.String()
}

func TestConsoleRegister(t *testing.T) {
	store := database.NewMemStore()

	out := runConsole(store, "register guild-1\n")
	assert.Contains(t, out, "The token for server 'guild-1' is '")

	srv, err := store.FindServerByID("guild-1")
	require.NoError(t, err)
	require.NotNil(t, srv)
	assert.NotEmpty(t, srv.Token)

	// The printed token is the persisted one.
	assert.Contains(t, out, srv.Token)
}

func TestConsoleRegisterDuplicate(t *testing.T) {
	store := database.NewMemStore()

	out := runConsole(store, "register guild-1\nregister guild-1\n")
	assert.Contains(t, out, "That server is already registered!")
}

func TestConsoleRegisterUsage(t *testing.T) {
	store := database.NewMemStore()

	out := runConsole(store, "register\n")
	assert.Contains(t, out, "register <serverID>")
}

func TestConsoleInvalidCommandAndExit(t *testing.T) {
	store := database.NewMemStore()

	out := runConsole(store, "bogus\nexit\nregister guild-after-exit\n")
	assert.Contains(t, out, "Invalid command!")
	assert.NotContains(t, out, "guild-after-exit")

	srv, err := store.FindServerByID("guild-after-exit")
	require.NoError(t, err)
	assert.Nil(t, srv, "exit must stop the loop before later lines run")
}
