package host_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/twa-auth/host"
	"github.com/jrsteele09/twa-auth/telegram"
	"github.com/stretchr/testify/require"
)

const rawWithUser = `user=%7B%22id%22%3A123%2C%22first_name%22%3A%22Ivan%22%7D&auth_date=1700000000&hash=abc`

func TestStatic(t *testing.T) {
	var nilHost *host.Static
	require.False(t, nilHost.Available())

	h := &host.Static{Raw: rawWithUser}
	require.True(t, h.Available())
	require.Equal(t, rawWithUser, h.InitData())
	require.Equal(t, int64(123), h.UnsafeUser().ID)
	require.Equal(t, "Ivan", h.UnsafeUser().FirstName)

	override := &host.Static{Raw: "hash=abc", User: &telegram.User{ID: 7, FirstName: "Override"}}
	require.Equal(t, int64(7), override.UnsafeUser().ID)
}

func TestEnvVar(t *testing.T) {
	values := map[string]string{"SET": "  user=5&hash=x  ", "EMPTY": ""}
	lookup := func(k string) (string, bool) {
		v, ok := values[k]
		return v, ok
	}

	unset := host.EnvVar{Name: "UNSET", Lookup: lookup}
	require.False(t, unset.Available())

	empty := host.EnvVar{Name: "EMPTY", Lookup: lookup}
	require.True(t, empty.Available())
	require.Empty(t, empty.InitData())
	require.Nil(t, empty.UnsafeUser())

	set := host.EnvVar{Name: "SET", Lookup: lookup}
	require.Equal(t, "user=5&hash=x", set.InitData())
	require.Equal(t, int64(5), set.UnsafeUser().ID)
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "initdata.txt")
	f := host.File{Path: path}
	require.False(t, f.Available())

	require.NoError(t, os.WriteFile(path, []byte(rawWithUser+"\n"), 0o600))
	require.True(t, f.Available())
	require.Equal(t, rawWithUser, f.InitData())
	require.Equal(t, int64(123), f.UnsafeUser().ID)
}
