package envx_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/bitebank/pkg/envx"
	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	require.Equal(t, "def", envx.String("ENVX_TEST_STRING", "def"))

	t.Setenv("ENVX_TEST_STRING", "set")
	require.Equal(t, "set", envx.String("ENVX_TEST_STRING", "def"))
}

func TestInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"unset", "", 7},
		{"valid", "42", 42},
		{"invalid", "forty", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENVX_TEST_INT", tt.value)
			require.Equal(t, tt.want, envx.Int("ENVX_TEST_INT", 7))
		})
	}
}

func TestInt64(t *testing.T) {
	t.Setenv("ENVX_TEST_INT64", "10485760")
	require.Equal(t, int64(10<<20), envx.Int64("ENVX_TEST_INT64", 1))
}

func TestBool(t *testing.T) {
	require.True(t, envx.Bool("ENVX_TEST_BOOL", true))

	t.Setenv("ENVX_TEST_BOOL", "false")
	require.False(t, envx.Bool("ENVX_TEST_BOOL", true))

	t.Setenv("ENVX_TEST_BOOL", "maybe")
	require.True(t, envx.Bool("ENVX_TEST_BOOL", true))
}

func TestDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"unset", "", time.Hour},
		{"go duration", "90s", 90 * time.Second},
		{"bare minutes", "15", 15 * time.Minute},
		{"invalid", "soon", time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENVX_TEST_DURATION", tt.value)
			require.Equal(t, tt.want, envx.Duration("ENVX_TEST_DURATION", time.Hour))
		})
	}
}

func TestList(t *testing.T) {
	def := []string{"http://localhost:3000"}
	require.Equal(t, def, envx.List("ENVX_TEST_LIST", def))

	t.Setenv("ENVX_TEST_LIST", " http://a.test , ,http://b.test")
	require.Equal(t, []string{"http://a.test", "http://b.test"}, envx.List("ENVX_TEST_LIST", def))

	t.Setenv("ENVX_TEST_LIST", " , ")
	require.Equal(t, def, envx.List("ENVX_TEST_LIST", def))
}

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("ENVX_DOTENV_A=from-file\nENVX_DOTENV_B=from-file\n"), 0600))

	t.Setenv("ENVX_DOTENV_B", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("ENVX_DOTENV_A") })

	require.NoError(t, envx.LoadDotenv(path, filepath.Join(dir, "missing.env")))
	require.Equal(t, "from-file", os.Getenv("ENVX_DOTENV_A"))
	require.Equal(t, "from-env", os.Getenv("ENVX_DOTENV_B"))
}
