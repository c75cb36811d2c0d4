package idx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/bitebank/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNewAndParse(t *testing.T) {
	id := idx.New()
	require.Len(t, id.String(), 26)

	parsed, err := idx.Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)
	require.NotEqual(t, idx.Zero, id)

	_, err = idx.Parse("   ")
	require.ErrorIs(t, err, idx.ErrInvalid)

	_, err = idx.Parse("not-a-ulid")
	require.ErrorIs(t, err, idx.ErrInvalid)
}

// Upload names sort in creation order, even within one millisecond.
func TestObjectNamesSortByTime(t *testing.T) {
	a := idx.NewAt(time.Unix(1, 0).UTC())
	b := idx.NewAt(time.Unix(2, 0).UTC())
	require.Less(t, a.String(), b.String())

	tm := time.Unix(1700000000, 0).UTC()
	prev := idx.NewAt(tm)
	for range 100 {
		next := idx.NewAt(tm)
		require.Less(t, prev.String(), next.String())
		prev = next
	}
}

func TestObjectNames(t *testing.T) {
	t.Run("keeps a clean extension", func(t *testing.T) {
		name := idx.NewObjectName("Burger.PNG")
		require.True(t, strings.HasSuffix(name, ".png"))

		id, err := idx.ParseObjectName(name)
		require.NoError(t, err)
		require.Equal(t, strings.TrimSuffix(name, ".png"), id.String())
	})

	t.Run("drops odd extensions", func(t *testing.T) {
		require.Len(t, idx.NewObjectName("photo"), 26)
		require.Len(t, idx.NewObjectName("x.tar.gz;rm -rf"), 26)
		require.Len(t, idx.NewObjectName("x.waytoolongext"), 26)
	})

	t.Run("rejects foreign names", func(t *testing.T) {
		for _, name := range []string{
			"",
			"../etc/passwd",
			"01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV/../x.png",
			"01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV.p$g",
			"hello.png",
		} {
			_, err := idx.ParseObjectName(name)
			require.ErrorIs(t, err, idx.ErrInvalidName, name)
		}
	})
}
