package localstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStores(t *testing.T) map[string]Store {
	t.Helper()
	sq, err := OpenSQLite(filepath.Join(t.TempDir(), "state", "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })
	return map[string]Store{"memory": NewMemory(), "sqlite": sq}
}

func TestStoreBasics(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get("missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set("k", []byte("v1")))
			require.NoError(t, s.Set("k", []byte("v2")))
			v, ok, err := s.Get("k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "v2", string(v))

			require.NoError(t, s.Delete("k"))
			require.NoError(t, s.Delete("k"))
			_, ok, _ = s.Get("k")
			assert.False(t, ok)
		})
	}
}

func TestLoadJSONMalformedIsEmpty(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set(KeyFavorites, []byte("{not json")))
			assert.Empty(t, LoadJSON[[]string](s, KeyFavorites))

			require.NoError(t, SaveJSON(s, KeyFavorites, []string{"a", "b"}))
			assert.Equal(t, []string{"a", "b"}, LoadJSON[[]string](s, KeyFavorites))

			assert.Nil(t, LoadJSON[[]string](s, "never-written"))
		})
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	m := NewMemory()
	buf := []byte("abc")
	require.NoError(t, m.Set("k", buf))
	buf[0] = 'z'
	v, _, _ := m.Get("k")
	assert.Equal(t, "abc", string(v))
}
