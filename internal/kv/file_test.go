package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFile_Contract(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "store"))
	require.NoError(t, err)
	runContract(t, f)
}

func TestFile_LayoutOneFilePerKey(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(dir)
	require.NoError(t, err)

	require.NoError(t, f.Set(context.Background(), "genzes_local_session", []byte(`{"access_token":"t"}`)))

	b, err := os.ReadFile(filepath.Join(dir, "genzes_local_session.json"))
	require.NoError(t, err)
	require.JSONEq(t, `{"access_token":"t"}`, string(b))
}

func TestFile_RejectsPathKeys(t *testing.T) {
	f, err := NewFile(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", "..", "a/b", `a\b`} {
		require.Error(t, f.Set(ctx, key, []byte("x")), key)
		_, err := f.Get(ctx, key)
		require.Error(t, err, key)
		require.Error(t, f.Delete(ctx, key), key)
	}
}

func TestNewFile_EmptyDir(t *testing.T) {
	_, err := NewFile("")
	require.Error(t, err)
}
