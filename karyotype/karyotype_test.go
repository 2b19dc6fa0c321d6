package karyotype

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	k, err := New(map[string]int{"chr1": 2, "chrX": 1, "chrY": 0})
	require.NoError(t, err)
	expect.EQ(t, k.Len(), 3)

	cn, ok := k.Get("chr1")
	expect.True(t, ok)
	expect.EQ(t, cn, 2)

	cn, ok = k.Get("chrY")
	expect.True(t, ok)
	expect.EQ(t, cn, 0)

	_, ok = k.Get("chrM")
	expect.False(t, ok)
}

func TestNewRejectsNegative(t *testing.T) {
	_, err := New(map[string]int{"chr1": -2})
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := filepath.Join(tempDir, "karyotype.json")
	require.NoError(t, ioutil.WriteFile(path, []byte(`{"chr1": 2, "chr2": 2, "chrY": 1}`), 0644))

	ctx := vcontext.Background()
	k, err := Load(ctx, path)
	require.NoError(t, err)
	expect.EQ(t, k.Len(), 3)
	cn, ok := k.Get("chrY")
	expect.True(t, ok)
	expect.EQ(t, cn, 1)
}

func TestLoadRejectsMalformed(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := filepath.Join(tempDir, "karyotype.json")
	require.NoError(t, ioutil.WriteFile(path, []byte(`{"chr1": "diploid"}`), 0644))

	_, err := Load(vcontext.Background(), path)
	require.Error(t, err)
}
