package document_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/figure-extractor/internal/document"
	"github.com/ironsheep/figure-extractor/internal/document/documenttest"
	"github.com/ironsheep/figure-extractor/internal/geometry"
)

func TestClampPage(t *testing.T) {
	tests := []struct {
		name         string
		index, count int
		want         int
	}{
		{"inside", 1, 3, 1},
		{"negative", -1, 3, 0},
		{"past end", 3, 3, 2},
		{"far past end", 99, 3, 2},
		{"empty document", 5, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, document.ClampPage(tt.index, tt.count))
		})
	}
}

func TestCheckIndex(t *testing.T) {
	assert.NoError(t, document.CheckIndex(0, 2))
	assert.NoError(t, document.CheckIndex(1, 2))
	assert.ErrorIs(t, document.CheckIndex(2, 2), document.ErrPageIndexOutOfRange)
	assert.ErrorIs(t, document.CheckIndex(-1, 2), document.ErrPageIndexOutOfRange)
}

func TestRenderPage_Letter150(t *testing.T) {
	r := documenttest.Letter(2)

	p, err := r.RenderPage(1, 150)
	require.NoError(t, err)
	assert.Equal(t, geometry.Size{Width: 1275, Height: 1650}, p.Size())
	assert.Equal(t, geometry.Size{Width: 612, Height: 792}, p.NativeSize())

	_, err = r.RenderPage(2, 150)
	assert.ErrorIs(t, err, document.ErrPageIndexOutOfRange)
}

func TestCache_Memoizes(t *testing.T) {
	r := documenttest.Letter(2)
	c := document.NewCache(r)

	a, err := c.RenderPage(0, 72)
	require.NoError(t, err)
	b, err := c.RenderPage(0, 72)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, r.Calls())

	_, err = c.RenderPage(0, 150)
	require.NoError(t, err)
	_, err = c.RenderPage(1, 72)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	c.Evict(0)
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 2, c.PageCount())
}

func TestCache_DoesNotCacheErrors(t *testing.T) {
	r := documenttest.Letter(1)
	r.FailPage(0, errors.New("boom"))
	c := document.NewCache(r)

	_, err := c.RenderPage(0, 72)
	require.Error(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestOpen_RejectsBadPaths(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hello"), 0o644))

	tests := []struct {
		name string
		path string
	}{
		{"empty", "  "},
		{"missing", filepath.Join(dir, "missing.pdf")},
		{"directory", dir},
		{"wrong extension", txt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := document.Open(tt.path, document.OpenOptions{})
			assert.ErrorIs(t, err, document.ErrInvalidDocument)
		})
	}
}
