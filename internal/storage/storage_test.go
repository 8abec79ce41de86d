package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_RoundTrip(t *testing.T) {
	s, err := NewLocalStorage(Config{BasePath: t.TempDir(), BaseURL: "http://localhost:8000/media/"})
	require.NoError(t, err)
	ctx := context.Background()

	key := "resumes/2024/01/cv.pdf"
	require.NoError(t, s.Save(ctx, key, strings.NewReader("pdf bytes"), "application/pdf"))

	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := s.Get(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(data))

	url, err := s.URL(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/media/resumes/2024/01/cv.pdf", url)

	require.NoError(t, s.Delete(ctx, key))
	exists, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	s, err := NewLocalStorage(Config{BasePath: t.TempDir()})
	require.NoError(t, err)

	for _, key := range []string{"../etc/passwd", "a/../../b", "/abs/path", ""} {
		err := s.Save(context.Background(), key, strings.NewReader("x"), "text/plain")
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestNewKey(t *testing.T) {
	key := NewKey("logos", "Acme.PNG")
	assert.True(t, strings.HasPrefix(key, "logos/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	_, err := cleanKey(key)
	assert.NoError(t, err)
}
