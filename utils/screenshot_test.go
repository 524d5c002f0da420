package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScreenShotDebugger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	s := NewScreenShotDebugger(dir)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	at := time.Date(2024, 6, 15, 9, 5, 7, 0, time.UTC)
	assert.Equal(t, filepath.Join(dir, "cloudflare-challenge_2024-06-15_09-05-07.png"), s.Path("cloudflare-challenge", at))
}
