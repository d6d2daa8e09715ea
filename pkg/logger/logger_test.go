package logger_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/byxorna/stickies/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLog(t *testing.T) {
	buff := bytes.NewBuffer([]byte{})
	templogger, err := logger.New().FromWriter(buff).Make()
	require.NoError(t, err)
	require.NotNil(t, templogger)
	require.Equal(t, buff.Len(), 0)
	templogger.Logger.Info().Msg("Test")
	require.Contains(t, buff.String(), "Test")
}

func TestLogLevel(t *testing.T) {
	buff := bytes.NewBuffer([]byte{})
	templogger, err := logger.New().FromWriter(buff).Level(zerolog.WarnLevel).Make()
	require.NoError(t, err)
	templogger.Logger.Info().Msg("quiet")
	require.Equal(t, buff.Len(), 0)
	templogger.Logger.Warn().Msg("loud")
	require.Contains(t, buff.String(), "loud")
}

func TestLogFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "stickies.log")
	templogger, err := logger.New().FromPath(path).Make()
	require.NoError(t, err)
	templogger.Logger.Info().Str("id", "n1").Msg("saved")
	require.NoError(t, templogger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"id":"n1"`)
}
