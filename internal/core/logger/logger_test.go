package logger_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"go-contacts-api/internal/core/logger"
)

func TestRotateWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, cleanup := logger.New("info", true, logger.FileRotate{
		Enable:    true,
		Filename:  path,
		MaxSizeMB: 1,
	})

	l.Info("hello")
	cleanup()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), "hello")
}

func TestRotateDisabledNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, cleanup := logger.New("info", true, logger.FileRotate{Filename: path})

	l.Info("hello")
	cleanup()

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
}
