package pdfpc

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-presenter/internal/models"
)

func TestWatch_ReloadsValidEdits(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	path := filepath.Join(t.TempDir(), "talk.pdfpc")
	require.NoError(t, os.WriteFile(path, []byte(`{"pdfpcFormat":2,"duration":10}`), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *models.PdfpcConfig, 1)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, logger, func(cfg *models.PdfpcConfig) {
			select {
			case changes <- cfg:
			default:
			}
		})
	}()

	var got *models.PdfpcConfig
	// The watcher registers asynchronously, so keep editing until it reports
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(`{"pdfpcFormat":1}`), 0644)
		_ = os.WriteFile(path, []byte(`{"pdfpcFormat":2,"duration":25}`), 0644)
		select {
		case got = <-changes:
			return true
		default:
			return false
		}
	}, 3*time.Second, 50*time.Millisecond)

	assert.Equal(t, FormatVersion, got.PdfpcFormat, "invalid edits never reach onChange")
	require.NotNil(t, got.Duration)
	assert.Equal(t, uint32(25), *got.Duration)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	err := Watch(context.Background(), filepath.Join(t.TempDir(), "gone", "talk.pdfpc"), logger, func(*models.PdfpcConfig) {})
	assert.Error(t, err)
}
