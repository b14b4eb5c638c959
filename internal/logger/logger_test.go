package logger_test

import (
	"os"
	"path"
	"testing"

	"github.com/nibbabob/portdog/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobalSetLogFile(t *testing.T) {
	t.Run("redirects all logging to the given file", func(st *testing.T) {
		logFile := path.Join(st.TempDir(), "portdog.log")

		err := logger.GlobalSetLogFile(logFile)
		require.NoError(st, err)

		log := logger.New()
		log.Info().Msg("redirected log line")

		contents, err := os.ReadFile(logFile)
		require.NoError(st, err)

		assert.Contains(st, string(contents), "redirected log line")
	})

	t.Run("errors for an unwritable path", func(st *testing.T) {
		err := logger.GlobalSetLogFile(path.Join(st.TempDir(), "missing", "portdog.log"))

		assert.Error(st, err)
	})
}
