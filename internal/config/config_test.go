package config_test

import (
	"os"
	"path"
	"testing"

	"github.com/nibbabob/portdog/internal/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()

	confPath := path.Join(t.TempDir(), "portdog.yml")

	err := os.WriteFile(confPath, []byte(contents), 0644)
	require.NoError(t, err)

	return confPath
}

func TestConfig(t *testing.T) {
	t.Run("returns defaults", func(st *testing.T) {
		conf := config.Default()

		assert.Equal(st, 3, *conf.Scan.Timing)
		assert.Equal(st, "1-1024", conf.Scan.Ports)
		assert.True(st, *conf.Scan.Progress)
	})

	t.Run("merges file values over defaults", func(st *testing.T) {
		confPath := writeTempConfig(st, "scan:\n  ports: \"22,80,443\"\n")

		conf, err := config.New(confPath)

		assert.NoError(st, err)
		assert.Equal(st, "22,80,443", conf.Scan.Ports)
		// unset fields keep defaults
		assert.Equal(st, 3, *conf.Scan.Timing)
	})

	t.Run("keeps an explicit zero timing from the file", func(st *testing.T) {
		confPath := writeTempConfig(st, "scan:\n  timing: 0\n")

		conf, err := config.New(confPath)

		assert.NoError(st, err)
		assert.Equal(st, 0, *conf.Scan.Timing)
	})

	t.Run("errors for missing file", func(st *testing.T) {
		_, err := config.New(path.Join(t.TempDir(), "nope.yml"))

		assert.Error(st, err)
	})

	t.Run("writes config readable by New", func(st *testing.T) {
		confPath := path.Join(st.TempDir(), "portdog.yml")
		viper.Set("config-file", confPath)

		conf := config.Default()
		conf.Scan.Ports = "22,443"

		err := config.Write(*conf)
		require.NoError(st, err)

		loaded, err := config.New(confPath)

		assert.NoError(st, err)
		assert.Equal(st, "22,443", loaded.Scan.Ports)
		assert.Equal(st, *conf.Scan.Timing, *loaded.Scan.Timing)
	})
}
