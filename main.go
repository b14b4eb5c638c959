package main

import (
	"context"
	"os"
	"path"

	"github.com/spf13/viper"

	"github.com/nibbabob/portdog/cli/commands"
	app_info "github.com/nibbabob/portdog/internal/app-info"
	"github.com/nibbabob/portdog/internal/config"
	"github.com/nibbabob/portdog/internal/logger"
)

func setRuntimePaths() (string, error) {
	userHomeDir, err := os.UserHomeDir()

	if err != nil {
		return "", err
	}

	configDir := path.Join(userHomeDir, ".config", app_info.NAME)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}

	configFile := path.Join(configDir, app_info.NAME+".yml")

	logFile := path.Join(configDir, app_info.NAME+".log")

	// share location of files globally using viper
	viper.Set("config-dir", configDir)
	viper.Set("config-file", configFile)
	viper.Set("log-file", logFile)

	return configFile, nil
}

// Entry point for the cli.
func main() {
	log := logger.New()

	configFile, err := setRuntimePaths()

	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare runtime paths")
	}

	conf, err := config.New(configFile)

	if err != nil {
		conf = config.Default()

		// seed the config file so users have something to edit
		if err := config.Write(*conf); err != nil {
			log.Warn().Err(err).Msg("failed to write default config file")
		}
	}

	// Get the "root" cobra cli command
	cmd := commands.Root(&commands.CommandProps{
		Conf: conf,
	})

	// Allows "grepping" of command output
	cmd.SetOutput(os.Stdout)

	// execute the cobra command and exit with error code if necessary
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("scan failed")
	}
}
