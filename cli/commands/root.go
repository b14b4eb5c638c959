package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nibbabob/portdog/internal/config"
	"github.com/nibbabob/portdog/internal/core"
	"github.com/nibbabob/portdog/internal/logger"
	"github.com/nibbabob/portdog/internal/portspec"
	"github.com/nibbabob/portdog/internal/timing"
	"github.com/nibbabob/portdog/internal/ui"
)

// CommandProps injected props that can be made available to all commands
type CommandProps struct {
	Conf *config.Config
}

// Root builds and returns our root command
func Root(props *CommandProps) *cobra.Command {
	var verbose bool
	var silent bool
	var jsonOut bool
	var ports string
	var timingValue int

	cmd := &cobra.Command{
		Use:   "portdog [target]",
		Short: "A fast concurrent port scanner with service fingerprinting",
		Args:  cobra.ExactArgs(1),
		// This runs before all commands and all sub-commands
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// set logging verbosity for all loggers
			zerolog.SetGlobalLevel(zerolog.WarnLevel)

			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}

			if silent || jsonOut {
				zerolog.SetGlobalLevel(zerolog.Disabled)
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			template, err := timing.ParseTemplate(timingValue)

			if err != nil {
				return err
			}

			spec, err := portspec.Parse(ports)

			if err != nil {
				return err
			}

			return runScan(args[0], spec, template, props.Conf, jsonOut)
		},
	}

	// Persistent flags available to all commands
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug logs")
	cmd.PersistentFlags().BoolVar(&silent, "silent", false, "disables all logging")

	cmd.Flags().StringVarP(
		&ports,
		"ports",
		"p",
		props.Conf.Scan.Ports,
		"Ports to scan. Ex: 80,443 | 1-1024 | -",
	)
	cmd.Flags().IntVarP(
		&timingValue,
		"timing",
		"T",
		*props.Conf.Scan.Timing,
		"Timing template (0-5). Higher is faster and more aggressive",
	)
	cmd.Flags().BoolVarP(
		&jsonOut,
		"json",
		"j",
		false,
		"Output results as JSON, suppressing all other output",
	)

	cmd.AddCommand(version())
	cmd.AddCommand(clear())

	return cmd
}

// runScan wires a run core, hooks up progress rendering and interrupt
// handling, and renders whatever report the run produces
func runScan(
	host string,
	spec *portspec.PortSpec,
	template timing.Template,
	conf *config.Config,
	jsonOut bool,
) error {
	runCore := core.CreateRunCore(*conf)

	// user interrupt cancels the run; the partial report still renders
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-interrupt
		runCore.Stop()
	}()

	defer signal.Stop(interrupt)

	showProgress := *conf.Scan.Progress && !jsonOut

	var progress *ui.Progress

	if showProgress {
		// the progress bar owns stderr for the duration of the run, so
		// logging moves to the log file
		redirectLogging()

		fmt.Fprintf(
			os.Stderr,
			"Scanning %s (%d ports, %s profile)\n",
			host,
			spec.Len(),
			template,
		)

		progress = ui.NewProgress(runCore.Events(), spec.Len())
	}

	rep, err := runCore.Run(host, spec, template)

	if progress != nil {
		progress.Stop()
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	// cancelled before any results existed
	if rep == nil {
		return nil
	}

	if jsonOut {
		return ui.RenderJSON(os.Stdout, rep)
	}

	ui.RenderTable(os.Stdout, rep)

	return nil
}

// redirectLogging moves all logging to the log file shared via viper;
// if no usable log file exists logging is disabled instead
func redirectLogging() {
	if zerolog.GlobalLevel() == zerolog.Disabled {
		return
	}

	log := logger.New()

	logFile, ok := viper.Get("log-file").(string)

	if !ok || logFile == "" {
		log.Info().Msg("no log file configured, disabling logs")
		zerolog.SetGlobalLevel(zerolog.Disabled)
		return
	}

	if err := logger.GlobalSetLogFile(logFile); err != nil {
		log.Error().Err(err).Msg("failed to open log file, disabling logs")
		zerolog.SetGlobalLevel(zerolog.Disabled)
	}
}
