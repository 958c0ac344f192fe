// Package cli holds the command-line screens of myCircle.
package cli

import (
	"context"
	"errors"
	"io"

	"github.com/pathakanu/myCircle/internal/config"
	"github.com/pathakanu/myCircle/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const serviceName = "mycircle"

type runFunc func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error

// NewRootCmd constructs the root command with every screen attached.
func NewRootCmd() *cobra.Command {
	var debug bool

	rootCmd := &cobra.Command{
		Use:           "mycircle",
		Short:         "Keep track of the people in your life",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetDebug(debug)
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable verbose debug output")

	rootCmd.AddCommand(newProfileCmd())
	rootCmd.AddCommand(newReminderCmd())
	rootCmd.AddCommand(newInteractionCmd())
	rootCmd.AddCommand(newEventCmd())
	rootCmd.AddCommand(newFeedbackCmd())
	rootCmd.AddCommand(newNotificationsCmd())
	rootCmd.AddCommand(newServeCmd())
	markRunErrors(rootCmd)

	return rootCmd
}

// Execute runs the root command. Failures are logged in full and the user
// sees a short alert on errOut.
func Execute(ctx context.Context, args []string, out, errOut io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	if err := cmd.ExecuteContext(ctx); err != nil {
		err = commandLineError(err)
		log := logger.NewConsole(serviceName)
		log.Error().Stack().Err(err).Msg("command failed")
		_, _ = io.WriteString(errOut, AlertText(err)+"\n")
		return 1
	}
	return 0
}

// withApp opens the local store for the duration of one screen.
func withApp(fn runFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := logger.NewConsole(serviceName)
		return runApp(cmd, args, cfg, log, fn)
	}
}

func runApp(cmd *cobra.Command, args []string, cfg *config.Config, log zerolog.Logger, fn runFunc) error {
	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("closing store")
		}
	}()

	if a.fallback {
		_, _ = io.WriteString(cmd.ErrOrStderr(), "Showing sample data: the local database could not be opened.\n")
	}
	return fn(cmd.Context(), a, cmd, args)
}

// loadConfig reports configuration mistakes as input errors.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, &inputError{msg: err.Error()}
	}
	return cfg, nil
}

// runError marks a failure returned by a screen, as opposed to cobra
// rejecting the command line.
type runError struct{ err error }

func (e *runError) Error() string { return e.err.Error() }
func (e *runError) Unwrap() error { return e.err }

func markRunErrors(cmd *cobra.Command) {
	if run := cmd.RunE; run != nil {
		cmd.RunE = func(c *cobra.Command, args []string) error {
			if err := run(c, args); err != nil {
				return &runError{err: err}
			}
			return nil
		}
	}
	for _, sub := range cmd.Commands() {
		markRunErrors(sub)
	}
}

// commandLineError unwraps screen failures and turns everything cobra
// rejected (unknown commands and flags, wrong argument counts, conflicting
// flags) into input errors.
func commandLineError(err error) error {
	var re *runError
	if errors.As(err, &re) {
		return re.err
	}
	return &inputError{msg: err.Error()}
}
