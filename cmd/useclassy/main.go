package main

import (
	"context"
	"os"
	"runtime/debug"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/useclassy/cmd/useclassy/rewrite"
	"github.com/walteh/useclassy/cmd/useclassy/stdin"
	logging "github.com/walteh/useclassy/pkg/debug"
)

func main() {
	if err := run(); err != nil {
		println(err.Error())
		os.Exit(1)
	}
}

func run() error {
	var opts logging.LoggerOptions

	rootCmd := &cobra.Command{
		Use:   "useclassy",
		Short: "Rewrite class:modifier shorthand into plain class attributes",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.Color = isatty.IsTerminal(os.Stderr.Fd())
			cmd.SetContext(logging.WithLogger(cmd.Context(), os.Stderr, opts))
		},
	}

	rootCmd.SilenceErrors = true

	rootCmd.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&opts.JSON, "json-logs", false, "log as json lines")

	info, ok := debug.ReadBuildInfo()
	if !ok {
		rootCmd.Version = "unknown"
	} else {
		rootCmd.Version = info.Main.Version
	}

	cmdVersion := &cobra.Command{
		Use: "raw-version",
		Run: func(cmdz *cobra.Command, args []string) {
			cmdz.Println(rootCmd.Version)
		},
		Hidden: true,
	}

	rootCmd.AddCommand(cmdVersion)
	rootCmd.AddCommand(rewrite.NewTransformCommand())
	rootCmd.AddCommand(rewrite.NewCheckCommand())
	rootCmd.AddCommand(rewrite.NewDiffCommand())
	rootCmd.AddCommand(stdin.NewStdinCommand())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		return errors.Errorf("failed to execute command: %w", err)
	}

	return nil
}
