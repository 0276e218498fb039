// Package commands provides the CLI commands for projboard.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/projboard/projboard/internal/client"
	"github.com/projboard/projboard/internal/logging"
)

var (
	// Version information set at build time
	Version   = "0.1.0"
	BuildTime = "dev"
)

// Global flags
var (
	printLogs bool
	logLevel  string
	serverURL string
)

var rootCmd = &cobra.Command{
	Use:   "projboard",
	Short: "projboard - a drag-and-drop project board",
	Long: `projboard serves a project board in the browser: submit projects with a title,
description and headcount, then drag them between the active and finished lists.

Run 'projboard serve' to start the board, or use the other commands to work
with a running board from the terminal.`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().BoolVar(&printLogs, "print-logs", false, "Print logs to stderr")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "Log level (DEBUG|INFO|WARN|ERROR)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServerURL(), "Board server URL (env PROJBOARD_SERVER)")

	rootCmd.SetVersionTemplate(fmt.Sprintf("projboard %s (%s)\n", Version, BuildTime))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(watchCmd)
}

// setup loads .env and configures logging for client commands.
// serve reconfigures logging from the loaded configuration.
func setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	// PROJBOARD_SERVER may come from .env, which is only loaded now
	if !cmd.Flags().Changed("server") {
		serverURL = defaultServerURL()
	}

	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(logLevel)
	if !printLogs {
		cfg.Level = logging.ErrorLevel
	}
	cfg.Pretty = true
	return logging.Init(cfg)
}

func defaultServerURL() string {
	if u := os.Getenv("PROJBOARD_SERVER"); u != "" {
		return u
	}
	return "http://127.0.0.1:8080"
}

func newClient() *client.Client {
	return client.New(serverURL)
}

// Execute runs the root command. Commands are cancelled on SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// GetWorkDir returns the working directory from flag or current directory.
func GetWorkDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return os.Getwd()
}
