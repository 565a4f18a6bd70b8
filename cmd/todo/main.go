package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fentz26/todo/internal/client"
	"github.com/fentz26/todo/internal/config"
	"github.com/fentz26/todo/internal/logger"
	"github.com/fentz26/todo/internal/tasksync"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "todo",
	Short:         "todo - recent task manager",
	Long:          `todo keeps a short list of your most recent open tasks, served over HTTP and usable from the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	// No RunE - defaults to showing help when no subcommand is provided
}

var (
	apiAddr    string
	configFile string
	envFile    string
	logLevel   string

	cfg *config.Config
	log *slog.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVar(&apiAddr, "api", client.DefaultBaseURL, "Task API base URL")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default ~/.todo/config.yaml and ./.todo/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(auditCmd)
}

// loadConfig resolves configuration; explicit flags win over files and env.
func loadConfig(cmd *cobra.Command) error {
	c, err := config.Load(config.LoadOptions{ConfigFile: configFile, EnvFile: envFile})
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("api") {
		c.APIURL = apiAddr
	}
	if flags.Changed("log-level") {
		c.Log.Level = logLevel
	}
	if f := flags.Lookup("listen"); f != nil && f.Changed {
		c.Listen = f.Value.String()
	}
	if f := flags.Lookup("db"); f != nil && f.Changed {
		c.DB = f.Value.String()
	}

	cfg = c
	log = logger.New(cfg.Log)
	slog.SetDefault(log)
	return nil
}

// newSyncStore builds a task store talking to the configured API.
func newSyncStore() (*tasksync.Store, *client.Client) {
	c := client.New(cfg.APIURL,
		client.WithTimeout(cfg.Client.Timeout),
		client.WithLogger(log),
	)
	return tasksync.New(c, tasksync.WithLogger(log)), c
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
