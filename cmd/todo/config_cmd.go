package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fentz26/todo/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit configuration",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// An explicit --config may name a file that init is about to create.
		if configFile != "" {
			if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
				cfg = config.Default()
				return nil
			}
		}
		return loadConfig(cmd)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

var configSetAPICmd = &cobra.Command{
	Use:   "set-api [url]",
	Short: "Set the task API base URL in the config file",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigSetAPI,
}

var (
	configGlobal bool
	configForce  bool
)

func init() {
	configCmd.AddCommand(configInitCmd, configShowCmd, configSetAPICmd)

	configCmd.PersistentFlags().BoolVar(&configGlobal, "global", false, "Use ~/.todo/config.yaml instead of ./.todo/config.yaml")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")
}

func targetConfigPath() string {
	switch {
	case configFile != "":
		return configFile
	case configGlobal:
		return config.GlobalConfigPath()
	default:
		return config.ProjectConfigPath()
	}
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := targetConfigPath()
	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.WriteDefault(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigSetAPI(cmd *cobra.Command, args []string) error {
	path := targetConfigPath()

	c, err := config.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		c = config.Default()
	case err != nil:
		return err
	}

	c.APIURL = args[0]
	if err := config.Save(path, c); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "api_url set to %s in %s\n", args[0], path)
	return nil
}
