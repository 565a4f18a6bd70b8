package main

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/fentz26/todo/internal/client"
	"github.com/fentz26/todo/internal/tui"
)

var autostart bool

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive TUI",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().BoolVar(&autostart, "autostart", true, "Start a local server in the background if none is running")
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, c := newSyncStore()

	if !isServiceRunning(ctx, c) {
		if !autostart || !isLocal(cfg.APIURL) {
			return fmt.Errorf("task API not reachable at %s", c.BaseURL())
		}
		fmt.Println("Task API not running. Starting background server...")
		if err := startServer(ctx, c); err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	}

	app := tui.New(ctx, st)
	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

func isServiceRunning(ctx context.Context, c *client.Client) bool {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	_, err := c.Health(ctx)
	return err == nil
}

// isLocal reports whether rawURL points at this machine.
func isLocal(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func startServer(ctx context.Context, c *client.Client) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}

	listen, err := listenAddr(c.BaseURL(), cfg.Listen)
	if err != nil {
		return err
	}

	serveArgs := []string{"serve", "--listen", listen, "--db", cfg.DB}
	if configFile != "" {
		serveArgs = append(serveArgs, "--config", configFile)
	}
	proc := exec.Command(exe, serveArgs...)
	detach(proc)
	proc.Stdin = nil
	proc.Stdout = nil
	proc.Stderr = nil

	if err := proc.Start(); err != nil {
		return err
	}

	fmt.Print("   Waiting for server...")
	for i := 0; i < 20; i++ {
		if isServiceRunning(ctx, c) {
			fmt.Println(" Done.")
			return nil
		}
		time.Sleep(250 * time.Millisecond)
		fmt.Print(".")
	}
	fmt.Println(" Timeout!")
	return fmt.Errorf("server started but API not reachable at %s", c.BaseURL())
}

// listenAddr is the address a local server must bind to serve apiURL.
// URLs without a port fall back to the configured listen address.
func listenAddr(apiURL, fallback string) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return "", err
	}
	if u.Port() == "" {
		return fallback, nil
	}
	return u.Host, nil
}
