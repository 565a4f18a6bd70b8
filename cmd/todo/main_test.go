package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fentz26/todo/internal/audit"
	"github.com/fentz26/todo/internal/logger"
	"github.com/fentz26/todo/internal/server"
	"github.com/fentz26/todo/internal/store"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestTaskCommands(t *testing.T) {
	api := startTestAPI(t)

	out, err := run(t, "--api", api, "task", "add", "--title", "Buy milk", "--desc", "2 liters")
	if err != nil {
		t.Fatalf("task add failed: %v", err)
	}
	if !strings.Contains(out, "Created task: ") || !strings.Contains(out, "Recent Tasks (1/5)") {
		t.Errorf("Unexpected add output:\n%s", out)
	}

	id := strings.TrimSpace(strings.SplitN(strings.TrimPrefix(out, "Created task: "), "\n", 2)[0])

	out, err = run(t, "--api", api, "task", "list")
	if err != nil {
		t.Fatalf("task list failed: %v", err)
	}
	if !strings.Contains(out, id) || !strings.Contains(out, "Buy milk") {
		t.Errorf("Expected task in list:\n%s", out)
	}

	out, err = run(t, "--api", api, "task", "done", id)
	if err != nil {
		t.Fatalf("task done failed: %v", err)
	}
	if !strings.Contains(out, "Completed task: "+id) {
		t.Errorf("Unexpected done output: %s", out)
	}

	out, err = run(t, "--api", api, "task", "list")
	if err != nil {
		t.Fatalf("task list failed: %v", err)
	}
	if !strings.Contains(out, "No tasks yet.") {
		t.Errorf("Expected empty list, got:\n%s", out)
	}

	_, err = run(t, "--api", api, "task", "done", id)
	if err == nil || !strings.Contains(err.Error(), "Task already completed") {
		t.Errorf("Expected conflict error, got %v", err)
	}
}

func TestTaskShowAndAudit(t *testing.T) {
	api := startTestAPI(t)

	out, err := run(t, "--api", api, "task", "add", "--title", "Water plants", "--desc", "balcony")
	if err != nil {
		t.Fatalf("task add failed: %v", err)
	}
	id := strings.TrimSpace(strings.SplitN(strings.TrimPrefix(out, "Created task: "), "\n", 2)[0])
	if _, err := run(t, "--api", api, "task", "done", id); err != nil {
		t.Fatalf("task done failed: %v", err)
	}

	out, err = run(t, "--api", api, "task", "show", id)
	if err != nil {
		t.Fatalf("task show failed: %v", err)
	}
	if !strings.Contains(out, "Water plants") || !strings.Contains(out, "completed") {
		t.Errorf("Unexpected show output:\n%s", out)
	}

	out, err = run(t, "--api", api, "audit", "--limit", "5")
	if err != nil {
		t.Fatalf("audit failed: %v", err)
	}
	if !strings.Contains(out, "task.create") || !strings.Contains(out, "task.complete") || !strings.Contains(out, id) {
		t.Errorf("Unexpected audit output:\n%s", out)
	}

	if _, err := run(t, "--api", api, "task", "show", "missing"); err == nil || err.Error() != "Task not found with id: missing" {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestListenAddr(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"http://127.0.0.1:9090/api", "127.0.0.1:9090"},
		{"http://localhost/api", "127.0.0.1:8080"},
	}
	for _, tt := range tests {
		got, err := listenAddr(tt.url, "127.0.0.1:8080")
		if err != nil {
			t.Fatalf("listenAddr(%s) failed: %v", tt.url, err)
		}
		if got != tt.want {
			t.Errorf("listenAddr(%s) = %s, want %s", tt.url, got, tt.want)
		}
	}
}

func TestTaskAdd_Validation(t *testing.T) {
	api := startTestAPI(t)

	_, err := run(t, "--api", api, "task", "add", "--title", "No description")
	if err == nil || err.Error() != "Description cannot be empty" {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestTaskClear_RequiresConfirmation(t *testing.T) {
	api := startTestAPI(t)

	if _, err := run(t, "--api", api, "task", "clear", "--yes=false"); err == nil {
		t.Error("Expected clear without --yes to fail")
	}
	out, err := run(t, "--api", api, "task", "clear", "--yes")
	if err != nil {
		t.Fatalf("task clear failed: %v", err)
	}
	if !strings.Contains(out, "All tasks deleted") {
		t.Errorf("Unexpected clear output: %s", out)
	}
}

func TestConfigSetAPI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	if _, err := run(t, "--config", path, "config", "init"); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if _, err := run(t, "--config", path, "config", "set-api", "http://saved/api"); err != nil {
		t.Fatalf("config set-api failed: %v", err)
	}

	out, err := run(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(out, "api_url: http://saved/api") {
		t.Errorf("Expected saved URL in config, got:\n%s", out)
	}
}

func TestRedactDSN(t *testing.T) {
	got := redactDSN("postgres://user:secret@db:5432/todo")
	if strings.Contains(got, "secret") {
		t.Errorf("Expected password to be redacted, got %s", got)
	}
	if redactDSN("/tmp/todo.db") != "/tmp/todo.db" {
		t.Error("Expected file paths to pass through")
	}
}

func startTestAPI(t *testing.T) string {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "cli.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	l := logger.Discard()
	srv := server.NewServer(server.NewService(st, audit.NewRecorder(st), l), "127.0.0.1:0", server.WithLogger(l))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL + "/api"
}

// run executes the root command with args and an isolated config.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	dir := t.TempDir()
	base := []string{"--env-file", filepath.Join(dir, "none.env"), "--log-level", "error"}
	if !contains(args, "--config") {
		base = append(base, "--config", filepath.Join(dir, "config.yaml"))
		if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log:\n  level: error\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	resetFlags(rootCmd)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(append(base, args...))
	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores defaults; flag state persists between executions of
// the package-level commands.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
