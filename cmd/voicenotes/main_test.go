package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := "log:\n  format: json\n" +
		"storage:\n  driver: bolt\n  path: " + filepath.Join(dir, "notes.bolt") + "\n" +
		"session:\n  jwt_secret: test-secret\n" +
		"timezone: UTC\n"
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte(cfg), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestConfirm(t *testing.T) {
	cases := map[string]bool{
		"y\n":   true,
		"YES\n": true,
		"n\n":   false,
		"\n":    false,
		"":      false,
		"sure":  false,
	}
	for in, want := range cases {
		var out bytes.Buffer
		if got := confirm(strings.NewReader(in), &out, "Delete?"); got != want {
			t.Errorf("confirm(%q) = %v, want %v", in, got, want)
		}
		if !strings.Contains(out.String(), "Delete? [y/N]") {
			t.Errorf("prompt not written: %q", out.String())
		}
	}
}

func TestRootHasCommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "record", "notes", "stats", "report", "login", "logout", "whoami"} {
		if _, _, err := root.Find([]string{name}); err != nil {
			t.Errorf("command %q not registered: %v", name, err)
		}
	}
}

func TestNotesListEmpty(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := run(t, "", "--config", cfg, "notes", "list")
	if err != nil {
		t.Fatalf("notes list: %v", err)
	}
	if !strings.Contains(out, "no notes") {
		t.Errorf("output = %q", out)
	}
}

func TestSessionCommands(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := run(t, "", "--config", cfg, "whoami")
	if err != nil || !strings.Contains(out, "not signed in") {
		t.Fatalf("whoami before login = %q, %v", out, err)
	}

	out, err = run(t, "", "--config", cfg, "login", "aung@example.com")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "signed in as aung <aung@example.com>") || !strings.Contains(out, "token: ") {
		t.Errorf("login output = %q", out)
	}

	out, err = run(t, "", "--config", cfg, "whoami")
	if err != nil || !strings.Contains(out, "aung <aung@example.com>") {
		t.Fatalf("whoami after login = %q, %v", out, err)
	}

	if _, err := run(t, "", "--config", cfg, "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	out, _ = run(t, "", "--config", cfg, "whoami")
	if !strings.Contains(out, "not signed in") {
		t.Errorf("whoami after logout = %q", out)
	}
}

func TestLoginRejectsInvalidEmail(t *testing.T) {
	cfg := writeTestConfig(t)

	if _, err := run(t, "", "--config", cfg, "login", "not-an-email"); err == nil {
		t.Fatal("expected an error for an invalid email")
	}
}

func TestDeleteUnknownNote(t *testing.T) {
	cfg := writeTestConfig(t)

	if _, err := run(t, "y\n", "--config", cfg, "notes", "delete", "missing"); err == nil {
		t.Fatal("expected an error for an unknown note")
	}
}

func TestReportRejectsUnknownPeriod(t *testing.T) {
	cfg := writeTestConfig(t)

	_, err := run(t, "", "--config", cfg, "report", "yearly")
	if err == nil || !strings.Contains(err.Error(), "unknown report period") {
		t.Fatalf("err = %v", err)
	}
}
