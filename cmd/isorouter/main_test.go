package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/isorouter/internal/errors"
	"github.com/vango-dev/isorouter/internal/server"
)

const testConfig = `{
  "server": {"resolveTimeout": "2s"},
  "routes": [
    {"pattern": "/users/:id:int", "data": {"view": "user"}},
    {"pattern": "/old", "redirect": "/new"},
    {"pattern": "/boom", "error": "exploded"},
    {"pattern": "/slow", "data": {"view": "slow"}, "delay": "150ms"}
  ]
}`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "isorouter.json")
	if err := os.WriteFile(path, []byte(testConfig), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestResolveCommand(t *testing.T) {
	path := writeConfig(t)

	out, err := execute(t, "resolve", "--config", path, "/users/42?tab=posts")
	if err != nil {
		t.Fatalf("resolve error = %v", err)
	}
	for _, want := range []string{"/users/42?tab=posts", "/users/:id:int", "ok", `"id":"42"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestResolveCommandLatestWins(t *testing.T) {
	path := writeConfig(t)

	out, err := execute(t, "resolve", "--config", path, "/slow", "/old")
	if err != nil {
		t.Fatalf("resolve error = %v", err)
	}
	if strings.Contains(out, "/slow") {
		t.Errorf("superseded /slow was delivered: %q", out)
	}
	if !strings.Contains(out, "-> /new") {
		t.Errorf("output %q missing redirect", out)
	}
}

func TestResolveCommandSyncOutcomesAllDelivered(t *testing.T) {
	path := writeConfig(t)

	out, err := execute(t, "resolve", "--config", path, "/boom", "/nope")
	if err != nil {
		t.Fatalf("resolve error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), out)
	}
	if !strings.Contains(lines[0], "exploded") {
		t.Errorf("line 0 = %q, want the error", lines[0])
	}
	if !strings.Contains(lines[1], "not_found") {
		t.Errorf("line 1 = %q, want not_found", lines[1])
	}
}

func TestResolveCommandJSON(t *testing.T) {
	path := writeConfig(t)

	out, err := execute(t, "resolve", "--json", "--config", path, "/slow")
	if err != nil {
		t.Fatalf("resolve error = %v", err)
	}
	var res server.Resolution
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if res.Location.Path != "/slow" {
		t.Errorf("Location.Path = %q, want /slow", res.Location.Path)
	}
}

func TestResolveCommandNeedsURL(t *testing.T) {
	_, err := execute(t, "resolve", "--config", writeConfig(t))
	if errors.Code(err) != "R008" {
		t.Errorf("error = %v, want R008", err)
	}
}

func TestResolveCommandMissingConfig(t *testing.T) {
	_, err := execute(t, "resolve", "--config", t.TempDir(), "/")
	if errors.Code(err) != "R002" {
		t.Errorf("error = %v, want R002", err)
	}
}

func TestRoutesCommand(t *testing.T) {
	out, err := execute(t, "routes", "--config", writeConfig(t))
	if err != nil {
		t.Fatalf("routes error = %v", err)
	}
	for _, want := range []string{"PATTERN", "/users/:id:int", "redirect /new", "error exploded", "150ms"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version --short = %q, want %q", out, version)
	}
}

func TestLogLevel(t *testing.T) {
	_, err := execute(t, "version", "--short", "--log-level", "loud")
	if errors.Code(err) != "R008" {
		t.Errorf("error = %v, want R008", err)
	}
}

func TestAWSRegion(t *testing.T) {
	t.Setenv("AWS_REGION", "")
	if got := awsRegion(""); got != defaultRegion {
		t.Errorf("awsRegion(\"\") = %q, want %q", got, defaultRegion)
	}
	t.Setenv("AWS_REGION", "ap-south-1")
	if got := awsRegion(""); got != "ap-south-1" {
		t.Errorf("awsRegion(\"\") = %q, want ap-south-1", got)
	}
	if got := awsRegion("eu-west-1"); got != "eu-west-1" {
		t.Errorf("awsRegion(flag) = %q, want eu-west-1", got)
	}
}
