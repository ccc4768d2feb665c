package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/terraincognita07/calm/internal/config"
	"github.com/terraincognita07/calm/internal/logger"
)

func TestRunRejectsInvalidConfiguration(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SECRET_KEY", "change_me_in_production")

	err := run(context.Background(), []string{"serve"}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "SECRET_KEY") {
		t.Fatalf("expected configuration error naming SECRET_KEY, got %v", err)
	}
}

func TestRunPrintsUsageAndRejectsUnknownCommands(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SECRET_KEY", "")
	if err := os.Unsetenv("SECRET_KEY"); err != nil {
		t.Fatalf("unset SECRET_KEY: %v", err)
	}

	output := &bytes.Buffer{}
	if err := run(context.Background(), []string{"help"}, output); err != nil {
		t.Fatalf("help returned error: %v", err)
	}
	if !strings.Contains(output.String(), "reset-password EMAIL") {
		t.Fatalf("unexpected usage text %q", output.String())
	}

	if err := run(context.Background(), []string{"migrate"}, output); err == nil || !strings.Contains(err.Error(), `unknown command "migrate"`) {
		t.Fatalf("expected unknown command error, got %v", err)
	}

	if err := run(context.Background(), []string{"reset-password"}, output); err == nil {
		t.Fatal("expected reset-password without email to fail")
	}
}

func TestNewServerLeavesProcessLocationAlone(t *testing.T) {
	location, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	before := time.Local

	srv, err := newServer(&config.Config{
		DBDriver:       "sqlite",
		DBPath:         filepath.Join(t.TempDir(), "calm.db"),
		SecretKey:      "0123456789abcdef0123456789abcdef",
		TokenTTL:       time.Hour,
		Location:       location,
		RateLimitRPS:   5,
		RateLimitBurst: 10,
	}, logger.Discard())
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	t.Cleanup(srv.close)

	if time.Local != before {
		t.Fatalf("expected time.Local to stay %s, got %s", before, time.Local)
	}

	response, err := srv.app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected healthz 200, got %d", response.StatusCode)
	}
}
