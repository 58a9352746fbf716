package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/zorgadres/register/internal/healthcarefinder"
)

func subcommandNames(cmd *cobra.Command) map[string]bool {
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	return names
}

func TestCommandTree(t *testing.T) {
	tests := []struct {
		cmd  *cobra.Command
		want []string
	}{
		{migrateCmd(), []string{"up", "status"}},
		{organisationCmd(), []string{"import", "cleanup-expired"}},
		{endpointCmd(), []string{"renew-signatures"}},
	}

	for _, tc := range tests {
		names := subcommandNames(tc.cmd)
		for _, want := range tc.want {
			if !names[want] {
				t.Errorf("command %s is missing subcommand %s", tc.cmd.Name(), want)
			}
		}
	}

	if serveCmd().Name() != "serve" {
		t.Errorf("expected serve command, got %s", serveCmd().Name())
	}
}

type staticFinder struct{}

func (staticFinder) SearchOrganizations(context.Context, healthcarefinder.SearchRequest) (*healthcarefinder.SearchResponse, error) {
	return nil, nil
}

// probingFinder is a finder adapter that can also probe its registry.
type probingFinder struct {
	staticFinder
	reachable bool
}

func (f probingFinder) VerifyConnection(context.Context) bool { return f.reachable }

func doHealth(t *testing.T, h echo.HandlerFunc) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	return rec, body
}

func TestHealthHandler_DatabaseOnly(t *testing.T) {
	h := healthHandler(func(context.Context) bool { return true }, staticFinder{})
	rec, body := doHealth(t, h)

	if rec.Code != http.StatusOK {
		t.Errorf("status %d, want 200", rec.Code)
	}
	if body["status"] != "ok" {
		t.Errorf("status field %q, want ok", body["status"])
	}
	if _, ok := body["registry"]; ok {
		t.Error("local adapter must not report a registry field")
	}
}

func TestHealthHandler_DatabaseDown(t *testing.T) {
	h := healthHandler(func(context.Context) bool { return false }, staticFinder{})
	rec, body := doHealth(t, h)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status %d, want 503", rec.Code)
	}
	if body["database"] != "unreachable" {
		t.Errorf("database field %q, want unreachable", body["database"])
	}
}

func TestHealthHandler_RegistryProbed(t *testing.T) {
	h := healthHandler(func(context.Context) bool { return true }, probingFinder{reachable: true})
	rec, body := doHealth(t, h)

	if rec.Code != http.StatusOK {
		t.Errorf("status %d, want 200", rec.Code)
	}
	if body["registry"] != "ok" {
		t.Errorf("registry field %q, want ok", body["registry"])
	}
}

func TestHealthHandler_RegistryUnreachable(t *testing.T) {
	h := healthHandler(func(context.Context) bool { return true }, probingFinder{reachable: false})
	rec, body := doHealth(t, h)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status %d, want 503", rec.Code)
	}
	if body["registry"] != "unreachable" {
		t.Errorf("registry field %q, want unreachable", body["registry"])
	}
}

func TestImportRequiresFileArgument(t *testing.T) {
	cmd := organisationCmd()
	cmd.SetArgs([]string{"import"})
	if err := cmd.Execute(); err == nil {
		t.Error("expected an error when no file argument is given")
	}
}
