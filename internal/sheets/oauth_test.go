package sheets

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

const installedClient = `{"installed":{"client_id":"id.apps.googleusercontent.com","client_secret":"secret",` +
	`"redirect_uris":["http://localhost"],"auth_uri":"https://accounts.google.com/o/oauth2/auth",` +
	`"token_uri":"https://oauth2.googleapis.com/token"}}`

func TestOAuthConfig(t *testing.T) {
	cfg, err := OAuthConfig(installedClient, "")
	if err != nil {
		t.Fatalf("OAuthConfig: %v", err)
	}
	if cfg.ClientID != "id.apps.googleusercontent.com" || len(cfg.Scopes) != 1 {
		t.Fatalf("config = %+v", cfg)
	}

	if _, err := OAuthConfig("invalid-json", ""); err == nil || !strings.Contains(err.Error(), "oauth config") {
		t.Fatalf("expected oauth config error, got %v", err)
	}
	if _, err := OAuthConfig("", ""); err == nil {
		t.Fatal("expected error without client")
	}
	if _, err := OAuthConfig("", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing client file")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := SaveToken(path, &oauth2.Token{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer"}); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	tok, err := LoadToken("", path)
	if err != nil {
		t.Fatalf("LoadToken: %v", err)
	}
	if tok.RefreshToken != "r" {
		t.Fatalf("token = %+v", tok)
	}

	if _, err := LoadToken(`{"token_type":"Bearer"}`, ""); err == nil {
		t.Fatal("expected error for empty token")
	}
	if _, err := LoadToken("{", ""); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestNewClientWithBadOAuthClient(t *testing.T) {
	_, err := NewClient(context.Background(), Config{
		SpreadsheetID:   "test-id",
		OAuthClientJSON: "invalid-json",
		OAuthTokenJSON:  `{"access_token":"test"}`,
	})
	if err == nil || !strings.Contains(err.Error(), "oauth config") {
		t.Fatalf("expected oauth config error, got %v", err)
	}
}
