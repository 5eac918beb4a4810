package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOAuthClient() *OAuthClientConfig {
	return &OAuthClientConfig{
		Installed: OAuthInstalled{
			ClientID:                "client-id.apps.googleusercontent.com",
			ProjectID:               "supply-board",
			AuthURI:                 "https://accounts.google.com/o/oauth2/auth",
			TokenURI:                "https://oauth2.googleapis.com/token",
			AuthProviderX509CertURL: "https://www.googleapis.com/oauth2/v1/certs",
			ClientSecret:            "secret",
			RedirectURIs:            []string{"http://localhost"},
		},
	}
}

func TestValidateOAuthClient(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *OAuthClientConfig)
		wantErr bool
	}{
		{name: "valid", mutate: func(cfg *OAuthClientConfig) {}},
		{name: "missing client id", mutate: func(cfg *OAuthClientConfig) { cfg.Installed.ClientID = "" }, wantErr: true},
		{name: "invalid auth uri", mutate: func(cfg *OAuthClientConfig) { cfg.Installed.AuthURI = "not-a-valid-url" }, wantErr: true},
		{name: "no redirect uris", mutate: func(cfg *OAuthClientConfig) { cfg.Installed.RedirectURIs = []string{} }, wantErr: true},
		{name: "invalid redirect uri", mutate: func(cfg *OAuthClientConfig) { cfg.Installed.RedirectURIs = []string{"not a valid uri"} }, wantErr: true},
		{name: "no loopback redirect", mutate: func(cfg *OAuthClientConfig) { cfg.Installed.RedirectURIs = []string{"https://board.example.com/callback"} }, wantErr: true},
		{name: "loopback among others", mutate: func(cfg *OAuthClientConfig) {
			cfg.Installed.RedirectURIs = []string{"urn:ietf:wg:oauth:2.0:oob", "http://127.0.0.1:3000"}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validOAuthClient()
			tt.mutate(cfg)

			err := ValidateOAuthClient(cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "validation failed")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoadOAuthClientFromPath(t *testing.T) {
	oauthPath := filepath.Join(t.TempDir(), "oauthClient.json")
	content := `{
  "installed": {
    "client_id": "client-id.apps.googleusercontent.com",
    "project_id": "supply-board",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token",
    "auth_provider_x509_cert_url": "https://www.googleapis.com/oauth2/v1/certs",
    "client_secret": "secret",
    "redirect_uris": ["http://localhost:3000", "urn:ietf:wg:oauth:2.0:oob"]
  }
}`
	require.NoError(t, os.WriteFile(oauthPath, []byte(content), 0644))

	cfg, err := LoadOAuthClientFromPath(oauthPath)
	require.NoError(t, err)
	assert.Equal(t, "supply-board", cfg.Installed.ProjectID)
	assert.Len(t, cfg.Installed.RedirectURIs, 2)
}

func TestLoadOAuthClientFromPath_Errors(t *testing.T) {
	dir := t.TempDir()
	badJSON := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badJSON, []byte(`{"installed": {"client_id": "x" "project_id": "y"}}`), 0644))

	_, err := LoadOAuthClientFromPath(badJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse oauth client")

	_, err = LoadOAuthClientFromPath(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read oauth client")
}

func TestOAuthClientFileName(t *testing.T) {
	assert.Equal(t, "oauthClient.json", OAuthClientFileName(""))
	assert.Equal(t, "oauthClient.test.json", OAuthClientFileName("test"))
}

func TestLoadOAuthClient_SheetsPath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)

	_, err := LoadOAuthClient("test", &Sheets{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `environment "test"`)

	data, err := json.Marshal(validOAuthClient())
	require.NoError(t, err)
	path := filepath.Join(dir, "board-client.json")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := LoadOAuthClient("test", &Sheets{OAuthClientPath: path})
	require.NoError(t, err)
	assert.Equal(t, "supply-board", cfg.Installed.ProjectID)

	require.NoError(t, os.WriteFile(filepath.Join(dir, OAuthClientFileName("test")), data, 0644))
	cfg, err = LoadOAuthClient("test", nil)
	require.NoError(t, err)
	assert.Equal(t, "client-id.apps.googleusercontent.com", cfg.Installed.ClientID)
}
