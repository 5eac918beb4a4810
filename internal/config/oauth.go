package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
)

// OAuthClientConfig is the desktop client downloaded from the Google Cloud console.
// The sheets source signs in with it to read board inputs and publish plans.
type OAuthClientConfig struct {
	Installed OAuthInstalled `json:"installed" validate:"required"`
}

// OAuthInstalled is the "installed" block of a desktop OAuth client
type OAuthInstalled struct {
	ClientID                string   `json:"client_id" validate:"required"`
	ProjectID               string   `json:"project_id" validate:"required"`
	AuthURI                 string   `json:"auth_uri" validate:"required,url"`
	TokenURI                string   `json:"token_uri" validate:"required,url"`
	AuthProviderX509CertURL string   `json:"auth_provider_x509_cert_url" validate:"required,url"`
	ClientSecret            string   `json:"client_secret" validate:"required"`
	RedirectURIs            []string `json:"redirect_uris" validate:"required,min=1,dive,uri"`
}

// OAuthClientFileName is the client file looked up for env when the sheets section names none
func OAuthClientFileName(env string) string {
	if env == "" {
		return "oauthClient.json"
	}
	return "oauthClient." + env + ".json"
}

// LoadOAuthClient loads the OAuth client used to reach the board spreadsheet.
// An oauthClientPath in the sheets section wins over the per-environment file search.
func LoadOAuthClient(env string, sheets *Sheets) (*OAuthClientConfig, error) {
	if sheets != nil && sheets.OAuthClientPath != "" {
		return LoadOAuthClientFromPath(sheets.OAuthClientPath)
	}

	path, err := findFile(OAuthClientFileName(env))
	if err != nil {
		return nil, fmt.Errorf("failed to find oauth client for environment %q: %w", env, err)
	}
	return LoadOAuthClientFromPath(path)
}

// LoadOAuthClientFromPath reads and validates an OAuth client file
func LoadOAuthClientFromPath(path string) (*OAuthClientConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth client %s: %w", path, err)
	}

	var oauthCfg OAuthClientConfig
	if err := json.Unmarshal(data, &oauthCfg); err != nil {
		return nil, fmt.Errorf("failed to parse oauth client %s: %w", path, err)
	}

	if err := ValidateOAuthClient(&oauthCfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &oauthCfg, nil
}

// ValidateOAuthClient checks the client fields and that it allows a loopback redirect,
// which the sign-in callback listens on.
func ValidateOAuthClient(cfg *OAuthClientConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("oauth client validation failed: %w", err)
	}

	for _, raw := range cfg.Installed.RedirectURIs {
		u, err := url.Parse(raw)
		if err == nil && u.Scheme == "http" && (u.Hostname() == "localhost" || u.Hostname() == "127.0.0.1") {
			return nil
		}
	}
	return fmt.Errorf("oauth client validation failed: no loopback redirect uri in %v, add http://localhost to the client", cfg.Installed.RedirectURIs)
}
