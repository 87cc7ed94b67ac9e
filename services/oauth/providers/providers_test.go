package providers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/MarcGrol/insightsbackend/services/oauth/oautherrors"
)

func TestProvider(t *testing.T) {
	t.Run("Google defaults are valid", func(t *testing.T) {
		p := Google("my-client", "my-secret", "http://localhost:8080/oauth/done")
		assert.NoError(t, p.Validate())
		assert.Equal(t, []string{ScopeYoutubeReadonly, ScopeAnalyticsReadonly}, p.Scopes)
	})

	t.Run("Missing client id", func(t *testing.T) {
		p := Google("", "my-secret", "http://localhost:8080/oauth/done")
		err := p.Validate()
		var configErr *oautherrors.ConfigurationError
		require.ErrorAs(t, err, &configErr)
		assert.Equal(t, "ClientID", configErr.Field)
	})

	t.Run("Malformed token endpoint", func(t *testing.T) {
		p := Google("my-client", "my-secret", "http://localhost:8080/oauth/done")
		p.TokenEndpoint = "not a url"
		err := p.Validate()
		var configErr *oautherrors.ConfigurationError
		require.ErrorAs(t, err, &configErr)
		assert.Equal(t, "TokenEndpoint", configErr.Field)
	})

	t.Run("No scopes", func(t *testing.T) {
		p := Google("my-client", "my-secret", "http://localhost:8080/oauth/done")
		p.Scopes = nil
		err := p.Validate()
		var configErr *oautherrors.ConfigurationError
		require.ErrorAs(t, err, &configErr)
		assert.Equal(t, "Scopes", configErr.Field)
	})

	t.Run("oauth2 config", func(t *testing.T) {
		cfg := Google("my-client", "my-secret", "http://localhost:8080/oauth/done").Config()
		assert.Equal(t, "my-client", cfg.ClientID)
		assert.Equal(t, GoogleTokenEndpoint, cfg.Endpoint.TokenURL)
		assert.Equal(t, oauth2.AuthStyleInParams, cfg.Endpoint.AuthStyle)
	})
}

func TestLoad(t *testing.T) {
	t.Run("From environment", func(t *testing.T) {
		t.Setenv("OAUTH_CLIENT_ID", "env-client")
		t.Setenv("OAUTH_CLIENT_SECRET", "env-secret")
		t.Setenv("OAUTH_REDIRECT_URI", "https://example.com/oauth/done")
		t.Setenv("OAUTH_SCOPES", "a,b")
		t.Setenv("OAUTH_LOGIN_TTL", "5m")

		p, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "env-client", p.ClientID)
		assert.Equal(t, GoogleAuthEndpoint, p.AuthEndpoint)
		assert.Equal(t, []string{"a", "b"}, p.Scopes)
		assert.Equal(t, 5*time.Minute, p.LoginTTL)
	})

	t.Run("Missing secret is fatal", func(t *testing.T) {
		t.Setenv("OAUTH_CLIENT_ID", "env-client")
		t.Setenv("OAUTH_CLIENT_SECRET", "")
		t.Setenv("OAUTH_REDIRECT_URI", "https://example.com/oauth/done")

		_, err := Load()
		var configErr *oautherrors.ConfigurationError
		require.ErrorAs(t, err, &configErr)
		assert.Contains(t, configErr.Field, "ClientSecret")
	})
}
