package providers

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/MarcGrol/insightsbackend/lib/myconfig"
	"github.com/MarcGrol/insightsbackend/services/oauth/oautherrors"
)

const (
	GoogleAuthEndpoint   = "https://accounts.google.com/o/oauth2/auth"
	GoogleTokenEndpoint  = "https://oauth2.googleapis.com/token"
	GoogleRevokeEndpoint = "https://oauth2.googleapis.com/revoke"

	ScopeYoutubeReadonly   = "https://www.googleapis.com/auth/youtube.readonly"
	ScopeAnalyticsReadonly = "https://www.googleapis.com/auth/yt-analytics.readonly"
)

// Provider holds the static registration of this application at the identity provider.
type Provider struct {
	ClientID       string        `env:"OAUTH_CLIENT_ID" validate:"required"`
	ClientSecret   string        `env:"OAUTH_CLIENT_SECRET" validate:"required"`
	RedirectURL    string        `env:"OAUTH_REDIRECT_URI" validate:"required,http_url"`
	AuthEndpoint   string        `env:"OAUTH_AUTH_ENDPOINT" envDefault:"https://accounts.google.com/o/oauth2/auth" validate:"required,http_url"`
	TokenEndpoint  string        `env:"OAUTH_TOKEN_ENDPOINT" envDefault:"https://oauth2.googleapis.com/token" validate:"required,http_url"`
	RevokeEndpoint string        `env:"OAUTH_REVOKE_ENDPOINT" envDefault:"https://oauth2.googleapis.com/revoke" validate:"omitempty,http_url"`
	Scopes         []string      `env:"OAUTH_SCOPES" envSeparator:"," envDefault:"https://www.googleapis.com/auth/youtube.readonly,https://www.googleapis.com/auth/yt-analytics.readonly" validate:"min=1,dive,required"`
	LoginTTL       time.Duration `env:"OAUTH_LOGIN_TTL" envDefault:"10m" validate:"gte=0"`
}

// Google returns a provider with Google's endpoints and the read-only youtube scopes.
func Google(clientID string, clientSecret string, redirectURL string) Provider {
	return Provider{
		ClientID:       clientID,
		ClientSecret:   clientSecret,
		RedirectURL:    redirectURL,
		AuthEndpoint:   GoogleAuthEndpoint,
		TokenEndpoint:  GoogleTokenEndpoint,
		RevokeEndpoint: GoogleRevokeEndpoint,
		Scopes:         []string{ScopeYoutubeReadonly, ScopeAnalyticsReadonly},
		LoginTTL:       10 * time.Minute,
	}
}

// Load reads the provider from the environment.
func Load() (Provider, error) {
	p := Provider{}
	err := myconfig.Load(&p)
	if err != nil {
		return Provider{}, asConfigurationError(err)
	}
	return p, nil
}

func (p Provider) Validate() error {
	err := myconfig.Validate(p)
	if err != nil {
		return asConfigurationError(err)
	}
	return nil
}

func (p Provider) Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  p.AuthEndpoint,
			TokenURL: p.TokenEndpoint,
			// Google expects the client credentials in the body
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: p.RedirectURL,
		Scopes:      p.Scopes,
	}
}

func asConfigurationError(err error) error {
	var configErrs myconfig.Errors
	if !errors.As(err, &configErrs) || len(configErrs) == 0 {
		return oautherrors.NewConfigurationError("oauth", err.Error())
	}

	fields := make([]string, 0, len(configErrs))
	reasons := make([]string, 0, len(configErrs))
	for _, fe := range configErrs {
		fields = append(fields, fe.Field)
		reasons = append(reasons, fe.Error())
	}
	return oautherrors.NewConfigurationError(strings.Join(fields, ","), strings.Join(reasons, ", "))
}
