package oauthclient

import (
	"net/http"
	"slices"

	"golang.org/x/oauth2"

	"github.com/MarcGrol/insightsbackend/services/oauth/oauthvault"
)

// ClientHandle performs bearer-authenticated requests on behalf of the logged in user.
// It never refreshes: the credential it was created from is already known to be valid.
type ClientHandle struct {
	credential oauthvault.Credential
	httpClient *http.Client
}

func ClientFor(cred *oauthvault.Credential) *ClientHandle {
	if cred == nil {
		return nil
	}

	return &ClientHandle{
		credential: *cred,
		httpClient: &http.Client{
			Transport: &oauth2.Transport{
				Source: oauth2.StaticTokenSource(&oauth2.Token{
					AccessToken: cred.AccessToken,
					TokenType:   "Bearer",
				}),
				Base: http.DefaultTransport,
			},
		},
	}
}

func (h *ClientHandle) HTTPClient() *http.Client {
	return h.httpClient
}

func (h *ClientHandle) AccessToken() string {
	return h.credential.AccessToken
}

func (h *ClientHandle) Scopes() []string {
	return slices.Clone(h.credential.Scopes)
}
