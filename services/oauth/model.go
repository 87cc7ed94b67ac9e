package oauth

import (
	"fmt"
	"net/url"
	"time"

	formcodec "github.com/go-playground/form/v4"
)

// CallbackQuery holds the parameters the provider appends to the redirect uri.
type CallbackQuery struct {
	Code             string `form:"code"`
	State            string `form:"state"`
	Error            string `form:"error"`
	ErrorDescription string `form:"error_description"`
}

func NewCallbackQuery(values url.Values) (CallbackQuery, error) {
	query := CallbackQuery{}
	err := formcodec.NewDecoder().Decode(&query, values)
	if err != nil {
		return query, fmt.Errorf("error decoding callback query: %s", err)
	}
	return query, nil
}

// IsCallback distinguishes a redirect back from the provider from a plain page load.
func (q CallbackQuery) IsCallback() bool {
	return q.State != "" && (q.Code != "" || q.Error != "")
}

type CallbackResult int

const (
	CallbackIgnored CallbackResult = iota
	CallbackAuthenticated
)

type OAuthStatus struct {
	State         FlowState
	Authenticated bool
	ClientID      string     `json:",omitempty"`
	Scopes        []string   `json:",omitempty"`
	ValidUntil    *time.Time `json:",omitempty"`
	Refreshable   bool
}
