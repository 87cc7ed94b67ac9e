package oauthevents

const (
	TopicName                      = "oauth"
	oauthLoginStartedName          = TopicName + ".login.started"
	oauthLoginCompletedName        = TopicName + ".login.completed"
	oauthLoginFailedName           = TopicName + ".login.failed"
	oauthTokenRefreshCompletedName = TopicName + ".tokenRefresh.completed"
	oauthTokenRefreshFailedName    = TopicName + ".tokenRefresh.failed"
	oauthLoggedOutName             = TopicName + ".logout.completed"
)

// Events carry identifiers only, never tokens or secrets.

type OAuthLoginStarted struct {
	SessionUID string
	ClientID   string
	Scopes     []string
}

func (e OAuthLoginStarted) GetEventTypeName() string {
	return oauthLoginStartedName
}

func (e OAuthLoginStarted) GetAggregateName() string {
	return e.SessionUID
}

type OAuthLoginCompleted struct {
	SessionUID string
	ClientID   string
	Scopes     []string
}

func (e OAuthLoginCompleted) GetEventTypeName() string {
	return oauthLoginCompletedName
}

func (e OAuthLoginCompleted) GetAggregateName() string {
	return e.SessionUID
}

type OAuthLoginFailed struct {
	SessionUID   string
	ClientID     string
	Kind         string
	ErrorMessage string
}

func (e OAuthLoginFailed) GetEventTypeName() string {
	return oauthLoginFailedName
}

func (e OAuthLoginFailed) GetAggregateName() string {
	return e.SessionUID
}

type OAuthTokenRefreshCompleted struct {
	SessionUID string
	ClientID   string
	Rotated    bool
}

func (e OAuthTokenRefreshCompleted) GetEventTypeName() string {
	return oauthTokenRefreshCompletedName
}

func (e OAuthTokenRefreshCompleted) GetAggregateName() string {
	return e.SessionUID
}

type OAuthTokenRefreshFailed struct {
	SessionUID   string
	ClientID     string
	ErrorMessage string
}

func (e OAuthTokenRefreshFailed) GetEventTypeName() string {
	return oauthTokenRefreshFailedName
}

func (e OAuthTokenRefreshFailed) GetAggregateName() string {
	return e.SessionUID
}

type OAuthLoggedOut struct {
	SessionUID string
	ClientID   string
	Revoked    bool
}

func (e OAuthLoggedOut) GetEventTypeName() string {
	return oauthLoggedOutName
}

func (e OAuthLoggedOut) GetAggregateName() string {
	return e.SessionUID
}
