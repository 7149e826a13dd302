package transport

import (
	"encoding/base64"
	"fmt"

	"github.com/kbukum/bitbucket/config"
	"github.com/kbukum/bitbucket/util"
)

// AuthMethod identifies which credential variant is active.
type AuthMethod int

const (
	// AuthOAuth authenticates with an OAuth bearer token.
	AuthOAuth AuthMethod = iota
	// AuthBasicEmail authenticates with an Atlassian user email and API token.
	AuthBasicEmail
	// AuthBasicAppPassword authenticates with a Bitbucket username and app password.
	AuthBasicAppPassword
)

// String returns the method name.
func (m AuthMethod) String() string {
	switch m {
	case AuthOAuth:
		return "oauth"
	case AuthBasicEmail:
		return "basic_email"
	case AuthBasicAppPassword:
		return "basic_app_password"
	default:
		return "unknown"
	}
}

// Credentials is one resolved credential variant. Method is the explicit
// discriminant; only the fields of the active variant are populated.
type Credentials struct {
	Method AuthMethod

	// Token is the bearer token (AuthOAuth).
	Token string

	// SiteName is the Atlassian site name (AuthBasicEmail, optional).
	SiteName string
	// UserEmail is the Atlassian account email (AuthBasicEmail).
	UserEmail string
	// APIToken is the Atlassian API token (AuthBasicEmail).
	APIToken string

	// Username is the Bitbucket username (AuthBasicAppPassword).
	Username string
	// AppPassword is the Bitbucket app password (AuthBasicAppPassword).
	AppPassword string
}

// ResolveCredentials reads the configured credential sources in fixed
// precedence order and returns the first fully satisfied variant:
//
//  1. OAuth bearer token (oauth_token, then access_token)
//  2. user email + API token (site name optional)
//  3. Bitbucket username + app password
//
// Returns nil when no variant is fully satisfied. Absence is not an error;
// callers surface it as an auth-missing failure when an operation needs
// authentication. Resolution has no side effects and never panics.
func ResolveCredentials(cfg *config.Config) *Credentials {
	if cfg == nil {
		return nil
	}
	auth := cfg.Auth

	token := auth.OAuthToken
	if token == "" {
		token = auth.AccessToken
	}
	if token != "" {
		return &Credentials{Method: AuthOAuth, Token: token}
	}

	if auth.UserEmail != "" && auth.APIToken != "" {
		return &Credentials{
			Method:    AuthBasicEmail,
			SiteName:  auth.SiteName,
			UserEmail: auth.UserEmail,
			APIToken:  auth.APIToken,
		}
	}

	if auth.Username != "" && auth.AppPassword != "" {
		return &Credentials{
			Method:      AuthBasicAppPassword,
			Username:    auth.Username,
			AppPassword: auth.AppPassword,
		}
	}

	return nil
}

// String describes the credential for logs. The secret is masked; only the
// method and the account identifier are readable.
func (c *Credentials) String() string {
	if c == nil {
		return "none"
	}
	switch c.Method {
	case AuthOAuth:
		return fmt.Sprintf("oauth (token %s)", util.MaskSecret(c.Token, 4))
	case AuthBasicEmail:
		return fmt.Sprintf("basic_email (%s, token %s)", c.UserEmail, util.MaskSecret(c.APIToken, 4))
	case AuthBasicAppPassword:
		return fmt.Sprintf("basic_app_password (%s, password %s)", c.Username, util.MaskSecret(c.AppPassword, 4))
	default:
		return "unknown"
	}
}

// authorization produces the Authorization header value for the active
// variant. A variant missing a field it declared is reported as an
// auth-invalid error; the builder does not assume the resolver invariant.
func (c *Credentials) authorization() (string, *Error) {
	switch c.Method {
	case AuthOAuth:
		if c.Token == "" {
			return "", newAuthInvalidError("oauth credential is missing its token")
		}
		return "Bearer " + c.Token, nil
	case AuthBasicEmail:
		if c.UserEmail == "" || c.APIToken == "" {
			return "", newAuthInvalidError("email credential is missing user email or API token")
		}
		return basicAuth(c.UserEmail, c.APIToken), nil
	case AuthBasicAppPassword:
		if c.Username == "" || c.AppPassword == "" {
			return "", newAuthInvalidError("app password credential is missing username or app password")
		}
		return basicAuth(c.Username, c.AppPassword), nil
	default:
		return "", newAuthInvalidError("unknown credential method")
	}
}

func basicAuth(user, secret string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+secret))
}
