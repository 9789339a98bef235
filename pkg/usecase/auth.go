package usecase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yourtyme-app/yourtyme/pkg/domain/interfaces"
	"github.com/yourtyme-app/yourtyme/pkg/domain/model"
	"github.com/yourtyme-app/yourtyme/pkg/domain/types"
	"github.com/yourtyme-app/yourtyme/pkg/utils/logging"
	"github.com/yourtyme-app/yourtyme/pkg/utils/safe"
)

const (
	slackAuthorizeURL = "https://slack.com/oauth/v2/authorize"
	slackTokenURL     = "https://slack.com/api/oauth.v2.access"
	slackUserInfoURL  = "https://slack.com/api/users.info"
)

// AuthUseCase handles the Slack OAuth flow: code exchange, user info lookup
// and profile persistence.
type AuthUseCase struct {
	repo         interfaces.Repository
	clientID     string
	clientSecret string
	callbackURL  string

	tokenURL    string
	userInfoURL string
	httpClient  *http.Client
}

// AuthOption is a functional option for AuthUseCase
type AuthOption func(*AuthUseCase)

// WithTokenURL overrides the token exchange endpoint (used in tests)
func WithTokenURL(u string) AuthOption {
	return func(uc *AuthUseCase) {
		uc.tokenURL = u
	}
}

// WithUserInfoURL overrides the user info endpoint (used in tests)
func WithUserInfoURL(u string) AuthOption {
	return func(uc *AuthUseCase) {
		uc.userInfoURL = u
	}
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(c *http.Client) AuthOption {
	return func(uc *AuthUseCase) {
		uc.httpClient = c
	}
}

func NewAuthUseCase(repo interfaces.Repository, clientID, clientSecret, callbackURL string, opts ...AuthOption) *AuthUseCase {
	uc := &AuthUseCase{
		repo:         repo,
		clientID:     clientID,
		clientSecret: clientSecret,
		callbackURL:  callbackURL,
		tokenURL:     slackTokenURL,
		userInfoURL:  slackUserInfoURL,
		httpClient:   http.DefaultClient,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// GetAuthURL returns the Slack authorize URL for the install flow
func (uc *AuthUseCase) GetAuthURL(state string) string {
	params := url.Values{}
	params.Set("client_id", uc.clientID)
	params.Set("scope", "channels:read,users:read,chat:write,im:write")
	params.Set("user_scope", "identity.basic")
	params.Set("redirect_uri", uc.callbackURL)
	params.Set("state", state)

	return slackAuthorizeURL + "?" + params.Encode()
}

// slackTokenResponse represents the response from oauth.v2.access
type slackTokenResponse struct {
	OK          bool   `json:"ok"`
	AccessToken string `json:"access_token"`
	Team        struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"team"`
	AuthedUser struct {
		ID          string `json:"id"`
		AccessToken string `json:"access_token"`
	} `json:"authed_user"`
	Error string `json:"error"`
}

// slackUserInfoResponse represents the response from users.info
type slackUserInfoResponse struct {
	OK   bool `json:"ok"`
	User struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		RealName string `json:"real_name"`
	} `json:"user"`
	Error string `json:"error"`
}

// HandleCallback exchanges the OAuth code, resolves the user's real name and
// merge-upserts the profile. An invalid or expired code is a permanent error
// and is not retried.
func (uc *AuthUseCase) HandleCallback(ctx context.Context, code string) (*model.Profile, error) {
	if code == "" {
		return nil, goerr.Wrap(model.ErrUnauthorized, "missing code parameter in callback")
	}

	tokenResp, err := uc.exchangeCode(ctx, code)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to exchange code for token")
	}

	if !tokenResp.OK || tokenResp.Error != "" {
		if tokenResp.Error == "invalid_code" {
			return nil, goerr.Wrap(model.ErrUnauthorized,
				"the authorization code is invalid or has expired")
		}
		return nil, goerr.New("slack oauth error", goerr.V("error", tokenResp.Error))
	}

	userID := types.UserID(tokenResp.AuthedUser.ID)
	if err := userID.Validate(); err != nil {
		return nil, goerr.New("authed_user is missing in Slack API response")
	}

	// Display name is best-effort; the home sync resolves it lazily anyway
	displayName := userID.String()
	if name, err := uc.fetchRealName(ctx, tokenResp.AccessToken, userID); err != nil {
		logging.From(ctx).Warn("failed to fetch user info, using raw identity",
			"user_id", userID, "error", err.Error())
	} else if name != "" {
		displayName = name
	}

	patch := &model.ProfilePatch{
		DisplayName: model.String(displayName),
		AuthToken:   model.String(tokenResp.AccessToken),
		TeamID:      model.String(tokenResp.Team.ID),
	}
	if err := uc.repo.Profile().Upsert(ctx, userID, patch); err != nil {
		return nil, goerr.Wrap(err, "failed to store profile after OAuth", goerr.V("user_id", userID))
	}

	return uc.repo.Profile().Get(ctx, userID)
}

func (uc *AuthUseCase) exchangeCode(ctx context.Context, code string) (*slackTokenResponse, error) {
	form := url.Values{}
	form.Set("client_id", uc.clientID)
	form.Set("client_secret", uc.clientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", uc.callbackURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uc.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := uc.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "token request failed")
	}
	defer safe.Close(ctx, resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read token response")
	}

	var tokenResp slackTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, goerr.Wrap(err, "failed to decode token response")
	}

	return &tokenResp, nil
}

func (uc *AuthUseCase) fetchRealName(ctx context.Context, accessToken string, userID types.UserID) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		uc.userInfoURL+"?user="+url.QueryEscape(userID.String()), nil)
	if err != nil {
		return "", goerr.Wrap(err, "failed to build user info request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := uc.httpClient.Do(req)
	if err != nil {
		return "", goerr.Wrap(err, "user info request failed")
	}
	defer safe.Close(ctx, resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read user info response")
	}

	var infoResp slackUserInfoResponse
	if err := json.Unmarshal(body, &infoResp); err != nil {
		return "", goerr.Wrap(err, "failed to decode user info response")
	}
	if !infoResp.OK {
		return "", goerr.New("users.info rejected", goerr.V("error", infoResp.Error))
	}

	if infoResp.User.RealName != "" {
		return infoResp.User.RealName, nil
	}
	return infoResp.User.Name, nil
}
