package facebook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

const defaultBaseURL = "https://graph.facebook.com"

var (
	// ErrInvalidToken: the user-supplied token failed verification at
	// the provider (or the verification call itself failed).
	ErrInvalidToken = errors.New("invalid facebook access token")
	// ErrUnavailable: the provider rejected or failed the profile
	// fetch. Recoverable upstream condition, not a credential error.
	ErrUnavailable = errors.New("facebook profile unavailable")
)

// Profile is what the auth core needs from the provider.
type Profile struct {
	ExternalID string
	Name       string
	Email      string
}

// Client talks to the Graph API. The app access token is exchanged
// once at startup and injected read-only; if it goes stale the
// verification calls fail and the caller sees ErrInvalidToken.
type Client struct {
	HTTP     *http.Client
	BaseURL  string
	appToken string
}

func New(appToken string) *Client {
	return &Client{
		HTTP:     &http.Client{Timeout: 10 * time.Second},
		BaseURL:  defaultBaseURL,
		appToken: appToken,
	}
}

// FetchAppToken performs the client-credentials exchange for the
// server-to-provider application token. Call once at process start.
func FetchAppToken(ctx context.Context, baseURL, appID, appSecret string) (string, error) {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	q := url.Values{}
	q.Set("client_id", appID)
	q.Set("client_secret", appSecret)
	q.Set("grant_type", "client_credentials")

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := getJSON(ctx, http.DefaultClient, baseURL+"/oauth/access_token?"+q.Encode(), &out); err != nil {
		return "", fmt.Errorf("facebook app token: %w", err)
	}
	if out.AccessToken == "" {
		return "", errors.New("facebook app token: empty response")
	}
	return out.AccessToken, nil
}

// VerifyToken checks a user-supplied token against /debug_token and
// returns the provider-confirmed user id.
func (c *Client) VerifyToken(ctx context.Context, userToken string) (string, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "facebook.debug_token")
	defer sp.Finish()

	q := url.Values{}
	q.Set("input_token", userToken)
	q.Set("access_token", c.appToken)

	var out struct {
		Data struct {
			UserID  string `json:"user_id"`
			IsValid bool   `json:"is_valid"`
		} `json:"data"`
	}
	if err := getJSON(ctx, c.HTTP, c.BaseURL+"/debug_token?"+q.Encode(), &out); err != nil {
		sp.SetTag("error", err)
		return "", ErrInvalidToken
	}
	if !out.Data.IsValid || out.Data.UserID == "" {
		return "", ErrInvalidToken
	}
	return out.Data.UserID, nil
}

// FetchProfile loads name and email for an already-verified user id,
// using the user's own token.
func (c *Client) FetchProfile(ctx context.Context, externalID, userToken string) (Profile, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "facebook.profile",
		tracer.Tag("external_id", externalID),
	)
	defer sp.Finish()

	q := url.Values{}
	q.Set("fields", "name,email")
	q.Set("access_token", userToken)

	var out struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := getJSON(ctx, c.HTTP, c.BaseURL+"/v3.2/"+url.PathEscape(externalID)+"?"+q.Encode(), &out); err != nil {
		sp.SetTag("error", err)
		return Profile{}, ErrUnavailable
	}
	if out.ID == "" || out.Email == "" {
		return Profile{}, ErrUnavailable
	}
	return Profile{ExternalID: out.ID, Name: out.Name, Email: out.Email}, nil
}

func getJSON(ctx context.Context, cli *http.Client, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := cli.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("graph api status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
