package facebook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-querystring/query"

	"content-studio/infrastructure/logger"
)

const DefaultBaseURL = "https://graph.facebook.com/v19.0"

// Client talks to the Facebook Graph API. Every call carries an
// appsecret_proof so the platform rejects tokens stolen without the app
// secret. BaseURL is overridable for tests.
type Client struct {
	BaseURL    string
	AppSecret  string
	HTTPClient *http.Client
}

func NewClient(appSecret string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		AppSecret:  appSecret,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// AppSecretProof computes hex(HMAC-SHA256(access_token, app_secret)).
func AppSecretProof(accessToken, appSecret string) string {
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write([]byte(accessToken))
	return hex.EncodeToString(mac.Sum(nil))
}

type feedParams struct {
	Message        string `url:"message"`
	AccessToken    string `url:"access_token"`
	AppSecretProof string `url:"appsecret_proof"`
}

type photoParams struct {
	URL            string `url:"url"`
	Caption        string `url:"caption,omitempty"`
	AccessToken    string `url:"access_token"`
	AppSecretProof string `url:"appsecret_proof"`
}

type commentParams struct {
	Message        string `url:"message"`
	AccessToken    string `url:"access_token"`
	AppSecretProof string `url:"appsecret_proof"`
}

type idResponse struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
}

type exchangeResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type pagesResponse struct {
	Data []struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		AccessToken string `json:"access_token"`
	} `json:"data"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Page is one manageable page returned by the accounts edge.
type Page struct {
	ID          string
	Name        string
	AccessToken string
}

// PostToFeed publishes a text-only post to the page feed and returns the
// post ID.
func (c *Client) PostToFeed(ctx context.Context, pageID, accessToken, message string) (string, error) {
	params := feedParams{
		Message:        message,
		AccessToken:    accessToken,
		AppSecretProof: AppSecretProof(accessToken, c.AppSecret),
	}
	var res idResponse
	if err := c.postForm(ctx, fmt.Sprintf("%s/%s/feed", c.BaseURL, url.PathEscape(pageID)), params, &res); err != nil {
		return "", err
	}
	if res.ID == "" {
		return "", fmt.Errorf("feed post returned no id")
	}
	return res.ID, nil
}

// PostPhoto publishes an image by URL with an optional caption. The photos
// edge returns both a photo id and the owning post_id; the post_id is the
// one comments attach to.
func (c *Client) PostPhoto(ctx context.Context, pageID, accessToken, imageURL, caption string) (string, error) {
	params := photoParams{
		URL:            imageURL,
		Caption:        caption,
		AccessToken:    accessToken,
		AppSecretProof: AppSecretProof(accessToken, c.AppSecret),
	}
	var res idResponse
	if err := c.postForm(ctx, fmt.Sprintf("%s/%s/photos", c.BaseURL, url.PathEscape(pageID)), params, &res); err != nil {
		return "", err
	}
	if res.PostID != "" {
		return res.PostID, nil
	}
	if res.ID == "" {
		return "", fmt.Errorf("photo post returned no id")
	}
	return res.ID, nil
}

// Comment posts a comment under an existing post and returns the comment ID.
func (c *Client) Comment(ctx context.Context, postID, accessToken, message string) (string, error) {
	params := commentParams{
		Message:        message,
		AccessToken:    accessToken,
		AppSecretProof: AppSecretProof(accessToken, c.AppSecret),
	}
	var res idResponse
	if err := c.postForm(ctx, fmt.Sprintf("%s/%s/comments", c.BaseURL, url.PathEscape(postID)), params, &res); err != nil {
		return "", err
	}
	return res.ID, nil
}

// ExchangeToken swaps a token for a long-lived one via fb_exchange_token.
func (c *Client) ExchangeToken(ctx context.Context, appID, accessToken string) (string, time.Duration, error) {
	u := fmt.Sprintf("%s/oauth/access_token?grant_type=fb_exchange_token&client_id=%s&client_secret=%s&fb_exchange_token=%s",
		c.BaseURL, url.QueryEscape(appID), url.QueryEscape(c.AppSecret), url.QueryEscape(accessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", 0, err
	}
	var res exchangeResponse
	if err := c.do(req, &res); err != nil {
		return "", 0, err
	}
	if res.AccessToken == "" {
		return "", 0, fmt.Errorf("token exchange returned no access_token")
	}
	return res.AccessToken, time.Duration(res.ExpiresIn) * time.Second, nil
}

// ListPages fetches the pages the user can manage, including per-page tokens.
func (c *Client) ListPages(ctx context.Context, userID, accessToken string) ([]Page, error) {
	u := fmt.Sprintf("%s/%s/accounts?access_token=%s&appsecret_proof=%s",
		c.BaseURL, url.PathEscape(userID), url.QueryEscape(accessToken), AppSecretProof(accessToken, c.AppSecret))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	var res pagesResponse
	if err := c.do(req, &res); err != nil {
		return nil, err
	}
	pages := make([]Page, 0, len(res.Data))
	for _, p := range res.Data {
		pages = append(pages, Page{ID: p.ID, Name: p.Name, AccessToken: p.AccessToken})
	}
	return pages, nil
}

func (c *Client) postForm(ctx context.Context, endpoint string, params interface{}, out interface{}) error {
	values, err := query.Values(params)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			logger.GetLogger().WithField("status", resp.StatusCode).WithField("message", apiErr.Error.Message).Warn("Facebook API error")
			return &GraphError{StatusCode: resp.StatusCode, Message: apiErr.Error.Message, Type: apiErr.Error.Type, Code: apiErr.Error.Code}
		}
		return &GraphError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

// GraphError carries the platform error payload so callers can classify it.
type GraphError struct {
	StatusCode int
	Message    string
	Type       string
	Code       int
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("facebook api: status %d: %s", e.StatusCode, e.Message)
}
