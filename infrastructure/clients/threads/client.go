package threads

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-querystring/query"

	"content-studio/domain/model"
	"content-studio/infrastructure/logger"
)

const DefaultBaseURL = "https://graph.threads.net/v1.0"

// Client talks to the Threads Graph API. BaseURL is overridable for tests.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type containerParams struct {
	MediaType   string `url:"media_type"`
	Text        string `url:"text,omitempty"`
	ImageURL    string `url:"image_url,omitempty"`
	VideoURL    string `url:"video_url,omitempty"`
	ReplyToID   string `url:"reply_to_id,omitempty"`
	AccessToken string `url:"access_token"`
}

type idResponse struct {
	ID string `json:"id"`
}

type statusResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	ID           string `json:"id"`
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// CreateContainer creates a media container for the account and returns its ID.
// The container is not visible to anyone until published.
func (c *Client) CreateContainer(ctx context.Context, accountID, accessToken string, post model.Post) (string, error) {
	params := containerParams{
		MediaType:   string(post.MediaKind),
		Text:        post.Text,
		AccessToken: accessToken,
	}
	switch post.MediaKind {
	case model.MediaKindImage:
		params.ImageURL = post.MediaURL
	case model.MediaKindVideo:
		params.VideoURL = post.MediaURL
	}
	var res idResponse
	if err := c.postForm(ctx, fmt.Sprintf("%s/%s/threads", c.BaseURL, url.PathEscape(accountID)), params, &res); err != nil {
		return "", err
	}
	if res.ID == "" {
		return "", fmt.Errorf("container create returned no id")
	}
	return res.ID, nil
}

// CreateReplyContainer creates a container for a reply to an existing post.
func (c *Client) CreateReplyContainer(ctx context.Context, accountID, accessToken, replyToID, text string) (string, error) {
	params := containerParams{
		MediaType:   string(model.MediaKindText),
		Text:        text,
		ReplyToID:   replyToID,
		AccessToken: accessToken,
	}
	var res idResponse
	if err := c.postForm(ctx, fmt.Sprintf("%s/%s/threads", c.BaseURL, url.PathEscape(accountID)), params, &res); err != nil {
		return "", err
	}
	return res.ID, nil
}

// ContainerStatus fetches the processing state of a container.
func (c *Client) ContainerStatus(ctx context.Context, containerID, accessToken string) (ContainerState, string, error) {
	u := fmt.Sprintf("%s/%s?fields=status,error_message&access_token=%s",
		c.BaseURL, url.PathEscape(containerID), url.QueryEscape(accessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return StateErrored, "", err
	}
	var res statusResponse
	if err := c.do(req, &res); err != nil {
		return StateErrored, "", err
	}
	switch res.Status {
	case "IN_PROGRESS":
		return StateProcessing, "", nil
	case "FINISHED":
		return StateFinished, "", nil
	case "ERROR":
		return StateErrored, res.ErrorMessage, nil
	default:
		return StateProcessing, "", nil
	}
}

// PublishContainer publishes a finished container and returns the post ID.
func (c *Client) PublishContainer(ctx context.Context, accountID, accessToken, containerID string) (string, error) {
	params := struct {
		CreationID  string `url:"creation_id"`
		AccessToken string `url:"access_token"`
	}{CreationID: containerID, AccessToken: accessToken}
	var res idResponse
	if err := c.postForm(ctx, fmt.Sprintf("%s/%s/threads_publish", c.BaseURL, url.PathEscape(accountID)), params, &res); err != nil {
		return "", err
	}
	if res.ID == "" {
		return "", fmt.Errorf("threads_publish returned no id")
	}
	return res.ID, nil
}

// RefreshToken exchanges a long-lived token for a fresh one.
func (c *Client) RefreshToken(ctx context.Context, accessToken string) (string, time.Duration, error) {
	u := fmt.Sprintf("%s/refresh_access_token?grant_type=th_refresh_token&access_token=%s",
		c.BaseURL, url.QueryEscape(accessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", 0, err
	}
	var res refreshResponse
	if err := c.do(req, &res); err != nil {
		return "", 0, err
	}
	if res.AccessToken == "" {
		return "", 0, fmt.Errorf("refresh returned no access_token")
	}
	return res.AccessToken, time.Duration(res.ExpiresIn) * time.Second, nil
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
			logger.GetLogger().WithField("status", resp.StatusCode).WithField("message", apiErr.Error.Message).Warn("Threads API error")
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
	return fmt.Sprintf("threads api: status %d: %s", e.StatusCode, e.Message)
}
