package instagram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://i.instagram.com/api/v1"
	defaultHTTPTimeout = 30 * time.Second
)

// ErrLoginFailed is returned when the API rejects the credentials.
var ErrLoginFailed = errors.New("instagram: login failed")

// ErrSessionExpired is returned when a saved session no longer
// authenticates. Callers should discard the state file and log in fresh.
var ErrSessionExpired = errors.New("instagram: session expired")

// Account identifies the logged-in user.
type Account struct {
	PK       int64  `json:"pk"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

// DirectMessage is one inbox item surfaced by the poller.
type DirectMessage struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"thread_id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// PublishVideoParams carries everything needed to post one video.
type PublishVideoParams struct {
	Video   []byte
	Cover   []byte
	Caption string
}

// PublishResult reports the created media.
type PublishResult struct {
	MediaID string `json:"media_id"`
	Status  string `json:"status"`
}

// Client talks to the Instagram private API. It is not safe for concurrent
// use while logging in; after login it only reads its own fields.
type Client struct {
	baseURL    string
	httpClient *http.Client

	deviceID string
	cookies  []Cookie
}

// Option customizes the Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the default API base (useful for tests/mocks).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// NewClient constructs a private-API client with no session attached.
// Call Login or RestoreState before any authenticated method.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// RestoreState attaches a previously saved session to the client.
// Validity is not checked here; call CurrentUser to verify.
func (c *Client) RestoreState(st State) {
	c.deviceID = st.DeviceID
	c.cookies = st.Cookies
}

// ExportState snapshots the session for persistence.
func (c *Client) ExportState(username string) State {
	return State{Username: username, DeviceID: c.deviceID, Cookies: c.cookies}
}

// Login authenticates with username/password under the given device
// identity and captures the session cookies from the response.
func (c *Client) Login(ctx context.Context, username, password, deviceID string) (*Account, error) {
	c.deviceID = deviceID

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	form.Set("device_id", deviceID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/accounts/login/", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("instagram: build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("instagram: login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrLoginFailed, resp.StatusCode)
	}

	var body struct {
		LoggedInUser Account `json:"logged_in_user"`
		Status       string  `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("instagram: decode login response: %w", err)
	}
	if body.Status != "ok" || body.LoggedInUser.Username == "" {
		return nil, fmt.Errorf("%w: status %q", ErrLoginFailed, body.Status)
	}

	c.cookies = c.cookies[:0]
	for _, ck := range resp.Cookies() {
		c.cookies = append(c.cookies, Cookie{
			Name: ck.Name, Value: ck.Value, Domain: ck.Domain, Path: ck.Path,
		})
	}

	return &body.LoggedInUser, nil
}

// CurrentUser returns the account the attached session belongs to.
// Returns ErrSessionExpired on an authentication failure.
func (c *Client) CurrentUser(ctx context.Context) (*Account, error) {
	var body struct {
		User   Account `json:"user"`
		Status string  `json:"status"`
	}
	if err := c.getJSON(ctx, "/accounts/current_user/", nil, &body); err != nil {
		return nil, err
	}
	if body.Status != "ok" || body.User.Username == "" {
		return nil, ErrSessionExpired
	}
	return &body.User, nil
}

// PublishVideo uploads the video bytes, then configures the post with its
// cover image and caption.
func (c *Client) PublishVideo(ctx context.Context, params PublishVideoParams) (*PublishResult, error) {
	if len(params.Video) == 0 {
		return nil, errors.New("instagram: publish: empty video")
	}

	uploadID, err := c.uploadVideo(ctx, params.Video, params.Cover)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("upload_id", uploadID)
	form.Set("caption", params.Caption)

	var body struct {
		Media struct {
			ID string `json:"id"`
		} `json:"media"`
		Status string `json:"status"`
	}
	if err := c.postForm(ctx, "/media/configure/", form, &body); err != nil {
		return nil, err
	}
	if body.Status != "ok" {
		return nil, fmt.Errorf("instagram: configure failed: status %q", body.Status)
	}
	return &PublishResult{MediaID: body.Media.ID, Status: body.Status}, nil
}

// Inbox returns direct messages strictly newer than since, oldest first.
// Pass the zero time to fetch everything the API will give.
func (c *Client) Inbox(ctx context.Context, since time.Time) ([]DirectMessage, error) {
	query := url.Values{}
	if !since.IsZero() {
		query.Set("since", strconv.FormatInt(since.UnixMilli(), 10))
	}

	var body struct {
		Threads []struct {
			ThreadID string `json:"thread_id"`
			Items    []struct {
				ItemID    string `json:"item_id"`
				Username  string `json:"username"`
				Text      string `json:"text"`
				Timestamp int64  `json:"timestamp"` // unix millis
			} `json:"items"`
		} `json:"threads"`
		Status string `json:"status"`
	}
	if err := c.getJSON(ctx, "/direct_v2/inbox/", query, &body); err != nil {
		return nil, err
	}

	var out []DirectMessage
	for _, thread := range body.Threads {
		for _, item := range thread.Items {
			ts := time.UnixMilli(item.Timestamp).UTC()
			if !since.IsZero() && !ts.After(since) {
				continue
			}
			out = append(out, DirectMessage{
				ID:        item.ItemID,
				ThreadID:  thread.ThreadID,
				Sender:    item.Username,
				Text:      item.Text,
				Timestamp: ts,
			})
		}
	}
	sortMessages(out)
	return out, nil
}

// uploadVideo performs the raw upload leg and returns the upload id the
// configure call refers to.
func (c *Client) uploadVideo(ctx context.Context, video, cover []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	vw, err := mw.CreateFormFile("video", "video.mp4")
	if err != nil {
		return "", fmt.Errorf("instagram: build upload: %w", err)
	}
	if _, err := vw.Write(video); err != nil {
		return "", fmt.Errorf("instagram: build upload: %w", err)
	}
	if len(cover) > 0 {
		cw, err := mw.CreateFormFile("cover_image", "cover.jpg")
		if err != nil {
			return "", fmt.Errorf("instagram: build upload: %w", err)
		}
		if _, err := cw.Write(cover); err != nil {
			return "", fmt.Errorf("instagram: build upload: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("instagram: build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/upload/video/", &buf)
	if err != nil {
		return "", fmt.Errorf("instagram: build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.attachSession(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("instagram: upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", ErrSessionExpired
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("instagram: upload failed: status %d", resp.StatusCode)
	}

	var body struct {
		UploadID string `json:"upload_id"`
		Status   string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("instagram: decode upload response: %w", err)
	}
	if body.UploadID == "" {
		return "", fmt.Errorf("instagram: upload failed: status %q", body.Status)
	}
	return body.UploadID, nil
}

// getJSON performs an authenticated GET and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("instagram: build request %s: %w", path, err)
	}
	c.attachSession(req)
	return c.do(req, path, out)
}

// postForm performs an authenticated form POST and decodes the JSON response.
func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("instagram: build request %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.attachSession(req)
	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, path string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("instagram: request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		io.Copy(io.Discard, resp.Body)
		return ErrSessionExpired
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("instagram: request %s: status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("instagram: decode response %s: %w", path, err)
	}
	return nil
}

// attachSession adds the saved cookies and device header to a request.
func (c *Client) attachSession(req *http.Request) {
	for _, ck := range c.cookies {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}
	if c.deviceID != "" {
		req.Header.Set("X-IG-Device-ID", c.deviceID)
	}
}

// sortMessages orders messages oldest first so watermark advancement is
// monotonic while handling.
func sortMessages(msgs []DirectMessage) {
	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
}
