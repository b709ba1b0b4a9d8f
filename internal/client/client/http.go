package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/dmitrijs2005/edubd/internal/client/models"
	"github.com/dmitrijs2005/edubd/internal/common"
)

const (
	pathRegister             = "/auth/register/"
	pathLogin                = "/auth/login/"
	pathProfile              = "/auth/profile/"
	pathPasswordReset        = "/auth/password-reset/"
	pathPasswordResetConfirm = "/auth/password-reset-confirm/"
	pathUsers                = "/auth/users/"

	maxResponseBody = 1 << 20
)

// HTTPClient implements Client over the gateway's REST API.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	limiter *rate.Limiter
	timeout time.Duration
}

var _ Client = (*HTTPClient)(nil)

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client (tests use the one
// from httptest.Server).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// WithRateLimit caps outbound requests per second. Zero disables the cap.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *HTTPClient) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithTimeout bounds every single request. Zero means no bound besides the
// caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.timeout = d }
}

func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid gateway url %q: scheme must be http or https", baseURL)
	}

	c := &HTTPClient{
		baseURL: u,
		http:    http.DefaultClient,
		limiter: rate.NewLimiter(rate.Inf, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *HTTPClient) Register(ctx context.Context, reg models.Registration) error {
	return c.doJSON(ctx, http.MethodPost, pathRegister, "", reg, nil)
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (string, error) {
	var resp struct {
		Access string `json:"access"`
	}
	req := map[string]string{"username": username, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, pathLogin, "", req, &resp); err != nil {
		return "", err
	}
	if resp.Access == "" {
		return "", fmt.Errorf("%w: no access token in login response", ErrBadResponse)
	}
	return resp.Access, nil
}

func (c *HTTPClient) Profile(ctx context.Context, token string) (*models.User, error) {
	var u models.User
	if err := c.doJSON(ctx, http.MethodGet, pathProfile, token, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, token string, upd models.ProfileUpdate) (*models.User, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := [][2]string{{"username", upd.Username}, {"email", upd.Email}}
	if upd.Password != "" {
		fields = append(fields, [2]string{"password", upd.Password})
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, err
		}
	}
	if upd.Avatar != nil {
		fw, err := mw.CreateFormFile("avatar", upd.Avatar.FileName)
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write(upd.Avatar.Content); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var u models.User
	if err := c.do(ctx, http.MethodPut, pathProfile, token, &buf, mw.FormDataContentType(), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) RequestPasswordReset(ctx context.Context, email string) error {
	return c.doJSON(ctx, http.MethodPost, pathPasswordReset, "", map[string]string{"email": email}, nil)
}

func (c *HTTPClient) ConfirmPasswordReset(ctx context.Context, req models.PasswordResetConfirm) error {
	return c.doJSON(ctx, http.MethodPatch, pathPasswordResetConfirm, "", req, nil)
}

func (c *HTTPClient) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	var users []models.User
	if err := c.doJSON(ctx, http.MethodGet, pathUsers, token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *HTTPClient) DeleteUser(ctx context.Context, token string, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, pathUsers+strconv.FormatInt(id, 10)+"/", token, nil, nil)
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path, token string, in, out any) error {
	var (
		body        io.Reader
		contentType string
	)
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, token, body, contentType, out)
}

// httpFor returns the client to send a request with. Authenticated calls
// go through an oauth2 transport that sets "Authorization: Bearer <token>".
func (c *HTTPClient) httpFor(ctx context.Context, token string) *http.Client {
	if token == "" {
		return c.http
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
}

func (c *HTTPClient) endpoint(path string) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	return u.String()
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, body io.Reader, contentType string, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpFor(ctx, token).Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Detail: parseDetail(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	return nil
}
