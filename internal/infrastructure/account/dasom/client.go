package dasom

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/haeun-dev/manito/internal/domain/member"
	"github.com/haeun-dev/manito/internal/platform/logging"
	"github.com/haeun-dev/manito/internal/usecase"
)

var errDasomTransient = crerr.New("dasom transient failure")

// ClientConfig configures the client for the dasom account service,
// the membership system of record for users and groups.
type ClientConfig struct {
	HTTPClient      *http.Client
	BaseURL         string
	IntrospectPath  string
	AdminKey        string
	Timeout         time.Duration
	CacheTTL        time.Duration
	CacheMaxEntries int
	Logger          *logging.Logger
}

type Client struct {
	httpClient    *http.Client
	baseURL       string
	introspectURL string
	adminKey      string
	logger        *logging.Logger
	cache         *inMemoryPrincipalCache
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	cacheMaxEntries := cfg.CacheMaxEntries
	if cacheMaxEntries <= 0 {
		cacheMaxEntries = 4096
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	introspectPath := strings.TrimSpace(cfg.IntrospectPath)
	if introspectPath == "" {
		introspectPath = "/v1/auth/introspect"
	}

	return &Client{
		httpClient:    httpClient,
		baseURL:       baseURL,
		introspectURL: buildURL(baseURL, introspectPath),
		adminKey:      strings.TrimSpace(cfg.AdminKey),
		logger:        logger,
		cache:         newInMemoryPrincipalCache(cacheTTL, cacheMaxEntries),
	}
}

// VerifyAccessToken introspects a bearer token against dasom and returns
// the authenticated principal. Successful introspections are cached by
// token hash so hot request paths do not hammer the account service.
func (c *Client) VerifyAccessToken(ctx context.Context, token string) (member.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return member.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	cacheKey := hashToken(token)
	if principal, ok := c.cache.Get(cacheKey); ok {
		return principal, nil
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(introspectRequest{Token: token}); err != nil {
		return member.Principal{}, crerr.Wrap(err, "marshal introspect request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.introspectURL, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return member.Principal{}, crerr.Wrap(err, "create introspect request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.adminKey != "" {
		req.Header.Set("x-admin-key", c.adminKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return member.Principal{}, fmt.Errorf("%w: introspect request: %v", errDasomTransient, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusUnauthorized {
		return member.Principal{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized)
	}
	if resp.StatusCode == http.StatusForbidden {
		// Forbidden means our admin key is wrong, not the caller's token.
		return member.Principal{}, fmt.Errorf("%w: introspection rejected by dasom", usecase.ErrDependencyUnavailable)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return member.Principal{}, fmt.Errorf("%w: read introspect response: %v", errDasomTransient, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "dasom introspection non-200", "status_code", resp.StatusCode)
		return member.Principal{}, fmt.Errorf("%w: introspection status %d", usecase.ErrDependencyUnavailable, resp.StatusCode)
	}

	var decoded introspectResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return member.Principal{}, crerr.Wrap(err, "unmarshal introspect response")
	}

	if !decoded.Active {
		return member.Principal{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(decoded.UserID) == "" {
		return member.Principal{}, crerr.New("invalid introspect response: user_id is empty")
	}

	principal := member.Principal{
		UserID:   decoded.UserID,
		Nickname: decoded.Nickname,
	}
	c.cache.Set(cacheKey, principal)
	return principal, nil
}

func (c *Client) UserExists(ctx context.Context, userID string) (bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, nil
	}
	return c.checkExists(ctx, "/v1/users/"+url.PathEscape(userID))
}

func (c *Client) GroupExists(ctx context.Context, groupID string) (bool, error) {
	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return false, nil
	}
	return c.checkExists(ctx, "/v1/groups/"+url.PathEscape(groupID))
}

func (c *Client) IsGroupMember(ctx context.Context, userID, groupID string) (bool, error) {
	userID = strings.TrimSpace(userID)
	groupID = strings.TrimSpace(groupID)
	if groupID == "" || userID == "" {
		return false, nil
	}
	return c.checkExists(ctx, "/v1/groups/"+url.PathEscape(groupID)+"/members/"+url.PathEscape(userID))
}

// checkExists issues a GET against a dasom resource path and maps 404
// to a clean "does not exist" answer. Anything else non-2xx is an error
// so callers can surface the account service as unavailable.
func (c *Client) checkExists(ctx context.Context, path string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, buildURL(c.baseURL, path), nil)
	if err != nil {
		return false, crerr.Wrapf(err, "create dasom request path=%s", path)
	}
	req.Header.Set("Accept", "application/json")
	if c.adminKey != "" {
		req.Header.Set("x-admin-key", c.adminKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: request path=%s: %v", errDasomTransient, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	default:
		c.logger.WarnContext(ctx, "dasom lookup failed", "path", path, "status_code", resp.StatusCode)
		return false, fmt.Errorf("%w: dasom lookup path=%s status=%d", errDasomTransient, path, resp.StatusCode)
	}
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active   bool   `json:"active"`
	UserID   string `json:"user_id"`
	Nickname string `json:"nickname"`
}
