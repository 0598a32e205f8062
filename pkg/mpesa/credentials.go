package mpesa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	mem "bimabora/pkg/memcache"
	"go.uber.org/zap"
)

// expirySkew is subtracted from the provider's expires_in so a token is never
// handed out in the last minute of its life.
const expirySkew = time.Minute

type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresIn   json.Number `json:"expires_in"`
}

// CredentialCache exchanges the consumer key/secret for a bearer token and
// keeps it in a TokenStore until it is close to expiry.
type CredentialCache struct {
	tokenURL       string
	consumerKey    string
	consumerSecret string
	cacheKey       string
	ttl            time.Duration

	store      mem.TokenStore
	httpClient *http.Client
	logger     *zap.Logger
}

func NewCredentialCache(cfg Config, store mem.TokenStore, httpClient *http.Client, logger *zap.Logger) (*CredentialCache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.timeout()}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CredentialCache{
		tokenURL:       cfg.baseURL() + tokenPath,
		consumerKey:    cfg.ConsumerKey,
		consumerSecret: cfg.ConsumerSecret,
		cacheKey:       "mpesa:token:" + cfg.ShortCode,
		ttl:            cfg.TokenTTL,
		store:          store,
		httpClient:     httpClient,
		logger:         logger,
	}, nil
}

// GetToken returns a cached token when one is still valid, otherwise it
// fetches a fresh one. Failures wrap ErrCredential and are never retried here.
func (c *CredentialCache) GetToken(ctx context.Context) (string, error) {
	if c.cachingEnabled() {
		if token, ok := c.store.Get(ctx, c.cacheKey); ok {
			return token, nil
		}
	}

	token, expiresIn, err := c.fetch(ctx)
	if err != nil {
		return "", err
	}

	if c.cachingEnabled() {
		ttl := c.ttl
		if expiresIn > 0 && expiresIn-expirySkew < ttl {
			ttl = expiresIn - expirySkew
		}
		if ttl > 0 {
			c.store.Set(ctx, c.cacheKey, token, ttl)
		}
	}

	return token, nil
}

// Invalidate drops the cached token so the next GetToken refetches.
func (c *CredentialCache) Invalidate(ctx context.Context) {
	if c.cachingEnabled() {
		c.store.Delete(ctx, c.cacheKey)
	}
}

func (c *CredentialCache) cachingEnabled() bool {
	return c.store != nil && c.ttl > 0
}

func (c *CredentialCache) fetch(ctx context.Context) (string, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tokenURL, nil)
	if err != nil {
		return "", 0, fmt.Errorf("%w: build request: %v", ErrCredential, err)
	}
	req.SetBasicAuth(c.consumerKey, c.consumerSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrCredential, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", 0, fmt.Errorf("%w: token endpoint returned %d: %s", ErrCredential, resp.StatusCode, string(body))
	}

	var res tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", 0, fmt.Errorf("%w: decode token response: %v", ErrCredential, err)
	}
	if res.AccessToken == "" {
		return "", 0, fmt.Errorf("%w: empty access token", ErrCredential)
	}

	var expiresIn time.Duration
	if res.ExpiresIn != "" {
		if secs, err := strconv.ParseInt(res.ExpiresIn.String(), 10, 64); err == nil {
			expiresIn = time.Duration(secs) * time.Second
		}
	}

	c.logger.Debug("retrieved mpesa access token", zap.Duration("expires_in", expiresIn))
	return res.AccessToken, expiresIn, nil
}
