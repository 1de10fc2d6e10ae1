package highlevel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"

	"github.com/restylehq/booking-platform/pkg/logging"
)

const (
	tokenCacheKey = "highlevel:access_token"

	// Shave a minute off the upstream expiry so a cached token is never
	// handed out moments before it dies.
	tokenExpirySlack = time.Minute
)

// TokenDB is the subset of pgxpool.Pool the token store needs; pgxmock
// satisfies it in tests.
type TokenDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// OAuthTokens is the persisted credential pair for the upstream API.
type OAuthTokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// TokenStore persists the refresh token between token rotations.
type TokenStore interface {
	Load(ctx context.Context) (*OAuthTokens, error)
	Save(ctx context.Context, tokens *OAuthTokens) error
}

// PGTokenStore keeps the oauth credential row in Postgres. A single row
// per provider; rotation overwrites it.
type PGTokenStore struct {
	db TokenDB
}

func NewPGTokenStore(db TokenDB) *PGTokenStore {
	return &PGTokenStore{db: db}
}

func (s *PGTokenStore) Load(ctx context.Context) (*OAuthTokens, error) {
	var t OAuthTokens
	err := s.db.QueryRow(ctx,
		`SELECT access_token, refresh_token, expires_at
		 FROM oauth_tokens WHERE provider = 'highlevel'`,
	).Scan(&t.AccessToken, &t.RefreshToken, &t.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("highlevel: no stored oauth tokens")
	}
	if err != nil {
		return nil, fmt.Errorf("highlevel: load tokens: %w", err)
	}
	return &t, nil
}

func (s *PGTokenStore) Save(ctx context.Context, tokens *OAuthTokens) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO oauth_tokens (provider, access_token, refresh_token, expires_at, updated_at)
		 VALUES ('highlevel', $1, $2, $3, NOW())
		 ON CONFLICT (provider) DO UPDATE SET
		   access_token = EXCLUDED.access_token,
		   refresh_token = EXCLUDED.refresh_token,
		   expires_at = EXCLUDED.expires_at,
		   updated_at = NOW()`,
		tokens.AccessToken, tokens.RefreshToken, tokens.ExpiresAt)
	if err != nil {
		return fmt.Errorf("highlevel: save tokens: %w", err)
	}
	return nil
}

// RedisTokenSource serves access tokens from a redis cache, refreshing
// against the upstream oauth endpoint when the cache misses. Refresh
// tokens rotate on every grant and are persisted through the TokenStore.
type RedisTokenSource struct {
	redis        *redis.Client
	store        TokenStore
	httpClient   *http.Client
	logger       *logging.Logger
	tokenURL     string
	clientID     string
	clientSecret string
}

func NewRedisTokenSource(rdb *redis.Client, store TokenStore, baseURL, clientID, clientSecret string, logger *logging.Logger) *RedisTokenSource {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisTokenSource{
		redis:        rdb,
		store:        store,
		httpClient:   &http.Client{Timeout: defaultTimeout},
		logger:       logger,
		tokenURL:     baseURL + "/oauth/token",
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// Token returns a valid access token, refreshing and caching as needed.
func (s *RedisTokenSource) Token(ctx context.Context) (string, error) {
	cached, err := s.redis.Get(ctx, tokenCacheKey).Result()
	if err == nil && cached != "" {
		return cached, nil
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		s.logger.Warn("token cache read failed, refreshing", "error", err)
	}

	tokens, err := s.refresh(ctx)
	if err != nil {
		return "", err
	}

	ttl := time.Until(tokens.ExpiresAt) - tokenExpirySlack
	if ttl > 0 {
		if err := s.redis.Set(ctx, tokenCacheKey, tokens.AccessToken, ttl).Err(); err != nil {
			s.logger.Warn("token cache write failed", "error", err)
		}
	}
	return tokens.AccessToken, nil
}

func (s *RedisTokenSource) refresh(ctx context.Context) (*OAuthTokens, error) {
	stored, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", s.clientID)
	form.Set("client_secret", s.clientSecret)
	form.Set("refresh_token", stored.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("highlevel: create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("highlevel: token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("highlevel: token refresh failed with status %d", resp.StatusCode)
	}

	var grant struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&grant); err != nil {
		return nil, fmt.Errorf("highlevel: decode token response: %w", err)
	}
	if grant.AccessToken == "" {
		return nil, fmt.Errorf("highlevel: token response missing access_token")
	}

	tokens := &OAuthTokens{
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(grant.ExpiresIn) * time.Second),
	}
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = stored.RefreshToken
	}

	if err := s.store.Save(ctx, tokens); err != nil {
		// Token still usable this cycle even if rotation did not persist.
		s.logger.Error("persisting rotated tokens failed", "error", err)
	}

	s.logger.Info("refreshed upstream access token", "expires_at", tokens.ExpiresAt.Format(time.RFC3339))
	return tokens, nil
}
