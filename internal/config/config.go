package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"bimabora/pkg/mpesa"
	"bimabora/pkg/utils"
)

const (
	TokenStoreMemory = "memory"
	TokenStoreRedis  = "redis"

	CallbackTokenParam = "token"
)

type Config struct {
	AppEnv      string
	Port        string
	PostgresURL string
	JWTSecret   string

	TokenStore string
	RedisAddr  string

	// CallbackToken must accompany every provider callback. It is appended
	// to the callback URL handed to the provider.
	CallbackToken string

	Mpesa mpesa.Config
}

func (c Config) IsDev() bool {
	return c.AppEnv == "dev"
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	// a missing .env is fine, deployments set real env vars
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds the configuration from lookup, which has the signature of
// os.LookupEnv. Every missing required key is reported in one error.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	var missing []string
	required := func(key string) string {
		v := get(key, "")
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg := Config{
		AppEnv:      get("APP_ENV", "prod"),
		Port:        get("PORT", "8080"),
		PostgresURL: get("POSTGRES_URL", ""),
		JWTSecret:   required("JWT_SECRET"),
		TokenStore:  strings.ToLower(get("TOKEN_STORE", TokenStoreMemory)),
		RedisAddr:   get("REDIS_ADDR", "localhost:6379"),

		CallbackToken: required("MPESA_CALLBACK_TOKEN"),

		Mpesa: mpesa.Config{
			BaseURL:        get("MPESA_BASE_URL", mpesa.SandboxBaseURL),
			ShortCode:      required("MPESA_SHORTCODE"),
			PassKey:        required("MPESA_PASSKEY"),
			ConsumerKey:    required("MPESA_CONSUMER_KEY"),
			ConsumerSecret: required("MPESA_CONSUMER_SECRET"),
			CallbackURL:    get("MPESA_CALLBACK_URL", ""),
			Location:       utils.LoadLocation(get("MPESA_TIMEZONE", utils.DefaultTimezone)),
		},
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: missing %s", mpesa.ErrConfiguration, strings.Join(missing, ", "))
	}

	timeout, err := seconds(get("MPESA_TIMEOUT_SECONDS", "10"))
	if err != nil || timeout <= 0 {
		return Config{}, fmt.Errorf("%w: MPESA_TIMEOUT_SECONDS must be a positive number of seconds", mpesa.ErrConfiguration)
	}
	cfg.Mpesa.Timeout = timeout

	ttl, err := seconds(get("MPESA_TOKEN_TTL_SECONDS", "3000"))
	if err != nil || ttl < 0 {
		return Config{}, fmt.Errorf("%w: MPESA_TOKEN_TTL_SECONDS must be zero or more seconds", mpesa.ErrConfiguration)
	}
	cfg.Mpesa.TokenTTL = ttl

	if cfg.Mpesa.CallbackURL != "" {
		callbackURL, err := withToken(cfg.Mpesa.CallbackURL, cfg.CallbackToken)
		if err != nil {
			return Config{}, fmt.Errorf("%w: MPESA_CALLBACK_URL: %v", mpesa.ErrConfiguration, err)
		}
		cfg.Mpesa.CallbackURL = callbackURL
	}

	switch cfg.TokenStore {
	case TokenStoreMemory, TokenStoreRedis:
	default:
		return Config{}, fmt.Errorf("%w: TOKEN_STORE must be %q or %q", mpesa.ErrConfiguration, TokenStoreMemory, TokenStoreRedis)
	}

	return cfg, nil
}

// withToken sets the callback token query parameter on raw.
func withToken(raw, token string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	q := u.Query()
	q.Set(CallbackTokenParam, token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func seconds(v string) (time.Duration, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}
