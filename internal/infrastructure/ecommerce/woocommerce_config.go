package ecommerce

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// API path prefixes. Each family authenticates differently.
const (
	// WCAPIPrefix serves the catalog, authenticated with consumer key/secret
	WCAPIPrefix = "/wp-json/wc/v3"
	// WPAPIPrefix serves the WordPress core API, authenticated with an application password
	WPAPIPrefix = "/wp-json/wp/v2"
)

// Default client settings
const (
	DefaultTimeout     = 30 * time.Second
	DefaultRateLimit   = 5.0
	DefaultRateBurst   = 5
	DefaultGetRetries  = 3
	maxResponseSize    = 10 * 1024 * 1024
	oauthSignatureAlgo = "HMAC-SHA256"
)

// Errors for WooCommerce configuration
var (
	ErrWooConfigMissingBaseURL        = errors.New("woocommerce: base URL is required")
	ErrWooConfigInvalidBaseURL        = errors.New("woocommerce: base URL is invalid")
	ErrWooConfigMissingConsumerKey    = errors.New("woocommerce: consumer key and secret are required")
	ErrWooConfigIncompleteAppPassword = errors.New("woocommerce: username and application password must be set together")
)

// AuthScheme is the credential scheme applied to a request
type AuthScheme int

const (
	// AuthQueryKeys sends consumer_key/consumer_secret as query parameters (HTTPS)
	AuthQueryKeys AuthScheme = iota
	// AuthOAuth1 signs the request with one-legged OAuth 1.0a (plain HTTP)
	AuthOAuth1
	// AuthBasic sends username and application password as HTTP Basic credentials
	AuthBasic
)

// WooConfig holds configuration for a WooCommerce-style remote catalog
type WooConfig struct {
	// BaseURL is the site root, e.g. https://shop.example.com
	BaseURL string
	// ConsumerKey and ConsumerSecret authenticate /wc/v3 calls
	ConsumerKey    string
	ConsumerSecret string
	// Username and AppPassword authenticate /wp/v2 calls (media)
	Username    string
	AppPassword string
	Timeout     time.Duration
	// RateLimit is the client side request budget per second
	RateLimit  float64
	RateBurst  int
	GetRetries int
	// MaxResponseSize caps the bytes read from any response body
	MaxResponseSize int64

	// nonce and now are replaceable for deterministic signatures in tests
	nonce func() string
	now   func() time.Time
}

// Validate validates the configuration and fills defaults
func (c *WooConfig) Validate() error {
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.BaseURL == "" {
		return ErrWooConfigMissingBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrWooConfigInvalidBaseURL
	}
	if c.ConsumerKey == "" || c.ConsumerSecret == "" {
		return ErrWooConfigMissingConsumerKey
	}
	if (c.Username == "") != (c.AppPassword == "") {
		return ErrWooConfigIncompleteAppPassword
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit <= 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.RateBurst <= 0 {
		c.RateBurst = DefaultRateBurst
	}
	if c.GetRetries < 0 {
		c.GetRetries = 0
	}
	if c.MaxResponseSize <= 0 {
		c.MaxResponseSize = maxResponseSize
	}
	if c.nonce == nil {
		c.nonce = randomNonce
	}
	if c.now == nil {
		c.now = time.Now
	}
	return nil
}

// IsHTTPS reports whether the site is served over TLS
func (c *WooConfig) IsHTTPS() bool {
	return strings.HasPrefix(c.BaseURL, "https://")
}

// SchemeFor selects the credential scheme for an API path
func (c *WooConfig) SchemeFor(path string) AuthScheme {
	if strings.HasPrefix(path, WPAPIPrefix) {
		return AuthBasic
	}
	if c.IsHTTPS() {
		return AuthQueryKeys
	}
	return AuthOAuth1
}

// Authorize adds the credentials of the scheme selected for path to query,
// and returns the Basic credentials to set on the request, if any.
func (c *WooConfig) Authorize(method, path string, query url.Values) (user, pass string, basic bool) {
	switch c.SchemeFor(path) {
	case AuthBasic:
		return c.Username, c.AppPassword, true
	case AuthQueryKeys:
		query.Set("consumer_key", c.ConsumerKey)
		query.Set("consumer_secret", c.ConsumerSecret)
	case AuthOAuth1:
		query.Set("oauth_consumer_key", c.ConsumerKey)
		query.Set("oauth_nonce", c.nonce())
		query.Set("oauth_signature_method", oauthSignatureAlgo)
		query.Set("oauth_timestamp", strconv.FormatInt(c.now().Unix(), 10))
		query.Set("oauth_signature", c.Sign(method, c.BaseURL+path, query))
	}
	return "", "", false
}

// Sign computes the one-legged OAuth 1.0a signature of a request.
// The signing key is the consumer secret followed by '&' (no token secret).
func (c *WooConfig) Sign(method, endpoint string, params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "oauth_signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		values := append([]string(nil), params[k]...)
		sort.Strings(values)
		for _, v := range values {
			pairs = append(pairs, percentEncode(k)+"="+percentEncode(v))
		}
	}

	base := strings.ToUpper(method) + "&" + percentEncode(endpoint) + "&" + percentEncode(strings.Join(pairs, "&"))

	mac := hmac.New(sha256.New, []byte(c.ConsumerSecret+"&"))
	mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// percentEncode encodes s per RFC 3986, as OAuth 1.0a requires
func percentEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func randomNonce() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return hex.EncodeToString(b)
}
