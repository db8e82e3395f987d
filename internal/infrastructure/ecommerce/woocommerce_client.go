package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/atelier/backend/internal/domain/integration"
	"github.com/atelier/backend/internal/domain/shared"
)

// WooClient implements integration.CatalogGateway against a WooCommerce REST API
type WooClient struct {
	config     *WooConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewWooClient creates a new WooCommerce client with the given configuration
func NewWooClient(config *WooConfig, logger *zap.Logger) (*WooClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &WooClient{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), config.RateBurst),
		logger:  logger,
	}, nil
}

// ---------------------------------------------------------------------------
// Catalog resources
// ---------------------------------------------------------------------------

// Attributes returns the global product attributes collection
func (c *WooClient) Attributes() integration.Resource[integration.RemoteAttribute] {
	return newWooResource[integration.RemoteAttribute](c, "/products/attributes")
}

// Terms returns the terms collection of one attribute
func (c *WooClient) Terms(attributeID int64) integration.Resource[integration.RemoteTerm] {
	return newWooResource[integration.RemoteTerm](c, fmt.Sprintf("/products/attributes/%d/terms", attributeID))
}

// Tags returns the product tags collection
func (c *WooClient) Tags() integration.Resource[integration.RemoteTag] {
	return newWooResource[integration.RemoteTag](c, "/products/tags")
}

// Categories returns the product categories collection
func (c *WooClient) Categories() integration.Resource[integration.RemoteCategory] {
	return newWooResource[integration.RemoteCategory](c, "/products/categories")
}

// Products returns the products collection
func (c *WooClient) Products() integration.Resource[integration.RemoteProduct] {
	return newWooResource[integration.RemoteProduct](c, "/products")
}

// Variations returns the variations collection of one product
func (c *WooClient) Variations(productID int64) integration.Resource[integration.RemoteVariation] {
	return newWooResource[integration.RemoteVariation](c, fmt.Sprintf("/products/%d/variations", productID))
}

// ---------------------------------------------------------------------------
// Media
// ---------------------------------------------------------------------------

// UploadMedia stores a file in the WordPress media library. The body is a
// multipart/form-data request with a single "file" field.
func (c *WooClient) UploadMedia(ctx context.Context, filename, contentType string, body io.Reader) (*integration.RemoteMedia, error) {
	if c.config.Username == "" {
		return nil, fmt.Errorf("%w: media upload needs an application password", integration.ErrRemoteNotConfigured)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("woocommerce: failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, body); err != nil {
		return nil, fmt.Errorf("woocommerce: failed to read upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("woocommerce: failed to build upload: %w", err)
	}

	var media integration.RemoteMedia
	_, err = c.send(ctx, request{
		method:      http.MethodPost,
		path:        WPAPIPrefix + "/media",
		body:        buf.Bytes(),
		contentType: w.FormDataContentType(),
		headers:     map[string]string{"Content-Disposition": fmt.Sprintf("attachment; filename=%q", filename)},
	}, &media)
	if err != nil {
		return nil, err
	}
	return &media, nil
}

// ---------------------------------------------------------------------------
// Transport
// ---------------------------------------------------------------------------

// request describes one call to the remote API. path is absolute (it carries
// the API family prefix) so the credential scheme can be selected from it.
type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	headers     map[string]string
}

// errorBody is the error document WordPress and WooCommerce return
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// call encodes payload as JSON and sends a /wc/v3 request
func (c *WooClient) call(ctx context.Context, method, path string, query url.Values, payload, out any) (http.Header, error) {
	req := request{method: method, path: WCAPIPrefix + path, query: query}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("woocommerce: failed to encode request: %w", err)
		}
		req.body = body
		req.contentType = "application/json"
	}
	return c.send(ctx, req, out)
}

// send executes req and decodes the response into out. GET requests are
// retried with exponential backoff on transport errors, 429 and 5xx.
// Mutating requests are sent exactly once.
func (c *WooClient) send(ctx context.Context, req request, out any) (http.Header, error) {
	attempt := func() (http.Header, error) {
		header, err := c.doRequest(ctx, req, out)
		if err == nil {
			return header, nil
		}
		if !retryable(err) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	var (
		header http.Header
		err    error
	)
	if req.method == http.MethodGet && c.config.GetRetries > 0 {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = 200 * time.Millisecond
		b.MaxInterval = 5 * time.Second
		header, err = backoff.Retry(ctx, attempt,
			backoff.WithBackOff(b),
			backoff.WithMaxTries(uint(c.config.GetRetries+1)),
			backoff.WithNotify(func(err error, next time.Duration) {
				c.logger.Debug("Retrying remote GET",
					zap.String("path", req.path),
					zap.Duration("next", next),
					zap.Error(err))
			}),
		)
	} else {
		header, err = c.doRequest(ctx, req, out)
	}
	if err == nil {
		return header, nil
	}

	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Err
	}
	return nil, shared.NewRemoteError(err, "remote catalog %s %s failed: %v", req.method, req.path, err)
}

func (c *WooClient) doRequest(ctx context.Context, req request, out any) (http.Header, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := url.Values{}
	for k, v := range req.query {
		query[k] = append([]string(nil), v...)
	}
	user, pass, basic := c.config.Authorize(req.method, req.path, query)

	endpoint := c.config.BaseURL + req.path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("woocommerce: failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}
	if basic {
		httpReq.SetBasicAuth(user, pass)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("woocommerce: transport error: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("woocommerce: failed to read response: %w", err)
	}
	if int64(len(data)) > c.config.MaxResponseSize {
		return nil, integration.ErrRemoteResponseTooBig
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		remoteErr := &integration.RemoteError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil && eb.Message != "" {
			remoteErr.Code = eb.Code
			remoteErr.Message = eb.Message
		}
		return nil, remoteErr
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return nil, fmt.Errorf("%w: %v", integration.ErrRemoteInvalidResponse, err)
		}
	}
	return resp.Header, nil
}

// retryable reports whether a failed attempt may be repeated
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var remoteErr *integration.RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.Retryable()
	}
	if errors.Is(err, integration.ErrRemoteInvalidResponse) || errors.Is(err, integration.ErrRemoteResponseTooBig) {
		return false
	}
	// transport failures
	return true
}

func headerInt(h http.Header, key string) int {
	n, err := strconv.Atoi(h.Get(key))
	if err != nil {
		return 0
	}
	return n
}

var _ integration.CatalogGateway = (*WooClient)(nil)
