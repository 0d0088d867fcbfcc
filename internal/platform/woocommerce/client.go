package woocommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/chargeback-backend/internal/modules/mapping"
	"github.com/yungbote/chargeback-backend/internal/observability"
	"github.com/yungbote/chargeback-backend/internal/platform/apierr"
	"github.com/yungbote/chargeback-backend/internal/platform/envutil"
	"github.com/yungbote/chargeback-backend/internal/platform/logger"
)

const (
	serviceName = "woocommerce"
	orderPath   = "/wp-json/pfm-chargebacks/v1/order/"
	maxBody     = 4 << 20
)

// Client talks to the pfm-chargebacks companion plugin, which resolves field
// keys against a single order.
type Client interface {
	// GetOrder returns the plugin's default order payload.
	GetOrder(ctx context.Context, orderID string) (map[string]any, error)
	// ResolveFields asks for exactly the given field keys in one request.
	ResolveFields(ctx context.Context, orderID string, fields []string) (*Resolution, error)
}

// Resolution is one resolver answer. Raw is the payload as decoded; Values
// holds the stringified, normalized values with null or empty ones omitted.
type Resolution struct {
	Raw    map[string]any
	Values map[string]string
}

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		BaseURL: envutil.String("WOOCOMMERCE_URL", ""),
		Token:   envutil.String("WOOCOMMERCE_TOKEN", ""),
		Timeout: time.Duration(envutil.Int("WOOCOMMERCE_TIMEOUT_SECONDS", 30)) * time.Second,
	}
}

func NewFromEnv(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv(), nil)
}

// New validates cfg. httpClient may be nil.
func New(log *logger.Logger, cfg Config, httpClient *http.Client) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("missing WOOCOMMERCE_URL")
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("missing WOOCOMMERCE_TOKEN")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &client{
		log:        log.With("client", "WooCommerceClient"),
		cfg:        cfg,
		httpClient: httpClient,
		now:        time.Now,
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
	now        func() time.Time
}

func (c *client) GetOrder(ctx context.Context, orderID string) (map[string]any, error) {
	body, err := c.get(ctx, orderID, nil)
	if err != nil {
		return nil, err
	}
	return decodeObject(body)
}

func (c *client) ResolveFields(ctx context.Context, orderID string, fields []string) (*Resolution, error) {
	if len(fields) == 0 {
		return &Resolution{Raw: map[string]any{}, Values: map[string]string{}}, nil
	}
	body, err := c.get(ctx, orderID, fields)
	if err != nil {
		return nil, err
	}
	raw, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		s, ok := stringify(v)
		if !ok {
			continue
		}
		if s = mapping.NormalizeValue(s); s != "" {
			out[k] = s
		}
	}
	c.log.Debug("order fields resolved", "order_id", orderID, "requested", len(fields), "returned", len(out))
	return &Resolution{Raw: raw, Values: out}, nil
}

func (c *client) get(ctx context.Context, orderID string, fields []string) ([]byte, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, apierr.Validation("order id is required")
	}

	q := url.Values{}
	q.Set("token", c.cfg.Token)
	if len(fields) > 0 {
		q.Set("fields", strings.Join(fields, ","))
	}
	// The plugin sits behind page caches; a unique query defeats them.
	q.Set("_", strconv.FormatInt(c.now().UnixMilli(), 10))
	endpoint := c.cfg.BaseURL + orderPath + url.PathEscape(orderID) + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build woocommerce request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.Current().ObserveRemote(serviceName, "error", time.Since(start))
		return nil, apierr.Remote(serviceName, 0, "", err)
	}
	defer resp.Body.Close()
	observability.Current().ObserveRemote(serviceName, strconv.Itoa(resp.StatusCode), time.Since(start))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, apierr.Remote(serviceName, resp.StatusCode, "", fmt.Errorf("read body: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("woocommerce error", "order_id", orderID, "status", resp.StatusCode)
		return nil, apierr.Remote(serviceName, resp.StatusCode, string(body), nil)
	}
	return body, nil
}

// decodeObject accepts a JSON object; PHP encodes an empty associative array
// as [] so any array is treated as an empty object.
func decodeObject(body []byte) (map[string]any, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] == '[' || bytes.Equal(trimmed, []byte("null")) {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	out := map[string]any{}
	if err := dec.Decode(&out); err != nil {
		return nil, apierr.Remote(serviceName, http.StatusOK, "", fmt.Errorf("decode order payload: %w", err))
	}
	return out, nil
}

func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}
