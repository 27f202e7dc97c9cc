package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrConfigInvalid    = errors.New("razorpay config invalid")
	ErrRequestFailed    = errors.New("razorpay request failed")
	ErrResponseInvalid  = errors.New("razorpay response invalid")
	ErrSignatureInvalid = errors.New("razorpay signature invalid")
	ErrAmountInvalid    = errors.New("razorpay amount invalid")
)

// 网关侧订单/支付状态常量
const (
	StatusCreated    = "created"
	StatusAttempted  = "attempted"
	StatusAuthorized = "authorized"
	StatusCaptured   = "captured"
	StatusRefunded   = "refunded"
	StatusFailed     = "failed"
	StatusPaid       = "paid"
)

const defaultBaseURL = "https://api.razorpay.com"

// Config Razorpay 配置
type Config struct {
	KeyID       string `json:"key_id"`       // API Key ID
	KeySecret   string `json:"key_secret"`   // API Key Secret
	BaseURL     string `json:"base_url"`     // API 地址，默认 https://api.razorpay.com
	CheckoutURL string `json:"checkout_url"` // 收银台页面地址，网关订单号以 query 传入
}

// ParseConfig 解析配置
func ParseConfig(raw map[string]interface{}) (*Config, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: empty config", ErrConfigInvalid)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal config failed", ErrConfigInvalid)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: unmarshal config failed", ErrConfigInvalid)
	}
	cfg.normalize()
	return &cfg, nil
}

// ValidateConfig 校验配置
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.KeyID) == "" {
		return fmt.Errorf("%w: key_id is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.KeySecret) == "" {
		return fmt.Errorf("%w: key_secret is required", ErrConfigInvalid)
	}
	return nil
}

func (c *Config) normalize() {
	c.KeyID = strings.TrimSpace(c.KeyID)
	c.KeySecret = strings.TrimSpace(c.KeySecret)
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.CheckoutURL = strings.TrimSpace(c.CheckoutURL)
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
}

// CreateOrderRequest 创建网关订单请求
type CreateOrderRequest struct {
	Amount   decimal.Decimal // 订单金额（主币单位）
	Currency string
	Receipt  string // 商户订单号
	Notes    map[string]string
}

// GatewayOrder 网关订单
type GatewayOrder struct {
	ID          string // 网关订单号（order_xxx）
	Status      string
	AmountPaise int64
	Currency    string
	Receipt     string
	RedirectURL string // 收银台跳转地址
}

// Client Razorpay API 客户端
type Client struct {
	cfg        *Config
	httpClient *http.Client
}

// NewClient 创建客户端
func NewClient(cfg *Config) (*Client, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// CreateOrder 创建网关订单。金额以最小货币单位（paise）上送，
// 必须能被无损换算，避免分位截断。
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*GatewayOrder, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrAmountInvalid
	}
	paise := req.Amount.Mul(decimal.NewFromInt(100))
	if !paise.Equal(paise.Truncate(0)) {
		return nil, fmt.Errorf("%w: sub-paise amount %s", ErrAmountInvalid, req.Amount.String())
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "INR"
	}

	params := map[string]interface{}{
		"amount":   paise.IntPart(),
		"currency": currency,
		"receipt":  req.Receipt,
	}
	if len(req.Notes) > 0 {
		params["notes"] = req.Notes
	}

	respBytes, err := c.doRequest(ctx, http.MethodPost, "/v1/orders", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		ID       string `json:"id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Receipt  string `json:"receipt"`
		Status   string `json:"status"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("%w: missing order id", ErrResponseInvalid)
	}

	return &GatewayOrder{
		ID:          resp.ID,
		Status:      resp.Status,
		AmountPaise: resp.Amount,
		Currency:    resp.Currency,
		Receipt:     resp.Receipt,
		RedirectURL: c.redirectURL(resp.ID),
	}, nil
}

// VerifySignature 校验支付完成签名。
// 签名为 HMAC-SHA256(order_id + "|" + payment_id, key_secret) 的十六进制串。
func (c *Client) VerifySignature(gatewayOrderID, paymentID, signature string) error {
	expected := SignPayment(gatewayOrderID, paymentID, c.cfg.KeySecret)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature)))) {
		return ErrSignatureInvalid
	}
	return nil
}

// FetchOrderStatus 查询网关订单当前支付状态。
// 返回网关侧状态词汇与对应支付流水 ID；尚无支付记录时返回订单自身状态。
func (c *Client) FetchOrderStatus(ctx context.Context, gatewayOrderID string) (string, string, error) {
	gatewayOrderID = strings.TrimSpace(gatewayOrderID)
	if gatewayOrderID == "" {
		return "", "", fmt.Errorf("%w: empty order id", ErrRequestFailed)
	}

	respBytes, err := c.doRequest(ctx, http.MethodGet, "/v1/orders/"+gatewayOrderID+"/payments", nil)
	if err != nil {
		return "", "", err
	}

	var resp struct {
		Count int `json:"count"`
		Items []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"items"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}

	if len(resp.Items) == 0 {
		return StatusCreated, "", nil
	}

	// 多笔支付尝试时按结果优先级取最终态
	priority := []string{StatusCaptured, StatusAuthorized, StatusRefunded, StatusFailed}
	for _, want := range priority {
		for _, item := range resp.Items {
			if strings.EqualFold(item.Status, want) {
				return want, item.ID, nil
			}
		}
	}
	last := resp.Items[len(resp.Items)-1]
	return strings.ToLower(last.Status), last.ID, nil
}

// SignPayment 计算支付完成签名
func SignPayment(gatewayOrderID, paymentID, keySecret string) string {
	mac := hmac.New(sha256.New, []byte(keySecret))
	mac.Write([]byte(strings.TrimSpace(gatewayOrderID) + "|" + strings.TrimSpace(paymentID)))
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *Client) redirectURL(gatewayOrderID string) string {
	if c.cfg.CheckoutURL == "" {
		return ""
	}
	separator := "?"
	if strings.Contains(c.cfg.CheckoutURL, "?") {
		separator = "&"
	}
	return c.cfg.CheckoutURL + separator + "gateway_order=" + gatewayOrderID
}

func (c *Client) doRequest(ctx context.Context, method, path string, params map[string]interface{}) ([]byte, error) {
	var bodyReader io.Reader
	if params != nil {
		body, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
		}
		bodyReader = strings.NewReader(string(body))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.SetBasicAuth(c.cfg.KeyID, c.cfg.KeySecret)
	req.Header.Set("Accept", "application/json")
	if params != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error struct {
				Code        string `json:"code"`
				Description string `json:"description"`
			} `json:"error"`
		}
		if json.Unmarshal(respBytes, &apiErr) == nil && apiErr.Error.Description != "" {
			return nil, fmt.Errorf("%w: %s (%s)", ErrRequestFailed, apiErr.Error.Description, apiErr.Error.Code)
		}
		return nil, fmt.Errorf("%w: http status %d", ErrRequestFailed, resp.StatusCode)
	}
	return respBytes, nil
}
