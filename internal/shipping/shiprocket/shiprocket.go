package shiprocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

var (
	ErrConfigInvalid   = errors.New("shiprocket config invalid")
	ErrAuthFailed      = errors.New("shiprocket auth failed")
	ErrRequestFailed   = errors.New("shiprocket request failed")
	ErrResponseInvalid = errors.New("shiprocket response invalid")
)

const (
	defaultBaseURL = "https://apiv2.shiprocket.in"

	// token 官方有效期 10 天，提前刷新留余量
	tokenTTL = 9 * 24 * time.Hour
)

// Config Shiprocket 配置
type Config struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	BaseURL        string `json:"base_url"`        // API 地址，默认 https://apiv2.shiprocket.in
	PickupLocation string `json:"pickup_location"` // 后台登记的揽收点名称
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
	if strings.TrimSpace(cfg.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.Password) == "" {
		return fmt.Errorf("%w: password is required", ErrConfigInvalid)
	}
	return nil
}

func (c *Config) normalize() {
	c.Email = strings.TrimSpace(c.Email)
	c.Password = strings.TrimSpace(c.Password)
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.PickupLocation = strings.TrimSpace(c.PickupLocation)
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.PickupLocation == "" {
		c.PickupLocation = "Primary"
	}
}

// ShipmentItem 面单明细行
type ShipmentItem struct {
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	Units    int    `json:"units"`
	Price    string `json:"selling_price"`
	Discount string `json:"discount,omitempty"`
}

// CreateShipmentRequest 创建面单请求
type CreateShipmentRequest struct {
	OrderNo       string
	OrderDate     time.Time
	CustomerName  string
	Email         string
	Phone         string
	Address       string
	City          string
	State         string
	Pincode       string
	Country       string
	PaymentMethod string // Prepaid / COD
	SubTotal      string
	WeightKG      float64
	Items         []ShipmentItem
}

// CreateShipmentResult 创建面单结果
type CreateShipmentResult struct {
	ShipmentID  int64
	OrderID     int64
	Status      string
	AWBCode     string
	CourierName string
}

// TrackingActivity 物流轨迹节点
type TrackingActivity struct {
	Date     string `json:"date"`
	Status   string `json:"status"`
	Activity string `json:"activity"`
	Location string `json:"location"`
}

// TrackingResult 物流轨迹
type TrackingResult struct {
	AWBCode       string
	CurrentStatus string
	CourierName   string
	ETD           string
	Activities    []TrackingActivity
}

// Client Shiprocket API 客户端。token 进程内缓存并按有效期自动刷新。
type Client struct {
	cfg        *Config
	httpClient *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient 创建客户端
func NewClient(cfg *Config) (*Client, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// CreateShipment 创建面单（adhoc 渠道）
func (c *Client) CreateShipment(ctx context.Context, req CreateShipmentRequest) (*CreateShipmentResult, error) {
	if strings.TrimSpace(req.OrderNo) == "" || len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: order_no and items are required", ErrRequestFailed)
	}

	orderDate := req.OrderDate
	if orderDate.IsZero() {
		orderDate = time.Now()
	}
	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "Prepaid"
	}
	weight := req.WeightKG
	if weight <= 0 {
		weight = 0.5
	}

	params := map[string]interface{}{
		"order_id":              req.OrderNo,
		"order_date":            orderDate.Format("2006-01-02 15:04"),
		"pickup_location":       c.cfg.PickupLocation,
		"billing_customer_name": req.CustomerName,
		"billing_last_name":     "",
		"billing_address":       req.Address,
		"billing_city":          req.City,
		"billing_pincode":       req.Pincode,
		"billing_state":         req.State,
		"billing_country":       req.Country,
		"billing_email":         req.Email,
		"billing_phone":         req.Phone,
		"shipping_is_billing":   true,
		"order_items":           req.Items,
		"payment_method":        paymentMethod,
		"sub_total":             req.SubTotal,
		"length":                10,
		"breadth":               10,
		"height":                10,
		"weight":                weight,
	}

	respBytes, err := c.doRequest(ctx, http.MethodPost, "/v1/external/orders/create/adhoc", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		OrderID     int64  `json:"order_id"`
		ShipmentID  int64  `json:"shipment_id"`
		Status      string `json:"status"`
		AWBCode     string `json:"awb_code"`
		CourierName string `json:"courier_name"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if resp.ShipmentID == 0 {
		return nil, fmt.Errorf("%w: missing shipment id", ErrResponseInvalid)
	}

	return &CreateShipmentResult{
		ShipmentID:  resp.ShipmentID,
		OrderID:     resp.OrderID,
		Status:      resp.Status,
		AWBCode:     resp.AWBCode,
		CourierName: resp.CourierName,
	}, nil
}

// AssignAWB 为面单分配运单号
func (c *Client) AssignAWB(ctx context.Context, shipmentID int64) (awbCode, courierName string, err error) {
	if shipmentID == 0 {
		return "", "", fmt.Errorf("%w: empty shipment id", ErrRequestFailed)
	}

	respBytes, err := c.doRequest(ctx, http.MethodPost, "/v1/external/courier/assign/awb", map[string]interface{}{
		"shipment_id": shipmentID,
	})
	if err != nil {
		return "", "", err
	}

	var resp struct {
		AWBAssignStatus int `json:"awb_assign_status"`
		Response        struct {
			Data struct {
				AWBCode     string `json:"awb_code"`
				CourierName string `json:"courier_name"`
			} `json:"data"`
		} `json:"response"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if resp.AWBAssignStatus != 1 || resp.Response.Data.AWBCode == "" {
		return "", "", fmt.Errorf("%w: awb assign rejected", ErrResponseInvalid)
	}
	return resp.Response.Data.AWBCode, resp.Response.Data.CourierName, nil
}

// Track 按运单号查询物流轨迹
func (c *Client) Track(ctx context.Context, awbCode string) (*TrackingResult, error) {
	awbCode = strings.TrimSpace(awbCode)
	if awbCode == "" {
		return nil, fmt.Errorf("%w: empty awb code", ErrRequestFailed)
	}

	respBytes, err := c.doRequest(ctx, http.MethodGet, "/v1/external/courier/track/awb/"+awbCode, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		TrackingData struct {
			TrackStatus   int    `json:"track_status"`
			ShipmentTrack []struct {
				AWBCode       string `json:"awb_code"`
				CurrentStatus string `json:"current_status"`
				CourierName   string `json:"courier_name"`
				EDD           string `json:"edd"`
			} `json:"shipment_track"`
			ShipmentTrackActivities []TrackingActivity `json:"shipment_track_activities"`
		} `json:"tracking_data"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}

	result := &TrackingResult{
		AWBCode:    awbCode,
		Activities: resp.TrackingData.ShipmentTrackActivities,
	}
	if len(resp.TrackingData.ShipmentTrack) > 0 {
		track := resp.TrackingData.ShipmentTrack[0]
		result.CurrentStatus = track.CurrentStatus
		result.CourierName = track.CourierName
		result.ETD = track.EDD
	}
	return result, nil
}

func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	body, err := json.Marshal(map[string]string{
		"email":    c.cfg.Email,
		"password": c.cfg.Password,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/external/auth/login", strings.NewReader(string(body)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: http status %d", ErrAuthFailed, resp.StatusCode)
	}

	var authResp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(respBytes, &authResp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	if authResp.Token == "" {
		return "", fmt.Errorf("%w: empty token", ErrAuthFailed)
	}

	c.token = authResp.Token
	c.tokenExpiry = time.Now().Add(tokenTTL)
	return c.token, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, params map[string]interface{}) ([]byte, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

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
	req.Header.Set("Authorization", "Bearer "+token)
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

	if resp.StatusCode == http.StatusUnauthorized {
		// token 失效则下次重新登录
		c.mu.Lock()
		c.token = ""
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: unauthorized", ErrRequestFailed)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(respBytes, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("%w: %s", ErrRequestFailed, apiErr.Message)
		}
		return nil, fmt.Errorf("%w: http status %d", ErrRequestFailed, resp.StatusCode)
	}
	return respBytes, nil
}
