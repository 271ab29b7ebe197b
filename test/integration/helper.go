package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 说明:集成测试的通用辅助工具
// 测试需要一个运行中的服务(make run)和已执行的scripts/seed.sql;
// 服务不可达时测试跳过而非失败,保证单元测试可以独立运行

const (
	// BaseURL API基础URL
	BaseURL = "http://localhost:8080/api/v1"
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second
)

// seed.sql预置的商品与优惠券
const (
	SeedProductID   uint = 1  // 耶加雪菲,标价100.00
	SeedVariantID   uint = 11 // 500g装,标价180.00
	SeedProductID2  uint = 3  // 瑰夏,标价300.00促销价250.00
	SeedVoucherCode      = "SAVE200"
)

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// RegisterData 注册响应数据
type RegisterData struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
}

// LoginData 登录响应数据
type LoginData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AddressData 收货地址响应数据
type AddressData struct {
	ID        uint   `json:"id"`
	Recipient string `json:"recipient"`
	Phone     string `json:"phone"`
}

// OrderData 订单响应数据
type OrderData struct {
	ID             uint            `json:"id"`
	OrderNo        string          `json:"order_no"`
	Status         string          `json:"status"`
	PaymentStatus  string          `json:"payment_status"`
	Total          string          `json:"total"`
	ShippingFee    string          `json:"shipping_fee"`
	DiscountAmount string          `json:"discount_amount"`
	FinalTotal     string          `json:"final_total"`
	VoucherCode    string          `json:"voucher_code"`
	Items          []OrderItemData `json:"items"`
}

// OrderItemData 订单明细响应数据
type OrderItemData struct {
	ProductID    uint   `json:"product_id"`
	Quantity     int    `json:"quantity"`
	PriceAtOrder string `json:"price_at_order"`
	SubTotal     string `json:"sub_total"`
}

// HistoryData 订单审计响应数据
type HistoryData struct {
	Action   string  `json:"action"`
	Field    string  `json:"field"`
	OldValue *string `json:"old_value"`
	NewValue *string `json:"new_value"`
}

// RequireServer 服务不可达时跳过测试
func RequireServer(t *testing.T) {
	t.Helper()
	conn, err := net.DialTimeout("tcp", "localhost:8080", time.Second)
	if err != nil {
		t.Skip("API服务未启动,跳过集成测试(make run后重试)")
	}
	conn.Close()
}

// AdminToken 管理端操作的Token,通过环境变量注入
// (STAFF/ADMIN账号由运营开通,不走注册接口)
func AdminToken(t *testing.T) string {
	t.Helper()
	token := os.Getenv("COFFEECRAFT_TEST_ADMIN_TOKEN")
	if token == "" {
		t.Skip("未设置COFFEECRAFT_TEST_ADMIN_TOKEN,跳过管理端测试")
	}
	return token
}

// doJSON 发送请求并解析统一响应
func doJSON(t *testing.T, method, url string, data interface{}, token string) *Response {
	t.Helper()

	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err, "创建HTTP请求失败")

	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	err = json.Unmarshal(raw, &result)
	require.NoError(t, err, "解析JSON响应失败: %s", string(raw))

	return &result
}

// PostJSON 发送POST请求并解析JSON响应
func PostJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return doJSON(t, http.MethodPost, url, data, token)
}

// PutJSON 发送PUT请求并解析JSON响应
func PutJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return doJSON(t, http.MethodPut, url, data, token)
}

// GetJSON 发送GET请求并解析JSON响应
func GetJSON(t *testing.T, url string, token string) *Response {
	return doJSON(t, http.MethodGet, url, nil, token)
}

// GenerateTestEmail 生成唯一的测试邮箱(时间戳避免重复运行时冲突)
func GenerateTestEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@test.com", prefix, time.Now().UnixNano())
}

// RegisterTestUser 注册测试用户并返回Token
func RegisterTestUser(t *testing.T, nickname string) (email string, token string) {
	t.Helper()

	email = GenerateTestEmail(nickname)
	registerReq := map[string]string{
		"email":    email,
		"password": "Test1234",
		"nickname": nickname,
	}
	registerResp := PostJSON(t, BaseURL+"/users/register", registerReq, "")
	require.Equal(t, 0, registerResp.Code, "注册失败: %s", registerResp.Message)

	loginReq := map[string]string{
		"email":    email,
		"password": "Test1234",
	}
	loginResp := PostJSON(t, BaseURL+"/users/login", loginReq, "")
	require.Equal(t, 0, loginResp.Code, "登录失败: %s", loginResp.Message)

	var loginData LoginData
	err := json.Unmarshal(loginResp.Data, &loginData)
	require.NoError(t, err, "解析登录响应失败")

	return email, loginData.AccessToken
}

// CreateTestAddress 创建收货地址并返回地址ID
func CreateTestAddress(t *testing.T, token string) uint {
	t.Helper()

	addressReq := map[string]interface{}{
		"recipient": "测试收件人",
		"phone":     "0912345678",
		"street":    "咖啡街1号",
		"city":      "测试市",
	}
	resp := PostJSON(t, BaseURL+"/addresses", addressReq, token)
	require.Equal(t, 0, resp.Code, "创建地址失败: %s", resp.Message)

	var data AddressData
	err := json.Unmarshal(resp.Data, &data)
	require.NoError(t, err, "解析地址响应失败")
	return data.ID
}

// PlaceTestOrder 下一张单(购买预置商品1件)并返回订单数据
func PlaceTestOrder(t *testing.T, token string, addressID uint) *OrderData {
	t.Helper()

	orderReq := map[string]interface{}{
		"shipping_address_id": addressID,
		"payment_method":      "COD",
		"items": []map[string]interface{}{
			{"product_id": SeedProductID, "quantity": 1},
		},
	}
	resp := PostJSON(t, BaseURL+"/orders", orderReq, token)
	require.Equal(t, 0, resp.Code, "下单失败: %s", resp.Message)

	var data OrderData
	err := json.Unmarshal(resp.Data, &data)
	require.NoError(t, err, "解析订单响应失败")
	return &data
}
