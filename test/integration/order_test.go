package integration

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 说明:订单模块集成测试(本项目的核心链路)
// 验证事务下单、价格快照、优惠券、状态机、补偿取消与审计记录
// 商品/优惠券数据来自scripts/seed.sql

func TestOrderCreate(t *testing.T) {
	RequireServer(t)

	_, token := RegisterTestUser(t, "order_creator")
	addressID := CreateTestAddress(t, token)

	t.Run("正常下单", func(t *testing.T) {
		orderReq := map[string]interface{}{
			"shipping_address_id": addressID,
			"payment_method":      "COD",
			"shipping_fee":        "50.00",
			"items": []map[string]interface{}{
				{"product_id": SeedProductID, "quantity": 3},
			},
		}
		resp := PostJSON(t, BaseURL+"/orders", orderReq, token)
		require.Equal(t, 0, resp.Code, "下单失败: %s", resp.Message)

		var data OrderData
		require.NoError(t, json.Unmarshal(resp.Data, &data))

		assert.NotZero(t, data.ID)
		assert.NotEmpty(t, data.OrderNo)
		assert.Equal(t, "PENDING", data.Status)
		assert.Equal(t, "PENDING", data.PaymentStatus)
		assert.Equal(t, "300", data.Total, "3×100.00=300.00")
		assert.Equal(t, "350", data.FinalTotal, "300.00+运费50.00")
		require.Len(t, data.Items, 1)
		assert.Equal(t, "100", data.Items[0].PriceAtOrder, "明细应快照下单时单价")

		t.Logf("✓ 订单创建成功, 订单号: %s, 实付: %s", data.OrderNo, data.FinalTotal)
	})

	t.Run("促销价快照", func(t *testing.T) {
		orderReq := map[string]interface{}{
			"shipping_address_id": addressID,
			"payment_method":      "COD",
			"items": []map[string]interface{}{
				{"product_id": SeedProductID2, "quantity": 1},
			},
		}
		resp := PostJSON(t, BaseURL+"/orders", orderReq, token)
		require.Equal(t, 0, resp.Code, "下单失败: %s", resp.Message)

		var data OrderData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, "250", data.Items[0].PriceAtOrder, "促销价优先于标价")
	})

	t.Run("使用优惠券", func(t *testing.T) {
		orderReq := map[string]interface{}{
			"shipping_address_id": addressID,
			"payment_method":      "BANK_TRANSFER",
			"voucher_code":        SeedVoucherCode,
			"items": []map[string]interface{}{
				{"product_id": SeedProductID, "quantity": 6},
			},
		}
		resp := PostJSON(t, BaseURL+"/orders", orderReq, token)
		require.Equal(t, 0, resp.Code, "下单失败: %s", resp.Message)

		var data OrderData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, "200", data.DiscountAmount, "固定减免200.00")
		assert.Equal(t, "400", data.FinalTotal, "600.00-200.00")
		assert.Equal(t, SeedVoucherCode, data.VoucherCode)
	})

	t.Run("未达优惠券门槛", func(t *testing.T) {
		orderReq := map[string]interface{}{
			"shipping_address_id": addressID,
			"payment_method":      "COD",
			"voucher_code":        SeedVoucherCode,
			"items": []map[string]interface{}{
				{"product_id": SeedProductID, "quantity": 1},
			},
		}
		resp := PostJSON(t, BaseURL+"/orders", orderReq, token)
		assert.NotEqual(t, 0, resp.Code, "未满500.00不应通过门槛")
	})

	t.Run("库存不足", func(t *testing.T) {
		orderReq := map[string]interface{}{
			"shipping_address_id": addressID,
			"payment_method":      "COD",
			"items": []map[string]interface{}{
				{"product_id": SeedProductID, "quantity": 999999},
			},
		}
		resp := PostJSON(t, BaseURL+"/orders", orderReq, token)
		assert.NotEqual(t, 0, resp.Code, "超出库存应拒单")
	})

	t.Run("空明细", func(t *testing.T) {
		orderReq := map[string]interface{}{
			"shipping_address_id": addressID,
			"payment_method":      "COD",
			"items":               []map[string]interface{}{},
		}
		resp := PostJSON(t, BaseURL+"/orders", orderReq, token)
		assert.NotEqual(t, 0, resp.Code)
	})

	t.Run("使用他人地址", func(t *testing.T) {
		_, otherToken := RegisterTestUser(t, "other_buyer")
		orderReq := map[string]interface{}{
			"shipping_address_id": addressID, // 属于order_creator
			"payment_method":      "COD",
			"items": []map[string]interface{}{
				{"product_id": SeedProductID, "quantity": 1},
			},
		}
		resp := PostJSON(t, BaseURL+"/orders", orderReq, otherToken)
		assert.NotEqual(t, 0, resp.Code, "他人地址应按不存在处理")
	})
}

func TestOrderVisibility(t *testing.T) {
	RequireServer(t)

	_, ownerToken := RegisterTestUser(t, "order_owner")
	addressID := CreateTestAddress(t, ownerToken)
	order := PlaceTestOrder(t, ownerToken, addressID)

	t.Run("本人查看订单详情", func(t *testing.T) {
		resp := GetJSON(t, fmt.Sprintf("%s/orders/%d", BaseURL, order.ID), ownerToken)
		require.Equal(t, 0, resp.Code, "查询失败: %s", resp.Message)

		var data OrderData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, order.OrderNo, data.OrderNo)
	})

	t.Run("他人订单按不存在处理", func(t *testing.T) {
		_, strangerToken := RegisterTestUser(t, "stranger")
		resp := GetJSON(t, fmt.Sprintf("%s/orders/%d", BaseURL, order.ID), strangerToken)
		assert.NotEqual(t, 0, resp.Code, "不应暴露他人订单的存在性")
	})

	t.Run("我的订单列表", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/orders/mine", ownerToken)
		require.Equal(t, 0, resp.Code)

		var list []OrderData
		require.NoError(t, json.Unmarshal(resp.Data, &list))
		assert.NotEmpty(t, list)
	})
}

func TestOrderCancel(t *testing.T) {
	RequireServer(t)

	_, token := RegisterTestUser(t, "order_canceler")
	addressID := CreateTestAddress(t, token)

	t.Run("取消待支付订单", func(t *testing.T) {
		order := PlaceTestOrder(t, token, addressID)

		resp := PutJSON(t, fmt.Sprintf("%s/orders/%d/cancel", BaseURL, order.ID), nil, token)
		require.Equal(t, 0, resp.Code, "取消失败: %s", resp.Message)

		var data OrderData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, "CANCELED", data.Status)

		// 终态订单不可再次取消
		again := PutJSON(t, fmt.Sprintf("%s/orders/%d/cancel", BaseURL, order.ID), nil, token)
		assert.NotEqual(t, 0, again.Code, "重复取消应被拒绝")
	})

	t.Run("取消写入审计记录", func(t *testing.T) {
		order := PlaceTestOrder(t, token, addressID)
		resp := PutJSON(t, fmt.Sprintf("%s/orders/%d/cancel", BaseURL, order.ID), nil, token)
		require.Equal(t, 0, resp.Code)

		histResp := GetJSON(t, fmt.Sprintf("%s/orders/%d/history", BaseURL, order.ID), token)
		require.Equal(t, 0, histResp.Code, "查询审计失败: %s", histResp.Message)

		var histories []HistoryData
		require.NoError(t, json.Unmarshal(histResp.Data, &histories))
		require.Len(t, histories, 2, "创建+取消各一条")

		// 接口按时间倒序返回
		assert.Equal(t, "CANCEL_ORDER", histories[0].Action)
		require.NotNil(t, histories[0].NewValue)
		assert.Equal(t, "CANCELED", *histories[0].NewValue)
		assert.Equal(t, "CREATE_ORDER", histories[1].Action)
	})
}

func TestOrderAdminOperations(t *testing.T) {
	RequireServer(t)
	adminToken := AdminToken(t)

	_, token := RegisterTestUser(t, "admin_target")
	addressID := CreateTestAddress(t, token)
	order := PlaceTestOrder(t, token, addressID)

	t.Run("普通用户无权访问管理接口", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/admin/orders", token)
		assert.NotEqual(t, 0, resp.Code)
	})

	t.Run("状态流转", func(t *testing.T) {
		url := fmt.Sprintf("%s/admin/orders/%d/status", BaseURL, order.ID)

		resp := PutJSON(t, url, map[string]string{"status": "CONFIRMED"}, adminToken)
		require.Equal(t, 0, resp.Code, "确认订单失败: %s", resp.Message)

		// 跳跃流转被状态机拒绝
		bad := PutJSON(t, url, map[string]string{"status": "DELIVERED"}, adminToken)
		assert.NotEqual(t, 0, bad.Code, "CONFIRMED不能直接到DELIVERED")

		resp = PutJSON(t, url, map[string]string{"status": "SHIPPED"}, adminToken)
		require.Equal(t, 0, resp.Code)
		resp = PutJSON(t, url, map[string]string{"status": "DELIVERED"}, adminToken)
		require.Equal(t, 0, resp.Code)
	})

	t.Run("更新支付状态与流水号", func(t *testing.T) {
		url := fmt.Sprintf("%s/admin/orders/%d/payment-status", BaseURL, order.ID)
		resp := PutJSON(t, url, map[string]interface{}{
			"payment_status": "PAID",
			"transaction_id": "TXN-INTEGRATION-001",
		}, adminToken)
		require.Equal(t, 0, resp.Code, "更新支付状态失败: %s", resp.Message)

		var data OrderData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, "PAID", data.PaymentStatus)
	})

	t.Run("订单列表过滤", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/admin/orders?status=DELIVERED&page=1&page_size=10", adminToken)
		require.Equal(t, 0, resp.Code, "查询列表失败: %s", resp.Message)
	})
}
