package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/order"
)

const adminID uint = 99

func TestUpdateStatus_HappyPath(t *testing.T) {
	s := seedStore()
	o := placeOrder(t, s, "")
	uc := NewUpdateStatusUseCase(orderRepo{s}, historyRepo{s}, s)

	// 走完整的履约链路
	for _, target := range []order.OrderStatus{
		order.OrderStatusConfirmed, order.OrderStatusShipped, order.OrderStatusDelivered,
	} {
		updated, err := uc.Execute(context.Background(), o.ID, adminID, target)
		require.NoError(t, err)
		assert.Equal(t, target, updated.Status)
	}

	stored, _ := orderRepo{s}.FindByID(context.Background(), o.ID)
	assert.Equal(t, order.OrderStatusDelivered, stored.Status)

	// 创建1条 + 流转3条
	histories, _ := historyRepo{s}.ListByOrderID(context.Background(), o.ID)
	require.Len(t, histories, 4)
	last := histories[len(histories)-1]
	assert.Equal(t, order.ActionUpdateStatus, last.Action)
	assert.Equal(t, "SHIPPED", *last.OldValue)
	assert.Equal(t, "DELIVERED", *last.NewValue)
	require.NotNil(t, last.UserID)
	assert.Equal(t, adminID, *last.UserID)
}

func TestUpdateStatus_Rejections(t *testing.T) {
	t.Run("非法目标状态", func(t *testing.T) {
		s := seedStore()
		o := placeOrder(t, s, "")
		_, err := NewUpdateStatusUseCase(orderRepo{s}, historyRepo{s}, s).
			Execute(context.Background(), o.ID, adminID, order.OrderStatus("SHIPPING"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "未知的订单状态")
	})

	t.Run("CANCELED目标必须走取消接口", func(t *testing.T) {
		s := seedStore()
		o := placeOrder(t, s, "")
		_, err := NewUpdateStatusUseCase(orderRepo{s}, historyRepo{s}, s).
			Execute(context.Background(), o.ID, adminID, order.OrderStatusCanceled)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "请通过取消接口取消订单")
	})

	t.Run("跳跃流转被状态机拒绝", func(t *testing.T) {
		s := seedStore()
		o := placeOrder(t, s, "")
		_, err := NewUpdateStatusUseCase(orderRepo{s}, historyRepo{s}, s).
			Execute(context.Background(), o.ID, adminID, order.OrderStatusDelivered)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "不允许从PENDING变更为DELIVERED")

		// 拒绝的流转不产生审计
		histories, _ := historyRepo{s}.ListByOrderID(context.Background(), o.ID)
		assert.Len(t, histories, 1)
	})

	t.Run("订单不存在", func(t *testing.T) {
		s := seedStore()
		_, err := NewUpdateStatusUseCase(orderRepo{s}, historyRepo{s}, s).
			Execute(context.Background(), 404, adminID, order.OrderStatusConfirmed)
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})
}

func TestUpdatePayment(t *testing.T) {
	strp := func(s string) *string { return &s }

	t.Run("支付状态与流水号各写一条审计", func(t *testing.T) {
		s := seedStore()
		o := placeOrder(t, s, "")
		uc := NewUpdatePaymentUseCase(orderRepo{s}, historyRepo{s}, s)

		updated, err := uc.Execute(context.Background(), UpdatePaymentRequest{
			OrderID:       o.ID,
			ActorID:       adminID,
			PaymentStatus: order.PaymentStatusPaid,
			TransactionID: strp("TXN-001"),
		})
		require.NoError(t, err)
		assert.Equal(t, order.PaymentStatusPaid, updated.PaymentStatus)
		require.NotNil(t, updated.TransactionID)
		assert.Equal(t, "TXN-001", *updated.TransactionID)

		histories, _ := historyRepo{s}.ListByOrderID(context.Background(), o.ID)
		require.Len(t, histories, 3, "创建+支付状态+流水号")
		assert.Equal(t, order.ActionUpdatePaymentStatus, histories[1].Action)
		assert.Equal(t, "payment_status", histories[1].Field)
		assert.Equal(t, order.ActionUpdateTransactionID, histories[2].Action)
		assert.Nil(t, histories[2].OldValue, "首次写入流水号时旧值为空")
		assert.Equal(t, "TXN-001", *histories[2].NewValue)
	})

	t.Run("无变化的重复请求不写审计", func(t *testing.T) {
		s := seedStore()
		o := placeOrder(t, s, "")
		uc := NewUpdatePaymentUseCase(orderRepo{s}, historyRepo{s}, s)

		req := UpdatePaymentRequest{
			OrderID:       o.ID,
			ActorID:       adminID,
			PaymentStatus: order.PaymentStatusPaid,
			TransactionID: strp("TXN-001"),
		}
		_, err := uc.Execute(context.Background(), req)
		require.NoError(t, err)

		before, _ := historyRepo{s}.ListByOrderID(context.Background(), o.ID)
		_, err = uc.Execute(context.Background(), req)
		require.NoError(t, err)
		after, _ := historyRepo{s}.ListByOrderID(context.Background(), o.ID)

		assert.Equal(t, len(before), len(after), "幂等重放不应追加审计")
	})

	t.Run("非法支付状态", func(t *testing.T) {
		s := seedStore()
		o := placeOrder(t, s, "")
		_, err := NewUpdatePaymentUseCase(orderRepo{s}, historyRepo{s}, s).
			Execute(context.Background(), UpdatePaymentRequest{
				OrderID: o.ID, ActorID: adminID, PaymentStatus: order.PaymentStatus("PARTIAL"),
			})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "未知的支付状态")
	})
}
