package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/order"
)

func newQueryUseCase(s *memStore) *QueryOrdersUseCase {
	return NewQueryOrdersUseCase(orderRepo{s}, historyRepo{s}, addressRepo{s}, userRepo{s}, voucherRepo{s}, s)
}

func TestQueryOrders_GetByID(t *testing.T) {
	s := seedStore()
	o := placeOrder(t, s, "SAVE200")
	uc := newQueryUseCase(s)

	t.Run("本人可见完整视图", func(t *testing.T) {
		detail, err := uc.GetByID(context.Background(), o.ID, 1, false)
		require.NoError(t, err)
		assert.Equal(t, o.ID, detail.Order.ID)
		assert.Equal(t, "SAVE200", detail.VoucherCode)
		require.NotNil(t, detail.Address)
	})

	t.Run("他人订单按不存在处理", func(t *testing.T) {
		_, err := uc.GetByID(context.Background(), o.ID, 2, false)
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})

	t.Run("管理角色可见任意订单", func(t *testing.T) {
		detail, err := uc.GetByID(context.Background(), o.ID, 99, true)
		require.NoError(t, err)
		assert.Equal(t, o.ID, detail.Order.ID)
	})
}

func TestQueryOrders_ListMine(t *testing.T) {
	s := seedStore()
	placeOrder(t, s, "")

	details, err := newQueryUseCase(s).ListMine(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, details, 1)

	details, err = newQueryUseCase(s).ListMine(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, details, "其他用户看不到别人的订单")
}

func TestQueryOrders_ListAll(t *testing.T) {
	s := seedStore()
	placeOrder(t, s, "")
	uc := newQueryUseCase(s)

	t.Run("按状态过滤", func(t *testing.T) {
		details, total, _, err := uc.ListAll(context.Background(), ListAllRequest{Status: "PENDING"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, details, 1)

		_, total, _, err = uc.ListAll(context.Background(), ListAllRequest{Status: "DELIVERED"})
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("按买家过滤兼容逗号分隔", func(t *testing.T) {
		_, total, _, err := uc.ListAll(context.Background(), ListAllRequest{UserIDs: []string{"1,2"}})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)

		_, total, _, err = uc.ListAll(context.Background(), ListAllRequest{UserIDs: []string{"2"}})
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("非法过滤参数", func(t *testing.T) {
		_, _, _, err := uc.ListAll(context.Background(), ListAllRequest{Status: "SHIPPING"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "未知的订单状态")

		_, _, _, err = uc.ListAll(context.Background(), ListAllRequest{PaymentStatus: "PARTIAL"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "未知的支付状态")

		_, _, _, err = uc.ListAll(context.Background(), ListAllRequest{UserIDs: []string{"abc"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "无效的用户ID")
	})

	t.Run("回传归一化后的分页参数", func(t *testing.T) {
		// page_size显式传0会绕过binding的默认值,这里必须收敛到合法区间,
		// 否则分页回显会出现除零
		_, total, params, err := uc.ListAll(context.Background(), ListAllRequest{Page: 0, PageSize: 0})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, 1, params.Page)
		assert.Equal(t, 20, params.PageSize)
	})

	t.Run("计数与取页在同一事务内执行", func(t *testing.T) {
		_, _, _, err := uc.ListAll(context.Background(), ListAllRequest{})
		require.NoError(t, err)
		assert.True(t, s.lastListInTx, "List必须在事务上下文中执行")
	})
}

func TestQueryOrders_GetHistory(t *testing.T) {
	s := seedStore()
	o := placeOrder(t, s, "")
	uc := newQueryUseCase(s)

	t.Run("本人可见审计历史", func(t *testing.T) {
		histories, err := uc.GetHistory(context.Background(), o.ID, 1, false)
		require.NoError(t, err)
		require.Len(t, histories, 1)
		assert.Equal(t, order.ActionCreateOrder, histories[0].Action)
	})

	t.Run("他人审计历史按订单不存在处理", func(t *testing.T) {
		_, err := uc.GetHistory(context.Background(), o.ID, 2, false)
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})
}

func TestListParams_Normalize(t *testing.T) {
	p := order.ListParams{Page: -1, PageSize: 9999, SortBy: "evil; DROP TABLE", SortOrder: "upward"}
	p.Normalize()

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PageSize)
	assert.Equal(t, "created_at", p.SortBy, "白名单外的排序字段收敛到默认值")
	assert.Equal(t, "desc", p.SortOrder)
}
