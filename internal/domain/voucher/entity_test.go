package voucher

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, _ := decimal.NewFromString(s)
	return v
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func intp(n int) *int { return &n }

var now = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

// newActiveVoucher 有效期覆盖now的启用状态基础券
func newActiveVoucher(vt Type) *Voucher {
	return &Voucher{
		ID:        1,
		Code:      "SUMMER15",
		Type:      vt,
		StartDate: now.AddDate(0, -1, 0),
		EndDate:   now.AddDate(0, 1, 0),
		IsActive:  true,
	}
}

// TestVoucher_Validate 按校验顺序逐条验证拒用原因
func TestVoucher_Validate(t *testing.T) {
	lines := []LineRef{
		{ProductID: 1, CategoryID: 10},
		{ProductID: 2, CategoryID: 20},
	}

	t.Run("未启用", func(t *testing.T) {
		v := newActiveVoucher(TypeFixed)
		v.IsActive = false
		err := v.Validate(now, d("100000"), lines)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "未启用")
	})

	t.Run("使用次数耗尽", func(t *testing.T) {
		v := newActiveVoucher(TypeFixed)
		v.UsageLimit = intp(100)
		v.UsedCount = 100
		err := v.Validate(now, d("100000"), lines)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "已被领完")
	})

	t.Run("不限次数", func(t *testing.T) {
		v := newActiveVoucher(TypeFixed)
		v.UsedCount = 999999
		assert.NoError(t, v.Validate(now, d("100000"), lines))
	})

	t.Run("未到生效时间", func(t *testing.T) {
		v := newActiveVoucher(TypeFixed)
		v.StartDate = now.Add(time.Hour)
		err := v.Validate(now, d("100000"), lines)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "不在有效期内")
	})

	t.Run("已过期", func(t *testing.T) {
		v := newActiveVoucher(TypeFixed)
		v.EndDate = now.Add(-time.Hour)
		err := v.Validate(now, d("100000"), lines)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "不在有效期内")
	})

	t.Run("未满最低订单金额", func(t *testing.T) {
		v := newActiveVoucher(TypeFixed)
		v.MinimumOrderValue = dp("50000")
		err := v.Validate(now, d("49999"), lines)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "需订单满")
	})

	t.Run("刚好满足最低订单金额", func(t *testing.T) {
		v := newActiveVoucher(TypeFixed)
		v.MinimumOrderValue = dp("50000")
		assert.NoError(t, v.Validate(now, d("50000"), lines))
	})

	t.Run("命中排除商品", func(t *testing.T) {
		v := newActiveVoucher(TypeFixed)
		v.ExcludedProducts = []uint{2}
		err := v.Validate(now, d("100000"), lines)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "不适用于订单中的部分商品")
	})

	t.Run("部分明细不在适用分类", func(t *testing.T) {
		v := newActiveVoucher(TypeFixed)
		v.ApplicableCategories = []uint{10}
		err := v.Validate(now, d("100000"), lines)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "仅适用于指定分类商品")
	})

	t.Run("所有明细命中适用分类", func(t *testing.T) {
		v := newActiveVoucher(TypeFixed)
		v.ApplicableCategories = []uint{10, 20}
		assert.NoError(t, v.Validate(now, d("100000"), lines))
	})

	t.Run("空分类为全场通用", func(t *testing.T) {
		v := newActiveVoucher(TypeFixed)
		assert.NoError(t, v.Validate(now, d("100000"), lines))
	})
}

// TestVoucher_ComputeDiscount_Percent 比例折扣及封顶
func TestVoucher_ComputeDiscount_Percent(t *testing.T) {
	v := newActiveVoucher(TypePercent)
	v.DiscountPercent = d("15")

	t.Run("无封顶", func(t *testing.T) {
		got := v.ComputeDiscount(d("20000"))
		assert.True(t, got.Equal(d("3000")), "20000×15%%=3000, 实际%s", got)
	})

	t.Run("触发封顶", func(t *testing.T) {
		v.MaxDiscount = dp("5000")
		got := v.ComputeDiscount(d("55000"))
		assert.True(t, got.Equal(d("5000")), "55000×15%%=8250,封顶5000, 实际%s", got)
	})

	t.Run("未触发封顶", func(t *testing.T) {
		v.MaxDiscount = dp("5000")
		got := v.ComputeDiscount(d("20000"))
		assert.True(t, got.Equal(d("3000")))
	})
}

// TestVoucher_ComputeDiscount_Fixed 固定减免
func TestVoucher_ComputeDiscount_Fixed(t *testing.T) {
	v := newActiveVoucher(TypeFixed)
	v.DiscountAmount = d("20000")

	got := v.ComputeDiscount(d("55000"))
	assert.True(t, got.Equal(d("20000")))
}

// TestVoucher_ComputeDiscount_CappedAtSubtotal 优惠不超过小计
func TestVoucher_ComputeDiscount_CappedAtSubtotal(t *testing.T) {
	v := newActiveVoucher(TypeFixed)
	v.DiscountAmount = d("20000")

	got := v.ComputeDiscount(d("15000"))
	assert.True(t, got.Equal(d("15000")), "减免额超过小计时按小计计, 实际%s", got)
}

// TestVoucher_ComputeDiscount_NeverNegative 异常配置下优惠不为负
func TestVoucher_ComputeDiscount_NeverNegative(t *testing.T) {
	v := newActiveVoucher(TypeFixed)
	v.DiscountAmount = d("-100")

	assert.True(t, v.ComputeDiscount(d("10000")).IsZero())
}

// TestVoucher_ComputeDiscount_UnknownType 未知类型不打折
func TestVoucher_ComputeDiscount_UnknownType(t *testing.T) {
	v := newActiveVoucher(Type("MYSTERY"))
	v.DiscountAmount = d("20000")

	assert.True(t, v.ComputeDiscount(d("10000")).IsZero())
}
