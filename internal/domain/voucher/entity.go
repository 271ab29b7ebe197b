package voucher

import (
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/sixxson/coffee-craft-service-sub000/pkg/errors"
)

// Type 优惠券类型
type Type string

const (
	TypePercent Type = "PERCENT" // 按比例折扣(可设封顶)
	TypeFixed   Type = "FIXED"   // 固定金额减免
)

// Voucher 优惠券实体
// 设计说明:
// 1. UsageLimit为nil表示不限次数;UsedCount的增减必须在下单/取消事务内完成
// 2. ApplicableCategories非空时,订单中所有明细商品的分类都必须命中(AND语义)
// 3. ExcludedProducts命中任意一个明细商品,整张券拒用(不做部分排除)
type Voucher struct {
	ID                   uint
	Code                 string // 券码(全局唯一)
	Type                 Type
	DiscountPercent      decimal.Decimal  // PERCENT类型:折扣百分比(如15表示15%)
	DiscountAmount       decimal.Decimal  // FIXED类型:减免金额
	MaxDiscount          *decimal.Decimal // PERCENT类型的封顶金额(可空)
	StartDate            time.Time
	EndDate              time.Time
	UsageLimit           *int // 可用总次数(nil为不限)
	UsedCount            int
	MinimumOrderValue    *decimal.Decimal // 最低订单金额门槛(可空)
	IsActive             bool
	ApplicableCategories []uint // 适用分类(空表示全场通用)
	ExcludedProducts     []uint // 排除商品
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// LineRef 参与校验的订单明细引用(已解析出分类)
type LineRef struct {
	ProductID  uint
	CategoryID uint
}

// Validate 校验优惠券是否适用于当前订单
// 校验顺序(快速失败,消息区分具体原因,错误码统一为优惠券不可用):
// 1. 启用状态 → 2. 使用次数 → 3. 有效期 → 4. 最低订单金额
// 5. 排除商品 → 6. 适用分类(所有明细都必须命中)
func (v *Voucher) Validate(now time.Time, subtotal decimal.Decimal, lines []LineRef) error {
	if !v.IsActive {
		return apperrors.Newf(apperrors.ErrCodeVoucherInvalid, "优惠券[%s]未启用", v.Code)
	}

	if v.UsageLimit != nil && v.UsedCount >= *v.UsageLimit {
		return apperrors.Newf(apperrors.ErrCodeVoucherInvalid, "优惠券[%s]已被领完", v.Code)
	}

	if now.Before(v.StartDate) || now.After(v.EndDate) {
		return apperrors.Newf(apperrors.ErrCodeVoucherInvalid, "优惠券[%s]不在有效期内", v.Code)
	}

	if v.MinimumOrderValue != nil && subtotal.LessThan(*v.MinimumOrderValue) {
		return apperrors.Newf(apperrors.ErrCodeVoucherInvalid,
			"优惠券[%s]需订单满%s可用", v.Code, v.MinimumOrderValue.StringFixed(2))
	}

	// 排除商品:命中任意一个即整单拒用
	excluded := make(map[uint]struct{}, len(v.ExcludedProducts))
	for _, id := range v.ExcludedProducts {
		excluded[id] = struct{}{}
	}
	for _, line := range lines {
		if _, hit := excluded[line.ProductID]; hit {
			return apperrors.Newf(apperrors.ErrCodeVoucherInvalid,
				"优惠券[%s]不适用于订单中的部分商品", v.Code)
		}
	}

	// 适用分类:非空时所有明细的分类都必须命中(AND语义,与运营约定一致)
	if len(v.ApplicableCategories) > 0 {
		applicable := make(map[uint]struct{}, len(v.ApplicableCategories))
		for _, id := range v.ApplicableCategories {
			applicable[id] = struct{}{}
		}
		for _, line := range lines {
			if _, ok := applicable[line.CategoryID]; !ok {
				return apperrors.Newf(apperrors.ErrCodeVoucherInvalid,
					"优惠券[%s]仅适用于指定分类商品", v.Code)
			}
		}
	}

	return nil
}

// ComputeDiscount 计算优惠金额
// 规则:
// - PERCENT: subtotal × (percent/100),有封顶时取封顶
// - FIXED: 固定减免
// - 任何情况下优惠不超过subtotal(实付金额不会为负)
func (v *Voucher) ComputeDiscount(subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal

	switch v.Type {
	case TypePercent:
		discount = subtotal.Mul(v.DiscountPercent).Div(decimal.NewFromInt(100))
		if v.MaxDiscount != nil && discount.GreaterThan(*v.MaxDiscount) {
			discount = *v.MaxDiscount
		}
	case TypeFixed:
		discount = v.DiscountAmount
	default:
		return decimal.Zero
	}

	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount
}
