package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product 商品实体(聚合根)
// 设计说明:
// 1. Price是标价,DiscountPrice是促销价(非空时优先生效)
// 2. Stock是基础商品库存;有规格的商品库存记在各规格上
// 3. Active=false的商品不可下单(下架不删除,历史订单仍引用它)
type Product struct {
	ID            uint
	Name          string
	CategoryID    uint            // 所属分类(优惠券适用范围校验使用)
	Price         decimal.Decimal // 标价
	DiscountPrice *decimal.Decimal // 促销价(可空,优先于标价)
	Stock         int             // 库存(≥0,数据库侧条件更新兜底)
	Active        bool            // 是否在售
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// EffectivePrice 有效单价:促销价优先,否则标价
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

// Variant 商品规格(如豆种/研磨度/克重组合)
// 说明:规格有独立的价格与库存;规格价格可空时回落到所属商品价格
type Variant struct {
	ID            uint
	ProductID     uint
	Name          string
	Price         decimal.Decimal
	DiscountPrice *decimal.Decimal
	Stock         int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// EffectivePrice 规格有效单价:促销价优先,否则规格标价
func (v *Variant) EffectivePrice() decimal.Decimal {
	if v.DiscountPrice != nil {
		return *v.DiscountPrice
	}
	return v.Price
}

// BelongsTo 校验规格是否属于指定商品
// 说明:下单请求同时携带productId和variantId,两者不匹配视为非法请求
func (v *Variant) BelongsTo(productID uint) bool {
	return v.ProductID == productID
}
