package product

import (
	"context"
)

// Repository 商品仓储接口
// 说明:
// 1. 下单路径使用批量加锁查询(一次取齐,避免逐个查询)
// 2. 库存增减必须是条件更新(stock + delta >= 0),参与外层事务
type Repository interface {
	// FindByID 根据ID查找商品
	FindByID(ctx context.Context, id uint) (*Product, error)

	// LockByIDs 悲观锁批量查询商品(SELECT ... FOR UPDATE)
	// 下单时锁定全部涉及的商品行,防止并发超卖
	LockByIDs(ctx context.Context, ids []uint) (map[uint]*Product, error)

	// LockVariantsByIDs 悲观锁批量查询商品规格
	LockVariantsByIDs(ctx context.Context, ids []uint) (map[uint]*Variant, error)

	// UpdateStock 商品库存增减(delta为负是扣减)
	// 条件更新防止库存为负;行不存在或库存不足返回领域错误
	UpdateStock(ctx context.Context, id uint, delta int) error

	// UpdateVariantStock 规格库存增减
	UpdateVariantStock(ctx context.Context, id uint, delta int) error
}
