package voucher

import (
	"context"
)

// Repository 优惠券仓储接口
// 说明:使用次数的"校验+递增"必须在下单事务内基于行锁完成,
// 否则两个并发订单可能同时通过剩余1次的校验(竞态超用)
type Repository interface {
	// FindByCode 根据券码查找优惠券
	FindByCode(ctx context.Context, code string) (*Voucher, error)

	// LockByCode 悲观锁查找优惠券(下单事务内使用)
	LockByCode(ctx context.Context, code string) (*Voucher, error)

	// FindByID 根据ID查找优惠券(取消订单回补使用次数时使用)
	FindByID(ctx context.Context, id uint) (*Voucher, error)

	// IncrementUsage 使用次数增减(delta=+1下单,delta=-1取消)
	// 条件更新保证不超过UsageLimit、不减到负数
	IncrementUsage(ctx context.Context, id uint, delta int) error
}
