package order

import (
	"context"
)

// ListParams 管理端订单列表查询参数
// 设计说明:显式结构体替代动态查询参数包,默认值在Normalize中校验收敛
type ListParams struct {
	Status        OrderStatus   // 可空,按订单状态过滤
	PaymentStatus PaymentStatus // 可空,按支付状态过滤
	UserIDs       []uint        // 可空,按买家过滤(单个/多个)
	Page          int
	PageSize      int
	SortBy        string // created_at | final_total | updated_at
	SortOrder     string // asc | desc
}

// Normalize 填充默认值并丢弃非法参数
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > 100 {
		p.PageSize = 20
	}
	switch p.SortBy {
	case "created_at", "final_total", "updated_at":
	default:
		p.SortBy = "created_at"
	}
	if p.SortOrder != "asc" {
		p.SortOrder = "desc"
	}
}

// Repository 订单仓储接口(依赖倒置原则)
// 说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 所有写操作必须通过context参与外层事务
type Repository interface {
	// Create 创建订单(包含订单明细,同一事务落库)
	Create(ctx context.Context, order *Order) error

	// FindByID 根据ID查找订单(包含明细)
	FindByID(ctx context.Context, id uint) (*Order, error)

	// FindByIDForUser 按所有者范围查找订单
	// 说明:查别人的订单返回ErrOrderNotFound而非Forbidden,避免泄露订单是否存在
	FindByIDForUser(ctx context.Context, id, userID uint) (*Order, error)

	// LockByID 悲观锁查找订单(状态变更/取消路径使用,防止并发重复操作)
	LockByID(ctx context.Context, id uint) (*Order, error)

	// Update 更新订单(状态、支付状态、流水号)
	Update(ctx context.Context, order *Order) error

	// ListByUserID 查询用户的订单列表,按创建时间倒序
	ListByUserID(ctx context.Context, userID uint) ([]*Order, error)

	// List 管理端订单列表,数据与总数在同一事务中查询保证一致
	List(ctx context.Context, params ListParams) ([]*Order, int64, error)
}

// HistoryRepository 订单审计仓储接口
type HistoryRepository interface {
	// Append 追加一条审计记录(必须与所记录的变更在同一事务中)
	Append(ctx context.Context, h *History) error

	// ListByOrderID 查询订单的全部审计记录,按时间倒序
	ListByOrderID(ctx context.Context, orderID uint) ([]*History, error)
}
