package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/order"
	apperrors "github.com/sixxson/coffee-craft-service-sub000/pkg/errors"
)

// historyRepository 订单审计仓储实现(MySQL)
// 说明:仅追加;Append必须在外层事务内调用,
// 保证审计记录与被记录的变更要么同时落库要么同时回滚
type historyRepository struct {
	db *gorm.DB
}

// NewHistoryRepository 创建订单审计仓储
func NewHistoryRepository(db *gorm.DB) order.HistoryRepository {
	return &historyRepository{db: db}
}

// Append 追加一条审计记录
func (r *historyRepository) Append(ctx context.Context, h *order.History) error {
	model := &OrderHistoryModel{
		OrderID:   h.OrderID,
		UserID:    h.UserID,
		Action:    string(h.Action),
		Field:     h.Field,
		OldValue:  h.OldValue,
		NewValue:  h.NewValue,
		CreatedAt: h.CreatedAt,
	}

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "写入订单审计记录失败")
	}

	h.ID = model.ID
	return nil
}

// ListByOrderID 查询订单的全部审计记录,按时间倒序,带操作人信息
func (r *historyRepository) ListByOrderID(ctx context.Context, orderID uint) ([]*order.History, error) {
	var models []OrderHistoryModel
	err := getDB(ctx, r.db).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&models).Error

	if err != nil {
		return nil, apperrors.Wrap(err, "查询订单审计记录失败")
	}

	histories := make([]*order.History, len(models))
	for i, m := range models {
		histories[i] = &order.History{
			ID:        m.ID,
			OrderID:   m.OrderID,
			UserID:    m.UserID,
			Action:    order.HistoryAction(m.Action),
			Field:     m.Field,
			OldValue:  m.OldValue,
			NewValue:  m.NewValue,
			CreatedAt: m.CreatedAt,
		}
	}
	return histories, nil
}
