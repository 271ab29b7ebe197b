package order

import (
	"context"

	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/order"
	apperrors "github.com/sixxson/coffee-craft-service-sub000/pkg/errors"
)

// UpdateStatusUseCase 订单状态流转用例(管理端操作)
// 状态机校验在领域层完成,这里负责加锁、持久化与审计
type UpdateStatusUseCase struct {
	orderRepo   order.Repository
	historyRepo order.HistoryRepository
	txManager   TxManager
}

func NewUpdateStatusUseCase(orderRepo order.Repository, historyRepo order.HistoryRepository, txManager TxManager) *UpdateStatusUseCase {
	return &UpdateStatusUseCase{
		orderRepo:   orderRepo,
		historyRepo: historyRepo,
		txManager:   txManager,
	}
}

// Execute 将订单流转到目标状态
// 设计说明:
// 1. FOR UPDATE锁住订单行,防止并发状态变更互相覆盖
// 2. 状态变更与审计记录同事务落库
// 3. 操作人ID记入审计(状态流转是管理端动作,actorID来自JWT)
func (uc *UpdateStatusUseCase) Execute(ctx context.Context, orderID uint, actorID uint, target order.OrderStatus) (*order.Order, error) {
	if !target.IsValid() {
		return nil, apperrors.Newf(apperrors.ErrCodeInvalidParams, "未知的订单状态: %s", target)
	}
	// 取消必须走取消用例(需要回补库存和优惠券)
	if target == order.OrderStatusCanceled {
		return nil, apperrors.New(apperrors.ErrCodeInvalidTransition, "请通过取消接口取消订单")
	}

	var result *order.Order
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		o, err := uc.orderRepo.LockByID(txCtx, orderID)
		if err != nil {
			return err
		}

		oldStatus := o.Status
		if err := o.TransitionTo(target); err != nil {
			return apperrors.Newf(apperrors.ErrCodeInvalidTransition,
				"订单状态不允许从%s变更为%s", oldStatus, target)
		}

		if err := uc.orderRepo.Update(txCtx, o); err != nil {
			return err
		}

		h := order.NewHistory(o.ID, &actorID, order.ActionUpdateStatus, "status",
			order.StrPtr(oldStatus.String()), order.StrPtr(target.String()))
		if err := uc.historyRepo.Append(txCtx, h); err != nil {
			return err
		}

		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
