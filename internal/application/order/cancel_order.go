package order

import (
	"context"

	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/order"
	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/product"
	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/voucher"
	apperrors "github.com/sixxson/coffee-craft-service-sub000/pkg/errors"
)

// CancelOrderUseCase 取消订单用例
// 取消是下单的补偿操作:回补库存、归还优惠券使用次数、写审计
type CancelOrderUseCase struct {
	orderRepo   order.Repository
	historyRepo order.HistoryRepository
	productRepo product.Repository
	voucherRepo voucher.Repository
	txManager   TxManager
	notifier    Notifier
}

func NewCancelOrderUseCase(
	orderRepo order.Repository,
	historyRepo order.HistoryRepository,
	productRepo product.Repository,
	voucherRepo voucher.Repository,
	txManager TxManager,
	notifier Notifier,
) *CancelOrderUseCase {
	return &CancelOrderUseCase{
		orderRepo:   orderRepo,
		historyRepo: historyRepo,
		productRepo: productRepo,
		voucherRepo: voucherRepo,
		txManager:   txManager,
		notifier:    notifier,
	}
}

// Execute 取消订单
// 权限规则:买家本人可以取消自己的订单,STAFF/ADMIN可以取消任意订单
// 补偿流程(单个事务):
//  1. FOR UPDATE锁定订单,校验可取消状态(仅PENDING/CONFIRMED)
//  2. 按明细逐条回补商品/规格库存(与扣减使用同一套条件更新)
//  3. 用了优惠券则归还使用次数(used_count减1,不会减到负数)
//  4. 状态置为CANCELED,写CANCEL_ORDER审计
func (uc *CancelOrderUseCase) Execute(ctx context.Context, orderID uint, actorID uint, elevated bool) (*order.Order, error) {
	var result *order.Order
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		o, err := uc.orderRepo.LockByID(txCtx, orderID)
		if err != nil {
			return err
		}

		if !elevated && !o.IsOwnedBy(actorID) {
			// 普通用户对他人订单返回"不存在",不暴露订单归属
			return order.ErrOrderNotFound
		}

		oldStatus := o.Status
		if err := o.Cancel(); err != nil {
			return apperrors.Newf(apperrors.ErrCodeInvalidTransition,
				"订单当前状态为%s,不允许取消", oldStatus)
		}

		// 回补库存:取消与下单必须严格对称,否则库存会持续漂移
		for _, item := range o.Items {
			if item.ProductVariantID != nil {
				err = uc.productRepo.UpdateVariantStock(txCtx, *item.ProductVariantID, item.Quantity)
			} else {
				err = uc.productRepo.UpdateStock(txCtx, item.ProductID, item.Quantity)
			}
			if err != nil {
				return err
			}
		}

		// 归还优惠券使用次数
		if o.VoucherID != nil {
			if err := uc.voucherRepo.IncrementUsage(txCtx, *o.VoucherID, -1); err != nil {
				return err
			}
		}

		if err := uc.orderRepo.Update(txCtx, o); err != nil {
			return err
		}

		h := order.NewHistory(o.ID, &actorID, order.ActionCancelOrder, "status",
			order.StrPtr(oldStatus.String()), order.StrPtr(order.OrderStatusCanceled.String()))
		if err := uc.historyRepo.Append(txCtx, h); err != nil {
			return err
		}

		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 事务已提交,尽力而为地发布取消事件
	uc.notifier.OrderCanceled(ctx, result)
	return result, nil
}
