package order

import (
	"context"

	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/order"
	apperrors "github.com/sixxson/coffee-craft-service-sub000/pkg/errors"
)

// UpdatePaymentUseCase 支付状态更新用例(管理端/支付回调)
type UpdatePaymentUseCase struct {
	orderRepo   order.Repository
	historyRepo order.HistoryRepository
	txManager   TxManager
}

func NewUpdatePaymentUseCase(orderRepo order.Repository, historyRepo order.HistoryRepository, txManager TxManager) *UpdatePaymentUseCase {
	return &UpdatePaymentUseCase{
		orderRepo:   orderRepo,
		historyRepo: historyRepo,
		txManager:   txManager,
	}
}

// UpdatePaymentRequest 支付状态更新请求
type UpdatePaymentRequest struct {
	OrderID       uint
	ActorID       uint
	PaymentStatus order.PaymentStatus
	TransactionID *string // 可选,外部支付网关流水号
}

// Execute 更新支付状态(可同时记录外部流水号)
// 审计说明:支付状态和流水号是两个独立字段,
// 各自发生变更时各写一条审计记录(同一事务内)
func (uc *UpdatePaymentUseCase) Execute(ctx context.Context, req UpdatePaymentRequest) (*order.Order, error) {
	if !req.PaymentStatus.IsValid() {
		return nil, apperrors.Newf(apperrors.ErrCodeInvalidParams, "未知的支付状态: %s", req.PaymentStatus)
	}

	var result *order.Order
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		o, err := uc.orderRepo.LockByID(txCtx, req.OrderID)
		if err != nil {
			return err
		}

		oldPayment := o.PaymentStatus
		oldTxnID := o.TransactionID

		if oldPayment != req.PaymentStatus {
			o.SetPaymentStatus(req.PaymentStatus)
			h := order.NewHistory(o.ID, &req.ActorID, order.ActionUpdatePaymentStatus, "payment_status",
				order.StrPtr(oldPayment.String()), order.StrPtr(req.PaymentStatus.String()))
			if err := uc.historyRepo.Append(txCtx, h); err != nil {
				return err
			}
		}

		if req.TransactionID != nil && o.SetTransactionID(*req.TransactionID) {
			h := order.NewHistory(o.ID, &req.ActorID, order.ActionUpdateTransactionID, "transaction_id",
				oldTxnID, order.StrPtr(*req.TransactionID))
			if err := uc.historyRepo.Append(txCtx, h); err != nil {
				return err
			}
		}

		if err := uc.orderRepo.Update(txCtx, o); err != nil {
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
