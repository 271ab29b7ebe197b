package order

import (
	"context"
	"strconv"
	"strings"

	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/address"
	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/order"
	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/user"
	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/voucher"
	apperrors "github.com/sixxson/coffee-craft-service-sub000/pkg/errors"
)

// QueryOrdersUseCase 订单查询用例(详情、我的订单、管理端列表、审计历史)
type QueryOrdersUseCase struct {
	orderRepo   order.Repository
	historyRepo order.HistoryRepository
	txManager   TxManager
	assembler   *detailAssembler
}

func NewQueryOrdersUseCase(
	orderRepo order.Repository,
	historyRepo order.HistoryRepository,
	addressRepo address.Repository,
	userRepo user.Repository,
	voucherRepo voucher.Repository,
	txManager TxManager,
) *QueryOrdersUseCase {
	return &QueryOrdersUseCase{
		orderRepo:   orderRepo,
		historyRepo: historyRepo,
		txManager:   txManager,
		assembler: &detailAssembler{
			addressRepo: addressRepo,
			userRepo:    userRepo,
			voucherRepo: voucherRepo,
		},
	}
}

// GetByID 查询订单详情
// 权限规则:买家只能看自己的订单,STAFF/ADMIN可以看全部
func (uc *QueryOrdersUseCase) GetByID(ctx context.Context, orderID uint, actorID uint, elevated bool) (*Detail, error) {
	var (
		o   *order.Order
		err error
	)
	if elevated {
		o, err = uc.orderRepo.FindByID(ctx, orderID)
	} else {
		o, err = uc.orderRepo.FindByIDForUser(ctx, orderID, actorID)
	}
	if err != nil {
		return nil, err
	}
	return uc.assembler.Hydrate(ctx, o), nil
}

// ListMine 查询当前用户的订单,按创建时间倒序
func (uc *QueryOrdersUseCase) ListMine(ctx context.Context, userID uint) ([]*Detail, error) {
	orders, err := uc.orderRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.assembler.HydrateAll(ctx, orders), nil
}

// ListAllRequest 管理端订单列表请求
// UserID接受三种形式的原始输入:单个ID、逗号分隔、重复参数
// (由handler收集成字符串切片后交由这里解析)
type ListAllRequest struct {
	Status        string
	PaymentStatus string
	UserIDs       []string
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}

// ListAll 管理端订单列表(过滤+分页+排序)
// 返回归一化后的分页参数,handler回显分页信息时必须使用它
// 而不是原始请求值(原始值可能是0或超限)
func (uc *QueryOrdersUseCase) ListAll(ctx context.Context, req ListAllRequest) ([]*Detail, int64, order.ListParams, error) {
	params := order.ListParams{
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}

	if req.Status != "" {
		status := order.OrderStatus(req.Status)
		if !status.IsValid() {
			return nil, 0, params, apperrors.Newf(apperrors.ErrCodeInvalidParams, "未知的订单状态: %s", req.Status)
		}
		params.Status = status
	}
	if req.PaymentStatus != "" {
		ps := order.PaymentStatus(req.PaymentStatus)
		if !ps.IsValid() {
			return nil, 0, params, apperrors.Newf(apperrors.ErrCodeInvalidParams, "未知的支付状态: %s", req.PaymentStatus)
		}
		params.PaymentStatus = ps
	}

	userIDs, err := parseUserIDs(req.UserIDs)
	if err != nil {
		return nil, 0, params, err
	}
	params.UserIDs = userIDs

	params.Normalize()

	// 计数和取页在同一事务内执行,保证两条语句看到一致的快照
	var (
		orders []*order.Order
		total  int64
	)
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		var listErr error
		orders, total, listErr = uc.orderRepo.List(txCtx, params)
		return listErr
	})
	if err != nil {
		return nil, 0, params, err
	}
	return uc.assembler.HydrateAll(ctx, orders), total, params, nil
}

// GetHistory 查询订单审计历史
// 权限与详情一致:先确认订单可见,再返回历史
func (uc *QueryOrdersUseCase) GetHistory(ctx context.Context, orderID uint, actorID uint, elevated bool) ([]*order.History, error) {
	var err error
	if elevated {
		_, err = uc.orderRepo.FindByID(ctx, orderID)
	} else {
		_, err = uc.orderRepo.FindByIDForUser(ctx, orderID, actorID)
	}
	if err != nil {
		return nil, err
	}
	return uc.historyRepo.ListByOrderID(ctx, orderID)
}

// parseUserIDs 解析买家ID过滤参数
// 兼容"userId=1&userId=2"与"userId=1,2"两种传参方式
func parseUserIDs(raw []string) ([]uint, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	ids := make([]uint, 0, len(raw))
	for _, part := range raw {
		for _, s := range strings.Split(part, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			id, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				return nil, apperrors.Newf(apperrors.ErrCodeInvalidParams, "无效的用户ID: %s", s)
			}
			ids = append(ids, uint(id))
		}
	}
	return ids, nil
}
