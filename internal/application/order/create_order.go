package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/address"
	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/order"
	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/product"
	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/user"
	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/voucher"
	apperrors "github.com/sixxson/coffee-craft-service-sub000/pkg/errors"
)

// CreateOrderUseCase 创建订单用例
// 这是整个项目最核心的用例:
// 事务处理、悲观锁防超卖、价格快照、优惠券校验、审计记录
type CreateOrderUseCase struct {
	orderRepo   order.Repository
	historyRepo order.HistoryRepository
	productRepo product.Repository
	voucherRepo voucher.Repository
	addressRepo address.Repository
	userRepo    user.Repository
	txManager   TxManager
	notifier    Notifier
}

// NewCreateOrderUseCase 创建下单用例
func NewCreateOrderUseCase(
	orderRepo order.Repository,
	historyRepo order.HistoryRepository,
	productRepo product.Repository,
	voucherRepo voucher.Repository,
	addressRepo address.Repository,
	userRepo user.Repository,
	txManager TxManager,
	notifier Notifier,
) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		orderRepo:   orderRepo,
		historyRepo: historyRepo,
		productRepo: productRepo,
		voucherRepo: voucherRepo,
		addressRepo: addressRepo,
		userRepo:    userRepo,
		txManager:   txManager,
		notifier:    notifier,
	}
}

// CreateOrderRequest 下单请求DTO
type CreateOrderRequest struct {
	UserID            uint              // 买家用户ID(从JWT中提取)
	ShippingAddressID uint              // 收货地址ID(必须属于下单用户)
	PaymentMethod     order.PaymentMethod
	Items             []CreateOrderItem // 订单明细(≥1条)
	VoucherCode       string            // 优惠券码(可选)
	Note              string            // 买家备注(可选)
	ShippingFee       decimal.Decimal   // 运费(外部输入,默认0)
}

// CreateOrderItem 订单明细请求项
type CreateOrderItem struct {
	ProductID        uint
	ProductVariantID *uint // 为空表示购买基础商品
	Quantity         int
}

// stockDelta 事务内排队的库存扣减操作
type stockDelta struct {
	variantID *uint // 非空时扣规格库存,否则扣商品库存
	productID uint
	quantity  int
}

// Execute 执行下单用例
// 核心流程(单个事务,要么全成功要么全失败):
//  1. 批量FOR UPDATE锁定所有涉及的商品/规格行
//  2. 逐行校验(存在性、规格归属、在售状态、库存)并取锁定时价格做快照
//  3. 有券码则校验优惠券并原子递增使用次数
//  4. 计算实付金额并落库订单+明细
//  5. 执行全部库存扣减(任何一条失败整体回滚)
//  6. 写入CREATE_ORDER审计记录
//
// 事务提交后,尽力而为地发送下单确认通知(失败只记日志)
func (uc *CreateOrderUseCase) Execute(ctx context.Context, req CreateOrderRequest) (*Detail, error) {
	// 1. 参数校验
	if len(req.Items) == 0 {
		return nil, order.ErrInvalidOrderItems
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, order.ErrInvalidQuantity
		}
	}
	if !req.PaymentMethod.IsValid() {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "不支持的支付方式")
	}
	if req.ShippingFee.IsNegative() {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "运费不能为负数")
	}

	// 2. 收货地址必须存在且属于下单用户
	addr, err := uc.addressRepo.FindByID(ctx, req.ShippingAddressID)
	if err != nil {
		return nil, err
	}
	if !addr.IsOwnedBy(req.UserID) {
		// 返回"不存在"而非"无权限",不泄露他人地址
		return nil, address.ErrAddressNotFound
	}

	var result *order.Order
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// ========================================
		// 步骤1:批量锁定商品与规格(悲观锁,防止并发超卖)
		// ========================================
		productIDs := make([]uint, 0, len(req.Items))
		variantIDs := make([]uint, 0)
		seen := make(map[uint]struct{})
		for _, item := range req.Items {
			if _, ok := seen[item.ProductID]; !ok {
				seen[item.ProductID] = struct{}{}
				productIDs = append(productIDs, item.ProductID)
			}
			if item.ProductVariantID != nil {
				variantIDs = append(variantIDs, *item.ProductVariantID)
			}
		}

		products, err := uc.productRepo.LockByIDs(txCtx, productIDs)
		if err != nil {
			return err
		}
		variants, err := uc.productRepo.LockVariantsByIDs(txCtx, variantIDs)
		if err != nil {
			return err
		}

		// ========================================
		// 步骤2:逐行校验 + 价格快照 + 排队库存扣减
		// ========================================
		subtotal := decimal.Zero
		orderItems := make([]order.OrderItem, len(req.Items))
		deltas := make([]stockDelta, len(req.Items))
		lines := make([]voucher.LineRef, len(req.Items))

		for i, item := range req.Items {
			p, ok := products[item.ProductID]
			if !ok {
				return apperrors.Newf(apperrors.ErrCodeProductNotFound, "商品[%d]不存在", item.ProductID)
			}
			if !p.Active {
				return apperrors.Newf(apperrors.ErrCodeProductUnavailable, "商品《%s》已下架", p.Name)
			}

			var unitPrice decimal.Decimal
			if item.ProductVariantID != nil {
				v, ok := variants[*item.ProductVariantID]
				if !ok {
					return apperrors.Newf(apperrors.ErrCodeVariantNotFound, "商品规格[%d]不存在", *item.ProductVariantID)
				}
				if !v.BelongsTo(item.ProductID) {
					return product.ErrVariantMismatch
				}
				// 同一规格出现在多行时,在锁定快照上累计校验库存
				if v.Stock < item.Quantity {
					return apperrors.Newf(apperrors.ErrCodeInsufficientStock,
						"商品《%s》规格《%s》库存不足,当前库存:%d,需要:%d", p.Name, v.Name, v.Stock, item.Quantity)
				}
				v.Stock -= item.Quantity
				unitPrice = v.EffectivePrice()
			} else {
				if p.Stock < item.Quantity {
					return apperrors.Newf(apperrors.ErrCodeInsufficientStock,
						"商品《%s》库存不足,当前库存:%d,需要:%d", p.Name, p.Stock, item.Quantity)
				}
				p.Stock -= item.Quantity
				unitPrice = p.EffectivePrice()
			}

			lineSubTotal := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			orderItems[i] = order.OrderItem{
				ProductID:        item.ProductID,
				ProductVariantID: item.ProductVariantID,
				Quantity:         item.Quantity,
				PriceAtOrder:     unitPrice, // 使用锁定时的价格,防止改价攻击
				SubTotal:         lineSubTotal,
				DiscountAmount:   decimal.Zero,
			}
			subtotal = subtotal.Add(lineSubTotal)

			deltas[i] = stockDelta{
				variantID: item.ProductVariantID,
				productID: item.ProductID,
				quantity:  item.Quantity,
			}
			lines[i] = voucher.LineRef{ProductID: item.ProductID, CategoryID: p.CategoryID}
		}

		// ========================================
		// 步骤3:优惠券校验与使用次数递增(同一事务,行锁防竞态)
		// ========================================
		discountAmount := decimal.Zero
		var voucherID *uint
		if req.VoucherCode != "" {
			v, err := uc.voucherRepo.LockByCode(txCtx, req.VoucherCode)
			if err != nil {
				return err
			}
			if err := v.Validate(time.Now(), subtotal, lines); err != nil {
				return err
			}
			discountAmount = v.ComputeDiscount(subtotal)
			if err := uc.voucherRepo.IncrementUsage(txCtx, v.ID, 1); err != nil {
				return err
			}
			voucherID = &v.ID
		}

		// ========================================
		// 步骤4:创建订单(含明细,FinalTotal在工厂方法中算定)
		// ========================================
		newOrder := order.NewOrder(
			order.GenerateOrderNo(),
			req.UserID,
			orderItems,
			subtotal,
			req.ShippingFee,
			discountAmount,
			voucherID,
			req.ShippingAddressID,
			req.PaymentMethod,
			req.Note,
		)

		if err := uc.orderRepo.Create(txCtx, newOrder); err != nil {
			return err
		}

		// ========================================
		// 步骤5:执行库存扣减(条件更新,任何一条失败整体回滚)
		// ========================================
		for _, d := range deltas {
			if d.variantID != nil {
				err = uc.productRepo.UpdateVariantStock(txCtx, *d.variantID, -d.quantity)
			} else {
				err = uc.productRepo.UpdateStock(txCtx, d.productID, -d.quantity)
			}
			if err != nil {
				return err
			}
		}

		// ========================================
		// 步骤6:审计记录(与订单创建同事务落库)
		// ========================================
		actorID := req.UserID
		h := order.NewHistory(newOrder.ID, &actorID, order.ActionCreateOrder, "",
			nil, order.StrPtr(newOrder.Status.String()))
		if err := uc.historyRepo.Append(txCtx, h); err != nil {
			return err
		}

		result = newOrder
		return nil
	})

	if err != nil {
		return nil, err
	}

	// 事务已提交:尽力而为地发送下单确认通知
	// 通知失败只记日志,绝不影响订单结果
	uc.notifier.OrderCreated(ctx, result)

	assembler := &detailAssembler{
		addressRepo: uc.addressRepo,
		userRepo:    uc.userRepo,
		voucherRepo: uc.voucherRepo,
	}
	return assembler.Hydrate(ctx, result), nil
}
