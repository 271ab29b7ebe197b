package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/order"
	apperrors "github.com/sixxson/coffee-craft-service-sub000/pkg/errors"
)

// orderRepository 订单仓储实现(MySQL)
// 设计说明:
// 1. Order和OrderItem是聚合关系,创建时一并保存
// 2. 查询时Preload明细/地址/优惠券/买家,避免N+1问题
// 3. 事务通过context传递
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// Create 创建订单
// 说明:GORM通过foreignKey自动保存关联的Items,必须在事务中调用
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	model := toOrderModel(o)

	if err := getDB(ctx, r.db).Omit("Address", "Voucher", "User").Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建订单失败")
	}

	// 回填自增ID
	o.ID = model.ID
	for i := range o.Items {
		o.Items[i].ID = model.Items[i].ID
		o.Items[i].OrderID = model.ID
	}
	o.CreatedAt = model.CreatedAt
	o.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找订单(完整预加载)
func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	var model OrderModel
	err := getDB(ctx, r.db).
		Preload("Items").
		Preload("Address").
		Preload("Voucher").
		Preload("User").
		First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}

	return toOrderEntity(&model), nil
}

// FindByIDForUser 按所有者范围查找订单
// 说明:查不到别人的订单时返回"不存在"而非"无权限",避免泄露订单是否存在
func (r *orderRepository) FindByIDForUser(ctx context.Context, id, userID uint) (*order.Order, error) {
	var model OrderModel
	err := getDB(ctx, r.db).
		Preload("Items").
		Preload("Address").
		Preload("Voucher").
		Preload("User").
		Where("id = ? AND user_id = ?", id, userID).
		First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}

	return toOrderEntity(&model), nil
}

// LockByID 悲观锁查找订单
// 状态变更/取消路径使用,防止并发下重复取消、重复回补库存
func (r *orderRepository) LockByID(ctx context.Context, id uint) (*order.Order, error) {
	var model OrderModel
	err := getDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "锁定订单失败")
	}

	return toOrderEntity(&model), nil
}

// Update 更新订单
// 说明:只更新状态类字段,明细创建后不可变,金额创建时算定不重算
func (r *orderRepository) Update(ctx context.Context, o *order.Order) error {
	updates := map[string]interface{}{
		"status":         string(o.Status),
		"payment_status": string(o.PaymentStatus),
		"transaction_id": o.TransactionID,
		"updated_at":     o.UpdatedAt,
	}

	result := getDB(ctx, r.db).Model(&OrderModel{}).Where("id = ?", o.ID).Updates(updates)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新订单失败")
	}

	if result.RowsAffected == 0 {
		return order.ErrOrderNotFound
	}

	return nil
}

// ListByUserID 查询用户的订单列表,按创建时间倒序
func (r *orderRepository) ListByUserID(ctx context.Context, userID uint) ([]*order.Order, error) {
	var models []OrderModel
	err := getDB(ctx, r.db).
		Preload("Items").
		Preload("Address").
		Preload("Voucher").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error

	if err != nil {
		return nil, apperrors.Wrap(err, "查询订单列表失败")
	}

	orders := make([]*order.Order, len(models))
	for i := range models {
		orders[i] = toOrderEntity(&models[i])
	}
	return orders, nil
}

// List 管理端订单列表
// 说明:数据与总数在同一查询条件下获取,分页参数已在应用层Normalize
func (r *orderRepository) List(ctx context.Context, params order.ListParams) ([]*order.Order, int64, error) {
	var models []OrderModel
	var total int64

	query := getDB(ctx, r.db).Model(&OrderModel{})

	if params.Status != "" {
		query = query.Where("status = ?", string(params.Status))
	}
	if params.PaymentStatus != "" {
		query = query.Where("payment_status = ?", string(params.PaymentStatus))
	}
	if len(params.UserIDs) == 1 {
		query = query.Where("user_id = ?", params.UserIDs[0])
	} else if len(params.UserIDs) > 1 {
		query = query.Where("user_id IN ?", params.UserIDs)
	}

	// 查询总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单总数失败")
	}

	// 分页查询
	offset := (params.Page - 1) * params.PageSize
	err := query.
		Preload("Items").
		Preload("Address").
		Preload("Voucher").
		Preload("User").
		Order(fmt.Sprintf("%s %s", params.SortBy, params.SortOrder)).
		Limit(params.PageSize).
		Offset(offset).
		Find(&models).Error

	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单列表失败")
	}

	orders := make([]*order.Order, len(models))
	for i := range models {
		orders[i] = toOrderEntity(&models[i])
	}

	return orders, total, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toOrderModel 领域实体 → GORM模型
func toOrderModel(o *order.Order) *OrderModel {
	items := make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemModel{
			ID:               item.ID,
			OrderID:          item.OrderID,
			ProductID:        item.ProductID,
			ProductVariantID: item.ProductVariantID,
			Quantity:         item.Quantity,
			PriceAtOrder:     item.PriceAtOrder,
			SubTotal:         item.SubTotal,
			DiscountAmount:   item.DiscountAmount,
		}
	}

	return &OrderModel{
		ID:                o.ID,
		OrderNo:           o.OrderNo,
		UserID:            o.UserID,
		Status:            string(o.Status),
		PaymentStatus:     string(o.PaymentStatus),
		PaymentMethod:     string(o.PaymentMethod),
		Total:             o.Total,
		ShippingFee:       o.ShippingFee,
		DiscountAmount:    o.DiscountAmount,
		FinalTotal:        o.FinalTotal,
		VoucherID:         o.VoucherID,
		ShippingAddressID: o.ShippingAddressID,
		Note:              o.Note,
		TransactionID:     o.TransactionID,
		Items:             items,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

// toOrderEntity GORM模型 → 领域实体
func toOrderEntity(model *OrderModel) *order.Order {
	items := make([]order.OrderItem, len(model.Items))
	for i, item := range model.Items {
		items[i] = order.OrderItem{
			ID:               item.ID,
			OrderID:          item.OrderID,
			ProductID:        item.ProductID,
			ProductVariantID: item.ProductVariantID,
			Quantity:         item.Quantity,
			PriceAtOrder:     item.PriceAtOrder,
			SubTotal:         item.SubTotal,
			DiscountAmount:   item.DiscountAmount,
		}
	}

	return &order.Order{
		ID:                model.ID,
		OrderNo:           model.OrderNo,
		UserID:            model.UserID,
		Status:            order.OrderStatus(model.Status),
		PaymentStatus:     order.PaymentStatus(model.PaymentStatus),
		PaymentMethod:     order.PaymentMethod(model.PaymentMethod),
		Total:             model.Total,
		ShippingFee:       model.ShippingFee,
		DiscountAmount:    model.DiscountAmount,
		FinalTotal:        model.FinalTotal,
		VoucherID:         model.VoucherID,
		ShippingAddressID: model.ShippingAddressID,
		Note:              model.Note,
		TransactionID:     model.TransactionID,
		Items:             items,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}
