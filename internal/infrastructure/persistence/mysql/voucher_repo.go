package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/voucher"
	apperrors "github.com/sixxson/coffee-craft-service-sub000/pkg/errors"
)

// voucherRepository 优惠券仓储实现(MySQL)
// 设计说明:
// 1. 下单时用LockByCode锁定券行,"校验+递增使用次数"在同一事务内完成,
//    两个并发订单不可能同时通过剩余1次的校验
// 2. IncrementUsage是条件UPDATE,数据库侧兜底不超限、不为负
type voucherRepository struct {
	db *gorm.DB
}

// NewVoucherRepository 创建优惠券仓储
func NewVoucherRepository(db *gorm.DB) voucher.Repository {
	return &voucherRepository{db: db}
}

// FindByCode 根据券码查找优惠券
func (r *voucherRepository) FindByCode(ctx context.Context, code string) (*voucher.Voucher, error) {
	var model VoucherModel
	err := getDB(ctx, r.db).
		Preload("Categories").Preload("Exclusions").
		Where("code = ?", code).
		First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, voucher.ErrVoucherNotFound
		}
		return nil, apperrors.Wrap(err, "查询优惠券失败")
	}

	return toVoucherEntity(&model), nil
}

// LockByCode 悲观锁查找优惠券(下单事务内使用)
func (r *voucherRepository) LockByCode(ctx context.Context, code string) (*voucher.Voucher, error) {
	var model VoucherModel
	err := getDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Categories").Preload("Exclusions").
		Where("code = ?", code).
		First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, voucher.ErrVoucherNotFound
		}
		return nil, apperrors.Wrap(err, "锁定优惠券失败")
	}

	return toVoucherEntity(&model), nil
}

// FindByID 根据ID查找优惠券
func (r *voucherRepository) FindByID(ctx context.Context, id uint) (*voucher.Voucher, error) {
	var model VoucherModel
	err := getDB(ctx, r.db).
		Preload("Categories").Preload("Exclusions").
		First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, voucher.ErrVoucherNotFound
		}
		return nil, apperrors.Wrap(err, "查询优惠券失败")
	}

	return toVoucherEntity(&model), nil
}

// IncrementUsage 使用次数增减(原子操作)
// delta=+1时带used_count < usage_limit条件(无限制券不带),delta=-1时带used_count > 0条件
func (r *voucherRepository) IncrementUsage(ctx context.Context, id uint, delta int) error {
	db := getDB(ctx, r.db)

	query := db.Model(&VoucherModel{}).Where("id = ?", id)
	if delta > 0 {
		query = query.Where("usage_limit IS NULL OR used_count + ? <= usage_limit", delta)
	} else {
		query = query.Where("used_count + ? >= 0", delta)
	}

	result := query.Update("used_count", gorm.Expr("used_count + ?", delta))
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新优惠券使用次数失败")
	}

	if result.RowsAffected == 0 {
		// 券不存在,或并发下已达使用上限
		var model VoucherModel
		if err := db.First(&model, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return voucher.ErrVoucherNotFound
			}
			return apperrors.Wrap(err, "查询优惠券失败")
		}
		return apperrors.Newf(apperrors.ErrCodeVoucherInvalid, "优惠券[%s]已被领完", model.Code)
	}

	return nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toVoucherEntity GORM模型 → 领域实体
func toVoucherEntity(model *VoucherModel) *voucher.Voucher {
	categories := make([]uint, len(model.Categories))
	for i, c := range model.Categories {
		categories[i] = c.CategoryID
	}
	exclusions := make([]uint, len(model.Exclusions))
	for i, e := range model.Exclusions {
		exclusions[i] = e.ProductID
	}

	return &voucher.Voucher{
		ID:                   model.ID,
		Code:                 model.Code,
		Type:                 voucher.Type(model.Type),
		DiscountPercent:      model.DiscountPercent,
		DiscountAmount:       model.DiscountAmount,
		MaxDiscount:          model.MaxDiscount,
		StartDate:            model.StartDate,
		EndDate:              model.EndDate,
		UsageLimit:           model.UsageLimit,
		UsedCount:            model.UsedCount,
		MinimumOrderValue:    model.MinimumOrderValue,
		IsActive:             model.IsActive,
		ApplicableCategories: categories,
		ExcludedProducts:     exclusions,
		CreatedAt:            model.CreatedAt,
		UpdatedAt:            model.UpdatedAt,
	}
}
