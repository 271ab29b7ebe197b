package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/product"
	apperrors "github.com/sixxson/coffee-craft-service-sub000/pkg/errors"
)

// productRepository 商品仓储实现(MySQL)
// 设计说明:
// 1. 下单路径使用批量FOR UPDATE锁定涉及的商品/规格行,防止并发超卖
// 2. 库存增减是条件UPDATE(stock + delta >= 0),数据库侧保证不为负
// 3. 事务通过context传递(getDB)
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) product.Repository {
	return &productRepository{db: db}
}

// FindByID 根据ID查找商品
func (r *productRepository) FindByID(ctx context.Context, id uint) (*product.Product, error) {
	var model ProductModel
	err := getDB(ctx, r.db).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrProductNotFound
		}
		return nil, apperrors.Wrap(err, "查询商品失败")
	}

	return toProductEntity(&model), nil
}

// LockByIDs 悲观锁批量查询商品
// 执行:SELECT * FROM products WHERE id IN (?) FOR UPDATE
// 说明:一次取齐所有商品行并加排他锁,其他下单事务必须等待COMMIT/ROLLBACK
func (r *productRepository) LockByIDs(ctx context.Context, ids []uint) (map[uint]*product.Product, error) {
	if len(ids) == 0 {
		return map[uint]*product.Product{}, nil
	}

	var models []ProductModel
	err := getDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "锁定商品失败")
	}

	result := make(map[uint]*product.Product, len(models))
	for i := range models {
		result[models[i].ID] = toProductEntity(&models[i])
	}
	return result, nil
}

// LockVariantsByIDs 悲观锁批量查询商品规格
func (r *productRepository) LockVariantsByIDs(ctx context.Context, ids []uint) (map[uint]*product.Variant, error) {
	if len(ids) == 0 {
		return map[uint]*product.Variant{}, nil
	}

	var models []ProductVariantModel
	err := getDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "锁定商品规格失败")
	}

	result := make(map[uint]*product.Variant, len(models))
	for i := range models {
		result[models[i].ID] = toVariantEntity(&models[i])
	}
	return result, nil
}

// UpdateStock 商品库存增减(原子操作)
// UPDATE products SET stock = stock + delta WHERE id = ? AND stock + delta >= 0
func (r *productRepository) UpdateStock(ctx context.Context, id uint, delta int) error {
	db := getDB(ctx, r.db)
	result := db.Model(&ProductModel{}).
		Where("id = ?", id).
		Where("stock + ? >= 0", delta). // 防止库存为负
		Update("stock", gorm.Expr("stock + ?", delta))

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新商品库存失败")
	}

	if result.RowsAffected == 0 {
		// 可能是商品不存在,或者库存不足:再查一次确定原因
		var model ProductModel
		if err := db.First(&model, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return product.ErrProductNotFound
			}
			return apperrors.Wrap(err, "查询商品失败")
		}
		return product.ErrInsufficientStock
	}

	return nil
}

// UpdateVariantStock 规格库存增减(原子操作)
func (r *productRepository) UpdateVariantStock(ctx context.Context, id uint, delta int) error {
	db := getDB(ctx, r.db)
	result := db.Model(&ProductVariantModel{}).
		Where("id = ?", id).
		Where("stock + ? >= 0", delta).
		Update("stock", gorm.Expr("stock + ?", delta))

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新规格库存失败")
	}

	if result.RowsAffected == 0 {
		var model ProductVariantModel
		if err := db.First(&model, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return product.ErrVariantNotFound
			}
			return apperrors.Wrap(err, "查询商品规格失败")
		}
		return product.ErrInsufficientStock
	}

	return nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toProductEntity GORM模型 → 领域实体
func toProductEntity(model *ProductModel) *product.Product {
	return &product.Product{
		ID:            model.ID,
		Name:          model.Name,
		CategoryID:    model.CategoryID,
		Price:         model.Price,
		DiscountPrice: model.DiscountPrice,
		Stock:         model.Stock,
		Active:        model.Active,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

// toVariantEntity GORM模型 → 领域实体
func toVariantEntity(model *ProductVariantModel) *product.Variant {
	return &product.Variant{
		ID:            model.ID,
		ProductID:     model.ProductID,
		Name:          model.Name,
		Price:         model.Price,
		DiscountPrice: model.DiscountPrice,
		Stock:         model.Stock,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}
