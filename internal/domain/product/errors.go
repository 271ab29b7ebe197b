package product

import (
	apperrors "github.com/sixxson/coffee-craft-service-sub000/pkg/errors"
)

// 商品领域错误定义
var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = apperrors.ErrProductNotFound

	// ErrVariantNotFound 商品规格不存在
	ErrVariantNotFound = apperrors.ErrVariantNotFound

	// ErrVariantMismatch 规格不属于请求的商品
	ErrVariantMismatch = apperrors.ErrVariantMismatch

	// ErrProductUnavailable 商品已下架
	ErrProductUnavailable = apperrors.ErrProductUnavailable

	// ErrInsufficientStock 库存不足(使用侧通过Newf携带商品名/现有库存/需求数量)
	ErrInsufficientStock = apperrors.ErrInsufficientStock
)
