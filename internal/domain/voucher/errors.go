package voucher

import (
	apperrors "github.com/sixxson/coffee-craft-service-sub000/pkg/errors"
)

// 优惠券领域错误定义
var (
	// ErrVoucherNotFound 券码不存在
	ErrVoucherNotFound = apperrors.ErrVoucherNotFound

	// ErrVoucherInvalid 优惠券不可用(具体原因在消息中区分)
	ErrVoucherInvalid = apperrors.ErrVoucherInvalid
)
