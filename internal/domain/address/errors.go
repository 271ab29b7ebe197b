package address

import (
	apperrors "github.com/sixxson/coffee-craft-service-sub000/pkg/errors"
)

// 收货地址领域错误定义
var (
	// ErrAddressNotFound 地址不存在
	ErrAddressNotFound = apperrors.ErrAddressNotFound
)
