package order

import (
	apperrors "github.com/sixxson/coffee-craft-service-sub000/pkg/errors"
)

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = apperrors.ErrOrderNotFound

	// ErrInvalidStatusTransition 非法的状态转换(终态订单或不允许的跳转)
	ErrInvalidStatusTransition = apperrors.ErrInvalidTransition

	// ErrInvalidOrderItems 订单明细不合法
	ErrInvalidOrderItems = apperrors.ErrEmptyOrderItems

	// ErrInvalidQuantity 购买数量不合法
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "购买数量必须大于0")

	// ErrNotOrderOwner 非订单所有者且无管理权限
	ErrNotOrderOwner = apperrors.ErrForbidden
)
