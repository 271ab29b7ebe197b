package order

import (
	"context"

	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/address"
	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/order"
	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/user"
	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/voucher"
)

// Detail 订单完整视图(聚合根 + 跨聚合引用的水合结果)
// 说明:领域实体只持有ID引用(避免跨聚合对象引用),
// 对外展示时在应用层把地址/券码/买家信息补齐
type Detail struct {
	Order       *order.Order
	Address     *address.Address
	VoucherCode string
	Purchaser   *user.User
}

// detailAssembler 订单视图装配器
type detailAssembler struct {
	addressRepo address.Repository
	userRepo    user.Repository
	voucherRepo voucher.Repository
}

// Hydrate 装配单个订单的完整视图
// 说明:引用的聚合查不到时降级为空引用,不让展示路径失败
func (a *detailAssembler) Hydrate(ctx context.Context, o *order.Order) *Detail {
	d := &Detail{Order: o}

	if addr, err := a.addressRepo.FindByID(ctx, o.ShippingAddressID); err == nil {
		d.Address = addr
	}
	if u, err := a.userRepo.FindByID(ctx, o.UserID); err == nil {
		d.Purchaser = u
	}
	if o.VoucherID != nil {
		if v, err := a.voucherRepo.FindByID(ctx, *o.VoucherID); err == nil {
			d.VoucherCode = v.Code
		}
	}

	return d
}

// HydrateAll 批量装配
func (a *detailAssembler) HydrateAll(ctx context.Context, orders []*order.Order) []*Detail {
	details := make([]*Detail, len(orders))
	for i, o := range orders {
		details[i] = a.Hydrate(ctx, o)
	}
	return details
}
