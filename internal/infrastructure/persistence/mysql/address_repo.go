package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/address"
	apperrors "github.com/sixxson/coffee-craft-service-sub000/pkg/errors"
)

// addressRepository 收货地址仓储实现(MySQL)
type addressRepository struct {
	db *gorm.DB
}

// NewAddressRepository 创建收货地址仓储
func NewAddressRepository(db *gorm.DB) address.Repository {
	return &addressRepository{db: db}
}

// Create 创建收货地址
func (r *addressRepository) Create(ctx context.Context, a *address.Address) error {
	model := &AddressModel{
		UserID:    a.UserID,
		Recipient: a.Recipient,
		Phone:     a.Phone,
		Street:    a.Street,
		City:      a.City,
		District:  a.District,
		IsDefault: a.IsDefault,
	}

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建收货地址失败")
	}

	a.ID = model.ID
	a.CreatedAt = model.CreatedAt
	a.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找地址
func (r *addressRepository) FindByID(ctx context.Context, id uint) (*address.Address, error) {
	var model AddressModel
	err := getDB(ctx, r.db).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, address.ErrAddressNotFound
		}
		return nil, apperrors.Wrap(err, "查询收货地址失败")
	}

	return toAddressEntity(&model), nil
}

// ListByUserID 查询用户的全部地址
func (r *addressRepository) ListByUserID(ctx context.Context, userID uint) ([]*address.Address, error) {
	var models []AddressModel
	err := getDB(ctx, r.db).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&models).Error

	if err != nil {
		return nil, apperrors.Wrap(err, "查询收货地址列表失败")
	}

	addrs := make([]*address.Address, len(models))
	for i := range models {
		addrs[i] = toAddressEntity(&models[i])
	}
	return addrs, nil
}

// toAddressEntity GORM模型 → 领域实体
func toAddressEntity(model *AddressModel) *address.Address {
	return &address.Address{
		ID:        model.ID,
		UserID:    model.UserID,
		Recipient: model.Recipient,
		Phone:     model.Phone,
		Street:    model.Street,
		City:      model.City,
		District:  model.District,
		IsDefault: model.IsDefault,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
