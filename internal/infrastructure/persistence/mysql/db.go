package mysql

import (
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sixxson/coffee-craft-service-sub000/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate，生产环境应使用专门的迁移工具）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.DSN()

	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Println("✓ 数据库连接成功")

	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
// 说明：AutoMigrate只创建表、添加字段，不会删除或修改现有字段
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&AddressModel{},
		&ProductModel{},
		&ProductVariantModel{},
		&VoucherModel{},
		&VoucherCategoryModel{},
		&VoucherExclusionModel{},
		&OrderModel{},
		&OrderItemModel{},
		&OrderHistoryModel{},
	)
}

// UserModel GORM用户模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/user/entity.go是领域实体，不依赖GORM
// 3. Repository负责两者之间的转换
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string         `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Nickname  string         `gorm:"size:50;not null;comment:昵称"`
	Role      string         `gorm:"size:20;not null;default:CUSTOMER;comment:角色"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间（软删除）"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// AddressModel GORM收货地址模型
type AddressModel struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index;not null;comment:所属用户ID"`
	Recipient string    `gorm:"size:100;not null;comment:收件人"`
	Phone     string    `gorm:"size:20;not null;comment:电话"`
	Street    string    `gorm:"size:200;not null;comment:街道地址"`
	City      string    `gorm:"size:100;comment:城市"`
	District  string    `gorm:"size:100;comment:区县"`
	IsDefault bool      `gorm:"default:false;comment:是否默认地址"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (AddressModel) TableName() string {
	return "shipping_addresses"
}

// ProductModel GORM商品模型
// 设计说明:
// 1. 金额使用DECIMAL(12,2)定点数存储,避免浮点精度问题
// 2. DiscountPrice可空,非空时作为有效售价
// 3. Active=false表示下架,历史订单仍引用该行(不做物理删除)
type ProductModel struct {
	ID            uint             `gorm:"primaryKey"`
	Name          string           `gorm:"size:200;not null;comment:商品名"`
	CategoryID    uint             `gorm:"index;not null;comment:分类ID"`
	Price         decimal.Decimal  `gorm:"type:decimal(12,2);not null;comment:标价"`
	DiscountPrice *decimal.Decimal `gorm:"type:decimal(12,2);comment:促销价(可空)"`
	Stock         int              `gorm:"not null;default:0;comment:库存"`
	Active        bool             `gorm:"not null;default:true;comment:是否在售"`
	Variants      []ProductVariantModel `gorm:"foreignKey:ProductID"`
	CreatedAt     time.Time        `gorm:"comment:创建时间"`
	UpdatedAt     time.Time        `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (ProductModel) TableName() string {
	return "products"
}

// ProductVariantModel GORM商品规格模型
type ProductVariantModel struct {
	ID            uint             `gorm:"primaryKey"`
	ProductID     uint             `gorm:"index;not null;comment:所属商品ID"`
	Name          string           `gorm:"size:200;not null;comment:规格名"`
	Price         decimal.Decimal  `gorm:"type:decimal(12,2);not null;comment:标价"`
	DiscountPrice *decimal.Decimal `gorm:"type:decimal(12,2);comment:促销价(可空)"`
	Stock         int              `gorm:"not null;default:0;comment:库存"`
	CreatedAt     time.Time        `gorm:"comment:创建时间"`
	UpdatedAt     time.Time        `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (ProductVariantModel) TableName() string {
	return "product_variants"
}

// VoucherModel GORM优惠券模型
// 设计说明:
// 1. 适用分类与排除商品用子表存储,查询时Preload
// 2. UsedCount的增减必须走条件UPDATE(参与下单/取消事务)
type VoucherModel struct {
	ID                uint             `gorm:"primaryKey"`
	Code              string           `gorm:"uniqueIndex;size:50;not null;comment:券码"`
	Type              string           `gorm:"size:20;not null;comment:类型(PERCENT/FIXED)"`
	DiscountPercent   decimal.Decimal  `gorm:"type:decimal(5,2);comment:折扣百分比"`
	DiscountAmount    decimal.Decimal  `gorm:"type:decimal(12,2);comment:减免金额"`
	MaxDiscount       *decimal.Decimal `gorm:"type:decimal(12,2);comment:折扣封顶(可空)"`
	StartDate         time.Time        `gorm:"not null;comment:生效时间"`
	EndDate           time.Time        `gorm:"not null;comment:失效时间"`
	UsageLimit        *int             `gorm:"comment:可用总次数(空为不限)"`
	UsedCount         int              `gorm:"not null;default:0;comment:已用次数"`
	MinimumOrderValue *decimal.Decimal `gorm:"type:decimal(12,2);comment:最低订单金额(可空)"`
	IsActive          bool             `gorm:"not null;default:true;comment:是否启用"`
	Categories        []VoucherCategoryModel  `gorm:"foreignKey:VoucherID"`
	Exclusions        []VoucherExclusionModel `gorm:"foreignKey:VoucherID"`
	CreatedAt         time.Time        `gorm:"comment:创建时间"`
	UpdatedAt         time.Time        `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (VoucherModel) TableName() string {
	return "vouchers"
}

// VoucherCategoryModel 优惠券适用分类
type VoucherCategoryModel struct {
	ID         uint `gorm:"primaryKey"`
	VoucherID  uint `gorm:"index;not null"`
	CategoryID uint `gorm:"not null"`
}

// TableName 指定表名
func (VoucherCategoryModel) TableName() string {
	return "voucher_categories"
}

// VoucherExclusionModel 优惠券排除商品
type VoucherExclusionModel struct {
	ID        uint `gorm:"primaryKey"`
	VoucherID uint `gorm:"index;not null"`
	ProductID uint `gorm:"not null"`
}

// TableName 指定表名
func (VoucherExclusionModel) TableName() string {
	return "voucher_excluded_products"
}

// OrderModel GORM订单模型
// 设计说明:
// 1. 与OrderItemModel是一对多关系,创建时一并落库
// 2. OrderNo有唯一索引(业务主键)
// 3. 金额字段DECIMAL(12,2);FinalTotal创建时算定,之后不重算
type OrderModel struct {
	ID                uint             `gorm:"primaryKey"`
	OrderNo           string           `gorm:"uniqueIndex;size:32;not null;comment:订单号"`
	UserID            uint             `gorm:"index;not null;comment:买家用户ID"`
	Status            string           `gorm:"index;size:20;not null;default:PENDING;comment:订单状态"`
	PaymentStatus     string           `gorm:"index;size:20;not null;default:PENDING;comment:支付状态"`
	PaymentMethod     string           `gorm:"size:20;not null;comment:支付方式"`
	Total             decimal.Decimal  `gorm:"type:decimal(12,2);not null;comment:明细小计"`
	ShippingFee       decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0;comment:运费"`
	DiscountAmount    decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0;comment:优惠金额"`
	FinalTotal        decimal.Decimal  `gorm:"type:decimal(12,2);not null;comment:实付金额"`
	VoucherID         *uint            `gorm:"index;comment:优惠券ID(可空)"`
	ShippingAddressID uint             `gorm:"not null;comment:收货地址ID"`
	Note              string           `gorm:"size:500;comment:买家备注"`
	TransactionID     *string          `gorm:"size:100;comment:外部支付流水号(可空)"`
	Items             []OrderItemModel `gorm:"foreignKey:OrderID"`
	Address           *AddressModel    `gorm:"foreignKey:ShippingAddressID"`
	Voucher           *VoucherModel    `gorm:"foreignKey:VoucherID"`
	User              *UserModel       `gorm:"foreignKey:UserID"`
	CreatedAt         time.Time        `gorm:"index;comment:创建时间"`
	UpdatedAt         time.Time        `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel GORM订单明细模型
// 说明:PriceAtOrder是下单时单价快照,商品改价不影响历史订单
type OrderItemModel struct {
	ID               uint            `gorm:"primaryKey"`
	OrderID          uint            `gorm:"index;not null;comment:订单ID"`
	ProductID        uint            `gorm:"index;not null;comment:商品ID"`
	ProductVariantID *uint           `gorm:"index;comment:规格ID(可空)"`
	Quantity         int             `gorm:"not null;comment:购买数量"`
	PriceAtOrder     decimal.Decimal `gorm:"type:decimal(12,2);not null;comment:下单时单价"`
	SubTotal         decimal.Decimal `gorm:"type:decimal(12,2);not null;comment:小计"`
	DiscountAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;comment:明细级优惠"`
}

// TableName 指定表名
func (OrderItemModel) TableName() string {
	return "order_items"
}

// OrderHistoryModel GORM订单审计模型
// 说明:仅追加,没有Update/Delete路径
type OrderHistoryModel struct {
	ID        uint       `gorm:"primaryKey"`
	OrderID   uint       `gorm:"index;not null;comment:订单ID"`
	UserID    *uint      `gorm:"index;comment:操作人(可空)"`
	Action    string     `gorm:"size:30;not null;comment:动作类型"`
	Field     string     `gorm:"size:50;comment:变更字段"`
	OldValue  *string    `gorm:"size:255;comment:变更前的值"`
	NewValue  *string    `gorm:"size:255;comment:变更后的值"`
	Actor     *UserModel `gorm:"foreignKey:UserID"`
	CreatedAt time.Time  `gorm:"index;comment:创建时间"`
}

// TableName 指定表名
func (OrderHistoryModel) TableName() string {
	return "order_histories"
}
