//go:build wireinject
// +build wireinject

// Wire依赖注入配置
//
// 说明:
// 1. Wire是Google的编译期依赖注入工具,零运行时开销、类型安全
// 2. 运行 `wire gen ./cmd/api` 生成wire_gen.go,其内容与main.go中的
//    手动组装等价
// 3. Provider按层分组,依赖链:Repository ← Service/UseCase ← Handler

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	appaddress "github.com/sixxson/coffee-craft-service-sub000/internal/application/address"
	apporder "github.com/sixxson/coffee-craft-service-sub000/internal/application/order"
	appuser "github.com/sixxson/coffee-craft-service-sub000/internal/application/user"
	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/user"
	"github.com/sixxson/coffee-craft-service-sub000/internal/infrastructure/config"
	"github.com/sixxson/coffee-craft-service-sub000/internal/infrastructure/persistence/mysql"
	"github.com/sixxson/coffee-craft-service-sub000/internal/infrastructure/persistence/redis"
	"github.com/sixxson/coffee-craft-service-sub000/internal/interface/http/handler"
	"github.com/sixxson/coffee-craft-service-sub000/internal/interface/http/middleware"
	"github.com/sixxson/coffee-craft-service-sub000/pkg/jwt"
)

// infrastructureSet 基础设施层依赖
var infrastructureSet = wire.NewSet(
	config.Load,
	mysql.NewDB,
	redis.NewClient,
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewAddressRepository,
	mysql.NewProductRepository,
	mysql.NewVoucherRepository,
	mysql.NewOrderRepository,
	mysql.NewHistoryRepository,
	provideTxManager,
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	user.NewService,
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewRefreshUseCase,
	appaddress.NewManageUseCase,
	apporder.NewCreateOrderUseCase,
	apporder.NewUpdateStatusUseCase,
	apporder.NewUpdatePaymentUseCase,
	apporder.NewCancelOrderUseCase,
	apporder.NewQueryOrdersUseCase,
	provideNotifier,
)

// middlewareSet 中间件依赖
var middlewareSet = wire.NewSet(
	provideJWTManager,
	provideSessionStore,
	middleware.NewAuthMiddleware,
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewAddressHandler,
	handler.NewOrderHandler,
)

// provideJWTManager 从配置创建JWT管理器
// 说明:jwt.NewManager只需要JWT相关配置,Wire无法自动从Config提取参数
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideSessionStore 从Redis客户端创建Session存储
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// provideTxManager 绑定MySQL事务管理器到应用层接口
func provideTxManager(db *gorm.DB) apporder.TxManager {
	return mysql.NewTxManager(db)
}

// provideNotifier 订单通知(Wire版本统一用空实现,MQ接入见main.go)
func provideNotifier() apporder.Notifier {
	return apporder.NopNotifier{}
}

// provideGinEngine 创建并配置Gin引擎(注册全部路由)
func provideGinEngine(
	cfg *config.Config,
	userHandler *handler.UserHandler,
	addressHandler *handler.AddressHandler,
	orderHandler *handler.OrderHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.Metrics())
	registerRoutes(r, userHandler, addressHandler, orderHandler, authMiddleware)
	return r
}

// InitializeApp 初始化整个应用
// Wire在编译期分析依赖关系并生成初始化代码
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
		provideGinEngine,
	)
	return nil, nil
}
