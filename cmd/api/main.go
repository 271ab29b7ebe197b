package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	appaddress "github.com/sixxson/coffee-craft-service-sub000/internal/application/address"
	apporder "github.com/sixxson/coffee-craft-service-sub000/internal/application/order"
	appuser "github.com/sixxson/coffee-craft-service-sub000/internal/application/user"
	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/user"
	"github.com/sixxson/coffee-craft-service-sub000/internal/infrastructure/config"
	"github.com/sixxson/coffee-craft-service-sub000/internal/infrastructure/notification"
	"github.com/sixxson/coffee-craft-service-sub000/internal/infrastructure/persistence/mysql"
	"github.com/sixxson/coffee-craft-service-sub000/internal/infrastructure/persistence/redis"
	"github.com/sixxson/coffee-craft-service-sub000/internal/interface/http/handler"
	"github.com/sixxson/coffee-craft-service-sub000/internal/interface/http/middleware"
	"github.com/sixxson/coffee-craft-service-sub000/pkg/jwt"
	"github.com/sixxson/coffee-craft-service-sub000/pkg/metrics"
	"github.com/sixxson/coffee-craft-service-sub000/pkg/mq"
	"github.com/sixxson/coffee-craft-service-sub000/pkg/response"
	"github.com/sixxson/coffee-craft-service-sub000/pkg/tracing"
)

// @title        Coffee Craft API
// @version      1.0
// @description  咖啡器具电商后端:下单、库存、优惠券、订单生命周期管理
// @BasePath     /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// main 主程序入口
// 说明:手动依赖注入(wire.go中保留了Wire配置,可用wire gen生成等价代码)
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 数据库: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Printf("  - Redis: %s\n", cfg.Redis.Addr())

	// 2. 初始化指标
	metrics.InitMetrics()

	// 3. 初始化链路追踪(可选)
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRate)
		if err != nil {
			log.Fatalf("初始化链路追踪失败: %v", err)
		}
		defer shutdown(context.Background())
		fmt.Printf("✓ 链路追踪已启用: %s\n", cfg.Tracing.Endpoint)
	}

	// 4. 初始化数据库与Redis
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 5. 初始化消息队列(可选,未启用时通知降级为空实现)
	var notifier apporder.Notifier = apporder.NopNotifier{}
	if cfg.MQ.Enabled {
		publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
		if err != nil {
			log.Fatalf("初始化消息队列失败: %v", err)
		}
		defer publisher.Close()
		notifier = notification.NewOrderEventPublisher(publisher)
	}

	// 6. 依赖注入(手动组装)
	// 依赖链:Repository ← Service/UseCase ← Handler

	// 基础设施层
	userRepo := mysql.NewUserRepository(db)
	addressRepo := mysql.NewAddressRepository(db)
	productRepo := mysql.NewProductRepository(db)
	voucherRepo := mysql.NewVoucherRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	historyRepo := mysql.NewHistoryRepository(db)
	txManager := mysql.NewTxManager(db)
	sessionStore := redis.NewSessionStore(redisClient)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 领域层
	userService := user.NewService(userRepo)

	// 应用层
	registerUseCase := appuser.NewRegisterUseCase(userService)
	loginUseCase := appuser.NewLoginUseCase(userService, jwtManager, sessionStore)
	logoutUseCase := appuser.NewLogoutUseCase(sessionStore)
	refreshUseCase := appuser.NewRefreshUseCase(jwtManager)
	addressUseCase := appaddress.NewManageUseCase(addressRepo)
	createOrderUseCase := apporder.NewCreateOrderUseCase(
		orderRepo, historyRepo, productRepo, voucherRepo, addressRepo, userRepo, txManager, notifier)
	updateStatusUseCase := apporder.NewUpdateStatusUseCase(orderRepo, historyRepo, txManager)
	updatePaymentUseCase := apporder.NewUpdatePaymentUseCase(orderRepo, historyRepo, txManager)
	cancelOrderUseCase := apporder.NewCancelOrderUseCase(
		orderRepo, historyRepo, productRepo, voucherRepo, txManager, notifier)
	queryOrdersUseCase := apporder.NewQueryOrdersUseCase(
		orderRepo, historyRepo, addressRepo, userRepo, voucherRepo, txManager)

	// 接口层
	userHandler := handler.NewUserHandler(registerUseCase, loginUseCase, logoutUseCase, refreshUseCase)
	addressHandler := handler.NewAddressHandler(addressUseCase)
	orderHandler := handler.NewOrderHandler(
		createOrderUseCase, updateStatusUseCase, updatePaymentUseCase, cancelOrderUseCase, queryOrdersUseCase)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	// 7. 初始化Gin引擎并注册路由
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.Metrics())
	if cfg.Tracing.Enabled {
		r.Use(middleware.Tracing(cfg.Tracing.ServiceName))
	}

	registerRoutes(r, userHandler, addressHandler, orderHandler, authMiddleware)

	// 8. 启动服务(优雅停机)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		fmt.Printf("\n🚀 服务启动成功！\n")
		fmt.Printf("   访问地址: http://localhost%s\n", addr)
		fmt.Printf("   健康检查: http://localhost%s/ping\n", addr)
		fmt.Printf("   指标端点: http://localhost%s/metrics\n", addr)
		fmt.Printf("   API文档: http://localhost%s/swagger/index.html\n", addr)
		fmt.Printf("\n按Ctrl+C停止服务\n\n")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("启动服务失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\n正在停止服务...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务停止失败: %v", err)
	}
	fmt.Println("服务已停止")
}

// registerRoutes 注册路由
func registerRoutes(
	r *gin.Engine,
	userHandler *handler.UserHandler,
	addressHandler *handler.AddressHandler,
	orderHandler *handler.OrderHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标端点
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档(生产环境建议禁用或加访问控制)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		// 用户模块(公开接口)
		users := v1.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
			users.POST("/refresh", userHandler.Refresh)
			users.POST("/logout", authMiddleware.RequireAuth(), userHandler.Logout)
		}

		// 需要登录的接口
		authorized := v1.Group("")
		authorized.Use(authMiddleware.RequireAuth())
		{
			// 收货地址
			authorized.POST("/addresses", addressHandler.Create)
			authorized.GET("/addresses", addressHandler.ListMine)

			// 订单(买家侧)
			authorized.POST("/orders", orderHandler.Create)
			authorized.GET("/orders/mine", orderHandler.ListMine)
			authorized.GET("/orders/:id", orderHandler.Get)
			authorized.PUT("/orders/:id/cancel", orderHandler.Cancel)
			authorized.GET("/orders/:id/history", orderHandler.History)
		}

		// 订单管理(仅STAFF/ADMIN)
		admin := v1.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireElevated())
		{
			admin.GET("/orders", orderHandler.ListAll)
			admin.PUT("/orders/:id/status", orderHandler.UpdateStatus)
			admin.PUT("/orders/:id/payment-status", orderHandler.UpdatePayment)
		}
	}
}
