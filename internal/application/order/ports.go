package order

import (
	"context"

	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/order"
)

// TxManager 事务管理端口
// 设计说明:应用层只依赖接口,MySQL实现在infrastructure层
// (mysql.TxManager),测试中可以用直通实现替代,无需真实数据库
type TxManager interface {
	// Transaction 在一个数据库事务中执行fn
	// fn返回error时整体回滚,返回nil时提交
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier 订单通知端口
// 说明:下单成功提交事务后的尽力而为通知(邮件/消息),
// 失败只记日志,绝不影响订单结果
type Notifier interface {
	// OrderCreated 发送下单确认通知
	OrderCreated(ctx context.Context, o *order.Order)

	// OrderCanceled 发送订单取消通知
	OrderCanceled(ctx context.Context, o *order.Order)
}

// NopNotifier 空通知实现(测试或未配置MQ时使用)
type NopNotifier struct{}

func (NopNotifier) OrderCreated(ctx context.Context, o *order.Order)  {}
func (NopNotifier) OrderCanceled(ctx context.Context, o *order.Order) {}
