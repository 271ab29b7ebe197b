// Package notification 订单事件通知
//
// 设计说明:
// 1. 下单事务提交后发布order.created事件到RabbitMQ,
//    下游(邮件、履约、报表)各自订阅消费,与下单主流程解耦
// 2. 发布失败只记日志,绝不回滚已提交的订单
// 3. 发布在独立goroutine中进行,下单接口不等待MQ确认
// 4. 熔断器保护:RabbitMQ持续不可用时快速失败,不堆积goroutine
package notification

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/order"
	"github.com/sixxson/coffee-craft-service-sub000/pkg/circuitbreaker"
	"github.com/sixxson/coffee-craft-service-sub000/pkg/metrics"
	"github.com/sixxson/coffee-craft-service-sub000/pkg/mq"
)

const (
	routingKeyOrderCreated  = "order.created"
	routingKeyOrderCanceled = "order.canceled"

	// publishTimeout 单条事件的发布超时
	publishTimeout = 5 * time.Second
)

// OrderCreatedEvent 下单事件载荷
type OrderCreatedEvent struct {
	OrderID       uint            `json:"order_id"`
	OrderNo       string          `json:"order_no"`
	UserID        uint            `json:"user_id"`
	FinalTotal    decimal.Decimal `json:"final_total"`
	PaymentMethod string          `json:"payment_method"`
	ItemCount     int             `json:"item_count"`
	CreatedAt     time.Time       `json:"created_at"`
}

// OrderCanceledEvent 取消事件载荷
type OrderCanceledEvent struct {
	OrderID    uint      `json:"order_id"`
	OrderNo    string    `json:"order_no"`
	UserID     uint      `json:"user_id"`
	CanceledAt time.Time `json:"canceled_at"`
}

// messagePublisher 消息发布能力,由pkg/mq的Publisher实现
type messagePublisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// OrderEventPublisher 订单事件发布器
// 实现application层的Notifier接口
type OrderEventPublisher struct {
	publisher messagePublisher
	breaker   *circuitbreaker.CircuitBreaker
}

// NewOrderEventPublisher 创建订单事件发布器
func NewOrderEventPublisher(publisher *mq.Publisher) *OrderEventPublisher {
	return newOrderEventPublisher(publisher)
}

func newOrderEventPublisher(publisher messagePublisher) *OrderEventPublisher {
	cb := circuitbreaker.NewCircuitBreaker("order-events-mq", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	cb.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		log.Printf("熔断器[%s]状态变化: %s -> %s", name, from, to)
		if metrics.CircuitBreakerState != nil {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		}
	})

	return &OrderEventPublisher{
		publisher: publisher,
		breaker:   cb,
	}
}

// OrderCreated 发布下单事件
// 调用方在事务提交后调用;发布在后台进行,立即返回,
// MQ故障不会传导到下单接口
func (p *OrderEventPublisher) OrderCreated(ctx context.Context, o *order.Order) {
	event := OrderCreatedEvent{
		OrderID:       o.ID,
		OrderNo:       o.OrderNo,
		UserID:        o.UserID,
		FinalTotal:    o.FinalTotal,
		PaymentMethod: o.PaymentMethod.String(),
		ItemCount:     len(o.Items),
		CreatedAt:     o.CreatedAt,
	}
	go p.publish(routingKeyOrderCreated, event)
}

// OrderCanceled 发布取消事件
func (p *OrderEventPublisher) OrderCanceled(ctx context.Context, o *order.Order) {
	event := OrderCanceledEvent{
		OrderID:    o.ID,
		OrderNo:    o.OrderNo,
		UserID:     o.UserID,
		CanceledAt: o.UpdatedAt,
	}
	go p.publish(routingKeyOrderCanceled, event)
}

// publish 发布单条事件
// 不复用请求context:HTTP响应返回后请求context即被取消,
// 后台发布需要自己的超时
func (p *OrderEventPublisher) publish(routingKey string, event interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err := p.breaker.Execute(func() error {
		return p.publisher.Publish(ctx, routingKey, event)
	})

	result := "success"
	switch {
	case err == circuitbreaker.ErrOpenState:
		result = "rejected"
		log.Printf("订单事件被熔断器拒绝: key=%s", routingKey)
	case err != nil:
		result = "failure"
		log.Printf("订单事件发布失败: key=%s, err=%v", routingKey, err)
	}

	if metrics.MessagesPublishedTotal != nil {
		metrics.MessagesPublishedTotal.WithLabelValues(routingKey, result).Inc()
	}
}
