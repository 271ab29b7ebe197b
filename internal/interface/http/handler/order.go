package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apporder "github.com/sixxson/coffee-craft-service-sub000/internal/application/order"
	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/order"
	"github.com/sixxson/coffee-craft-service-sub000/internal/interface/http/dto"
	"github.com/sixxson/coffee-craft-service-sub000/internal/interface/http/middleware"
	apperrors "github.com/sixxson/coffee-craft-service-sub000/pkg/errors"
	"github.com/sixxson/coffee-craft-service-sub000/pkg/metrics"
	"github.com/sixxson/coffee-craft-service-sub000/pkg/response"
)

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	createUseCase        *apporder.CreateOrderUseCase
	updateStatusUseCase  *apporder.UpdateStatusUseCase
	updatePaymentUseCase *apporder.UpdatePaymentUseCase
	cancelUseCase        *apporder.CancelOrderUseCase
	queryUseCase         *apporder.QueryOrdersUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	createUseCase *apporder.CreateOrderUseCase,
	updateStatusUseCase *apporder.UpdateStatusUseCase,
	updatePaymentUseCase *apporder.UpdatePaymentUseCase,
	cancelUseCase *apporder.CancelOrderUseCase,
	queryUseCase *apporder.QueryOrdersUseCase,
) *OrderHandler {
	return &OrderHandler{
		createUseCase:        createUseCase,
		updateStatusUseCase:  updateStatusUseCase,
		updatePaymentUseCase: updatePaymentUseCase,
		cancelUseCase:        cancelUseCase,
		queryUseCase:         queryUseCase,
	}
}

// Create 创建订单
// @Summary      创建订单
// @Description  下单:锁定库存、应用优惠券、快照价格,全部在一个事务内完成
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateOrderRequest true "下单信息"
// @Success      201 {object} response.Response{data=dto.OrderResponse} "下单成功"
// @Failure      400 {object} response.Response "库存不足/优惠券不可用/参数错误"
// @Failure      404 {object} response.Response "商品或地址不存在"
// @Router       /api/v1/orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	shippingFee := decimal.Zero
	if req.ShippingFee != "" {
		fee, err := decimal.NewFromString(req.ShippingFee)
		if err != nil {
			response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "运费格式错误")
			return
		}
		shippingFee = fee
	}

	items := make([]apporder.CreateOrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = apporder.CreateOrderItem{
			ProductID:        item.ProductID,
			ProductVariantID: item.ProductVariantID,
			Quantity:         item.Quantity,
		}
	}

	start := time.Now()
	detail, err := h.createUseCase.Execute(c.Request.Context(), apporder.CreateOrderRequest{
		UserID:            middleware.MustGetUserID(c),
		ShippingAddressID: req.ShippingAddressID,
		PaymentMethod:     order.PaymentMethod(req.PaymentMethod),
		Items:             items,
		VoucherCode:       req.VoucherCode,
		Note:              req.Note,
		ShippingFee:       shippingFee,
	})

	if metrics.OrderCreationDuration != nil {
		metrics.OrderCreationDuration.Observe(time.Since(start).Seconds())
	}

	if err != nil {
		if metrics.OrdersFailedTotal != nil {
			metrics.OrdersFailedTotal.Inc()
		}
		response.Error(c, err)
		return
	}

	if metrics.OrdersCreatedTotal != nil {
		metrics.OrdersCreatedTotal.Inc()
		finalTotal, _ := detail.Order.FinalTotal.Float64()
		metrics.OrderFinalTotal.Observe(finalTotal)
	}

	response.Created(c, dto.ToOrderResponse(detail))
}

// Get 查询订单详情
// @Summary      订单详情
// @Description  买家查看自己的订单;STAFF/ADMIN可查看任意订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=dto.OrderResponse} "查询成功"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	detail, err := h.queryUseCase.GetByID(c.Request.Context(), orderID,
		middleware.MustGetUserID(c), middleware.GetRole(c).IsElevated())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToOrderResponse(detail))
}

// ListMine 查询我的订单
// @Summary      我的订单
// @Description  查询当前用户的订单列表,按创建时间倒序
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]dto.OrderResponse} "查询成功"
// @Router       /api/v1/orders/mine [get]
func (h *OrderHandler) ListMine(c *gin.Context) {
	details, err := h.queryUseCase.ListMine(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToOrderResponses(details))
}

// ListAll 管理端订单列表
// @Summary      订单列表(管理端)
// @Description  支持按状态/支付状态/买家过滤,分页与排序;仅STAFF/ADMIN
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "订单状态" Enums(PENDING,CONFIRMED,SHIPPED,DELIVERED,CANCELED)
// @Param        payment_status query string false "支付状态" Enums(PENDING,PAID,FAILED,REFUNDED)
// @Param        user_id query []string false "买家ID(可多个或逗号分隔)"
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页大小" default(20)
// @Param        sort_by query string false "排序字段" Enums(created_at,final_total,updated_at)
// @Param        sort_order query string false "排序方向" Enums(asc,desc)
// @Success      200 {object} response.Response{data=response.PageData} "查询成功"
// @Failure      403 {object} response.Response "无权限"
// @Router       /api/v1/admin/orders [get]
func (h *OrderHandler) ListAll(c *gin.Context) {
	var query dto.ListOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	details, total, params, err := h.queryUseCase.ListAll(c.Request.Context(), apporder.ListAllRequest{
		Status:        query.Status,
		PaymentStatus: query.PaymentStatus,
		UserIDs:       query.UserID,
		Page:          query.Page,
		PageSize:      query.PageSize,
		SortBy:        query.SortBy,
		SortOrder:     query.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	// 回显归一化后的分页参数:显式传page_size=0会绕过binding的default标签,
	// 直接回显原始值会导致分页信息失真甚至除零
	response.SuccessWithPage(c, dto.ToOrderResponses(details), total, params.Page, params.PageSize)
}

// UpdateStatus 订单状态流转
// @Summary      更新订单状态
// @Description  按状态机流转订单(取消请走取消接口);仅STAFF/ADMIN
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        request body dto.UpdateStatusRequest true "目标状态"
// @Success      200 {object} response.Response{data=dto.OrderResponse} "更新成功"
// @Failure      400 {object} response.Response "非法状态流转"
// @Failure      403 {object} response.Response "无权限"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/admin/orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	o, err := h.updateStatusUseCase.Execute(c.Request.Context(), orderID,
		middleware.MustGetUserID(c), order.OrderStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToOrderResponse(&apporder.Detail{Order: o}))
}

// UpdatePayment 更新支付状态
// @Summary      更新支付状态
// @Description  更新支付状态,可同时记录外部支付流水号;仅STAFF/ADMIN
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        request body dto.UpdatePaymentRequest true "支付状态"
// @Success      200 {object} response.Response{data=dto.OrderResponse} "更新成功"
// @Failure      403 {object} response.Response "无权限"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/admin/orders/{id}/payment-status [put]
func (h *OrderHandler) UpdatePayment(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	o, err := h.updatePaymentUseCase.Execute(c.Request.Context(), apporder.UpdatePaymentRequest{
		OrderID:       orderID,
		ActorID:       middleware.MustGetUserID(c),
		PaymentStatus: order.PaymentStatus(req.PaymentStatus),
		TransactionID: req.TransactionID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToOrderResponse(&apporder.Detail{Order: o}))
}

// Cancel 取消订单
// @Summary      取消订单
// @Description  取消订单并回补库存/归还优惠券;买家可取消自己的订单,STAFF/ADMIN可取消任意订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=dto.OrderResponse} "取消成功"
// @Failure      400 {object} response.Response "当前状态不允许取消"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/orders/{id}/cancel [put]
//
// 说明:买家取消他人订单时不返回403而是404(订单不存在),
// 避免通过状态码探测出订单ID是否存在。用例层对归属校验失败
// 统一返回ErrOrderNotFound,此处按404映射。
func (h *OrderHandler) Cancel(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	o, err := h.cancelUseCase.Execute(c.Request.Context(), orderID,
		middleware.MustGetUserID(c), middleware.GetRole(c).IsElevated())
	if err != nil {
		response.Error(c, err)
		return
	}

	if metrics.OrdersCanceledTotal != nil {
		metrics.OrdersCanceledTotal.Inc()
	}

	response.Success(c, dto.ToOrderResponse(&apporder.Detail{Order: o}))
}

// History 查询订单审计历史
// @Summary      订单变更历史
// @Description  查询订单的全部审计记录,按时间倒序
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=[]dto.OrderHistoryResponse} "查询成功"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/orders/{id}/history [get]
func (h *OrderHandler) History(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	histories, err := h.queryUseCase.GetHistory(c.Request.Context(), orderID,
		middleware.MustGetUserID(c), middleware.GetRole(c).IsElevated())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToOrderHistoryResponses(histories))
}

// parseIDParam 解析路径中的订单ID
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "无效的订单ID")
		return 0, false
	}
	return uint(id), true
}
