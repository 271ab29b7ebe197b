package handler

import (
	"github.com/gin-gonic/gin"

	appaddress "github.com/sixxson/coffee-craft-service-sub000/internal/application/address"
	"github.com/sixxson/coffee-craft-service-sub000/internal/interface/http/dto"
	"github.com/sixxson/coffee-craft-service-sub000/internal/interface/http/middleware"
	apperrors "github.com/sixxson/coffee-craft-service-sub000/pkg/errors"
	"github.com/sixxson/coffee-craft-service-sub000/pkg/response"
)

// AddressHandler 收货地址HTTP处理器
type AddressHandler struct {
	manageUseCase *appaddress.ManageUseCase
}

// NewAddressHandler 创建地址处理器
func NewAddressHandler(manageUseCase *appaddress.ManageUseCase) *AddressHandler {
	return &AddressHandler{manageUseCase: manageUseCase}
}

// Create 新增收货地址
// @Summary      新增收货地址
// @Tags         地址
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateAddressRequest true "地址信息"
// @Success      201 {object} response.Response{data=dto.AddressResponse} "创建成功"
// @Failure      400 {object} response.Response "参数错误"
// @Router       /api/v1/addresses [post]
func (h *AddressHandler) Create(c *gin.Context) {
	var req dto.CreateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	a, err := h.manageUseCase.Create(c.Request.Context(), appaddress.CreateRequest{
		UserID:    middleware.MustGetUserID(c),
		Recipient: req.Recipient,
		Phone:     req.Phone,
		Street:    req.Street,
		City:      req.City,
		District:  req.District,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToAddressResponse(a))
}

// ListMine 查询我的收货地址
// @Summary      我的收货地址
// @Tags         地址
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]dto.AddressResponse} "查询成功"
// @Router       /api/v1/addresses [get]
func (h *AddressHandler) ListMine(c *gin.Context) {
	addresses, err := h.manageUseCase.ListMine(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToAddressResponses(addresses))
}
