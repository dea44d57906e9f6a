package handler

import (
	"net/http"

	"wabackend/internal/access"
	"wabackend/internal/middleware"
	"wabackend/internal/model"
	"wabackend/internal/repository"
	"wabackend/internal/service"
	"wabackend/pkg/pagination"
	"wabackend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/api/orders")
	{
		orders.POST("", middleware.RequireModule(access.ModuleOrder, access.ActionCreate), h.CreateOrder)
		orders.GET("", middleware.RequireModule(access.ModuleOrder, access.ActionRead), h.ListOrders)
		orders.GET("/:orderId", middleware.RequireModule(access.ModuleOrder, access.ActionRead), h.GetOrder)
		orders.PATCH("/:orderId", middleware.RequireModule(access.ModuleOrder, access.ActionEdit), h.UpdateOrderStatus)
		orders.GET("/:orderId/message", middleware.RequireModule(access.ModuleOrder, access.ActionRead), h.PreviewOrderMessage)
	}

	messages := router.Group("/api/order-messages")
	{
		messages.GET("", middleware.RequireModule(access.ModuleOrder, access.ActionRead), h.ListOrderMessages)
		messages.PUT("", middleware.RequireModule(access.ModuleOrder, access.ActionEdit), h.UpsertOrderMessage)
	}
}

// CreateOrder records a new customer order
// @Summary      Create order
// @Description  Creates a PENDING order with a generated order code
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateOrderRequest  true  "Create Order Payload"
// @Success      201      {object}  response.Response{data=model.Order}
// @Failure      400      {object}  response.Response
// @Router       /api/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	csID, ok := callerID(c)
	if !ok {
		return
	}

	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), csID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, order))
}

// ListOrders lists the caller's orders
// @Summary      List orders
// @Description  Returns a paginated list of the CS account's orders, optionally filtered by status
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Filter by status (PENDING, COMPLETED, CANCELED)"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 10)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /api/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	csID, ok := callerID(c)
	if !ok {
		return
	}

	params := pagination.Parse(c)
	filter := repository.OrderFilter{
		CustomerServiceID: csID,
		Status:            c.Query("status"),
		Page:              params.Page,
		Limit:             params.Limit,
	}

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paged(http.StatusOK, orders, total, params.Page, params.Limit))
}

// GetOrder returns one order
// @Summary      Get order
// @Description  Returns a single order of the CS account
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        orderId  path      string  true  "Order ID"
// @Success      200      {object}  response.Response{data=model.Order}
// @Failure      404      {object}  response.Response
// @Router       /api/orders/{orderId} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	csID, ok := callerID(c)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid order id"))
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), csID, orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// UpdateOrderStatus completes or cancels a pending order
// @Summary      Update order status
// @Description  Moves a PENDING order to COMPLETED or CANCELED. Terminal states never change again.
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        orderId  path      string                            true  "Order ID"
// @Param        payload  body      service.UpdateOrderStatusRequest  true  "Status Payload"
// @Success      200      {object}  response.Response{data=model.Order}
// @Failure      400      {object}  response.Response
// @Router       /api/orders/{orderId} [patch]
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	csID, ok := callerID(c)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid order id"))
		return
	}

	var req service.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), csID, orderID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// PreviewOrderMessage renders the stage notification text for an order
// @Summary      Preview order message
// @Description  Returns the configured stage message with placeholders filled from the order
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        orderId  path      string  true   "Order ID"
// @Param        stage    query     string  false  "Order stage (CREATED, COMPLETED, CANCELED; defaults to CREATED)"
// @Success      200      {object}  response.Response{data=object}
// @Failure      404      {object}  response.Response
// @Router       /api/orders/{orderId}/message [get]
func (h *OrderHandler) PreviewOrderMessage(c *gin.Context) {
	csID, ok := callerID(c)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid order id"))
		return
	}

	stage := c.DefaultQuery("stage", model.OrderStageCreated)

	order, err := h.orderService.GetOrder(c.Request.Context(), csID, orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	body, err := h.orderService.RenderStageMessage(c.Request.Context(), csID, order, stage)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"stage": stage, "message": body}))
}

// ListOrderMessages returns the caller's stage message templates
// @Summary      List order messages
// @Description  Returns the notification texts configured per order stage
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.OrderMessage}
// @Failure      500  {object}  response.Response
// @Router       /api/order-messages [get]
func (h *OrderHandler) ListOrderMessages(c *gin.Context) {
	csID, ok := callerID(c)
	if !ok {
		return
	}

	messages, err := h.orderService.ListOrderMessages(c.Request.Context(), csID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, messages))
}

// UpsertOrderMessage sets the notification text for one stage
// @Summary      Upsert order message
// @Description  Creates or replaces the notification text for one order stage
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.UpsertOrderMessageRequest  true  "Order Message Payload"
// @Success      200      {object}  response.Response{data=model.OrderMessage}
// @Failure      400      {object}  response.Response
// @Router       /api/order-messages [put]
func (h *OrderHandler) UpsertOrderMessage(c *gin.Context) {
	csID, ok := callerID(c)
	if !ok {
		return
	}

	var req service.UpsertOrderMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	message, err := h.orderService.UpsertOrderMessage(c.Request.Context(), csID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, message))
}
