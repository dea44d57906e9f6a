package handler

import (
	"net/http"

	"wabackend/internal/access"
	"wabackend/internal/middleware"
	"wabackend/internal/service"
	"wabackend/pkg/pagination"
	"wabackend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CustomerServiceHandler struct {
	csService service.CustomerServiceService
}

func NewCustomerServiceHandler(csService service.CustomerServiceService) *CustomerServiceHandler {
	return &CustomerServiceHandler{csService: csService}
}

func (h *CustomerServiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	cs := router.Group("/api/customer-services")
	{
		cs.POST("/login", h.LoginCS)
		cs.POST("/register", middleware.RequireModule(access.ModuleCustomerService, access.ActionCreate), h.CreateCS)
		cs.GET("", middleware.RequireModule(access.ModuleCustomerService, access.ActionRead), h.ListCS)
		cs.GET("/:id", middleware.RequireModule(access.ModuleCustomerService, access.ActionRead), h.GetCS)
		cs.PUT("/:id", middleware.RequireModule(access.ModuleCustomerService, access.ActionEdit), h.UpdateCS)
	}

	devices := router.Group("/api/devices")
	{
		devices.POST("", middleware.RequireModule(access.ModuleDevice, access.ActionCreate), h.CreateDevice)
		devices.GET("", middleware.RequireModule(access.ModuleDevice, access.ActionRead), h.ListDevices)
		devices.PATCH("/:id/status", middleware.RequireModule(access.ModuleDevice, access.ActionEdit), h.SetDeviceStatus)
	}
}

// callerID parses the authenticated account ID set by the auth middleware
func callerID(c *gin.Context) (uuid.UUID, bool) {
	raw, _ := c.Get("accountID")
	s, _ := raw.(string)
	id, err := uuid.Parse(s)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid account identity"))
		return uuid.Nil, false
	}
	return id, true
}

// CreateCS registers a customer service sub-account
// @Summary      Register CS account
// @Description  Creates a CS sub-account bound to one of the caller's devices
// @Tags         customer-services
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateCSRequest  true  "Create CS Payload"
// @Success      201      {object}  response.Response{data=service.CSResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/customer-services/register [post]
func (h *CustomerServiceHandler) CreateCS(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req service.CreateCSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	cs, err := h.csService.CreateCS(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, cs))
}

// LoginCS authenticates a CS sub-account
// @Summary      CS login
// @Description  Authenticates a CS sub-account scoped by the owner's email
// @Tags         customer-services
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginCSRequest  true  "CS Login Payload"
// @Success      200      {object}  response.Response{data=object}
// @Failure      401      {object}  response.Response
// @Router       /api/customer-services/login [post]
func (h *CustomerServiceHandler) LoginCS(c *gin.Context) {
	var req service.LoginCSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	pair, cs, err := h.csService.LoginCS(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"tokens":  pair,
		"account": cs,
	}))
}

// GetCS returns one CS sub-account of the caller
// @Summary      Get CS account
// @Description  Returns a single CS sub-account belonging to the caller
// @Tags         customer-services
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "CS Account ID"
// @Success      200  {object}  response.Response{data=service.CSResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/customer-services/{id} [get]
func (h *CustomerServiceHandler) GetCS(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	csID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid id"))
		return
	}

	cs, err := h.csService.GetCS(c.Request.Context(), userID, csID)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, cs))
}

// ListCS lists the caller's CS sub-accounts
// @Summary      List CS accounts
// @Description  Returns a paginated list of the caller's CS sub-accounts
// @Tags         customer-services
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 10)"
// @Success      200    {object}  response.Response{data=object}
// @Failure      500    {object}  response.Response
// @Router       /api/customer-services [get]
func (h *CustomerServiceHandler) ListCS(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	params := pagination.Parse(c)
	accounts, total, err := h.csService.ListCS(c.Request.Context(), userID, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paged(http.StatusOK, accounts, total, params.Page, params.Limit))
}

// UpdateCS updates a CS sub-account
// @Summary      Update CS account
// @Description  Updates password, device binding or active flag of a CS sub-account
// @Tags         customer-services
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                   true  "CS Account ID"
// @Param        payload  body      service.UpdateCSRequest  true  "Update CS Payload"
// @Success      200      {object}  response.Response{data=service.CSResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/customer-services/{id} [put]
func (h *CustomerServiceHandler) UpdateCS(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	csID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid id"))
		return
	}

	var req service.UpdateCSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	cs, err := h.csService.UpdateCS(c.Request.Context(), userID, csID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, cs))
}

// CreateDevice registers a device slot
// @Summary      Create device
// @Description  Registers a new device slot within the caller's plan limit
// @Tags         devices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateDeviceRequest  true  "Create Device Payload"
// @Success      201      {object}  response.Response{data=model.Device}
// @Failure      400      {object}  response.Response
// @Router       /api/devices [post]
func (h *CustomerServiceHandler) CreateDevice(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req service.CreateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	device, err := h.csService.CreateDevice(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, device))
}

// ListDevices lists the caller's devices
// @Summary      List devices
// @Description  Returns all device slots of the caller
// @Tags         devices
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Device}
// @Failure      500  {object}  response.Response
// @Router       /api/devices [get]
func (h *CustomerServiceHandler) ListDevices(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	devices, err := h.csService.ListDevices(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, devices))
}

// SetDeviceStatus updates a device connection status
// @Summary      Set device status
// @Description  Marks a device CONNECTED or DISCONNECTED
// @Tags         devices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string  true  "Device ID"
// @Param        payload  body      object  true  "Status Payload"
// @Success      200      {object}  response.Response{data=model.Device}
// @Failure      400      {object}  response.Response
// @Router       /api/devices/{id}/status [patch]
func (h *CustomerServiceHandler) SetDeviceStatus(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	deviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid id"))
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	device, err := h.csService.SetDeviceStatus(c.Request.Context(), userID, deviceID, req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, device))
}
