package handler

import (
	"net/http"
	"strconv"

	"wabackend/internal/access"
	"wabackend/internal/middleware"
	"wabackend/internal/repository"
	"wabackend/internal/service"
	"wabackend/pkg/pagination"
	"wabackend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

func (h *SubscriptionHandler) RegisterRoutes(router *gin.RouterGroup) {
	plans := router.Group("/api/subscription-plans")
	{
		plans.GET("", middleware.RequireModule(access.ModuleSubscriptionPlan, access.ActionRead), h.ListPlans)
		plans.POST("", middleware.RequireModule(access.ModuleSubscriptionPlan, access.ActionCreate), h.CreatePlan)
		plans.PUT("/:id", middleware.RequireModule(access.ModuleSubscriptionPlan, access.ActionEdit), h.UpdatePlan)
		plans.DELETE("/:id", middleware.RequireModule(access.ModuleSubscriptionPlan, access.ActionDelete), h.DeletePlan)
	}

	admin := router.Group("/api/admin")
	{
		admin.POST("/users", middleware.RequireModule(access.ModuleSubscriptionPlan, access.ActionCreate), h.ProvisionUser)
	}

	// Billing administration is a super-admin surface, so these routes sit
	// behind subscriptionPlan, the one module the matrix reserves to super
	// admins. The transaction module itself is matrix data, not a route guard.
	transactions := router.Group("/api/transactions")
	{
		transactions.GET("", middleware.RequireModule(access.ModuleSubscriptionPlan, access.ActionRead), h.ListTransactions)
		transactions.PATCH("/:id", middleware.RequireModule(access.ModuleSubscriptionPlan, access.ActionEdit), h.MarkTransactionPaid)
	}

	subscription := router.Group("/api/subscription")
	{
		subscription.GET("", middleware.RequireModule(access.ModuleSubscription, access.ActionRead), h.GetMySubscription)
	}
}

// ListPlans returns the plan catalog
// @Summary      List subscription plans
// @Description  Returns all subscription plans; pass active=true to filter
// @Tags         subscriptions
// @Security     BearerAuth
// @Produce      json
// @Param        active  query     bool  false  "Only active plans"
// @Success      200     {object}  response.Response{data=[]model.SubscriptionPlan}
// @Failure      500     {object}  response.Response
// @Router       /api/subscription-plans [get]
func (h *SubscriptionHandler) ListPlans(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	plans, err := h.subscriptionService.ListPlans(c.Request.Context(), activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, plans))
}

// CreatePlan adds a plan to the catalog
// @Summary      Create subscription plan
// @Description  Creates a new subscription plan
// @Tags         subscriptions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreatePlanRequest  true  "Create Plan Payload"
// @Success      201      {object}  response.Response{data=model.SubscriptionPlan}
// @Failure      400      {object}  response.Response
// @Router       /api/subscription-plans [post]
func (h *SubscriptionHandler) CreatePlan(c *gin.Context) {
	actorID, ok := callerID(c)
	if !ok {
		return
	}

	var req service.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	plan, err := h.subscriptionService.CreatePlan(c.Request.Context(), actorID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, plan))
}

// UpdatePlan updates a plan
// @Summary      Update subscription plan
// @Description  Updates plan pricing, limits or active flag
// @Tags         subscriptions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                        true  "Plan ID"
// @Param        payload  body      service.UpdatePlanRequest  true  "Update Plan Payload"
// @Success      200      {object}  response.Response{data=model.SubscriptionPlan}
// @Failure      400      {object}  response.Response
// @Router       /api/subscription-plans/{id} [put]
func (h *SubscriptionHandler) UpdatePlan(c *gin.Context) {
	actorID, ok := callerID(c)
	if !ok {
		return
	}

	planID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid plan id"))
		return
	}

	var req service.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	plan, err := h.subscriptionService.UpdatePlan(c.Request.Context(), actorID, uint(planID), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, plan))
}

// DeletePlan removes an unused plan
// @Summary      Delete subscription plan
// @Description  Soft-deletes a plan without subscriptions
// @Tags         subscriptions
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Plan ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/subscription-plans/{id} [delete]
func (h *SubscriptionHandler) DeletePlan(c *gin.Context) {
	actorID, ok := callerID(c)
	if !ok {
		return
	}

	planID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid plan id"))
		return
	}

	if err := h.subscriptionService.DeletePlan(c.Request.Context(), actorID, uint(planID)); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "plan deleted"}))
}

// ProvisionUser creates a tenant with subscription and billing record
// @Summary      Provision user
// @Description  Creates a verified tenant account, an active subscription and a pending transaction in one transaction
// @Tags         subscriptions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ProvisionUserRequest  true  "Provision User Payload"
// @Success      201      {object}  response.Response{data=service.UserResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/admin/users [post]
func (h *SubscriptionHandler) ProvisionUser(c *gin.Context) {
	actorID, ok := callerID(c)
	if !ok {
		return
	}

	var req service.ProvisionUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	user, err := h.subscriptionService.ProvisionUser(c.Request.Context(), actorID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, user))
}

// ListTransactions lists billing transactions
// @Summary      List transactions
// @Description  Returns a paginated list of billing transactions, optionally filtered by status
// @Tags         subscriptions
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Filter by status (PENDING, PAID, FAILED)"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 10)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /api/transactions [get]
func (h *SubscriptionHandler) ListTransactions(c *gin.Context) {
	params := pagination.Parse(c)
	filter := repository.TransactionFilter{
		Status: c.Query("status"),
		Page:   params.Page,
		Limit:  params.Limit,
	}

	transactions, total, err := h.subscriptionService.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paged(http.StatusOK, transactions, total, params.Page, params.Limit))
}

// MarkTransactionPaid settles a pending transaction
// @Summary      Mark transaction paid
// @Description  Settles a pending transaction and activates or extends the tenant's subscription
// @Tags         subscriptions
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Transaction ID"
// @Success      200  {object}  response.Response{data=model.Transaction}
// @Failure      400  {object}  response.Response
// @Router       /api/transactions/{id} [patch]
func (h *SubscriptionHandler) MarkTransactionPaid(c *gin.Context) {
	actorID, ok := callerID(c)
	if !ok {
		return
	}

	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid transaction id"))
		return
	}

	trx, err := h.subscriptionService.MarkTransactionPaid(c.Request.Context(), actorID, transactionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, trx))
}

// GetMySubscription returns the caller's active subscription
// @Summary      Current subscription
// @Description  Returns the caller's active subscription with plan details
// @Tags         subscriptions
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=model.Subscription}
// @Failure      404  {object}  response.Response
// @Router       /api/subscription [get]
func (h *SubscriptionHandler) GetMySubscription(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	sub, err := h.subscriptionService.GetUserSubscription(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, sub))
}
