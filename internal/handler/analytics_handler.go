package handler

import (
	"net/http"
	"time"

	"wabackend/internal/access"
	"wabackend/internal/middleware"
	"wabackend/internal/service"
	"wabackend/pkg/pagination"
	"wabackend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
	auditService     service.AuditService
	courseService    service.CourseService
}

func NewAnalyticsHandler(
	analyticsService service.AnalyticsService,
	auditService service.AuditService,
	courseService service.CourseService,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		auditService:     auditService,
		courseService:    courseService,
	}
}

func (h *AnalyticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	analytics := router.Group("/api/analytics")
	{
		analytics.GET("/orders/:customerServiceId", middleware.RequireModule(access.ModuleAnalytics, access.ActionRead), h.GetOrderAnalytics)
	}

	// The audit trail is global (admin actions, every tenant's billing refs),
	// so it sits behind the super-admin-only module like the billing routes.
	audit := router.Group("/api/audit-logs")
	{
		audit.GET("", middleware.RequireModule(access.ModuleSubscriptionPlan, access.ActionRead), h.GetAuditLogs)
	}

	course := router.Group("/api")
	{
		course.GET("/course-reminders", middleware.RequireAuth(), h.ListCourseReminders)
		course.GET("/course-feedbacks", middleware.RequireAuth(), h.ListCourseFeedbacks)
	}
}

// GetOrderAnalytics returns per-CS order aggregations
// @Summary      Order analytics
// @Description  Returns order counts and revenue per status plus a daily series for one CS account
// @Tags         analytics
// @Security     BearerAuth
// @Produce      json
// @Param        customerServiceId  path      string  true   "CS Account ID"
// @Param        start_date         query     string  false  "Start date (RFC3339, defaults to one month back)"
// @Param        end_date           query     string  false  "End date (RFC3339, defaults to now)"
// @Success      200                {object}  response.Response{data=service.OrderAnalytics}
// @Failure      400                {object}  response.Response
// @Router       /api/analytics/orders/{customerServiceId} [get]
func (h *AnalyticsHandler) GetOrderAnalytics(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	csID, err := uuid.Parse(c.Param("customerServiceId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid customer service id"))
		return
	}

	var start, end time.Time
	if raw := c.Query("start_date"); raw != "" {
		start, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid start_date"))
			return
		}
	}
	if raw := c.Query("end_date"); raw != "" {
		end, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid end_date"))
			return
		}
	}

	analytics, err := h.analyticsService.GetOrderAnalytics(c.Request.Context(), caller, csID, start, end)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, analytics))
}

// GetAuditLogs returns paginated audit history
// @Summary      List audit logs
// @Description  Returns a paginated list of audit log entries, newest first
// @Tags         analytics
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 10)"
// @Success      200    {object}  response.Response{data=object}
// @Failure      500    {object}  response.Response
// @Router       /api/audit-logs [get]
func (h *AnalyticsHandler) GetAuditLogs(c *gin.Context) {
	params := pagination.Parse(c)

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paged(http.StatusOK, logs, total, params.Page, params.Limit))
}

// ListCourseReminders returns the course reminder texts
// @Summary      List course reminders
// @Description  Returns the onboarding course reminder texts ordered by day
// @Tags         course
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.CourseReminder}
// @Failure      500  {object}  response.Response
// @Router       /api/course-reminders [get]
func (h *AnalyticsHandler) ListCourseReminders(c *gin.Context) {
	reminders, err := h.courseService.ListReminders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, reminders))
}

// ListCourseFeedbacks returns the course feedback texts
// @Summary      List course feedbacks
// @Description  Returns the onboarding course feedback-request texts ordered by day
// @Tags         course
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.CourseFeedback}
// @Failure      500  {object}  response.Response
// @Router       /api/course-feedbacks [get]
func (h *AnalyticsHandler) ListCourseFeedbacks(c *gin.Context) {
	feedbacks, err := h.courseService.ListFeedbacks(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, feedbacks))
}
