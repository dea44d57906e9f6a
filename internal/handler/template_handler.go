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

type TemplateHandler struct {
	templateService service.TemplateService
}

func NewTemplateHandler(templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

func (h *TemplateHandler) RegisterRoutes(router *gin.RouterGroup) {
	templates := router.Group("/api/templates")
	{
		templates.POST("", middleware.RequireModule(access.ModuleTemplate, access.ActionCreate), h.CreateTemplate)
		templates.GET("", middleware.RequireModule(access.ModuleTemplate, access.ActionRead), h.ListTemplates)
		templates.GET("/:id", middleware.RequireModule(access.ModuleTemplate, access.ActionRead), h.GetTemplate)
		templates.PUT("/:id", middleware.RequireModule(access.ModuleTemplate, access.ActionEdit), h.UpdateTemplate)
		templates.DELETE("/:id", middleware.RequireModule(access.ModuleTemplate, access.ActionDelete), h.DeleteTemplate)
	}
}

// CreateTemplate creates a message template
// @Summary      Create template
// @Description  Creates a reusable message template for the caller
// @Tags         templates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateTemplateRequest  true  "Create Template Payload"
// @Success      201      {object}  response.Response{data=model.Template}
// @Failure      400      {object}  response.Response
// @Router       /api/templates [post]
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req service.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	template, err := h.templateService.CreateTemplate(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, template))
}

// ListTemplates lists the caller's templates
// @Summary      List templates
// @Description  Returns a paginated list of the caller's templates
// @Tags         templates
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 10)"
// @Success      200    {object}  response.Response{data=object}
// @Failure      500    {object}  response.Response
// @Router       /api/templates [get]
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	params := pagination.Parse(c)
	templates, total, err := h.templateService.ListTemplates(c.Request.Context(), userID, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paged(http.StatusOK, templates, total, params.Page, params.Limit))
}

// GetTemplate returns one template
// @Summary      Get template
// @Description  Returns a single template of the caller
// @Tags         templates
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Template ID"
// @Success      200  {object}  response.Response{data=model.Template}
// @Failure      404  {object}  response.Response
// @Router       /api/templates/{id} [get]
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid id"))
		return
	}

	template, err := h.templateService.GetTemplate(c.Request.Context(), userID, templateID)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, template))
}

// UpdateTemplate updates a template
// @Summary      Update template
// @Description  Updates name or body of a template
// @Tags         templates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Template ID"
// @Param        payload  body      service.UpdateTemplateRequest  true  "Update Template Payload"
// @Success      200      {object}  response.Response{data=model.Template}
// @Failure      400      {object}  response.Response
// @Router       /api/templates/{id} [put]
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid id"))
		return
	}

	var req service.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	template, err := h.templateService.UpdateTemplate(c.Request.Context(), userID, templateID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, template))
}

// DeleteTemplate removes a template
// @Summary      Delete template
// @Description  Soft-deletes a template of the caller
// @Tags         templates
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Template ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/templates/{id} [delete]
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid id"))
		return
	}

	if err := h.templateService.DeleteTemplate(c.Request.Context(), userID, templateID); err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "template deleted"}))
}
