package handler

import (
	"net/http"
	"strconv"

	"wabackend/internal/access"
	"wabackend/internal/middleware"
	"wabackend/internal/service"
	"wabackend/pkg/response"

	"github.com/gin-gonic/gin"
)

type PrivilegeHandler struct {
	privilegeService service.PrivilegeService
	authService      service.AuthService
}

func NewPrivilegeHandler(privilegeService service.PrivilegeService, authService service.AuthService) *PrivilegeHandler {
	return &PrivilegeHandler{privilegeService: privilegeService, authService: authService}
}

func (h *PrivilegeHandler) RegisterRoutes(router *gin.RouterGroup) {
	privileges := router.Group("/api/privileges")
	{
		privileges.GET("", middleware.RequireModule(access.ModulePrivilege, access.ActionRead), h.ListPrivileges)
		privileges.POST("", middleware.RequireModule(access.ModulePrivilege, access.ActionCreate), h.CreatePrivilege)
		privileges.POST("/seed", middleware.RequireModule(access.ModulePrivilege, access.ActionCreate), h.SeedMatrix)
	}

	modules := router.Group("/api/modules")
	{
		modules.GET("", middleware.RequireModule(access.ModulePrivilege, access.ActionRead), h.ListModules)
	}

	menus := router.Group("/api/menus")
	{
		menus.GET("", middleware.RequireAuth(), h.GetMenu)
		menus.GET("/:userId", middleware.RequireAuth(), h.GetMenuForUser)
	}
}

// ListPrivileges returns every privilege level
// @Summary      List privileges
// @Description  Returns all privilege levels in canonical order
// @Tags         privileges
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Privilege}
// @Failure      500  {object}  response.Response
// @Router       /api/privileges [get]
func (h *PrivilegeHandler) ListPrivileges(c *gin.Context) {
	privileges, err := h.privilegeService.ListPrivileges(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, privileges))
}

// CreatePrivilege adds a custom privilege level
// @Summary      Create privilege
// @Description  Creates an additional privilege level. New levels get default-class matrix rows on the next seed.
// @Tags         privileges
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreatePrivilegeRequest  true  "Create Privilege Payload"
// @Success      201      {object}  response.Response{data=model.Privilege}
// @Failure      400      {object}  response.Response
// @Router       /api/privileges [post]
func (h *PrivilegeHandler) CreatePrivilege(c *gin.Context) {
	var req service.CreatePrivilegeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	privilege, err := h.privilegeService.CreatePrivilege(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, privilege))
}

// SeedMatrix rebuilds the capability matrix
// @Summary      Rebuild privilege matrix
// @Description  Rebuilds all (privilege, module) capability rows in one transaction and clears the authorization cache
// @Tags         privileges
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.SeedResult}
// @Failure      500  {object}  response.Response
// @Router       /api/privileges/seed [post]
func (h *PrivilegeHandler) SeedMatrix(c *gin.Context) {
	result, err := h.privilegeService.SeedMatrix(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	// Cached capability rows are stale after a rebuild
	middleware.ClearMatrixCache()

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ListModules returns the module catalog
// @Summary      List modules
// @Description  Returns all registered application modules
// @Tags         privileges
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Module}
// @Failure      500  {object}  response.Response
// @Router       /api/modules [get]
func (h *PrivilegeHandler) ListModules(c *gin.Context) {
	modules, err := h.privilegeService.ListModules(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, modules))
}

// GetMenu returns the caller's visible modules
// @Summary      Get menu
// @Description  Returns the sidebar entries the caller's privilege can see. Pass privilege_id to inspect another level.
// @Tags         privileges
// @Security     BearerAuth
// @Produce      json
// @Param        privilege_id  query     int  false  "Privilege ID to inspect (defaults to caller's)"
// @Success      200           {object}  response.Response{data=[]service.MenuEntry}
// @Failure      500           {object}  response.Response
// @Router       /api/menus [get]
func (h *PrivilegeHandler) GetMenu(c *gin.Context) {
	privilegeID := c.GetUint("privilegeID")
	if raw := c.Query("privilege_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid privilege_id"))
			return
		}
		privilegeID = uint(parsed)
	}

	entries, err := h.privilegeService.GetMenu(c.Request.Context(), privilegeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, entries))
}

// GetMenuForUser returns the visible modules for a specific user's privilege
// @Summary      Get menu for user
// @Description  Resolves the user's privilege and returns its visible modules
// @Tags         privileges
// @Security     BearerAuth
// @Produce      json
// @Param        userId  path      string  true  "User ID"
// @Success      200     {object}  response.Response{data=[]service.MenuEntry}
// @Failure      404     {object}  response.Response
// @Router       /api/menus/{userId} [get]
func (h *PrivilegeHandler) GetMenuForUser(c *gin.Context) {
	user, err := h.authService.GetMe(c.Request.Context(), c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	entries, err := h.privilegeService.GetMenu(c.Request.Context(), user.PrivilegeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, entries))
}
