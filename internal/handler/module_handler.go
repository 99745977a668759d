package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/docs-platform-api/internal/dto"
	"github.com/noah-isme/docs-platform-api/internal/models"
	"github.com/noah-isme/docs-platform-api/pkg/response"
)

type moduleService interface {
	List(ctx context.Context) ([]models.Module, error)
	Get(ctx context.Context, id int64) (*models.Module, error)
	Create(ctx context.Context, req dto.ModuleCreateRequest) (*models.Module, error)
	Update(ctx context.Context, id int64, req dto.ModuleUpdateRequest) (*models.Module, error)
	Delete(ctx context.Context, id int64) error
}

// ModuleHandler wires module services to HTTP routes.
type ModuleHandler struct {
	modules moduleService
}

func NewModuleHandler(modules moduleService) *ModuleHandler {
	return &ModuleHandler{modules: modules}
}

// List godoc
// @Summary List modules
// @Tags Modules
// @Produce json
// @Success 200 {array} dto.ModuleResponse
// @Router /modules [get]
func (h *ModuleHandler) List(c *gin.Context) {
	modules, err := h.modules.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewModuleListResponse(modules))
}

// Get godoc
// @Summary Get module
// @Tags Modules
// @Produce json
// @Param id path int true "Module ID"
// @Success 200 {object} dto.ModuleResponse
// @Failure 404 {object} errors.Error
// @Router /modules/{id} [get]
func (h *ModuleHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	module, err := h.modules.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewModuleResponse(*module))
}

// Create godoc
// @Summary Create module
// @Tags Modules
// @Accept json
// @Produce json
// @Param payload body dto.ModuleCreateRequest true "Module payload"
// @Success 201 {object} dto.ModuleResponse
// @Failure 422 {object} errors.Error
// @Router /modules [post]
func (h *ModuleHandler) Create(c *gin.Context) {
	var req dto.ModuleCreateRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	module, err := h.modules.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewModuleResponse(*module))
}

// Update godoc
// @Summary Partially update module
// @Tags Modules
// @Accept json
// @Produce json
// @Param id path int true "Module ID"
// @Param payload body dto.ModuleUpdateRequest true "Fields to change"
// @Success 200 {object} dto.ModuleResponse
// @Failure 404 {object} errors.Error
// @Failure 422 {object} errors.Error
// @Router /modules/{id} [put]
func (h *ModuleHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ModuleUpdateRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	module, err := h.modules.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewModuleResponse(*module))
}

// Delete godoc
// @Summary Delete module and its submodules
// @Tags Modules
// @Produce json
// @Param id path int true "Module ID"
// @Success 200 {object} response.Detail
// @Failure 404 {object} errors.Error
// @Router /modules/{id} [delete]
func (h *ModuleHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.modules.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Module deleted successfully")
}
