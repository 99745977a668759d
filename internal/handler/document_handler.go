package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/docs-platform-api/internal/dto"
	"github.com/noah-isme/docs-platform-api/internal/models"
	"github.com/noah-isme/docs-platform-api/pkg/response"
)

type documentService interface {
	List(ctx context.Context) ([]models.Document, error)
	Get(ctx context.Context, id int64) (*models.Document, error)
	Create(ctx context.Context, req dto.DocumentCreateRequest) (*models.Document, error)
	Update(ctx context.Context, id int64, req dto.DocumentUpdateRequest) (*models.Document, error)
	Delete(ctx context.Context, id int64) error
}

// DocumentHandler wires document services to HTTP routes.
type DocumentHandler struct {
	documents documentService
}

// NewDocumentHandler constructs a new DocumentHandler.
func NewDocumentHandler(documents documentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// List godoc
// @Summary List documents
// @Tags Documents
// @Produce json
// @Success 200 {array} dto.DocumentResponse
// @Router /docs [get]
func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.documents.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewDocumentListResponse(docs))
}

// Get godoc
// @Summary Get document with its direct children
// @Tags Documents
// @Produce json
// @Param id path int true "Document ID"
// @Success 200 {object} dto.DocumentResponse
// @Failure 404 {object} errors.Error
// @Failure 422 {object} errors.Error
// @Router /docs/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	doc, err := h.documents.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewDocumentResponse(*doc))
}

// Create godoc
// @Summary Create document
// @Tags Documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.DocumentCreateRequest true "Document payload"
// @Success 201 {object} dto.DocumentResponse
// @Failure 401 {object} errors.Error
// @Failure 422 {object} errors.Error
// @Router /admin/docs [post]
func (h *DocumentHandler) Create(c *gin.Context) {
	var req dto.DocumentCreateRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	doc, err := h.documents.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewDocumentResponse(*doc))
}

// Update godoc
// @Summary Partially update document
// @Description Only the fields present in the payload change. parent_id may be null to detach the document.
// @Tags Documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Param payload body dto.DocumentUpdateRequest true "Fields to change"
// @Success 200 {object} dto.DocumentResponse
// @Failure 404 {object} errors.Error
// @Failure 422 {object} errors.Error
// @Router /admin/docs/{id} [put]
func (h *DocumentHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.DocumentUpdateRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	doc, err := h.documents.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewDocumentResponse(*doc))
}

// Delete godoc
// @Summary Delete document and all of its descendants
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Success 200 {object} response.Detail
// @Failure 404 {object} errors.Error
// @Router /admin/docs/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.documents.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Document deleted successfully")
}
