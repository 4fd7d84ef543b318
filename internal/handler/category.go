package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pixelpalace/storefront-api/internal/domain/catalog"
)

// categoryResponse is the JSON shape for a category.
type categoryResponse struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func toCategoryResponse(c catalog.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Description: c.Description}
}

// createCategoryRequest is the JSON body for creating a category.
type createCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// updateCategoryRequest is the JSON body for a partial category update.
type updateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// ListCategories handles GET /categories.
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]categoryResponse, len(categories))
	for i, cat := range categories {
		resp[i] = toCategoryResponse(cat)
	}
	c.JSON(http.StatusOK, resp)
}

// GetCategory handles GET /categories/:id.
func (h *Handler) GetCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	cat, err := h.categories.GetByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCategoryResponse(*cat))
}

// ListCategoryProducts handles GET /categories/:id/products.
func (h *Handler) ListCategoryProducts(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	products, err := h.products.ListByCategory(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toProductResponse(p)
	}
	c.JSON(http.StatusOK, resp)
}

// CreateCategory handles POST /categories.
func (h *Handler) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: http.StatusBadRequest, Message: err.Error()})
		return
	}

	id, err := h.categories.Create(c.Request.Context(), catalog.Category{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, categoryResponse{ID: id, Name: req.Name, Description: req.Description})
}

// UpdateCategory handles PUT /categories/:id.
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req updateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: http.StatusBadRequest, Message: err.Error()})
		return
	}

	err := h.categories.Update(c.Request.Context(), id, catalog.CategoryUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteCategory handles DELETE /categories/:id.
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.categories.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
