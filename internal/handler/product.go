package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/pixelpalace/storefront-api/internal/domain/catalog"
)

// productResponse is the JSON shape for a product.
type productResponse struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  int             `json:"category_id"`
	Description string          `json:"description"`
	Subcategory string          `json:"subcategory"`
	Stock       int             `json:"stock"`
	Featured    bool            `json:"featured"`
	ImageURL    string          `json:"image_url"`
}

func toProductResponse(p catalog.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		CategoryID:  p.CategoryID,
		Description: p.Description,
		Subcategory: p.Subcategory,
		Stock:       p.Stock,
		Featured:    p.Featured,
		ImageURL:    p.ImageURL,
	}
}

// createProductRequest is the JSON body for creating a product.
type createProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	CategoryID  int             `json:"category_id" binding:"required"`
	Description string          `json:"description"`
	Subcategory string          `json:"subcategory"`
	Stock       int             `json:"stock" binding:"gte=0"`
	Featured    bool            `json:"featured"`
	ImageURL    string          `json:"image_url"`
}

// updateProductRequest is the JSON body for a partial product update.
type updateProductRequest struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	CategoryID  *int             `json:"category_id"`
	Description *string          `json:"description"`
	Subcategory *string          `json:"subcategory"`
	Stock       *int             `json:"stock"`
	Featured    *bool            `json:"featured"`
	ImageURL    *string          `json:"image_url"`
}

// searchFilterFromQuery builds the optional search filter from query
// parameters. Absent parameters stay nil; no sentinel values.
func searchFilterFromQuery(c *gin.Context) (catalog.SearchFilter, error) {
	var f catalog.SearchFilter

	if v, ok := c.GetQuery("category_id"); ok {
		id, err := parsePositiveInt(v)
		if err != nil {
			return f, err
		}
		f.CategoryID = &id
	}
	if v, ok := c.GetQuery("min_price"); ok {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, err
		}
		f.MinPrice = &d
	}
	if v, ok := c.GetQuery("max_price"); ok {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, err
		}
		f.MaxPrice = &d
	}
	if v, ok := c.GetQuery("subcategory"); ok {
		f.Subcategory = &v
	}

	return f, nil
}

// SearchProducts handles GET /products with optional filter query parameters.
func (h *Handler) SearchProducts(c *gin.Context) {
	f, err := searchFilterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: http.StatusBadRequest, Message: "invalid filter: " + err.Error()})
		return
	}

	products, err := h.products.Search(c.Request.Context(), f)
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

// GetProduct handles GET /products/:id.
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	p, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(*p))
}

// CreateProduct handles POST /products.
func (h *Handler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: http.StatusBadRequest, Message: err.Error()})
		return
	}

	p := catalog.Product{
		Name:        req.Name,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Subcategory: req.Subcategory,
		Stock:       req.Stock,
		Featured:    req.Featured,
		ImageURL:    req.ImageURL,
	}
	id, err := h.products.Create(c.Request.Context(), p)
	if err != nil {
		h.respondError(c, err)
		return
	}

	p.ID = id
	c.JSON(http.StatusCreated, toProductResponse(p))
}

// UpdateProduct handles PUT /products/:id.
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: http.StatusBadRequest, Message: err.Error()})
		return
	}

	err := h.products.Update(c.Request.Context(), id, catalog.ProductUpdate{
		Name:        req.Name,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Subcategory: req.Subcategory,
		Stock:       req.Stock,
		Featured:    req.Featured,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteProduct handles DELETE /products/:id.
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
