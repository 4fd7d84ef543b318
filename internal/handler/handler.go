// Package handler exposes the storefront over HTTP using gin. Authentication
// is out of scope: an upstream gateway resolves the user and forwards the
// identity in the X-User-ID header.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/pixelpalace/storefront-api/internal/domain/cart"
	"github.com/pixelpalace/storefront-api/internal/domain/catalog"
	"github.com/pixelpalace/storefront-api/internal/domain/checkout"
	"github.com/pixelpalace/storefront-api/internal/domain/profile"
)

// Handler holds the HTTP handlers and their domain dependencies.
type Handler struct {
	categories catalog.CategoryRepository
	products   catalog.ProductRepository
	profiles   profile.Repository
	carts      cart.Repository
	checkout   *checkout.Service
	lg         *zap.Logger
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	categories catalog.CategoryRepository,
	products catalog.ProductRepository,
	profiles profile.Repository,
	carts cart.Repository,
	checkoutSvc *checkout.Service,
	lg *zap.Logger,
) *Handler {
	return &Handler{
		categories: categories,
		products:   products,
		profiles:   profiles,
		carts:      carts,
		checkout:   checkoutSvc,
		lg:         lg,
	}
}

// Routes registers all storefront routes on the engine. Catalog routes are
// public; cart, profile, and checkout routes require a resolved identity.
func (h *Handler) Routes(r *gin.Engine) {
	r.GET("/categories", h.ListCategories)
	r.GET("/categories/:id", h.GetCategory)
	r.POST("/categories", h.CreateCategory)
	r.PUT("/categories/:id", h.UpdateCategory)
	r.DELETE("/categories/:id", h.DeleteCategory)
	r.GET("/categories/:id/products", h.ListCategoryProducts)

	r.GET("/products", h.SearchProducts)
	r.GET("/products/:id", h.GetProduct)
	r.POST("/products", h.CreateProduct)
	r.PUT("/products/:id", h.UpdateProduct)
	r.DELETE("/products/:id", h.DeleteProduct)

	user := r.Group("", RequireIdentity())
	user.GET("/profile", h.GetProfile)
	user.POST("/profile", h.CreateProfile)
	user.PUT("/profile", h.UpdateProfile)

	user.GET("/cart", h.GetCart)
	user.POST("/cart/products/:id", h.AddToCart)
	user.PUT("/cart/products/:id", h.UpdateCartQuantity)
	user.DELETE("/cart", h.ClearCart)
	user.POST("/cart/checkout", h.Checkout)
}

// errorResponse is the JSON body for all error replies.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// respondError maps domain errors to HTTP statuses. Anything outside the
// domain taxonomy is a storage failure: logged and reported as 500, with the
// enclosing transaction already rolled back.
func (h *Handler) respondError(c *gin.Context, err error) {
	var stockErr *catalog.InsufficientStockError

	switch {
	case errors.Is(err, catalog.ErrCategoryNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, profile.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Code: http.StatusNotFound, Message: err.Error()})

	case errors.Is(err, checkout.ErrEmptyCart):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{
			Code:    http.StatusUnprocessableEntity,
			Message: "cart is empty",
		})

	case errors.Is(err, cart.ErrNegativeQuantity):
		c.JSON(http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Message: cart.ErrNegativeQuantity.Error(),
		})

	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, errorResponse{
			Code:    http.StatusConflict,
			Message: stockErr.Error(),
		})

	default:
		h.lg.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, errorResponse{
			Code:    http.StatusInternalServerError,
			Message: "internal server error",
		})
	}
}

// pathID parses the :id path parameter as a positive integer.
func pathID(c *gin.Context) (int, bool) {
	id, err := parsePositiveInt(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Message: "invalid id",
		})
		return 0, false
	}
	return id, true
}
