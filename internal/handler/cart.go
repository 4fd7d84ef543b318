package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/pixelpalace/storefront-api/internal/domain/cart"
)

// cartResponse is the JSON shape for a cart view.
type cartResponse struct {
	Lines []cartLineResponse `json:"lines"`
	Total decimal.Decimal    `json:"total"`
}

// cartLineResponse is one line in a cart view.
type cartLineResponse struct {
	Product  productResponse `json:"product"`
	Quantity int             `json:"quantity"`
}

func toCartResponse(c *cart.Cart) cartResponse {
	resp := cartResponse{
		Lines: make([]cartLineResponse, len(c.Lines)),
		Total: c.Total(),
	}
	for i, l := range c.Lines {
		resp.Lines[i] = cartLineResponse{
			Product:  toProductResponse(l.Product),
			Quantity: l.Quantity,
		}
	}
	return resp
}

// setQuantityRequest is the JSON body for updating a cart line's quantity.
type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// checkoutResponse is the receipt returned by a successful checkout.
type checkoutResponse struct {
	OrderID int             `json:"order_id"`
	Total   decimal.Decimal `json:"total"`
	Message string          `json:"message"`
}

// GetCart handles GET /cart.
func (h *Handler) GetCart(c *gin.Context) {
	crt, err := h.carts.GetByUserID(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(crt))
}

// AddToCart handles POST /cart/products/:id and returns the updated cart.
func (h *Handler) AddToCart(c *gin.Context) {
	productID, ok := pathID(c)
	if !ok {
		return
	}
	uid := userID(c)

	if err := h.carts.AddProduct(c.Request.Context(), uid, productID); err != nil {
		h.respondError(c, err)
		return
	}

	crt, err := h.carts.GetByUserID(c.Request.Context(), uid)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCartResponse(crt))
}

// UpdateCartQuantity handles PUT /cart/products/:id and returns the updated
// cart. A quantity of 0 removes the line.
func (h *Handler) UpdateCartQuantity(c *gin.Context) {
	productID, ok := pathID(c)
	if !ok {
		return
	}
	uid := userID(c)

	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: http.StatusBadRequest, Message: err.Error()})
		return
	}

	if err := h.carts.SetQuantity(c.Request.Context(), uid, productID, req.Quantity); err != nil {
		h.respondError(c, err)
		return
	}

	crt, err := h.carts.GetByUserID(c.Request.Context(), uid)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(crt))
}

// ClearCart handles DELETE /cart.
func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.carts.Clear(c.Request.Context(), userID(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Checkout handles POST /cart/checkout. The whole conversion runs in one
// storage transaction; on any failure nothing is committed and the error is
// mapped through the domain taxonomy.
func (h *Handler) Checkout(c *gin.Context) {
	receipt, err := h.checkout.Checkout(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, checkoutResponse{
		OrderID: receipt.OrderID,
		Total:   receipt.Total,
		Message: receipt.Message,
	})
}
