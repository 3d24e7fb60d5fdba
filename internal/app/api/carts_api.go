package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	cartmapper "github.com/hknkuvan/spree/internal/domains/orders/adapters/http/mapper"
	"github.com/hknkuvan/spree/internal/domains/orders/adapters/token"
	"github.com/hknkuvan/spree/internal/domains/orders/domain"
	ordersports "github.com/hknkuvan/spree/internal/domains/orders/ports"
	storesports "github.com/hknkuvan/spree/internal/domains/stores/ports"
)

// guestTokenCookie carries the signed guest cart identifier.
const guestTokenCookie = "guest_token"

// cookieMaxAge keeps the cookie alive as long as the sweep window.
const cookieMaxAge = int(DefaultCartSweepWindow / time.Second)

// CartsAPI wires HTTP transport with the orders bounded context. The
// store is resolved per request from the Host header; user identity
// comes from headers set by an upstream auth proxy.
type CartsAPI struct {
	associator  ordersports.Associator
	registry    storesports.Registry
	codec       *token.Codec
	maintenance ordersports.CartMaintenance
	sweepWindow time.Duration
}

// NewCartsAPI creates a CartsAPI backed by the provided collaborators.
func NewCartsAPI(associator ordersports.Associator, registry storesports.Registry, codec *token.Codec, maintenance ordersports.CartMaintenance, sweepWindow time.Duration) CartsAPI {
	if sweepWindow <= 0 {
		sweepWindow = DefaultCartSweepWindow
	}
	return CartsAPI{associator: associator, registry: registry, codec: codec, maintenance: maintenance, sweepWindow: sweepWindow}
}

// Get /cart
// Show the current cart without creating one
func (api *CartsAPI) GetCart(c *gin.Context) {
	rc, ok := api.requestContext(c)
	if !ok {
		return
	}
	order, err := api.associator.SimpleCurrentOrder(c.Request.Context(), rc)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartmapper.FromDomainOrder(order))
}

// Post /cart
// Resolve or create the current cart
func (api *CartsAPI) CreateCart(c *gin.Context) {
	rc, ok := api.requestContext(c)
	if !ok {
		return
	}
	order, err := api.associator.CurrentOrder(c.Request.Context(), rc, true)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	api.setTokenCookie(c, order)
	c.JSON(http.StatusCreated, cartmapper.FromDomainOrder(order))
}

// Post /cart/line_items
// Add a variant to the current cart
func (api *CartsAPI) AddLineItem(c *gin.Context) {
	rc, ok := api.requestContext(c)
	if !ok {
		return
	}
	var payload cartmapper.AddLineItem
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	unitPrice, err := payload.ParseUnitPrice()
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	order, err := api.associator.AddLineItem(c.Request.Context(), rc, payload.VariantID, payload.Quantity, unitPrice)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	api.setTokenCookie(c, order)
	c.JSON(http.StatusOK, cartmapper.FromDomainOrder(order))
}

// Post /cart/promotion
// Apply a named promotion to the current cart
func (api *CartsAPI) ApplyPromotion(c *gin.Context) {
	rc, ok := api.requestContext(c)
	if !ok {
		return
	}
	var payload struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	order, err := api.associator.ApplyPromotion(c.Request.Context(), rc, payload.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	api.setTokenCookie(c, order)
	c.JSON(http.StatusOK, cartmapper.FromDomainOrder(order))
}

// Post /cart/associate
// Bind the authenticated user to the guest cart and absorb their last
// open cart in this store
func (api *CartsAPI) AssociateCart(c *gin.Context) {
	rc, ok := api.requestContext(c)
	if !ok {
		return
	}
	order, err := api.associator.CurrentOrder(c.Request.Context(), rc, false)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if order.Persisted() {
		if order, err = api.associator.AssociateUser(c.Request.Context(), rc, order); err != nil {
			respondServiceError(c, err)
			return
		}
		if order, err = api.associator.SetCurrentOrder(c.Request.Context(), rc, order); err != nil {
			respondServiceError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, cartmapper.FromDomainOrder(order))
}

// Post /admin/carts/sweep
// Trigger a purge of abandoned guest carts
func (api *CartsAPI) SweepCarts(c *gin.Context) {
	purged, err := api.maintenance.SweepAbandonedCarts(c.Request.Context(), api.sweepWindow)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purged": purged})
}

// requestContext resolves the store, user identity, and guest token for
// one inbound request. A store resolution failure ends the request.
func (api *CartsAPI) requestContext(c *gin.Context) (ordersports.RequestContext, bool) {
	store, err := api.registry.Resolve(c.Request.Context(), c.Request.Host)
	if err != nil {
		respondServiceError(c, err)
		return ordersports.RequestContext{}, false
	}
	rc := ordersports.RequestContext{Store: store}
	if raw := c.GetHeader("X-User-Id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			rc.UserID = &id
			rc.UserEmail = c.GetHeader("X-User-Email")
		}
	}
	if cookie, err := c.Cookie(guestTokenCookie); err == nil && cookie != "" {
		rc.GuestToken = api.codec.Decode(cookie)
	}
	return rc, true
}

// setTokenCookie refreshes the signed guest token cookie after any call
// that may have created or switched the cart.
func (api *CartsAPI) setTokenCookie(c *gin.Context, order *domain.Order) {
	if order == nil || order.Token == "" {
		return
	}
	signed, err := api.codec.Encode(order.Token)
	if err != nil {
		return
	}
	c.SetCookie(guestTokenCookie, signed, cookieMaxAge, "/", "", false, true)
}
