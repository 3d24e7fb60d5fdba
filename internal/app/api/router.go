package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter assembles the gin engine with all transport routes.
func NewRouter(stores StoresAPI, carts CartsAPI) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	storefront := router.Group("/store")
	{
		storefront.GET("", stores.CurrentStore)
		storefront.GET("/countries", stores.CheckoutCountries)
		storefront.GET("/countries/:iso/states", stores.CheckoutStates)
		storefront.GET("/locales", stores.AvailableLocales)
	}

	cart := router.Group("/cart")
	{
		cart.GET("", carts.GetCart)
		cart.POST("", carts.CreateCart)
		cart.POST("/line_items", carts.AddLineItem)
		cart.POST("/promotion", carts.ApplyPromotion)
		cart.POST("/associate", carts.AssociateCart)
	}

	admin := router.Group("/admin")
	{
		admin.GET("/stores", stores.ListStores)
		admin.POST("/stores", stores.CreateStore)
		admin.GET("/stores/:storeId", stores.GetStore)
		admin.PUT("/stores/:storeId", stores.UpdateStore)
		admin.DELETE("/stores/:storeId", stores.DeleteStore)
		admin.POST("/carts/sweep", carts.SweepCarts)
	}

	return router
}
