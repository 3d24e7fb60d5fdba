package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	storemapper "github.com/hknkuvan/spree/internal/domains/stores/adapters/http/mapper"
	"github.com/hknkuvan/spree/internal/domains/stores/ports"
)

// StoresAPI wires HTTP transport with the stores bounded context registry.
type StoresAPI struct {
	registry ports.Registry
}

// NewStoresAPI creates a StoresAPI backed by the provided registry.
func NewStoresAPI(registry ports.Registry) StoresAPI {
	return StoresAPI{registry: registry}
}

// Get /store
// Resolve the store serving the request host
func (api *StoresAPI) CurrentStore(c *gin.Context) {
	store, err := api.registry.Resolve(c.Request.Context(), c.Request.Host)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, storemapper.FromDomainStore(store))
}

// Get /store/countries
// Countries available for checkout in the current store
func (api *StoresAPI) CheckoutCountries(c *gin.Context) {
	store, err := api.registry.Resolve(c.Request.Context(), c.Request.Host)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	countries, err := api.registry.CountriesAvailableForCheckout(c.Request.Context(), store)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, storemapper.FromDomainCountryList(countries))
}

// Get /store/countries/:iso/states
// Checkout subdivisions for one country
func (api *StoresAPI) CheckoutStates(c *gin.Context) {
	store, err := api.registry.Resolve(c.Request.Context(), c.Request.Host)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	states, err := api.registry.StatesAvailableForCheckout(c.Request.Context(), store, c.Param("iso"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, storemapper.FromDomainStateList(states))
}

// Get /store/locales
// Locales supported across all stores
func (api *StoresAPI) AvailableLocales(c *gin.Context) {
	locales, err := api.registry.AvailableLocales(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"locales": locales})
}

// Get /admin/stores
// List stores
func (api *StoresAPI) ListStores(c *gin.Context) {
	includeDeleted := c.Query("includeDeleted") == "true"
	stores, err := api.registry.List(c.Request.Context(), includeDeleted)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, storemapper.FromDomainStoreList(stores))
}

// Get /admin/stores/:storeId
// Find store by ID
func (api *StoresAPI) GetStore(c *gin.Context) {
	id, ok := parseIDParam(c, "storeId")
	if !ok {
		return
	}
	store, err := api.registry.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, storemapper.FromDomainStore(store))
}

// Post /admin/stores
// Create a store
func (api *StoresAPI) CreateStore(c *gin.Context) {
	var payload storemapper.MutationStore
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	payload.ID = 0
	saved, err := api.registry.Save(c.Request.Context(), storemapper.ApplyMutation(nil, payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, storemapper.FromDomainStore(saved))
}

// Put /admin/stores/:storeId
// Update an existing store
func (api *StoresAPI) UpdateStore(c *gin.Context) {
	id, ok := parseIDParam(c, "storeId")
	if !ok {
		return
	}
	var payload storemapper.MutationStore
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	existing, err := api.registry.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	saved, err := api.registry.Save(c.Request.Context(), storemapper.ApplyMutation(existing, payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, storemapper.FromDomainStore(saved))
}

// Delete /admin/stores/:storeId
// Soft-delete a store
func (api *StoresAPI) DeleteStore(c *gin.Context) {
	id, ok := parseIDParam(c, "storeId")
	if !ok {
		return
	}
	if err := api.registry.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondProblem(c, badIDProblem(name))
		return 0, false
	}
	return id, true
}
