//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	pacttest "github.com/hknkuvan/spree/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type storePayload struct {
	ID              int64  `json:"id"`
	Code            string `json:"code"`
	Name            string `json:"name"`
	URL             string `json:"url"`
	DefaultCurrency string `json:"defaultCurrency"`
	Default         bool   `json:"default"`
}

type cartPayload struct {
	ID        int64  `json:"id"`
	State     string `json:"state"`
	Currency  string `json:"currency"`
	ItemCount int32  `json:"itemCount"`
	Total     string `json:"total"`
}

type lineItemPayload struct {
	VariantID int64  `json:"variantId"`
	Quantity  int32  `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
}

type problemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

type apiError struct {
	status int
	title  string
	detail string
}

func (e apiError) Error() string {
	msg := e.title
	if msg == "" {
		msg = "api error"
	}
	if e.detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.detail)
	}
	return fmt.Sprintf("%s (status %d)", msg, e.status)
}

func (e apiError) Status() int {
	return e.status
}

func TestStorefrontPortalContract(t *testing.T) {
	t.Helper()
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	storeBodyMatcher := matchers.Map{
		"id":              matchers.Like(1),
		"code":            matchers.Like(pacttest.ExistingStoreCode),
		"name":            matchers.Like("Pact Main Store"),
		"url":             matchers.Like(pacttest.ExistingStoreHost),
		"defaultCurrency": matchers.Term("USD", "[A-Z]{3}"),
		"default":         matchers.Like(true),
	}
	cartBodyMatcher := matchers.Map{
		"id":        matchers.Like(1),
		"state":     matchers.Term("cart", "cart|complete|merged|canceled"),
		"currency":  matchers.Term("USD", "[A-Z]{3}"),
		"itemCount": matchers.Like(0),
		"total":     matchers.Regex("0.00", `\d+\.\d{2}`),
	}
	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")

	pact.AddInteraction().
		Given(pacttest.StateDefaultStore).
		UponReceiving("a request for the current store").
		WithRequest("GET", "/store").
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(storeBodyMatcher)
		})

	pact.AddInteraction().
		Given(pacttest.StateCartBaseline).
		UponReceiving("a request to open a cart").
		WithRequest("POST", "/cart").
		WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(cartBodyMatcher)
		})

	pact.AddInteraction().
		Given(pacttest.StateCartBaseline).
		UponReceiving("a request to add a line item").
		WithRequest("POST", "/cart/line_items", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{
				"variantId": matchers.Like(pacttest.ExampleVariantID),
				"quantity":  matchers.Like(2),
				"unitPrice": matchers.Regex("19.99", `\d+\.\d{2}`),
			})
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"id":        matchers.Like(1),
				"state":     matchers.S("cart"),
				"currency":  matchers.Term("USD", "[A-Z]{3}"),
				"itemCount": matchers.Like(2),
				"total":     matchers.Regex("39.98", `\d+\.\d{2}`),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateStoreMissing).
		UponReceiving("a request for a missing store").
		WithRequest("GET", fmt.Sprintf("/admin/stores/%d", pacttest.MissingStoreID)).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/not-found"),
				"title":  matchers.S("Resource Not Found"),
				"status": matchers.Like(http.StatusNotFound),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newStorefrontClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		store, err := client.GetCurrentStore(ctx)
		if err != nil {
			return fmt.Errorf("get current store: %w", err)
		}
		if store == nil || store.Code == "" {
			return fmt.Errorf("expected resolved store, got %+v", store)
		}

		cart, err := client.CreateCart(ctx)
		if err != nil {
			return fmt.Errorf("create cart: %w", err)
		}
		if cart == nil || cart.State != "cart" {
			return fmt.Errorf("expected open cart, got %+v", cart)
		}

		filled, err := client.AddLineItem(ctx, lineItemPayload{
			VariantID: pacttest.ExampleVariantID,
			Quantity:  2,
			UnitPrice: "19.99",
		})
		if err != nil {
			return fmt.Errorf("add line item: %w", err)
		}
		if filled == nil || filled.ItemCount == 0 {
			return fmt.Errorf("expected items in cart, got %+v", filled)
		}

		if _, err := client.GetAdminStore(ctx, pacttest.MissingStoreID); err == nil {
			return fmt.Errorf("expected 404 for store %d", pacttest.MissingStoreID)
		} else if apiErr, ok := err.(apiError); ok && apiErr.Status() != http.StatusNotFound {
			return fmt.Errorf("expected 404, got %d", apiErr.Status())
		}

		return nil
	})
	require.NoError(t, err)
}

type storefrontClient struct {
	baseURL    string
	httpClient *http.Client
}

func newStorefrontClient(config pactconsumer.MockServerConfig) *storefrontClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	client := &http.Client{Transport: transport, Timeout: 10 * time.Second}
	return &storefrontClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: client,
	}
}

func (c *storefrontClient) GetCurrentStore(ctx context.Context) (*storePayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/store", nil)
	if err != nil {
		return nil, err
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return nil, decodeAPIError(res)
	}

	var payload storePayload
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *storefrontClient) CreateCart(ctx context.Context) (*cartPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/cart", nil)
	if err != nil {
		return nil, err
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return nil, decodeAPIError(res)
	}

	var payload cartPayload
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *storefrontClient) AddLineItem(ctx context.Context, item lineItemPayload) (*cartPayload, error) {
	body, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/cart/line_items", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return nil, decodeAPIError(res)
	}

	var payload cartPayload
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *storefrontClient) GetAdminStore(ctx context.Context, id int64) (*storePayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/admin/stores/%d", c.baseURL, id), nil)
	if err != nil {
		return nil, err
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return nil, decodeAPIError(res)
	}

	var payload storePayload
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func decodeAPIError(res *http.Response) error {
	var problem problemDetail
	_ = json.NewDecoder(res.Body).Decode(&problem)
	status := problem.Status
	if status == 0 {
		status = res.StatusCode
	}
	return apiError{
		status: status,
		title:  problem.Title,
		detail: problem.Detail,
	}
}
