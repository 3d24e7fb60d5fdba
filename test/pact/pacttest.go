//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "spree-api"
	ConsumerName = "storefront-portal"

	StateDefaultStore = "a default store exists"
	StateStoreMissing = "no store with id 404"
	StateCartBaseline = "carts baseline"
)

const (
	ExistingStoreCode = "pact-main"
	ExistingStoreHost = "pact.example.com"
	MissingStoreID    int64 = 404

	ExampleVariantID int64 = 7001
)

const (
	exampleStoreName = "Pact Main Store"
	exampleMailFrom  = "orders@pact.example.com"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the storefront consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleStorePayload provides stable test data for store interactions.
func ExampleStorePayload() map[string]any {
	return map[string]any{
		"code":            ExistingStoreCode,
		"name":            exampleStoreName,
		"url":             ExistingStoreHost,
		"mailFromAddress": exampleMailFrom,
		"defaultCurrency": "USD",
		"defaultLocale":   "en",
		"default":         true,
	}
}

// ExampleLineItemPayload provides stable test data for cart interactions.
func ExampleLineItemPayload() map[string]any {
	return map[string]any{
		"variantId": ExampleVariantID,
		"quantity":  2,
		"unitPrice": "19.99",
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
