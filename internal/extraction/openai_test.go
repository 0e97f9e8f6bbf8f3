package extraction

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/igestorphone/igestorphone-sub000/pkg/config"
)

const completionBody = `{"choices":[{"message":{"role":"assistant","content":"{\"valid\":true,\"errors\":[],\"warnings\":[],\"validated_products\":[{\"name\":\"iPhone 13 128GB\",\"model\":\"iPhone 13\",\"storage\":\"128GB\",\"condition\":\"LACRADO\",\"price\":3500}]}"}}]}`

func TestExtractProductsRetriesWithFreshTimeout(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			// Stall the first attempt past its timeout; the client
			// hangs up and the handler returns.
			select {
			case <-r.Context().Done():
				return
			case <-time.After(5 * time.Second):
			}
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionBody)
	}))
	defer srv.Close()

	e := NewOpenAIExtractor(&config.ExtractionConfig{
		APIKey:      "test",
		Model:       "gpt-4o-mini",
		BaseURL:     srv.URL + "/v1",
		Timeout:     200 * time.Millisecond,
		MaxAttempts: 2,
	}, zap.NewNop())

	result, err := e.ExtractProducts(context.Background(), "iPhone 13 128GB R$ 3500", "sealed-new")
	if err != nil {
		t.Fatalf("ExtractProducts: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("calls = %d, want 2 (timed-out attempt plus retry)", got)
	}
	if !result.Valid || len(result.ValidatedProducts) != 1 {
		t.Fatalf("result = %+v, want one validated product", result)
	}
	if result.ValidatedProducts[0].Model != "iPhone 13" {
		t.Errorf("model = %q, want \"iPhone 13\"", result.ValidatedProducts[0].Model)
	}
}

func TestExtractProductsExhaustsAttempts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := NewOpenAIExtractor(&config.ExtractionConfig{
		APIKey:      "test",
		Model:       "gpt-4o-mini",
		BaseURL:     srv.URL + "/v1",
		Timeout:     time.Second,
		MaxAttempts: 2,
	}, zap.NewNop())

	if _, err := e.ExtractProducts(context.Background(), "lista", "mixed"); err == nil {
		t.Fatal("expected an error after all attempts failed")
	}
}
