package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	server "hotel_tarifas/internal/adapters/http_server"
	redisad "hotel_tarifas/internal/adapters/redis"
	"hotel_tarifas/internal/app"
	"hotel_tarifas/internal/domain"
	"hotel_tarifas/internal/storage/memory"
)

// newTestServer wires the full stack: chi router, memory catalog, and a real
// Redis adapter backed by miniredis.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st := memory.New()
	st.SeedCategories(
		domain.AccommodationCategory{ID: "cat-standard", Name: "Standard", MaxGuests: 3},
	)
	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)

	srv := server.New()
	srv.MountHandlers(&server.Handlers{
		Pricing: app.NewPricingService(st, cache, 10*time.Minute),
		Catalog: app.NewCatalogService(st),
	})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	res, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return res
}

func decode[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	defer res.Body.Close()
	var v T
	if err := json.NewDecoder(res.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

type periodResp struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type quoteResp struct {
	TotalNights int `json:"total_nights"`
	Period      struct {
		Name string `json:"name"`
	} `json:"tariff_period"`
	CreditCard struct {
		Nightly string `json:"nightly"`
		Total   string `json:"total"`
	} `json:"credit_card"`
	Pix struct {
		Nightly string `json:"nightly"`
		Total   string `json:"total"`
	} `json:"pix"`
}

func TestHTTP_EndToEnd_QuoteFlow(t *testing.T) {
	ts := newTestServer(t)

	// configure the catalog over the API
	res := postJSON(t, ts.URL+"/v1/tariff-periods", map[string]any{
		"name": "Baixa Temporada 2025", "start_date": "2025-01-01", "end_date": "2025-06-30", "minimum_nights": 1,
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create period: %d", res.StatusCode)
	}
	period := decode[periodResp](t, res)

	res = postJSON(t, ts.URL+"/v1/price-rules", map[string]any{
		"tariff_period_id":          period.ID,
		"accommodation_category_id": "cat-standard",
		"number_of_guests":          2,
		"price_credit_card":         "200",
		"price_pix":                 "180",
		"breakfast_discount_type":   "FIXED",
		"breakfast_discount_value":  "25",
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create rule: %d", res.StatusCode)
	}
	res.Body.Close()

	// quote with breakfast
	res = postJSON(t, ts.URL+"/v1/pricing/quote", map[string]any{
		"check_in": "2025-03-10", "check_out": "2025-03-13", "category_id": "cat-standard",
		"number_of_guests": 2, "include_breakfast": true,
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("quote status: %d", res.StatusCode)
	}
	q := decode[quoteResp](t, res)
	if q.TotalNights != 3 || q.Period.Name != "Baixa Temporada 2025" {
		t.Fatalf("unexpected quote: %+v", q)
	}
	if q.CreditCard.Nightly != "200" || q.CreditCard.Total != "600" {
		t.Fatalf("credit card figures: %+v", q.CreditCard)
	}
	if q.Pix.Nightly != "180" || q.Pix.Total != "540" {
		t.Fatalf("pix figures: %+v", q.Pix)
	}

	// quote without breakfast: fixed 25 off both methods
	res = postJSON(t, ts.URL+"/v1/pricing/quote", map[string]any{
		"check_in": "2025-03-10", "check_out": "2025-03-13", "category_id": "cat-standard",
		"number_of_guests": 2, "include_breakfast": false,
	})
	q = decode[quoteResp](t, res)
	if q.CreditCard.Nightly != "175" || q.CreditCard.Total != "525" {
		t.Fatalf("credit card without breakfast: %+v", q.CreditCard)
	}
	if q.Pix.Nightly != "155" || q.Pix.Total != "465" {
		t.Fatalf("pix without breakfast: %+v", q.Pix)
	}
}

func TestHTTP_ProblemResponses(t *testing.T) {
	ts := newTestServer(t)

	res := postJSON(t, ts.URL+"/v1/tariff-periods", map[string]any{
		"name": "Natal e Ano Novo", "start_date": "2025-12-20", "end_date": "2026-01-05", "minimum_nights": 3,
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create period: %d", res.StatusCode)
	}
	period := decode[periodResp](t, res)

	type problem struct {
		Status int    `json:"status"`
		Detail string `json:"detail"`
		Field  string `json:"field"`
	}

	// same-priority overlap -> 409
	res = postJSON(t, ts.URL+"/v1/tariff-periods", map[string]any{
		"name": "Reveillon", "start_date": "2025-12-28", "end_date": "2026-01-02", "minimum_nights": 2,
	})
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("overlap status: %d", res.StatusCode)
	}
	res.Body.Close()

	// minimum-stay violation -> 409 with the period named
	res = postJSON(t, ts.URL+"/v1/pricing/quote", map[string]any{
		"check_in": "2025-12-24", "check_out": "2025-12-25", "category_id": "cat-standard", "number_of_guests": 2,
	})
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("min-stay status: %d", res.StatusCode)
	}
	p := decode[problem](t, res)
	if p.Detail == "" {
		t.Fatalf("expected detail naming the period: %+v", p)
	}

	// malformed date -> 400 with the field flagged
	res = postJSON(t, ts.URL+"/v1/pricing/quote", map[string]any{
		"check_in": "24/12/2025", "check_out": "2025-12-28", "category_id": "cat-standard", "number_of_guests": 2,
	})
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad date status: %d", res.StatusCode)
	}
	p = decode[problem](t, res)
	if p.Field != "check_in" {
		t.Fatalf("expected check_in field, got %+v", p)
	}

	// uncovered date -> 404
	res = postJSON(t, ts.URL+"/v1/pricing/quote", map[string]any{
		"check_in": "2024-06-01", "check_out": "2024-06-03", "category_id": "cat-standard", "number_of_guests": 2,
	})
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("uncovered date status: %d", res.StatusCode)
	}
	res.Body.Close()

	// deletion blocked while a rule references the period -> 409
	res = postJSON(t, ts.URL+"/v1/price-rules", map[string]any{
		"tariff_period_id":          period.ID,
		"accommodation_category_id": "cat-standard",
		"number_of_guests":          2,
		"price_credit_card":         "500",
		"price_pix":                 "450",
		"breakfast_discount_type":   "PERCENTAGE",
		"breakfast_discount_value":  "10",
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create rule: %d", res.StatusCode)
	}
	res.Body.Close()

	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/v1/tariff-periods/%s", ts.URL, period.ID), nil)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("delete status: %d", res.StatusCode)
	}
	res.Body.Close()
}

func TestHTTP_OptionsComparison(t *testing.T) {
	ts := newTestServer(t)

	res := postJSON(t, ts.URL+"/v1/tariff-periods", map[string]any{
		"name": "Baixa", "start_date": "2025-01-01", "end_date": "2025-06-30", "minimum_nights": 1,
	})
	period := decode[periodResp](t, res)
	res = postJSON(t, ts.URL+"/v1/price-rules", map[string]any{
		"tariff_period_id":          period.ID,
		"accommodation_category_id": "cat-standard",
		"number_of_guests":          2,
		"price_credit_card":         "200",
		"price_pix":                 "180",
		"breakfast_discount_type":   "FIXED",
		"breakfast_discount_value":  "25",
	})
	res.Body.Close()

	res2, err := http.Get(ts.URL + "/v1/pricing/options?check_in=2025-03-10&check_out=2025-03-13&category_id=cat-standard&guests=2")
	if err != nil {
		t.Fatalf("GET options: %v", err)
	}
	type optionsResp struct {
		WithBreakfast    *quoteResp `json:"with_breakfast"`
		WithoutBreakfast *quoteResp `json:"without_breakfast"`
	}
	opts := decode[optionsResp](t, res2)
	if opts.WithBreakfast == nil || opts.WithoutBreakfast == nil {
		t.Fatalf("expected both options: %+v", opts)
	}
	if opts.WithBreakfast.CreditCard.Total != "600" || opts.WithoutBreakfast.CreditCard.Total != "525" {
		t.Fatalf("totals: %s / %s", opts.WithBreakfast.CreditCard.Total, opts.WithoutBreakfast.CreditCard.Total)
	}
}
