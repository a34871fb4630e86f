package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"hotel_tarifas/internal/app"
	"hotel_tarifas/internal/domain"
)

type Handlers struct {
	Pricing *app.PricingService
	Catalog *app.CatalogService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Field  string `json:"field,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Post("/v1/pricing/quote", h.quote)
	s.mux.Get("/v1/pricing/options", h.options)

	s.mux.Get("/v1/tariff-periods", h.listPeriods)
	s.mux.Post("/v1/tariff-periods", h.createPeriod)
	s.mux.Put("/v1/tariff-periods/{id}", h.updatePeriod)
	s.mux.Delete("/v1/tariff-periods/{id}", h.deletePeriod)

	s.mux.Get("/v1/price-rules", h.listRules)
	s.mux.Post("/v1/price-rules", h.createRule)
	s.mux.Put("/v1/price-rules/{id}", h.updateRule)
	s.mux.Delete("/v1/price-rules/{id}", h.deleteRule)

	s.mux.Get("/v1/categories", h.listCategories)
}

// ---- wire DTOs ----

type periodJSON struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	MinNights int     `json:"minimum_nights"`
	IsSpecial bool    `json:"is_special"`
	Priority  int     `json:"priority"`
	Color     *string `json:"color,omitempty"`
}

type periodInputJSON struct {
	Name      string  `json:"name"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	MinNights int     `json:"minimum_nights"`
	IsSpecial bool    `json:"is_special"`
	Priority  int     `json:"priority"`
	Color     *string `json:"color"`
}

type ruleJSON struct {
	ID              string          `json:"id"`
	TariffPeriodID  string          `json:"tariff_period_id"`
	CategoryID      string          `json:"accommodation_category_id"`
	Guests          int             `json:"number_of_guests"`
	PriceCreditCard decimal.Decimal `json:"price_credit_card"`
	PricePix        decimal.Decimal `json:"price_pix"`
	DiscountType    string          `json:"breakfast_discount_type"`
	DiscountValue   decimal.Decimal `json:"breakfast_discount_value"`
}

type ruleInputJSON struct {
	TariffPeriodID  string          `json:"tariff_period_id"`
	CategoryID      string          `json:"accommodation_category_id"`
	Guests          int             `json:"number_of_guests"`
	PriceCreditCard decimal.Decimal `json:"price_credit_card"`
	PricePix        decimal.Decimal `json:"price_pix"`
	DiscountType    string          `json:"breakfast_discount_type"`
	DiscountValue   decimal.Decimal `json:"breakfast_discount_value"`
}

type categoryJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MaxGuests int    `json:"max_guests"`
}

type quoteRequestJSON struct {
	CheckIn          string `json:"check_in"`
	CheckOut         string `json:"check_out"`
	CategoryID       string `json:"category_id"`
	Guests           int    `json:"number_of_guests"`
	IncludeBreakfast bool   `json:"include_breakfast"`
}

type ratesJSON struct {
	WithBreakfast    decimal.Decimal `json:"with_breakfast"`
	WithoutBreakfast decimal.Decimal `json:"without_breakfast"`
}

type totalsJSON struct {
	Nightly decimal.Decimal `json:"nightly"`
	Total   decimal.Decimal `json:"total"`
}

type quoteJSON struct {
	TotalNights      int        `json:"total_nights"`
	IncludeBreakfast bool       `json:"include_breakfast"`
	Period           periodJSON `json:"tariff_period"`
	CreditCard       ratesJSON  `json:"credit_card_nightly"`
	Pix              ratesJSON  `json:"pix_nightly"`
	CreditCardTotals totalsJSON `json:"credit_card"`
	PixTotals        totalsJSON `json:"pix"`
}

func toPeriodJSON(p domain.TariffPeriod) periodJSON {
	return periodJSON{
		ID:        p.ID,
		Name:      p.Name,
		StartDate: p.StartDate.Format(domain.DateLayout),
		EndDate:   p.EndDate.Format(domain.DateLayout),
		MinNights: p.MinNights,
		IsSpecial: p.IsSpecial,
		Priority:  p.Priority,
		Color:     p.Color,
	}
}

func toRuleJSON(r domain.PriceRule) ruleJSON {
	return ruleJSON{
		ID:              r.ID,
		TariffPeriodID:  r.TariffPeriodID,
		CategoryID:      r.CategoryID,
		Guests:          r.Guests,
		PriceCreditCard: r.PriceCreditCard,
		PricePix:        r.PricePix,
		DiscountType:    string(r.DiscountType),
		DiscountValue:   r.DiscountValue,
	}
}

func toQuoteJSON(q domain.Quote) quoteJSON {
	return quoteJSON{
		TotalNights:      q.TotalNights,
		IncludeBreakfast: q.IncludeBreakfast,
		Period:           toPeriodJSON(q.Period),
		CreditCard:       ratesJSON{WithBreakfast: q.CreditCard.WithBreakfast, WithoutBreakfast: q.CreditCard.WithoutBreakfast},
		Pix:              ratesJSON{WithBreakfast: q.Pix.WithBreakfast, WithoutBreakfast: q.Pix.WithoutBreakfast},
		CreditCardTotals: totalsJSON{Nightly: q.CreditCardTotals.Nightly, Total: q.CreditCardTotals.Total},
		PixTotals:        totalsJSON{Nightly: q.PixTotals.Nightly, Total: q.PixTotals.Total},
	}
}

// ---- response helpers ----

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// writeDomainErr maps error kinds to HTTP statuses. Internal causes are
// logged here and never leak into the response body.
func writeDomainErr(w http.ResponseWriter, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		de = domain.Internal(err)
	}
	status := http.StatusInternalServerError
	title := "Internal Error"
	detail := de.Msg
	switch de.Kind {
	case domain.KindValidation:
		status, title = http.StatusBadRequest, "Validation Failed"
	case domain.KindNotFound:
		status, title = http.StatusNotFound, "Not Found"
	case domain.KindConstraint:
		status, title = http.StatusConflict, "Constraint Violated"
	default:
		log.Error().Err(err).Msg("internal error")
		detail = "internal pricing error"
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	p := problem{Type: "about:blank", Title: title, Status: status, Detail: detail, Field: de.Field}
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeWithETag(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// ---- pricing ----

func (h *Handlers) quote(w http.ResponseWriter, r *http.Request) {
	var in quoteRequestJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDomainErr(w, domain.Validation("body", "malformed JSON request"))
		return
	}
	q, err := h.Pricing.CalculatePrice(r.Context(), domain.PricingRequest{
		CheckIn:          in.CheckIn,
		CheckOut:         in.CheckOut,
		CategoryID:       in.CategoryID,
		Guests:           in.Guests,
		IncludeBreakfast: in.IncludeBreakfast,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuoteJSON(q))
}

func (h *Handlers) options(w http.ResponseWriter, r *http.Request) {
	qp := r.URL.Query()
	guests, err := strconv.Atoi(qp.Get("guests"))
	if err != nil {
		writeDomainErr(w, domain.Validation("guests", "guests must be an integer"))
		return
	}
	opts := h.Pricing.AllOptions(r.Context(), qp.Get("check_in"), qp.Get("check_out"), qp.Get("category_id"), guests)

	resp := struct {
		WithBreakfast       *quoteJSON `json:"with_breakfast"`
		WithoutBreakfast    *quoteJSON `json:"without_breakfast"`
		WithBreakfastErr    string     `json:"with_breakfast_error,omitempty"`
		WithoutBreakfastErr string     `json:"without_breakfast_error,omitempty"`
	}{}
	if opts.WithBreakfast != nil {
		j := toQuoteJSON(*opts.WithBreakfast)
		resp.WithBreakfast = &j
	} else if opts.WithErr != nil {
		resp.WithBreakfastErr = opts.WithErr.Error()
	}
	if opts.WithoutBreakfast != nil {
		j := toQuoteJSON(*opts.WithoutBreakfast)
		resp.WithoutBreakfast = &j
	} else if opts.WithoutErr != nil {
		resp.WithoutBreakfastErr = opts.WithoutErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// ---- tariff periods ----

func (h *Handlers) listPeriods(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Catalog.ListPeriods(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	out := make([]periodJSON, 0, len(ps))
	for _, p := range ps {
		out = append(out, toPeriodJSON(p))
	}
	writeWithETag(w, r, out)
}

func (h *Handlers) createPeriod(w http.ResponseWriter, r *http.Request) {
	var in periodInputJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDomainErr(w, domain.Validation("body", "malformed JSON request"))
		return
	}
	p, err := h.Catalog.CreatePeriod(r.Context(), app.PeriodInput(in))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPeriodJSON(p))
}

func (h *Handlers) updatePeriod(w http.ResponseWriter, r *http.Request) {
	var in periodInputJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDomainErr(w, domain.Validation("body", "malformed JSON request"))
		return
	}
	p, err := h.Catalog.UpdatePeriod(r.Context(), chi.URLParam(r, "id"), app.PeriodInput(in))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodJSON(p))
}

func (h *Handlers) deletePeriod(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.DeletePeriod(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- price rules ----

func (h *Handlers) listRules(w http.ResponseWriter, r *http.Request) {
	rs, err := h.Catalog.ListRules(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	out := make([]ruleJSON, 0, len(rs))
	for _, rule := range rs {
		out = append(out, toRuleJSON(rule))
	}
	writeWithETag(w, r, out)
}

func (h *Handlers) createRule(w http.ResponseWriter, r *http.Request) {
	var in ruleInputJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDomainErr(w, domain.Validation("body", "malformed JSON request"))
		return
	}
	rule, err := h.Catalog.CreateRule(r.Context(), app.RuleInput(in))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRuleJSON(rule))
}

func (h *Handlers) updateRule(w http.ResponseWriter, r *http.Request) {
	var in ruleInputJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDomainErr(w, domain.Validation("body", "malformed JSON request"))
		return
	}
	rule, err := h.Catalog.UpdateRule(r.Context(), chi.URLParam(r, "id"), app.RuleInput(in))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRuleJSON(rule))
}

func (h *Handlers) deleteRule(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.DeleteRule(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- categories (read-only) ----

func (h *Handlers) listCategories(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Catalog.ListCategories(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	out := make([]categoryJSON, 0, len(cs))
	for _, c := range cs {
		out = append(out, categoryJSON(c))
	}
	writeWithETag(w, r, out)
}
