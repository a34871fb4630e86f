package memory

import (
	"context"
	"sync"

	"hotel_tarifas/internal/domain"
)

// Store is the in-memory catalog, used by tests and dev mode. It is selected
// explicitly by configuration; it is never a fallback when a database is
// unreachable. Reads copy out of the maps, so a snapshot taken by a pricing
// calculation is unaffected by later writes.
type Store struct {
	mu         sync.RWMutex
	periods    map[string]domain.TariffPeriod
	rules      map[string]domain.PriceRule
	categories map[string]domain.AccommodationCategory
	version    int64
}

func New() *Store {
	return &Store{
		periods:    make(map[string]domain.TariffPeriod),
		rules:      make(map[string]domain.PriceRule),
		categories: make(map[string]domain.AccommodationCategory),
	}
}

// SeedCategories loads the read-only category catalog. Categories are owned
// by the rooms module, so there is no mutation path here.
func (s *Store) SeedCategories(cs ...domain.AccommodationCategory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cs {
		s.categories[c.ID] = c
	}
	s.version++
}

func (s *Store) Snapshot(_ context.Context) (domain.CatalogSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := domain.CatalogSnapshot{
		Version:    s.version,
		Periods:    make([]domain.TariffPeriod, 0, len(s.periods)),
		Rules:      make([]domain.PriceRule, 0, len(s.rules)),
		Categories: make([]domain.AccommodationCategory, 0, len(s.categories)),
	}
	for _, p := range s.periods {
		snap.Periods = append(snap.Periods, p)
	}
	for _, r := range s.rules {
		snap.Rules = append(snap.Rules, r)
	}
	for _, c := range s.categories {
		snap.Categories = append(snap.Categories, c)
	}
	return snap, nil
}

func (s *Store) Version(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version, nil
}

func (s *Store) ListPeriods(_ context.Context) ([]domain.TariffPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.TariffPeriod, 0, len(s.periods))
	for _, p := range s.periods {
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) GetPeriod(_ context.Context, id string) (domain.TariffPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.periods[id]
	if !ok {
		return domain.TariffPeriod{}, domain.NotFound("tariff period %s not found", id)
	}
	return p, nil
}

func (s *Store) ListRules(_ context.Context) ([]domain.PriceRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.PriceRule, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) GetRule(_ context.Context, id string) (domain.PriceRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rules[id]
	if !ok {
		return domain.PriceRule{}, domain.NotFound("price rule %s not found", id)
	}
	return r, nil
}

func (s *Store) RulesForPeriod(_ context.Context, periodID string) ([]domain.PriceRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.PriceRule
	for _, r := range s.rules {
		if r.TariffPeriodID == periodID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) ListCategories(_ context.Context) ([]domain.AccommodationCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AccommodationCategory, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, id string) (domain.AccommodationCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return domain.AccommodationCategory{}, domain.NotFound("accommodation category %s not found", id)
	}
	return c, nil
}

func (s *Store) InsertPeriod(_ context.Context, p domain.TariffPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.periods[p.ID] = p
	s.version++
	return nil
}

func (s *Store) UpdatePeriod(_ context.Context, p domain.TariffPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.periods[p.ID]; !ok {
		return domain.NotFound("tariff period %s not found", p.ID)
	}
	s.periods[p.ID] = p
	s.version++
	return nil
}

func (s *Store) DeletePeriod(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.periods[id]; !ok {
		return domain.NotFound("tariff period %s not found", id)
	}
	delete(s.periods, id)
	s.version++
	return nil
}

func (s *Store) InsertRule(_ context.Context, r domain.PriceRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[r.ID] = r
	s.version++
	return nil
}

func (s *Store) UpdateRule(_ context.Context, r domain.PriceRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[r.ID]; !ok {
		return domain.NotFound("price rule %s not found", r.ID)
	}
	s.rules[r.ID] = r
	s.version++
	return nil
}

func (s *Store) DeleteRule(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[id]; !ok {
		return domain.NotFound("price rule %s not found", id)
	}
	delete(s.rules, id)
	s.version++
	return nil
}
