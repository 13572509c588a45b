package recurring

import (
	"context"
	"sort"

	"github.com/moneta/moneta/internal/dates"
)

type StubRepository struct {
	templates map[int]Template
	nextId    int
}

func NewStubRepository() *StubRepository {
	return &StubRepository{templates: map[int]Template{}, nextId: 1}
}

func (s *StubRepository) Store(ctx context.Context, userId int, tpl Template) (int, error) {
	tpl.Id = s.nextId
	s.nextId++
	s.templates[tpl.Id] = tpl
	return tpl.Id, nil
}

func (s *StubRepository) Get(ctx context.Context, userId int, id int) (Template, error) {
	tpl, ok := s.templates[id]
	if !ok {
		return Template{}, ErrTemplateNotFound
	}
	return tpl, nil
}

func (s *StubRepository) GetAll(ctx context.Context, userId int) ([]Template, error) {
	return s.sorted(func(Template) bool { return true }), nil
}

func (s *StubRepository) ListStarted(ctx context.Context, userId int, today dates.Date) ([]Template, error) {
	return s.sorted(func(tpl Template) bool { return !tpl.StartDate.After(today) }), nil
}

func (s *StubRepository) Update(ctx context.Context, userId int, tpl Template) (bool, error) {
	existing, ok := s.templates[tpl.Id]
	if !ok {
		return false, nil
	}
	tpl.LastApplied = existing.LastApplied
	s.templates[tpl.Id] = tpl
	return true, nil
}

func (s *StubRepository) UpdateWatermark(ctx context.Context, userId int, id int, lastApplied dates.Date) error {
	tpl, ok := s.templates[id]
	if !ok {
		return ErrTemplateNotFound
	}
	tpl.LastApplied = lastApplied
	s.templates[id] = tpl
	return nil
}

func (s *StubRepository) Delete(ctx context.Context, userId int, id int) (bool, error) {
	if _, ok := s.templates[id]; !ok {
		return false, nil
	}
	delete(s.templates, id)
	return true, nil
}

func (s *StubRepository) sorted(keep func(Template) bool) []Template {
	var out []Template
	for _, tpl := range s.templates {
		if keep(tpl) {
			out = append(out, tpl)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out
}

func (s *StubRepository) Cleanup() {
	s.templates = map[int]Template{}
	s.nextId = 1
}
