package budget

import (
	"context"
	"sort"
)

type StubBudgetRepo struct {
	budgets map[int]Budget
	nextId  int
}

func NewStubBudgetRepo() *StubBudgetRepo {
	return &StubBudgetRepo{budgets: map[int]Budget{}, nextId: 1}
}

func (s *StubBudgetRepo) Store(ctx context.Context, userId int, budget Budget) (int, error) {
	budget.Id = s.nextId
	s.nextId++
	s.budgets[budget.Id] = budget
	return budget.Id, nil
}

func (s *StubBudgetRepo) Get(ctx context.Context, userId int, id int) (Budget, error) {
	budget, ok := s.budgets[id]
	if !ok {
		return Budget{}, ErrBudgetNotFound
	}
	return budget, nil
}

func (s *StubBudgetRepo) GetByMonth(ctx context.Context, userId int, month string) ([]Budget, error) {
	var out []Budget
	for _, budget := range s.budgets {
		if budget.Month == month {
			out = append(out, budget)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BucketId < out[j].BucketId })
	return out, nil
}

func (s *StubBudgetRepo) Find(ctx context.Context, userId int, bucketId int, month string) (Budget, error) {
	for _, budget := range s.budgets {
		if budget.BucketId == bucketId && budget.Month == month {
			return budget, nil
		}
	}
	return Budget{}, ErrBudgetNotFound
}

func (s *StubBudgetRepo) Update(ctx context.Context, userId int, budget Budget) (bool, error) {
	if _, ok := s.budgets[budget.Id]; !ok {
		return false, nil
	}
	s.budgets[budget.Id] = budget
	return true, nil
}

func (s *StubBudgetRepo) Delete(ctx context.Context, userId int, id int) (bool, error) {
	if _, ok := s.budgets[id]; !ok {
		return false, nil
	}
	delete(s.budgets, id)
	return true, nil
}

func (s *StubBudgetRepo) Cleanup() {
	s.budgets = map[int]Budget{}
	s.nextId = 1
}
