package recurring

import (
	"context"
	"errors"
	"fmt"

	"github.com/moneta/moneta/internal/dates"
	"github.com/moneta/moneta/internal/event_bus"
	"github.com/moneta/moneta/internal/utils"
	"github.com/moneta/moneta/pkg/transaction"
	"github.com/moneta/moneta/pkg/user"
	log "github.com/sirupsen/logrus"
)

// PropagationMode selects what happens to already-materialized transactions
// when a template is edited. This is always an explicit user choice.
type PropagationMode string

const (
	PropagateNone       PropagationMode = "none"
	PropagateAll        PropagationMode = "all"
	PropagateFromCutoff PropagationMode = "fromCutoff"
)

type Propagation struct {
	Mode PropagationMode
	// Cutoff is required for PropagateFromCutoff: transactions dated on or
	// after it are rewritten, earlier ones are untouched.
	Cutoff dates.Date
}

// PropagationResult reports partial success: Updated may be lower than
// Requested when some rewrites fail, and nothing is rolled back.
type PropagationResult struct {
	Requested int
	Updated   int
}

// DeletePolicy decides the fate of transactions referencing a deleted
// template. The reference is a lookup edge, not ownership, so the caller
// must pick a policy rather than rely on a hidden cascade.
type DeletePolicy string

const (
	DeleteCascade DeletePolicy = "cascade"
	DeleteOrphan  DeletePolicy = "orphan"
)

// TemplateReconciliation is the per-template outcome of a reconcile pass.
type TemplateReconciliation struct {
	TemplateId int
	Created    []transaction.Transaction
	Watermark  dates.Date
}

// Occurrence is one projected schedule entry for calendar views.
type Occurrence struct {
	Template Template
	Date     dates.Date
}

type Service interface {
	Create(ctx context.Context, tpl Template) (Template, error)
	Get(ctx context.Context, id int) (Template, error)
	GetAll(ctx context.Context) ([]Template, error)
	Update(ctx context.Context, tpl Template, propagation Propagation) (Template, PropagationResult, error)
	Delete(ctx context.Context, id int, policy DeletePolicy) (bool, error)
	// Reconcile materializes every occurrence owed between each template's
	// watermark and today. The host application calls it once when data
	// finishes loading and once whenever it regains foreground visibility.
	Reconcile(ctx context.Context) ([]TemplateReconciliation, error)
	// Project lists the occurrences of all templates within [from, to]
	// without consulting or advancing any watermark.
	Project(ctx context.Context, from, to dates.Date) ([]Occurrence, error)
}

type ServiceImpl struct {
	repo         Repository
	transactions transaction.Service
	eventBus     *event_bus.EventBus
	clock        utils.Clock
}

func NewService(repo Repository, transactions transaction.Service, eventBus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, transactions: transactions, eventBus: eventBus, clock: clock}
}

func (s *ServiceImpl) Create(ctx context.Context, tpl Template) (Template, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Template{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validateTemplate(tpl); err != nil {
		return Template{}, err
	}
	tpl.LastApplied = dates.None

	id, err := s.repo.Store(ctx, userId, tpl)
	if err != nil {
		return Template{}, err
	}
	tpl.Id = id
	return tpl, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (Template, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Template{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Get(ctx, userId, id)
}

func (s *ServiceImpl) GetAll(ctx context.Context) ([]Template, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetAll(ctx, userId)
}

func (s *ServiceImpl) Update(ctx context.Context, tpl Template, propagation Propagation) (Template, PropagationResult, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Template{}, PropagationResult{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validateTemplate(tpl); err != nil {
		return Template{}, PropagationResult{}, err
	}
	if propagation.Mode == PropagateFromCutoff && !propagation.Cutoff.Valid() {
		return Template{}, PropagationResult{}, fmt.Errorf("fromCutoff propagation requires a valid cutoff date")
	}

	updated, err := s.repo.Update(ctx, userId, tpl)
	if err != nil {
		return Template{}, PropagationResult{}, err
	}
	if !updated {
		log.Warnf("recurring template not updated, probably because it does not exist (%d) or the user (%d) is not the owner", tpl.Id, userId)
		return Template{}, PropagationResult{}, ErrTemplateNotFound
	}

	result, err := s.propagate(ctx, tpl, propagation)
	if err != nil {
		// the template update already stuck; report the partial outcome
		return tpl, result, fmt.Errorf("template updated but history rewrite incomplete: %w", err)
	}
	return tpl, result, nil
}

func (s *ServiceImpl) propagate(ctx context.Context, tpl Template, propagation Propagation) (PropagationResult, error) {
	var cutoff dates.Date
	switch propagation.Mode {
	case PropagateNone, "":
		return PropagationResult{}, nil
	case PropagateAll:
		cutoff = dates.None
	case PropagateFromCutoff:
		cutoff = propagation.Cutoff
	default:
		return PropagationResult{}, fmt.Errorf("unknown propagation mode %q", propagation.Mode)
	}

	existing, err := s.transactions.ListByRecurringId(ctx, tpl.Id)
	if err != nil {
		return PropagationResult{}, err
	}
	requested := 0
	for _, tx := range existing {
		if cutoff.IsZero() || !tx.Date.Before(cutoff) {
			requested++
		}
	}

	updated, err := s.transactions.RewriteRecurring(ctx, tpl.Id, transaction.RecurringFields{
		Type:        tpl.Skeleton.Type,
		Amount:      tpl.Skeleton.Amount,
		Description: tpl.Skeleton.Description,
		BucketId:    tpl.Skeleton.BucketId,
	}, cutoff)
	result := PropagationResult{Requested: requested, Updated: updated}
	if err != nil {
		return result, err
	}
	if updated < requested {
		log.Warnf("edit propagation for template %d rewrote %d of %d transactions", tpl.Id, updated, requested)
	}
	return result, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id int, policy DeletePolicy) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}

	switch policy {
	case DeleteCascade:
		deleted, err := s.transactions.DeleteRecurring(ctx, id)
		if err != nil {
			return false, err
		}
		log.Infof("deleted %d transactions of recurring template %d", deleted, id)
	case DeleteOrphan, "":
		detached, err := s.transactions.DetachRecurring(ctx, id)
		if err != nil {
			return false, err
		}
		log.Infof("detached %d transactions of recurring template %d", detached, id)
	default:
		return false, fmt.Errorf("unknown delete policy %q", policy)
	}

	return s.repo.Delete(ctx, userId, id)
}

func (s *ServiceImpl) Reconcile(ctx context.Context) ([]TemplateReconciliation, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	today := s.clock.Today()

	templates, err := s.repo.ListStarted(ctx, userId, today)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring templates: %w", err)
	}

	var outcomes []TemplateReconciliation
	var failures []error
	for _, tpl := range templates {
		outcome, err := s.reconcileTemplate(ctx, userId, tpl, today)
		if err != nil {
			// one broken template must not block the others
			log.Errorf("failed to reconcile recurring template %d: %v", tpl.Id, err)
			failures = append(failures, fmt.Errorf("template %d: %w", tpl.Id, err))
			continue
		}
		if len(outcome.Created) > 0 || !outcome.Watermark.IsZero() {
			outcomes = append(outcomes, outcome)
		}
	}
	return outcomes, errors.Join(failures...)
}

// reconcileTemplate materializes the occurrences a single template owes up
// to today. Candidates are walked in ascending date order; dates already
// present among the template's materialized transactions are skipped, which
// makes the pass idempotent and makes overlapping passes harmless. The
// watermark becomes the greatest occurrence date considered, whether it was
// created now or already existed, and is only persisted after the batch
// create succeeded, so a failed batch is retried on the next pass.
func (s *ServiceImpl) reconcileTemplate(ctx context.Context, userId int, tpl Template, today dates.Date) (TemplateReconciliation, error) {
	outcome := TemplateReconciliation{TemplateId: tpl.Id}
	if !tpl.StartDate.Valid() {
		// fail soft: drop the broken template from this pass
		log.Warnf("recurring template %d has no usable start date, skipping", tpl.Id)
		return outcome, nil
	}

	candidates := OccurrencesUpTo(tpl.Frequency, tpl.StartDate, tpl.EndDate, tpl.LastApplied, today)
	if len(candidates) == 0 {
		return outcome, nil
	}

	existing, err := s.transactions.ListByRecurringId(ctx, tpl.Id)
	if err != nil {
		return outcome, err
	}
	materialized := make(map[dates.Date]bool, len(existing))
	for _, tx := range existing {
		materialized[tx.Date] = true
	}

	var newTxs []transaction.Transaction
	watermark := dates.None
	for _, date := range candidates {
		watermark = date
		if materialized[date] {
			continue
		}
		newTxs = append(newTxs, materialize(tpl, date))
	}

	if len(newTxs) > 0 {
		created, err := s.transactions.CreateBatch(ctx, newTxs)
		if err != nil {
			// watermark stays put so the next pass retries these candidates
			return outcome, fmt.Errorf("failed to materialize occurrences: %w", err)
		}
		outcome.Created = created
	}

	if watermark.After(tpl.LastApplied) {
		if err := s.repo.UpdateWatermark(ctx, userId, tpl.Id, watermark); err != nil {
			return outcome, err
		}
	}
	outcome.Watermark = watermark

	if len(outcome.Created) > 0 && s.eventBus != nil {
		err := s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.RecurringGeneratedEvent, event_bus.RecurringGenerated{
			TemplateId: tpl.Id,
			Created:    len(outcome.Created),
			Watermark:  watermark,
		}))
		if err != nil {
			log.Errorf("failed to publish recurring generated event: %v", err)
		}
	}
	return outcome, nil
}

func (s *ServiceImpl) Project(ctx context.Context, from, to dates.Date) ([]Occurrence, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if !from.Valid() || !to.Valid() {
		return nil, fmt.Errorf("invalid projection window [%s, %s]", from, to)
	}

	templates, err := s.repo.GetAll(ctx, userId)
	if err != nil {
		return nil, err
	}

	var occurrences []Occurrence
	for _, tpl := range templates {
		for _, date := range OccurrencesBetween(tpl.Frequency, tpl.StartDate, tpl.EndDate, from, to) {
			occurrences = append(occurrences, Occurrence{Template: tpl, Date: date})
		}
	}
	return occurrences, nil
}

// materialize builds the transaction payload for one occurrence: the
// skeleton copied verbatim, the occurrence date, and the back-reference.
func materialize(tpl Template, date dates.Date) transaction.Transaction {
	return transaction.Transaction{
		Type:        tpl.Skeleton.Type,
		Amount:      tpl.Skeleton.Amount,
		Description: tpl.Skeleton.Description,
		BucketId:    tpl.Skeleton.BucketId,
		Date:        date,
		IsRecurring: true,
		RecurringId: tpl.Id,
		Tags:        tpl.Skeleton.Tags,
		Notes:       tpl.Skeleton.Notes,
	}
}

func validateTemplate(tpl Template) error {
	if !tpl.Frequency.Valid() {
		return fmt.Errorf("unknown frequency %q", tpl.Frequency)
	}
	if !tpl.StartDate.Valid() {
		return fmt.Errorf("invalid start date %q", tpl.StartDate)
	}
	if !tpl.EndDate.IsZero() {
		if !tpl.EndDate.Valid() {
			return fmt.Errorf("invalid end date %q", tpl.EndDate)
		}
		if tpl.EndDate.Before(tpl.StartDate) {
			return fmt.Errorf("end date %s is before start date %s", tpl.EndDate, tpl.StartDate)
		}
	}
	if !tpl.Skeleton.Type.Valid() {
		return fmt.Errorf("unknown transaction type %q", tpl.Skeleton.Type)
	}
	if !tpl.Skeleton.Amount.IsPositive() {
		return fmt.Errorf("amount must be positive")
	}
	if tpl.Skeleton.Description == "" {
		return fmt.Errorf("description must not be empty")
	}
	if tpl.Skeleton.Type == transaction.TypeExpense && tpl.Skeleton.BucketId == 0 {
		return fmt.Errorf("expense templates require a bucket")
	}
	return nil
}
