package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/panjf2000/ants/v2"
	"github.com/sportsdesk/cricketwire/internal/domain/match"
	"github.com/sportsdesk/cricketwire/internal/domain/rawdata"
	"github.com/sportsdesk/cricketwire/internal/platform/logging"
)

const (
	ItemStatusSuccess = "success"
	ItemStatusFailed  = "failed"
	ItemStatusSkipped = "skipped"
)

// MatchProvider is one upstream source of match summaries and scorecard
// details. Summaries and details stay opaque trees; the normalizer owns the
// shape knowledge.
type MatchProvider interface {
	Name() string
	ListMatches(ctx context.Context) ([]map[string]any, []rawdata.Payload, error)
	FetchDetail(ctx context.Context, matchID string, summary map[string]any) (map[string]any, []rawdata.Payload, error)
}

// RunInput describes one collection run.
type RunInput struct {
	RunDate    string `validate:"required,len=8,numeric"`
	MaxWorkers int    `validate:"gte=0,lte=64"`
	Criteria   SelectionCriteria
}

// RunItem is the outcome for a single selected match.
type RunItem struct {
	MatchID  string
	Provider string
	Title    string
	Status   string
	Error    string
}

// RunReport summarizes one collection run.
type RunReport struct {
	RunDate   string
	Listed    int
	Selected  int
	Succeeded int
	Failed    int
	Skipped   int
	Items     []RunItem
}

type CollectorService struct {
	providers []MatchProvider
	store     match.RecordStore
	ledger    match.ProcessedLedger
	rawRepo   rawdata.Repository
	logger    *logging.Logger
	validate  *validator.Validate
}

func NewCollectorService(
	providers []MatchProvider,
	store match.RecordStore,
	ledger match.ProcessedLedger,
	rawRepo rawdata.Repository,
	logger *logging.Logger,
) *CollectorService {
	if logger == nil {
		logger = logging.Default()
	}
	return &CollectorService{
		providers: providers,
		store:     store,
		ledger:    ledger,
		rawRepo:   rawRepo,
		logger:    logger,
		validate:  validator.New(),
	}
}

type selectedMatch struct {
	position int
	provider MatchProvider
	summary  map[string]any
	record   match.Record
}

// Run executes one collection pass: list, select, fetch details with a
// bounded pool, normalize, persist, mark processed. One bad match never
// aborts the batch; every selected match gets a per-item outcome.
func (s *CollectorService) Run(ctx context.Context, input RunInput) (RunReport, error) {
	ctx, span := startUsecaseSpan(ctx, "CollectorService.Run")
	defer span.End()

	if err := s.validate.Struct(input); err != nil {
		return RunReport{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if s.store == nil || s.ledger == nil {
		return RunReport{}, fmt.Errorf("%w: record store and ledger are required", ErrInvalidInput)
	}

	criteria := input.Criteria
	processed, err := s.ledger.ListProcessed(ctx)
	if err != nil {
		return RunReport{}, fmt.Errorf("list processed matches: %w", err)
	}
	if criteria.Processed == nil {
		criteria.Processed = processed
	} else {
		for id := range processed {
			criteria.Processed[id] = struct{}{}
		}
	}

	selected, listed, err := s.listAndSelect(ctx, criteria)
	if err != nil {
		return RunReport{}, err
	}

	report := RunReport{RunDate: input.RunDate, Listed: listed, Selected: len(selected)}
	if len(selected) == 0 {
		s.logger.InfoContext(ctx, "collection run found nothing to do", "run_date", input.RunDate, "listed", listed)
		return report, nil
	}

	workers := input.MaxWorkers
	if workers <= 0 {
		workers = 4
	}
	if workers > len(selected) {
		workers = len(selected)
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return RunReport{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded atomic.Int64
		failed    atomic.Int64
		skipped   atomic.Int64
	)
	items := make([]RunItem, len(selected))
	records := make([]*match.Record, len(selected))

	for i, candidate := range selected {
		i, candidate := i, candidate
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			item, record := s.collectOne(ctx, candidate, input.RunDate)
			switch item.Status {
			case ItemStatusSuccess:
				succeeded.Add(1)
			case ItemStatusSkipped:
				skipped.Add(1)
			default:
				failed.Add(1)
			}
			mu.Lock()
			items[i] = item
			records[i] = record
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			failed.Add(1)
			mu.Lock()
			items[i] = RunItem{
				MatchID:  candidate.record.MatchID,
				Provider: candidate.provider.Name(),
				Title:    candidate.record.Title,
				Status:   ItemStatusFailed,
				Error:    submitErr.Error(),
			}
			mu.Unlock()
		}
	}
	wg.Wait()

	report.Succeeded = int(succeeded.Load())
	report.Failed = int(failed.Load())
	report.Skipped = int(skipped.Load())
	report.Items = items

	summaryRecords := make([]match.Record, 0, len(records))
	for _, record := range records {
		if record != nil {
			summaryRecords = append(summaryRecords, *record)
		}
	}

	summary := match.DailySummary{
		Date:         input.RunDate,
		RunTime:      time.Now().UTC().Format(time.RFC3339),
		TotalMatches: len(summaryRecords),
		Matches:      summaryRecords,
	}
	if err := s.store.SaveDailySummary(ctx, summary); err != nil {
		return report, fmt.Errorf("save daily summary: %w", err)
	}

	s.logger.InfoContext(ctx, "collection run finished",
		"run_date", input.RunDate,
		"listed", report.Listed,
		"selected", report.Selected,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"skipped", report.Skipped,
	)
	return report, nil
}

func (s *CollectorService) listAndSelect(ctx context.Context, criteria SelectionCriteria) ([]selectedMatch, int, error) {
	var (
		all      []selectedMatch
		listed   int
		listErrs []string
	)
	for _, provider := range s.providers {
		summaries, payloads, err := provider.ListMatches(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, 0, ctx.Err()
			}
			s.logger.WarnContext(ctx, "provider list failed", "provider", provider.Name(), "error", err)
			listErrs = append(listErrs, fmt.Sprintf("%s: %v", provider.Name(), err))
			continue
		}
		s.saveRawPayloads(ctx, payloads)

		listed += len(summaries)
		records := make([]match.Record, 0, len(summaries))
		byID := make(map[string]map[string]any, len(summaries))
		for _, summary := range summaries {
			record, err := NormalizeMatch(summary, nil)
			if err != nil {
				s.logger.WarnContext(ctx, "summary without identifier skipped", "provider", provider.Name(), "error", err)
				continue
			}
			records = append(records, record)
			byID[record.MatchID] = summary
		}

		for _, record := range SelectMatches(records, criteria) {
			all = append(all, selectedMatch{
				position: len(all),
				provider: provider,
				summary:  byID[record.MatchID],
				record:   record,
			})
		}
	}

	if listed == 0 && len(listErrs) > 0 {
		return nil, 0, fmt.Errorf("%w: every provider list failed: %s", ErrDependencyUnavailable, strings.Join(listErrs, "; "))
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].position < all[j].position })
	return all, listed, nil
}

func (s *CollectorService) collectOne(ctx context.Context, candidate selectedMatch, runDate string) (RunItem, *match.Record) {
	item := RunItem{
		MatchID:  candidate.record.MatchID,
		Provider: candidate.provider.Name(),
		Title:    candidate.record.Title,
	}

	already, err := s.ledger.IsProcessed(ctx, candidate.record.MatchID)
	if err != nil {
		item.Status = ItemStatusFailed
		item.Error = fmt.Sprintf("check ledger: %v", err)
		return item, nil
	}
	if already {
		item.Status = ItemStatusSkipped
		return item, nil
	}

	detail, payloads, err := candidate.provider.FetchDetail(ctx, candidate.record.MatchID, candidate.summary)
	if err != nil {
		s.logger.WarnContext(ctx, "detail fetch failed, storing lesser record",
			"provider", candidate.provider.Name(),
			"match_id", candidate.record.MatchID,
			"error", err,
		)
		detail = nil
	}
	s.saveRawPayloads(ctx, payloads)

	record, err := NormalizeMatch(candidate.summary, detail)
	if err != nil {
		item.Status = ItemStatusFailed
		item.Error = fmt.Sprintf("normalize: %v", err)
		return item, nil
	}

	if err := s.store.SaveRecord(ctx, record, runDate); err != nil {
		item.Status = ItemStatusFailed
		item.Error = fmt.Sprintf("save record: %v", err)
		return item, nil
	}
	if err := s.ledger.MarkProcessed(ctx, record.MatchID, time.Now().UTC().Format(time.RFC3339)); err != nil {
		item.Status = ItemStatusFailed
		item.Error = fmt.Sprintf("mark processed: %v", err)
		return item, nil
	}

	s.logMatchSummary(ctx, record)
	item.Status = ItemStatusSuccess
	return item, &record
}

func (s *CollectorService) saveRawPayloads(ctx context.Context, payloads []rawdata.Payload) {
	if s.rawRepo == nil || len(payloads) == 0 {
		return
	}
	if err := s.rawRepo.SaveMany(ctx, payloads); err != nil {
		s.logger.WarnContext(ctx, "raw payload retention failed", "count", len(payloads), "error", err)
	}
}

func (s *CollectorService) logMatchSummary(ctx context.Context, record match.Record) {
	s.logger.InfoContext(ctx, "match collected",
		"match_id", record.MatchID,
		"title", record.Title,
		"result", record.Status,
		"player_of_match", record.PlayerOfMatch,
	)
	for _, innings := range record.Innings {
		s.logger.InfoContext(ctx, "innings",
			"match_id", record.MatchID,
			"team", innings.Team,
			"score", fmt.Sprintf("%d/%d (%.1f ov)", innings.Runs, innings.Wickets, innings.Overs),
		)
	}
}
