package usecase

import (
	"context"
	"errors"
	"time"

	"KabuScan/internal/domain/models"
	drepo "KabuScan/internal/domain/repository"
	"KabuScan/internal/service/classify"
	"KabuScan/internal/service/ratelimit"
	"KabuScan/internal/service/ratio"
	"KabuScan/internal/service/screen"
	"KabuScan/pkg/cache"
	xlogger "KabuScan/pkg/logger"
)

// ScanConfig is the full configuration surface of one scan invocation.
// Zero values fall back to the defaults below.
type ScanConfig struct {
	Thresholds screen.Thresholds
	Sort       screen.SortKey
	TopK       int // 0 = all survivors

	BatchSize  int           // instruments per fetch chunk
	WindowDays int           // trailing calendar days to fetch
	ChunkDelay time.Duration // courtesy pause between chunks
	CacheTTL   time.Duration

	// Two-stage mode: run the loose thresholds first on short-window data,
	// then re-score the top StageTopN candidates on a longer window with
	// the Strict thresholds. Bounds the cost of the data-hungry pass.
	TwoStage         bool
	StageTopN        int
	Strict           screen.Thresholds
	StrictWindowDays int
}

const (
	defaultBatchSize        = 40
	defaultWindowDays       = 30
	defaultChunkDelay       = 50 * time.Millisecond
	defaultCacheTTL         = 5 * time.Minute
	defaultStageTopN        = 120
	defaultStrictWindowDays = 90
)

func (c *ScanConfig) normalize() {
	if c.Sort == "" {
		c.Sort = screen.SortTradingValue
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.WindowDays <= 0 {
		c.WindowDays = defaultWindowDays
	}
	if c.ChunkDelay == 0 {
		c.ChunkDelay = defaultChunkDelay // negative disables the pause
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = defaultCacheTTL
	}
	if c.StageTopN <= 0 {
		c.StageTopN = defaultStageTopN
	}
	if c.StrictWindowDays <= 0 {
		c.StrictWindowDays = defaultStrictWindowDays
	}
}

// Scanner runs scans: fetch bars chunk by chunk, score, classify, gate and
// rank. Each invocation's state is local; the only shared piece is the bar
// cache.
type Scanner struct {
	source     drepo.BarSource
	sourceName string
	cache      cache.Service
	limiter    *ratelimit.Limiter
	metrics    drepo.Metrics
	publisher  drepo.ResultPublisher
	logger     *xlogger.Logger
}

func NewScanner(
	source drepo.BarSource,
	sourceName string,
	barCache cache.Service,
	limiter *ratelimit.Limiter,
	metrics drepo.Metrics,
	publisher drepo.ResultPublisher,
	logger *xlogger.Logger,
) *Scanner {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &Scanner{
		source:     source,
		sourceName: sourceName,
		cache:      barCache,
		limiter:    limiter,
		metrics:    metrics,
		publisher:  publisher,
		logger:     logger,
	}
}

// Run executes one scan over the universe. It never fails the batch for a
// single instrument or chunk: fetch failures skip that chunk's instruments
// and continue, and cancellation mid-batch returns the results accumulated
// so far. The report always states an explicit outcome.
func (s *Scanner) Run(ctx context.Context, universe []models.Instrument, cfg ScanConfig) (*models.ScanReport, error) {
	cfg.normalize()

	report := &models.ScanReport{
		Started:  time.Now(),
		Universe: len(universe),
	}

	scored := s.scorePass(ctx, universe, cfg.WindowDays, cfg, report)
	report.Scored = len(scored)

	var ranked []models.ScanResult
	if cfg.TwoStage {
		ranked = s.twoStage(ctx, scored, cfg, report)
	} else {
		ranked = screen.Screen(scored, cfg.Thresholds, cfg.Sort, cfg.TopK)
	}

	report.Results = ranked
	report.Elapsed = time.Since(report.Started)
	if len(ranked) > 0 {
		report.Outcome = models.OutcomeOK
	} else {
		report.Outcome = models.OutcomeNoCandidates
	}

	if s.metrics != nil {
		s.metrics.RecordScan(report.Outcome, report.Elapsed.Seconds())
		s.metrics.RecordScored(report.Scored)
		s.metrics.RecordCandidates(len(ranked))
	}
	s.logger.Info("scan finished",
		xlogger.String("outcome", report.Outcome),
		xlogger.Int("universe", report.Universe),
		xlogger.Int("scored", report.Scored),
		xlogger.Int("candidates", len(ranked)),
		xlogger.Int("skipped", report.SkippedTotal()),
		xlogger.Duration("elapsed", report.Elapsed),
	)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, report); err != nil {
			s.logger.Warn("scan publish failed", xlogger.Error(err))
			if s.metrics != nil {
				s.metrics.RecordError("publish")
			}
		}
	}

	return report, nil
}

// twoStage reruns the strict thresholds on long-window data for the top
// stage-one candidates only.
func (s *Scanner) twoStage(ctx context.Context, scored []models.ScanResult, cfg ScanConfig, report *models.ScanReport) []models.ScanResult {
	broad := screen.Screen(scored, cfg.Thresholds, cfg.Sort, cfg.StageTopN)
	if len(broad) == 0 {
		return nil
	}

	shortlist := make([]models.Instrument, 0, len(broad))
	for _, r := range broad {
		shortlist = append(shortlist, r.Instrument)
	}

	// Stage-two skips land on a scratch report: every shortlisted
	// instrument is already counted in Scored, so adding its refetch
	// failure or exclusion to the aggregates would count it twice. A
	// dropped instrument simply leaves the shortlist.
	scratch := &models.ScanReport{}
	rescored := s.scorePass(ctx, shortlist, cfg.StrictWindowDays, cfg, scratch)
	if scratch.FetchFailed > 0 || len(scratch.Exclusions) > 0 {
		s.logger.Warn("strict pass dropped shortlisted instruments",
			xlogger.Int("fetch_failed", scratch.FetchFailed),
			xlogger.Int("excluded", len(scratch.Exclusions)),
		)
	}
	return screen.Screen(rescored, cfg.Strict, cfg.Sort, cfg.TopK)
}

// scorePass fetches and scores the instruments chunk by chunk, accumulating
// exclusions and fetch failures on the report.
func (s *Scanner) scorePass(ctx context.Context, instruments []models.Instrument, days int, cfg ScanConfig, report *models.ScanReport) []models.ScanResult {
	results := make([]models.ScanResult, 0, len(instruments))
	chunks := chunkInstruments(instruments, cfg.BatchSize)

	for ci, chunk := range chunks {
		if ctx.Err() != nil {
			// abandoned mid-batch: whatever is accumulated stays valid
			s.logger.Warn("scan cancelled mid-batch", xlogger.Int("chunks_done", ci))
			break
		}

		codes := make([]string, 0, len(chunk))
		for _, inst := range chunk {
			codes = append(codes, inst.Code)
		}

		barsByCode, err := s.fetchChunk(ctx, codes, days, cfg.CacheTTL)
		if err != nil {
			report.FetchFailed += len(chunk)
			s.logger.Warn("chunk fetch failed, skipping",
				xlogger.Int("chunk", ci),
				xlogger.Int("instruments", len(chunk)),
				xlogger.Error(err),
			)
			if s.metrics != nil {
				s.metrics.RecordError("fetch")
				s.metrics.RecordSkip("fetch_failed", len(chunk))
			}
		} else {
			for _, inst := range chunk {
				bars, ok := barsByCode[inst.Code]
				if !ok || len(bars) == 0 {
					s.exclude(report, inst.Code, models.SkipMissingData)
					continue
				}
				rs, reason := ratio.Compute(bars)
				if reason != models.SkipNone {
					s.exclude(report, inst.Code, reason)
					continue
				}
				today := bars[len(bars)-1]
				results = append(results, models.ScanResult{
					Instrument: inst,
					Ratios:     rs,
					Momentum:   classify.Momentum(rs),
					Breakout:   classify.Breakout(today, rs),
				})
			}
		}

		if cfg.ChunkDelay > 0 && ci < len(chunks)-1 {
			select {
			case <-ctx.Done():
			case <-time.After(cfg.ChunkDelay):
			}
		}
	}

	return results
}

func (s *Scanner) exclude(report *models.ScanReport, code string, reason models.SkipReason) {
	report.Exclusions = append(report.Exclusions, models.Exclusion{
		Code:   code,
		Reason: reason,
		Cause:  reason.String(),
	})
	if s.metrics != nil {
		s.metrics.RecordSkip(reason.String(), 1)
	}
}

// fetchChunk consults the TTL cache before the external source. Repeated
// scans of the same instrument set and window inside the TTL never refetch.
func (s *Scanner) fetchChunk(ctx context.Context, codes []string, days int, ttl time.Duration) (map[string][]models.Bar, error) {
	key := cache.BarsKey(codes, days)

	if s.cache != nil {
		var cached map[string][]models.Bar
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			if s.metrics != nil {
				s.metrics.RecordCacheHit(true)
			}
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("bar cache read failed", xlogger.Error(err))
		}
		if s.metrics != nil {
			s.metrics.RecordCacheHit(false)
		}
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	barsByCode, err := s.source.FetchBars(ctx, codes, days)
	if s.metrics != nil {
		s.metrics.RecordFetch(s.sourceName, time.Since(start).Seconds())
	}
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, barsByCode, ttl); err != nil {
			s.logger.Warn("bar cache write failed", xlogger.Error(err))
		}
	}
	return barsByCode, nil
}

func chunkInstruments(instruments []models.Instrument, size int) [][]models.Instrument {
	if size <= 0 {
		size = defaultBatchSize
	}
	var chunks [][]models.Instrument
	for start := 0; start < len(instruments); start += size {
		end := start + size
		if end > len(instruments) {
			end = len(instruments)
		}
		chunks = append(chunks, instruments[start:end])
	}
	return chunks
}
