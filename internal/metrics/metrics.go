package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters, cumulative over the process lifetime
	Runs            int64
	CandidatesTotal int64
	DraftsWritten   int64
	ReviewsLogged   int64
	SeenSkipped     int64
	FetchFailures   int64
	QuotaDeferred   int64
	OffTopic        int64
	ExistingDrafts  int64

	// Last run
	LastRunID   string
	LastSeen    int
	LastNew     int
	LastReview  int
	LastRunTime time.Time

	// Timings
	LastProcessingTime    time.Duration
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration

	// Status
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = New()

func New() *Metrics {
	return &Metrics{IsHealthy: true}
}

// RunStats is what one orchestrator run reports.
type RunStats struct {
	RunID          string
	Candidates     int
	New            int
	Reviews        int
	SeenSkipped    int
	FetchFailures  int
	QuotaDeferred  int
	OffTopic       int
	ExistingDrafts int
	SeenTotal      int
	Duration       time.Duration
}

func (m *Metrics) RecordRun(s RunStats) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Runs++
	m.CandidatesTotal += int64(s.Candidates)
	m.DraftsWritten += int64(s.New)
	m.ReviewsLogged += int64(s.Reviews)
	m.SeenSkipped += int64(s.SeenSkipped)
	m.FetchFailures += int64(s.FetchFailures)
	m.QuotaDeferred += int64(s.QuotaDeferred)
	m.OffTopic += int64(s.OffTopic)
	m.ExistingDrafts += int64(s.ExistingDrafts)

	m.LastRunID = s.RunID
	m.LastSeen = s.SeenTotal
	m.LastNew = s.New
	m.LastReview = s.Reviews
	m.LastRunTime = time.Now()

	m.LastProcessingTime = s.Duration
	m.TotalProcessingTime += s.Duration
	m.AverageProcessingTime = m.TotalProcessingTime / time.Duration(m.Runs)
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.IsHealthy
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"runs":                       m.Runs,
		"candidates_total":           m.CandidatesTotal,
		"drafts_written":             m.DraftsWritten,
		"reviews_logged":             m.ReviewsLogged,
		"seen_skipped":               m.SeenSkipped,
		"fetch_failures":             m.FetchFailures,
		"quota_deferred":             m.QuotaDeferred,
		"off_topic":                  m.OffTopic,
		"existing_drafts":            m.ExistingDrafts,
		"last_run_id":                m.LastRunID,
		"last_seen_total":            m.LastSeen,
		"last_new":                   m.LastNew,
		"last_review":                m.LastReview,
		"last_processing_time_ms":    m.LastProcessingTime.Milliseconds(),
		"average_processing_time_ms": m.AverageProcessingTime.Milliseconds(),
		"last_run_time":              formatTime(m.LastRunTime),
		"last_error_time":            formatTime(m.LastErrorTime),
		"last_error":                 m.LastError,
		"is_healthy":                 m.IsHealthy,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
