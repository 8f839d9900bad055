package store

import (
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/deadly-nightshade/medguard/internal/model"
)

// ReportStore keeps finished analysis reports in memory for the process
// lifetime, bounded by a TTL. Reports carry a monotonic sequence number so
// pollers can ask for everything after the last one they saw.
type ReportStore struct {
	cache *gocache.Cache
	seq   atomic.Int64
}

// NewReportStore creates a store whose entries expire after ttl
func NewReportStore(ttl, cleanupInterval time.Duration) *ReportStore {
	return &ReportStore{
		cache: gocache.New(ttl, cleanupInterval),
	}
}

// Append assigns the report an ID, sequence number, and timestamp if unset,
// stores it, and returns the stored copy.
func (s *ReportStore) Append(report model.AnalysisReport) model.AnalysisReport {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	report.Seq = s.seq.Add(1)
	if report.Timestamp.IsZero() {
		report.Timestamp = time.Now().UTC()
	}
	s.cache.Set(report.ID, report, gocache.DefaultExpiration)
	return report
}

// Get returns the report stored under id
func (s *ReportStore) Get(id string) (model.AnalysisReport, bool) {
	val, found := s.cache.Get(id)
	if !found {
		return model.AnalysisReport{}, false
	}
	return val.(model.AnalysisReport), true
}

// ListSince returns all unexpired reports with a sequence number greater
// than seq, in ascending sequence order. Pass 0 for everything.
func (s *ReportStore) ListSince(seq int64) []model.AnalysisReport {
	var reports []model.AnalysisReport
	for _, item := range s.cache.Items() {
		report := item.Object.(model.AnalysisReport)
		if report.Seq > seq {
			reports = append(reports, report)
		}
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Seq < reports[j].Seq })
	return reports
}

// Len returns the number of unexpired reports
func (s *ReportStore) Len() int {
	return s.cache.ItemCount()
}
