package api

import (
	"sort"
	"sync"

	"weathernow/models"
)

// ReportStore holds the most recent report for each location served
type ReportStore struct {
	data  map[string]models.Report // key is Location.Key()
	mutex sync.RWMutex
}

// NewReportStore creates a new in-memory report store
func NewReportStore() *ReportStore {
	return &ReportStore{
		data: make(map[string]models.Report),
	}
}

// Update stores report as the latest for its location, replacing any older one
func (s *ReportStore) Update(report models.Report) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	key := report.Location.Key()
	if existing, ok := s.data[key]; ok && existing.Fetched.After(report.Fetched) {
		return
	}
	s.data[key] = report
}

// Reports returns every stored report, sorted by location key
func (s *ReportStore) Reports() []models.Report {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	keys := make([]string, 0, len(s.data))
	for key := range s.data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	reports := make([]models.Report, 0, len(keys))
	for _, key := range keys {
		reports = append(reports, s.data[key])
	}
	return reports
}
