package monitoring

import (
	"sort"
	"strings"
	"sync"
	"time"

	nuts "github.com/vaudience/go-nuts"
)

// Config holds monitoring configuration
type Config struct {
	// Retention bounds how long recorded events are kept for GetEventMetrics
	Retention time.Duration
}

type event struct {
	name   string
	labels string
	at     time.Time
}

// Service provides monitoring functionality
type Service struct {
	config Config
	mu     sync.Mutex
	events []event
	totals map[string]int64
	now    func() time.Time
}

// NewService creates a new monitoring service
func NewService(config Config) *Service {
	if config.Retention <= 0 {
		config.Retention = time.Hour
	}
	return &Service{
		config: config,
		totals: make(map[string]int64),
		now:    time.Now,
	}
}

// RecordEvent records a monitored event with labels
func (s *Service) RecordEvent(eventName string, labels map[string]string) {
	ts := s.now()
	key := labelKey(labels)

	s.mu.Lock()
	s.events = append(s.events, event{name: eventName, labels: key, at: ts})
	s.totals[eventName]++
	s.pruneLocked(ts)
	s.mu.Unlock()

	nuts.L.Debugf("[Monitoring] Event %s recorded at %v with labels: %v", eventName, ts, labels)
}

// GetEventMetrics counts events of eventType recorded within the last duration,
// keyed by their label set. An empty eventType matches every event, keyed by name.
func (s *Service) GetEventMetrics(eventType string, duration time.Duration) (map[string]int64, error) {
	since := s.now().Add(-duration)

	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[string]int64)
	for _, e := range s.events {
		if e.at.Before(since) {
			continue
		}
		switch {
		case eventType == "":
			counts[e.name]++
		case e.name == eventType:
			counts[e.labels]++
		}
	}
	return counts, nil
}

// Totals returns the number of events recorded per name since startup
func (s *Service) Totals() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64, len(s.totals))
	for k, v := range s.totals {
		out[k] = v
	}
	return out
}

// events are appended in time order, so everything before the first
// retained entry can be dropped
func (s *Service) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.config.Retention)
	i := sort.Search(len(s.events), func(i int) bool { return !s.events[i].at.Before(cutoff) })
	if i > 0 {
		s.events = append(s.events[:0:0], s.events[i:]...)
	}
}

// labelKey renders labels as a stable "k=v,k=v" string
func labelKey(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + labels[k]
	}
	return strings.Join(parts, ",")
}
