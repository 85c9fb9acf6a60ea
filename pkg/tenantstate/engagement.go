package tenantstate

import (
	"fmt"
	"sync"

	"github.com/soberstay/marketplace/pkg/localstore"
)

type EngagementField string

const (
	ApplicationsSubmitted EngagementField = "applicationsSubmitted"
	HomesViewed           EngagementField = "homesViewed"
	ApprovalsReceived     EngagementField = "approvalsReceived"
	SavedHomes            EngagementField = "savedHomes"
)

func ParseEngagementField(s string) (EngagementField, error) {
	switch f := EngagementField(s); f {
	case ApplicationsSubmitted, HomesViewed, ApprovalsReceived, SavedHomes:
		return f, nil
	default:
		return "", fmt.Errorf("unknown engagement field %q", s)
	}
}

type EngagementStats struct {
	ApplicationsSubmitted int `json:"applicationsSubmitted"`
	HomesViewed           int `json:"homesViewed"`
	ApprovalsReceived     int `json:"approvalsReceived"`
	SavedHomes            int `json:"savedHomes"`
}

func (s *EngagementStats) counter(f EngagementField) *int {
	switch f {
	case ApplicationsSubmitted:
		return &s.ApplicationsSubmitted
	case HomesViewed:
		return &s.HomesViewed
	case ApprovalsReceived:
		return &s.ApprovalsReceived
	case SavedHomes:
		return &s.SavedHomes
	}
	return nil
}

func (s *EngagementStats) clamp() {
	for _, p := range []*int{&s.ApplicationsSubmitted, &s.HomesViewed, &s.ApprovalsReceived, &s.SavedHomes} {
		if *p < 0 {
			*p = 0
		}
	}
}

// Engagement keeps the device-local activity counters.
type Engagement struct {
	mu    sync.Mutex
	local localstore.Store
}

func NewEngagement(cfg Config) *Engagement {
	return &Engagement{local: cfg.Local}
}

func (e *Engagement) Get() EngagementStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.load()
}

func (e *Engagement) load() EngagementStats {
	s := localstore.LoadJSON[EngagementStats](e.local, localstore.KeyEngagement)
	s.clamp()
	return s
}

// Increment adds one to field and returns the updated record.
func (e *Engagement) Increment(field EngagementField) (EngagementStats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.load()
	p := s.counter(field)
	if p == nil {
		return s, fmt.Errorf("unknown engagement field %q", field)
	}
	*p++
	if err := localstore.SaveJSON(e.local, localstore.KeyEngagement, s); err != nil {
		return s, err
	}
	return s, nil
}

func (e *Engagement) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.local.Delete(localstore.KeyEngagement)
}
