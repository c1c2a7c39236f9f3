package checkpoint

import (
	"fmt"
	"time"

	"github.com/vietddude/docpipe/internal/core/domain"
)

// RiskLevel grades how likely a recovery attempt is to go wrong.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Assessment is the result of a recovery pre-check.
type Assessment struct {
	CanRecover      bool      `json:"can_recover"`
	Recommendations []string  `json:"recommendations"`
	RiskLevel       RiskLevel `json:"risk_level"`
}

// Recommendations inspects a session and produces risk-scored guidance for
// recovery. Risk only ever escalates while heuristics accumulate.
func (svc *Service) Recommendations(sessionID string) Assessment {
	s, ok := svc.store.Snapshot(sessionID)
	if !ok {
		return Assessment{
			CanRecover:      false,
			Recommendations: []string{"Session not found; restore from a checkpoint if one exists"},
			RiskLevel:       RiskHigh,
		}
	}

	a := Assessment{
		CanRecover: s.CanRecover,
		RiskLevel:  RiskLow,
	}

	age := svc.now().Sub(s.LastActivity)
	if age > svc.sessionMaxAge {
		a.CanRecover = false
	}

	raise := func(to RiskLevel) {
		if to == RiskHigh || (to == RiskMedium && a.RiskLevel == RiskLow) {
			a.RiskLevel = to
		}
	}

	if age > 20*time.Hour {
		raise(RiskHigh)
		a.Recommendations = append(a.Recommendations,
			"Session is close to the recovery deadline; recover it now or restart")
	} else if age > 12*time.Hour {
		raise(RiskMedium)
		a.Recommendations = append(a.Recommendations,
			"Session has been inactive for over 12 hours; intermediate results may be stale")
	}

	failed := 0
	retriesExhausted := false
	for _, f := range s.Files {
		if f.Status == domain.FileStatusFailed {
			failed++
		}
		if f.RetryCount > 2 {
			retriesExhausted = true
		}
	}

	if failed > 0 {
		a.Recommendations = append(a.Recommendations,
			fmt.Sprintf("%d file(s) failed; retry them or skip to continue", failed))
		if failed*2 > len(s.Files) {
			raise(RiskHigh)
		}
	}

	if retriesExhausted {
		raise(RiskMedium)
		a.Recommendations = append(a.Recommendations,
			"Some files have been retried repeatedly; consider skipping them")
	}

	if _, ok := s.FailedStages[domain.StageAIProcessing]; ok {
		a.Recommendations = append(a.Recommendations,
			"AI analysis failed earlier; recovery may fall back to basic extraction")
	}

	return a
}
