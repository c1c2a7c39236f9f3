package recovery

import (
	"fmt"

	"github.com/vietddude/docpipe/internal/core/domain"
)

// Retry ceilings per error class. Thresholds are absolute attempt counts:
// an error reported at attempt >= ceiling escalates immediately.
const (
	maxNetworkRetries = 3
	maxAIRetries      = 2
	maxDefaultRetries = 1
)

// Classify maps an error and its attempt history to a recovery strategy.
// attempt is the target file's retry count when a file is involved,
// otherwise the session's per-stage retry count. Pure function; unknown
// codes fall through to the default row.
func Classify(perr domain.ProcessingError, attempt int) domain.RecoveryStrategy {
	switch perr.Code {
	case domain.ErrorCodeNetwork, domain.ErrorCodeTimeout:
		if attempt < maxNetworkRetries {
			return domain.RecoveryStrategy{
				Type:        domain.StrategyRetry,
				Description: "Retrying after a transient connection problem",
				Automated:   true,
				MaxRetries:  maxNetworkRetries,
			}
		}
		return domain.RecoveryStrategy{
			Type:        domain.StrategyManual,
			Description: "Repeated connection failures",
			UserAction:  "Please check your connection and try again",
		}

	case domain.ErrorCodeMemory:
		// No further escalation: the low-memory path is the floor.
		return domain.RecoveryStrategy{
			Type:              domain.StrategyFallback,
			Description:       "Switching to low-memory processing",
			Automated:         true,
			FallbackProcessor: domain.FallbackLowMemory,
		}

	case domain.ErrorCodeOCR:
		return domain.RecoveryStrategy{
			Type:              domain.StrategyFallback,
			Description:       "Switching to the alternative OCR engine",
			Automated:         true,
			FallbackProcessor: domain.FallbackAlternativeOCR,
		}

	case domain.ErrorCodeParse:
		if attempt == 0 {
			return domain.RecoveryStrategy{
				Type:              domain.StrategyFallback,
				Description:       "Trying the alternative document parser",
				Automated:         true,
				FallbackProcessor: domain.FallbackAltParser,
			}
		}
		return domain.RecoveryStrategy{
			Type:        domain.StrategySkip,
			Description: "The document could not be parsed by any available parser",
			UserAction:  "We recommend skipping this document",
		}

	case domain.ErrorCodeAIService:
		if attempt < maxAIRetries {
			return domain.RecoveryStrategy{
				Type:        domain.StrategyRetry,
				Description: "Retrying the AI service",
				Automated:   true,
				MaxRetries:  maxAIRetries,
			}
		}
		return domain.RecoveryStrategy{
			Type:              domain.StrategyFallback,
			Description:       "AI service unavailable, degrading to basic extraction",
			Automated:         true,
			FallbackProcessor: domain.FallbackBasicExtraction,
		}

	case domain.ErrorCodeValidation:
		return domain.RecoveryStrategy{
			Type:        domain.StrategyManual,
			Description: "The uploaded document failed validation",
			UserAction:  "Please check the file format and size requirements",
		}

	default:
		if attempt == 0 {
			return domain.RecoveryStrategy{
				Type:        domain.StrategyRetry,
				Description: fmt.Sprintf("Retrying after an unexpected error (%s)", perr.Code),
				Automated:   true,
				MaxRetries:  maxDefaultRetries,
			}
		}
		return domain.RecoveryStrategy{
			Type:        domain.StrategySkip,
			Description: "Repeated unexpected errors",
			UserAction:  "Consider skipping this item",
		}
	}
}
