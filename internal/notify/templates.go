package notify

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vietddude/docpipe/internal/core/domain"
)

// autoHideAfter is how long automated-recovery notifications stay visible.
const autoHideAfter = 5 * time.Second

var titlesByCode = map[domain.ErrorCode]string{
	domain.ErrorCodeNetwork:    "Network Error",
	domain.ErrorCodeTimeout:    "Timeout",
	domain.ErrorCodeMemory:     "Memory Limit Reached",
	domain.ErrorCodeOCR:        "Text Recognition Problem",
	domain.ErrorCodeParse:      "Document Parsing Failed",
	domain.ErrorCodeAIService:  "AI Service Unavailable",
	domain.ErrorCodeValidation: "Validation Failed",
}

// NewNotification builds a user notification from an error and the strategy
// chosen for it. Automated strategies render as auto-hiding warnings; ones
// needing the user stay visible as errors.
func NewNotification(perr domain.ProcessingError, strategy domain.RecoveryStrategy, stage domain.Stage) *domain.UserNotification {
	title, ok := titlesByCode[perr.Code]
	if !ok {
		title = "Processing Error"
	}

	message := strategy.Description
	if strategy.UserAction != "" {
		message = fmt.Sprintf("%s. %s", strategy.Description, strategy.UserAction)
	}

	n := &domain.UserNotification{
		ID:          uuid.New().String(),
		Type:        domain.NotificationError,
		Title:       fmt.Sprintf("%s during %s", title, stage),
		Message:     message,
		Stage:       stage,
		Timestamp:   time.Now(),
		Actions:     actionsFor(strategy),
		Dismissible: true,
	}

	if strategy.Automated {
		n.Type = domain.NotificationWarning
		n.AutoHide = true
		n.Duration = autoHideAfter
	}

	return n
}

// actionsFor chooses the action buttons offered for a strategy type.
func actionsFor(strategy domain.RecoveryStrategy) []domain.NotificationAction {
	retry := domain.NotificationAction{Label: "Retry", Action: domain.ActionRetry}
	skip := domain.NotificationAction{Label: "Skip", Action: domain.ActionSkip}
	cancel := domain.NotificationAction{Label: "Cancel", Action: domain.ActionCancel}

	switch strategy.Type {
	case domain.StrategyRetry:
		return []domain.NotificationAction{retry, skip}
	case domain.StrategyFallback:
		return []domain.NotificationAction{
			{
				Label:  "Use Alternative",
				Action: domain.ActionFallback,
				Data: &domain.ActionData{
					Fallback: &domain.FallbackData{Processor: strategy.FallbackProcessor},
				},
			},
			skip,
		}
	case domain.StrategySkip:
		return []domain.NotificationAction{skip, retry}
	case domain.StrategyManual:
		return []domain.NotificationAction{retry, cancel}
	default:
		return []domain.NotificationAction{cancel}
	}
}

// NewInfoNotification builds a plain informational notification, e.g. the
// post-recovery summary.
func NewInfoNotification(title, message string, stage domain.Stage) *domain.UserNotification {
	return &domain.UserNotification{
		ID:          uuid.New().String(),
		Type:        domain.NotificationInfo,
		Title:       title,
		Message:     message,
		Stage:       stage,
		Timestamp:   time.Now(),
		Dismissible: true,
		AutoHide:    true,
		Duration:    autoHideAfter,
	}
}
