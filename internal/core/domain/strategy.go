package domain

// StrategyType is the recovery directive handed back to the pipeline.
// Callers must not invent new types.
type StrategyType string

const (
	StrategyRetry    StrategyType = "retry"
	StrategyFallback StrategyType = "fallback"
	StrategySkip     StrategyType = "skip"
	StrategyManual   StrategyType = "manual"
	StrategyAbort    StrategyType = "abort"
)

// Named fallback processors the pipeline can switch to. This engine only
// signals them; the pipeline owns the implementations.
const (
	FallbackLowMemory       = "low-memory"
	FallbackAlternativeOCR  = "alternative-ocr"
	FallbackAltParser       = "alternative-parser"
	FallbackBasicExtraction = "basic-extraction"
)

// RecoveryStrategy is the action chosen for a reported error. Produced
// fresh on every classification; never persisted on its own.
type RecoveryStrategy struct {
	Type              StrategyType `json:"type"`
	Description       string       `json:"description"`
	Automated         bool         `json:"automated"`
	MaxRetries        int          `json:"max_retries,omitempty"`
	FallbackProcessor string       `json:"fallback_processor,omitempty"`
	UserAction        string       `json:"user_action,omitempty"`
}
