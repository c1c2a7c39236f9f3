package domain

// Stage is one of the fixed pipeline phases a session passes through.
type Stage string

const (
	StageUpload       Stage = "upload"
	StageValidation   Stage = "validation"
	StageExtraction   Stage = "extraction"
	StageOCR          Stage = "ocr"
	StageAIProcessing Stage = "ai-processing"
	StageTopics       Stage = "topic-extraction"
	StageOrganization Stage = "content-organization"
	StageLayout       Stage = "layout-generation"
	StagePDF          Stage = "pdf-generation"
	StageCompletion   Stage = "completion"
)

// StageOrder lists all stages in pipeline order. The order matters only for
// time-remaining estimation; transitions are driven by callers.
var StageOrder = []Stage{
	StageUpload,
	StageValidation,
	StageExtraction,
	StageOCR,
	StageAIProcessing,
	StageTopics,
	StageOrganization,
	StageLayout,
	StagePDF,
	StageCompletion,
}

// StageCount is the total number of pipeline stages.
const StageCount = 10
