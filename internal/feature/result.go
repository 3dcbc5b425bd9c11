package feature

// Result is the typed outcome of one feature call. The concrete types below
// form a closed set; only the schema and fallback packages construct them.
type Result interface {
	// Feature reports which feature produced the result.
	Feature() Feature

	isResult()
}

// Source records whether a result was authored by the model or by the
// deterministic fallback generator.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Learning style names, in tie-break precedence order.
const (
	StyleVisual      = "visual"
	StyleAuditory    = "auditory"
	StyleKinesthetic = "kinesthetic"
	StyleReading     = "reading"
)

// LearningStyleResult holds the four style scores and the style labels.
type LearningStyleResult struct {
	VisualScore      float64 `json:"visual_score" validate:"gte=0,lte=100"`
	AuditoryScore    float64 `json:"auditory_score" validate:"gte=0,lte=100"`
	KinestheticScore float64 `json:"kinesthetic_score" validate:"gte=0,lte=100"`
	ReadingScore     float64 `json:"reading_score" validate:"gte=0,lte=100"`
	DominantStyle    string  `json:"dominant_style" validate:"oneof=visual auditory kinesthetic reading"`

	// SecondaryStyle is nil only when no second style can be named.
	SecondaryStyle *string `json:"secondary_style" validate:"omitempty,oneof=visual auditory kinesthetic reading"`
}

func (*LearningStyleResult) Feature() Feature { return LearningStyle }
func (*LearningStyleResult) isResult()        {}

// Recommendations is an ordered list of recommended content items.
// It serializes as a bare JSON array.
type Recommendations []Recommendation

func (Recommendations) Feature() Feature { return ContentRecommendation }
func (Recommendations) isResult()        {}

// Recommendation is one recommended content item with its rationale.
type Recommendation struct {
	Content            ContentRef `json:"content"`
	Explanation        string     `json:"explanation" validate:"required"`
	ApproachSuggestion string     `json:"approach_suggestion" validate:"required"`
}

// ContentRef identifies a catalog item.
type ContentRef struct {
	ID         int     `json:"id"`
	Title      string  `json:"title" validate:"required"`
	Type       string  `json:"type" validate:"required"`
	MatchScore float64 `json:"match_score" validate:"gte=0,lte=1"`
}

// WeaknessAnalysisResult lists weak and strong topics with a plan.
type WeaknessAnalysisResult struct {
	WeakAreas       []WeakArea      `json:"weak_areas" validate:"min=1,dive"`
	StrengthAreas   []StrengthArea  `json:"strength_areas" validate:"dive"`
	ImprovementPlan ImprovementPlan `json:"improvement_plan"`
}

func (*WeaknessAnalysisResult) Feature() Feature { return WeaknessAnalysis }
func (*WeaknessAnalysisResult) isResult()        {}

type WeakArea struct {
	Topic              string     `json:"topic" validate:"required"`
	ConfidenceLevel    float64    `json:"confidence_level" validate:"gte=0,lte=1"`
	SuggestedResources []Resource `json:"suggested_resources" validate:"dive"`
}

type StrengthArea struct {
	Topic           string  `json:"topic" validate:"required"`
	ConfidenceLevel float64 `json:"confidence_level" validate:"gte=0,lte=1"`
}

// Resource is a suggested learning resource. URL is optional.
type Resource struct {
	Type  string `json:"type" validate:"required"`
	Title string `json:"title" validate:"required"`
	URL   string `json:"url,omitempty"`
}

type ImprovementPlan struct {
	ShortTermGoals       []string `json:"short_term_goals" validate:"dive,required"`
	LongTermGoals        []string `json:"long_term_goals" validate:"dive,required"`
	RecommendedStudyPath string   `json:"recommended_study_path" validate:"required"`
}

// MistakeAnalysisResult describes recurring mistakes and how to fix them.
type MistakeAnalysisResult struct {
	CommonMistakes  []CommonMistake   `json:"common_mistakes" validate:"min=1,dive"`
	MistakePatterns map[string]string `json:"mistake_patterns"`
	RemediationPlan RemediationPlan   `json:"remediation_plan"`
}

func (*MistakeAnalysisResult) Feature() Feature { return MistakeAnalysis }
func (*MistakeAnalysisResult) isResult()        {}

type CommonMistake struct {
	Topic       string   `json:"topic" validate:"required"`
	Frequency   string   `json:"frequency" validate:"required"`
	Examples    []string `json:"examples" validate:"dive,required"`
	Remediation string   `json:"remediation" validate:"required"`
}

type RemediationPlan struct {
	FocusAreas         []string `json:"focus_areas" validate:"dive,required"`
	SuggestedExercises []string `json:"suggested_exercises" validate:"dive,required"`
	LearningMaterials  []string `json:"learning_materials" validate:"dive,required"`
}

// Question types understood by the adaptive test runner.
const (
	QuestionChoice = "choice"
	QuestionText   = "text"
)

// AdaptiveTestResult is a generated test with its difficulty rules.
type AdaptiveTestResult struct {
	Questions           []Question    `json:"questions" validate:"min=1,dive"`
	AdaptiveLogic       AdaptiveLogic `json:"adaptive_logic"`
	EstimatedDifficulty string        `json:"estimated_difficulty" validate:"required"`
	TopicsCovered       []string      `json:"topics_covered" validate:"min=1,dive,required"`
}

func (*AdaptiveTestResult) Feature() Feature { return AdaptiveTest }
func (*AdaptiveTestResult) isResult()        {}

type Question struct {
	ID           int      `json:"id"`
	Content      string   `json:"content" validate:"required"`
	QuestionType string   `json:"question_type" validate:"oneof=choice text"`
	Options      []string `json:"options,omitempty" validate:"dive,required"`
	Difficulty   string   `json:"difficulty" validate:"required"`
	Topic        string   `json:"topic" validate:"required"`
}

// StandardAdjustmentRules returns the difficulty rules used when a test
// does not define its own.
func StandardAdjustmentRules() map[string]string {
	return map[string]string{
		"correct_answer":   "增加难度",
		"incorrect_answer": "降低难度",
	}
}

type AdaptiveLogic struct {
	InitialDifficulty string            `json:"initial_difficulty" validate:"required"`
	AdjustmentRules   map[string]string `json:"adjustment_rules" validate:"min=1"`
}

// LearningAnalysisResult summarizes study behaviour.
type LearningAnalysisResult struct {
	BehaviorPatterns    map[string]string `json:"behavior_patterns"`
	Strengths           []string          `json:"strengths" validate:"dive,required"`
	Weaknesses          []string          `json:"weaknesses" validate:"dive,required"`
	Recommendations     []string          `json:"recommendations" validate:"min=1,dive,required"`
	OptimalContentTypes []string          `json:"optimal_content_types" validate:"dive,required"`
}

func (*LearningAnalysisResult) Feature() Feature { return LearningAnalysis }
func (*LearningAnalysisResult) isResult()        {}
