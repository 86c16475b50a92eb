package models

import "time"

// Framework identifies the philosophical stance assigned to a chair for the
// duration of a debate.
type Framework string

const (
	FrameworkUtilitarian   Framework = "utilitarian"
	FrameworkVirtueEthics  Framework = "virtue_ethics"
	FrameworkDeontological Framework = "deontological"
	FrameworkContractarian Framework = "contractarian"
	FrameworkPragmatist    Framework = "pragmatist"
	FrameworkLibertarian   Framework = "libertarian"
	FrameworkEgalitarian   Framework = "egalitarian"
	FrameworkNihilist      Framework = "nihilist"
)

// Frameworks lists every framework a chair may be assigned.
var Frameworks = []Framework{
	FrameworkUtilitarian,
	FrameworkVirtueEthics,
	FrameworkDeontological,
	FrameworkContractarian,
	FrameworkPragmatist,
	FrameworkLibertarian,
	FrameworkEgalitarian,
	FrameworkNihilist,
}

// DisplayName returns the human-readable form of the framework, as used in
// judge prompts and trigger phrase matching.
func (f Framework) DisplayName() string {
	switch f {
	case FrameworkUtilitarian:
		return "Utilitarianism"
	case FrameworkVirtueEthics:
		return "Virtue ethics"
	case FrameworkDeontological:
		return "Deontology"
	case FrameworkContractarian:
		return "Contractarianism"
	case FrameworkPragmatist:
		return "Pragmatism"
	case FrameworkLibertarian:
		return "Libertarianism"
	case FrameworkEgalitarian:
		return "Egalitarianism"
	case FrameworkNihilist:
		return "Nihilism"
	default:
		return string(f)
	}
}

// Chair is a debate participant. Immutable once assigned to a debate.
type Chair struct {
	Position  string    `json:"position" db:"position"`
	Framework Framework `json:"framework" db:"framework"`
	ModelID   string    `json:"model_id" db:"model_id"`
}

// Quality grades how well a chair performed a debate behavior.
type Quality string

const (
	QualityStrong   Quality = "strong"
	QualityAdequate Quality = "adequate"
	QualityWeak     Quality = "weak"
	QualityAbsent   Quality = "absent"
)

// HonestyLevel grades the intellectual honesty of a response.
type HonestyLevel string

const (
	HonestyHigh   HonestyLevel = "high"
	HonestyMedium HonestyLevel = "medium"
	HonestyLow    HonestyLevel = "low"
)

// BehaviorAssessment describes whether a chair attempted a debate norm
// (steel-manning an opponent, critiquing its own framework) and how well.
type BehaviorAssessment struct {
	Attempted bool    `json:"attempted"`
	Quality   Quality `json:"quality"`
	Notes     string  `json:"notes,omitempty"`
}

// FrameworkConsistency reports whether a chair argued inside its assigned
// framework.
type FrameworkConsistency struct {
	Consistent bool     `json:"consistent"`
	Violations []string `json:"violations,omitempty"`
}

// IntellectualHonesty reports the honesty grade with any flagged issues.
type IntellectualHonesty struct {
	Score  HonestyLevel `json:"score"`
	Issues []string     `json:"issues,omitempty"`
}

// ResponseEvaluation is the adjudication output for one chair response.
// Created once per turn and never mutated afterwards.
type ResponseEvaluation struct {
	AdherenceScore       int                  `json:"adherence_score"`
	SteelManning         BehaviorAssessment   `json:"steel_manning"`
	SelfCritique         BehaviorAssessment   `json:"self_critique"`
	FrameworkConsistency FrameworkConsistency `json:"framework_consistency"`
	IntellectualHonesty  IntellectualHonesty  `json:"intellectual_honesty"`
	RequiresInterjection bool                 `json:"requires_interjection"`
	InterjectionReason   string               `json:"interjection_reason,omitempty"`
}

// EvaluationMethod records how a ResponseEvaluation was produced.
type EvaluationMethod string

const (
	MethodQuick  EvaluationMethod = "quick"
	MethodFull   EvaluationMethod = "full"
	MethodCached EvaluationMethod = "cached"
)

// AccountabilityLevel controls how strictly responses are judged.
type AccountabilityLevel string

const (
	AccountabilityRelaxed  AccountabilityLevel = "relaxed"
	AccountabilityModerate AccountabilityLevel = "moderate"
	AccountabilityStrict   AccountabilityLevel = "strict"
)

// Valid reports whether the level is one of the three defined policies.
func (l AccountabilityLevel) Valid() bool {
	switch l {
	case AccountabilityRelaxed, AccountabilityModerate, AccountabilityStrict:
		return true
	}
	return false
}

// ViolationKind classifies the dominant debate-norm violation in an
// evaluation.
type ViolationKind string

const (
	ViolationStrawManning           ViolationKind = "straw_manning"
	ViolationMissingSelfCritique    ViolationKind = "missing_self_critique"
	ViolationFrameworkInconsistency ViolationKind = "framework_inconsistency"
	ViolationRhetoricalEvasion      ViolationKind = "rhetorical_evasion"
)

// TriggerReason classifies why a rival chair wants to interrupt the current
// speaker.
type TriggerReason string

const (
	TriggerFactualCorrection   TriggerReason = "factual_correction"
	TriggerStrawManDetected    TriggerReason = "straw_man_detected"
	TriggerDirectChallenge     TriggerReason = "direct_challenge"
	TriggerClarificationNeeded TriggerReason = "clarification_needed"
	TriggerStrongAgreement     TriggerReason = "strong_agreement"
	TriggerPivotalPoint        TriggerReason = "pivotal_point"
)

// TriggerReasons lists every defined interrupt trigger.
var TriggerReasons = []TriggerReason{
	TriggerFactualCorrection,
	TriggerStrawManDetected,
	TriggerDirectChallenge,
	TriggerClarificationNeeded,
	TriggerStrongAgreement,
	TriggerPivotalPoint,
}

// Valid reports whether the reason is one of the defined triggers.
func (r TriggerReason) Valid() bool {
	for _, known := range TriggerReasons {
		if r == known {
			return true
		}
	}
	return false
}

// ChairInterruptCandidate is a proposed live interruption of the current
// speaker by a rival chair.
type ChairInterruptCandidate struct {
	InterruptingChair Chair         `json:"interrupting_chair"`
	InterruptedChair  Chair         `json:"interrupted_chair"`
	TriggerReason     TriggerReason `json:"trigger_reason"`
	TriggerContent    string        `json:"trigger_content"`
	Urgency           float64       `json:"urgency"`
	SuggestedOpener   string        `json:"suggested_opener,omitempty"`
}

// ChatMessage is one role-tagged message in a judge conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// EvaluationRecord is the durable form of a ResponseEvaluation.
type EvaluationRecord struct {
	ID            string             `json:"id" db:"id"`
	DebateID      string             `json:"debate_id" db:"debate_id"`
	ResponseID    string             `json:"response_id" db:"response_id"`
	ChairPosition string             `json:"chair_position" db:"chair_position"`
	Evaluation    ResponseEvaluation `json:"evaluation" db:"evaluation"`
	Method        EvaluationMethod   `json:"method" db:"method"`
	CreatedAt     time.Time          `json:"created_at" db:"created_at"`
}

// InterruptionRecord is the durable form of an executed interruption.
type InterruptionRecord struct {
	ID                string        `json:"id" db:"id"`
	DebateID          string        `json:"debate_id" db:"debate_id"`
	InterruptingChair string        `json:"interrupting_chair" db:"interrupting_chair"`
	InterruptedChair  string        `json:"interrupted_chair" db:"interrupted_chair"`
	Reason            TriggerReason `json:"reason" db:"reason"`
	TriggerContent    string        `json:"trigger_content" db:"trigger_content"`
	Urgency           float64       `json:"urgency" db:"urgency"`
	Responded         bool          `json:"responded" db:"responded"`
	CreatedAt         time.Time     `json:"created_at" db:"created_at"`
}

// InterruptStats aggregates recorded interruptions for one debate.
type InterruptStats struct {
	TotalInterrupts int                   `json:"total_interrupts"`
	ByChair         map[string]int        `json:"by_chair"`
	ByReason        map[TriggerReason]int `json:"by_reason"`
}

// NewInterruptStats returns empty, non-nil aggregation maps.
func NewInterruptStats() InterruptStats {
	return InterruptStats{
		ByChair:  make(map[string]int),
		ByReason: make(map[TriggerReason]int),
	}
}
