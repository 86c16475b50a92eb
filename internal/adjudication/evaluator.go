package adjudication

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/duelogic/duelogic/internal/llm"
	"github.com/duelogic/duelogic/internal/models"
	"github.com/duelogic/duelogic/internal/observability/metrics"
)

const (
	// Quick-evaluation score bands.
	quickBaseScore         = 40
	quickSteelManBonus     = 20
	quickSelfCritiqueBonus = 15

	// ShouldInterject thresholds per accountability level.
	moderateInterjectionThreshold = 40
	strictInterjectionThreshold   = 60

	defaultBatchConcurrency = 3
)

// EvaluationContext carries everything the evaluator needs about one chair
// turn.
type EvaluationContext struct {
	DebateID        string
	ResponseID      string
	Chair           models.Chair
	ResponseContent string
	DebateContext   string
}

// EvaluationResult pairs an evaluation with how it was produced.
type EvaluationResult struct {
	Evaluation models.ResponseEvaluation
	Method     models.EvaluationMethod
	Cached     bool
}

// EvaluatorConfig holds the policy knobs read at construction time.
type EvaluatorConfig struct {
	Accountability    models.AccountabilityLevel
	EnablePersistence bool
}

// ResponseEvaluator scores a chair's response for adherence to assigned
// argumentative rules, choosing between a zero-cost heuristic evaluation
// and a judge-model evaluation based on the accountability policy.
//
// One evaluator instance per debate: the cache is owned exclusively by its
// evaluator and is never shared across debates.
type ResponseEvaluator struct {
	judge   llm.JudgeClient
	store   EvaluationStore
	metrics *metrics.Collector
	log     *logrus.Logger

	mu                sync.Mutex
	level             models.AccountabilityLevel
	enablePersistence bool

	cache *evaluationCache
}

// NewResponseEvaluator creates an evaluator with its own cache. The store
// and collector are optional; a nil logger gets a default one.
func NewResponseEvaluator(
	cfg EvaluatorConfig,
	judge llm.JudgeClient,
	store EvaluationStore,
	collector *metrics.Collector,
	log *logrus.Logger,
) *ResponseEvaluator {
	if log == nil {
		log = logrus.New()
	}
	level := cfg.Accountability
	if !level.Valid() {
		level = models.AccountabilityModerate
	}
	return &ResponseEvaluator{
		judge:             judge,
		store:             store,
		metrics:           collector,
		log:               log,
		level:             level,
		enablePersistence: cfg.EnablePersistence,
		cache:             newEvaluationCache(),
	}
}

// AccountabilityLevel returns the current policy level.
func (e *ResponseEvaluator) AccountabilityLevel() models.AccountabilityLevel {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.level
}

// SetAccountabilityLevel changes the policy for evaluations performed after
// the change. Existing cache entries are not invalidated; callers that need
// a policy change to re-trigger computation for a known input must clear
// the cache.
func (e *ResponseEvaluator) SetAccountabilityLevel(level models.AccountabilityLevel) {
	if !level.Valid() {
		e.log.Warnf("Ignoring invalid accountability level %q", level)
		return
	}
	e.mu.Lock()
	e.level = level
	e.mu.Unlock()
}

// PerformQuickEvaluation runs the steel-man and self-critique detectors on
// the response content. Zero cost, synchronous. Quick mode never triggers
// an interjection: it has no basis for framework-consistency or honesty
// judgments.
func (e *ResponseEvaluator) PerformQuickEvaluation(ec EvaluationContext) models.ResponseEvaluation {
	steelMan := DetectSteelManning(ec.ResponseContent)
	selfCritique := DetectSelfCritique(ec.ResponseContent)

	score := quickBaseScore
	if steelMan {
		score += quickSteelManBonus
	}
	if selfCritique {
		score += quickSelfCritiqueBonus
	}

	return models.ResponseEvaluation{
		AdherenceScore:       score,
		SteelManning:         quickAssessment(steelMan),
		SelfCritique:         quickAssessment(selfCritique),
		FrameworkConsistency: models.FrameworkConsistency{Consistent: true},
		IntellectualHonesty:  models.IntellectualHonesty{Score: models.HonestyMedium},
		RequiresInterjection: false,
	}
}

func quickAssessment(detected bool) models.BehaviorAssessment {
	if detected {
		return models.BehaviorAssessment{
			Attempted: true,
			Quality:   models.QualityAdequate,
			Notes:     "detected by heuristic pattern match",
		}
	}
	return models.BehaviorAssessment{Quality: models.QualityAbsent}
}

// Evaluate produces an evaluation for the chair's response: cached when the
// same (chair, content) pair was evaluated before, heuristic under relaxed
// accountability, judge-scored otherwise. Judge failures degrade rather
// than propagate, so Evaluate always returns a usable result.
func (e *ResponseEvaluator) Evaluate(ctx context.Context, ec EvaluationContext) EvaluationResult {
	key := cacheKey(ec.Chair.Position, ec.ResponseContent)

	if entry, ok := e.cache.get(key); ok {
		e.metrics.ObserveCacheHit()
		e.metrics.ObserveEvaluation(string(models.MethodCached))
		return EvaluationResult{
			Evaluation: entry.evaluation,
			Method:     models.MethodCached,
			Cached:     true,
		}
	}
	e.metrics.ObserveCacheMiss()

	if e.AccountabilityLevel() == models.AccountabilityRelaxed {
		evaluation := e.PerformQuickEvaluation(ec)
		return e.finish(ctx, ec, key, evaluation, models.MethodQuick)
	}

	started := time.Now()
	raw, err := e.judge.Complete(ctx, e.buildEvaluationMessages(ec))
	e.metrics.ObserveJudgeCall("evaluate", time.Since(started).Seconds(), err)
	if err != nil {
		// Transport failure: the heuristics are still computable, and a
		// heuristic answer beats a generic placeholder.
		e.log.WithError(err).Warnf("Judge call failed for %s, falling back to quick evaluation", ec.Chair.Position)
		evaluation := e.PerformQuickEvaluation(ec)
		return e.finish(ctx, ec, key, evaluation, models.MethodQuick)
	}

	evaluation, ok := parseJudgeEvaluation(raw)
	if !ok {
		// Malformed output from a reachable judge means "evaluation
		// failed", which gets the fixed default rather than the heuristic.
		e.log.Warnf("Unparsable judge evaluation for %s, using default evaluation", ec.Chair.Position)
		evaluation = defaultEvaluation()
	}

	return e.finish(ctx, ec, key, evaluation, models.MethodFull)
}

// finish caches the evaluation, persists it best-effort, and wraps it in a
// result.
func (e *ResponseEvaluator) finish(
	ctx context.Context,
	ec EvaluationContext,
	key string,
	evaluation models.ResponseEvaluation,
	method models.EvaluationMethod,
) EvaluationResult {
	e.cache.put(key, evaluation, method)
	e.metrics.ObserveEvaluation(string(method))

	if e.enablePersistence && e.store != nil {
		record := models.EvaluationRecord{
			ID:            uuid.New().String(),
			DebateID:      ec.DebateID,
			ResponseID:    ec.ResponseID,
			ChairPosition: ec.Chair.Position,
			Evaluation:    evaluation,
			Method:        method,
			CreatedAt:     time.Now(),
		}
		if err := e.store.AppendEvaluation(ctx, record); err != nil {
			e.log.WithError(err).Warn("Failed to persist evaluation, continuing")
		}
	}

	return EvaluationResult{Evaluation: evaluation, Method: method}
}

// BatchOptions controls a BatchEvaluate run.
type BatchOptions struct {
	UseQuickMode bool
	Concurrency  int
}

// BatchEvaluate evaluates many chairs' responses keyed by chair position,
// never holding more than Concurrency judge calls in flight. Cache hits
// resolve instantly and interleave freely with judge calls.
func (e *ResponseEvaluator) BatchEvaluate(
	ctx context.Context,
	contexts []EvaluationContext,
	opts BatchOptions,
) map[string]EvaluationResult {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}

	results := make(map[string]EvaluationResult, len(contexts))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, ec := range contexts {
		ec := ec
		g.Go(func() error {
			var result EvaluationResult
			if opts.UseQuickMode {
				key := cacheKey(ec.Chair.Position, ec.ResponseContent)
				if entry, ok := e.cache.get(key); ok {
					result = EvaluationResult{
						Evaluation: entry.evaluation,
						Method:     models.MethodCached,
						Cached:     true,
					}
				} else {
					result = e.finish(gctx, ec, key, e.PerformQuickEvaluation(ec), models.MethodQuick)
				}
			} else {
				result = e.Evaluate(gctx, ec)
			}

			mu.Lock()
			results[ec.Chair.Position] = result
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; evaluation failures degrade internally.
	_ = g.Wait()

	return results
}

// ShouldInterject decides whether an external arbiter should halt the
// debate for a correction based on the evaluation and the current policy.
func (e *ResponseEvaluator) ShouldInterject(evaluation models.ResponseEvaluation, arbiterInterjectionsAllowed bool) bool {
	if !arbiterInterjectionsAllowed {
		return false
	}

	switch e.AccountabilityLevel() {
	case models.AccountabilityRelaxed:
		return false
	case models.AccountabilityModerate:
		return evaluation.RequiresInterjection && evaluation.AdherenceScore < moderateInterjectionThreshold
	case models.AccountabilityStrict:
		return evaluation.AdherenceScore < strictInterjectionThreshold
	}
	return false
}

// violationRules is a fixed-precedence list: only the first matching rule
// applies.
var violationRules = []struct {
	kind  models.ViolationKind
	match func(models.ResponseEvaluation) bool
}{
	{
		kind: models.ViolationStrawManning,
		match: func(ev models.ResponseEvaluation) bool {
			return ev.SteelManning.Quality == models.QualityAbsent || ev.SteelManning.Quality == models.QualityWeak
		},
	},
	{
		kind: models.ViolationMissingSelfCritique,
		match: func(ev models.ResponseEvaluation) bool {
			return ev.SelfCritique.Quality == models.QualityAbsent
		},
	},
	{
		kind: models.ViolationFrameworkInconsistency,
		match: func(ev models.ResponseEvaluation) bool {
			return !ev.FrameworkConsistency.Consistent
		},
	},
	{
		kind: models.ViolationRhetoricalEvasion,
		match: func(ev models.ResponseEvaluation) bool {
			return ev.IntellectualHonesty.Score == models.HonestyLow
		},
	},
}

// DetermineViolationType classifies the dominant violation in an
// evaluation. The second return is false when no rule matches.
func (e *ResponseEvaluator) DetermineViolationType(evaluation models.ResponseEvaluation) (models.ViolationKind, bool) {
	for _, rule := range violationRules {
		if rule.match(evaluation) {
			return rule.kind, true
		}
	}
	return "", false
}

// ClearCache drops every cached evaluation.
func (e *ResponseEvaluator) ClearCache() {
	e.cache.clear()
}

// GetCacheStats reports the current cache contents.
func (e *ResponseEvaluator) GetCacheStats() CacheStats {
	return e.cache.stats()
}

// buildEvaluationMessages constructs the judge conversation for one
// response.
func (e *ResponseEvaluator) buildEvaluationMessages(ec EvaluationContext) []models.ChatMessage {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("CHAIR: %s\n", ec.Chair.Position))
	sb.WriteString(fmt.Sprintf("ASSIGNED FRAMEWORK: %s\n\n", ec.Chair.Framework.DisplayName()))

	if ec.DebateContext != "" {
		sb.WriteString("DEBATE CONTEXT SO FAR:\n")
		sb.WriteString(ec.DebateContext)
		sb.WriteString("\n\n")
	}

	sb.WriteString("RESPONSE TO EVALUATE:\n")
	sb.WriteString(ec.ResponseContent)
	sb.WriteString("\n\nEvaluate the response and reply with the JSON object only.")

	return []models.ChatMessage{
		{Role: "system", Content: evaluationSystemPrompt},
		{Role: "user", Content: sb.String()},
	}
}

const evaluationSystemPrompt = `You are an impartial debate adjudicator. Score the chair's response for adherence to debate norms: steel-manning opposing views, acknowledging weaknesses of its own framework, arguing inside its assigned framework, and intellectual honesty.

Respond with exactly one JSON object in this shape:
{
  "adherenceScore": <integer 0-100>,
  "steelManning": {"attempted": <bool>, "quality": "strong|adequate|weak|absent", "notes": "<string>"},
  "selfCritique": {"attempted": <bool>, "quality": "strong|adequate|weak|absent", "notes": "<string>"},
  "frameworkConsistency": {"consistent": <bool>, "violations": ["<string>"]},
  "intellectualHonesty": {"score": "high|medium|low", "issues": ["<string>"]},
  "requiresInterjection": <bool>,
  "interjectionReason": "<string, only when requiresInterjection is true>"
}

A strong steel-man together with a strong self-critique should not score below 60.`

// Judge output wire shapes. Pointer fields distinguish "missing" from
// zero values; any missing required field makes the payload unusable.
type judgeBehaviorPayload struct {
	Attempted bool   `json:"attempted"`
	Quality   string `json:"quality"`
	Notes     string `json:"notes"`
}

type judgeConsistencyPayload struct {
	Consistent bool     `json:"consistent"`
	Violations []string `json:"violations"`
}

type judgeHonestyPayload struct {
	Score  string   `json:"score"`
	Issues []string `json:"issues"`
}

type judgeEvaluationPayload struct {
	AdherenceScore       *int                     `json:"adherenceScore"`
	SteelManning         *judgeBehaviorPayload    `json:"steelManning"`
	SelfCritique         *judgeBehaviorPayload    `json:"selfCritique"`
	FrameworkConsistency *judgeConsistencyPayload `json:"frameworkConsistency"`
	IntellectualHonesty  *judgeHonestyPayload     `json:"intellectualHonesty"`
	RequiresInterjection bool                     `json:"requiresInterjection"`
	InterjectionReason   string                   `json:"interjectionReason"`
}

// parseJudgeEvaluation parses the judge's completion as an untrusted
// payload. The second return is false for invalid JSON or missing required
// fields.
func parseJudgeEvaluation(raw string) (models.ResponseEvaluation, bool) {
	var payload judgeEvaluationPayload
	if err := json.Unmarshal([]byte(extractJSON(raw)), &payload); err != nil {
		return models.ResponseEvaluation{}, false
	}
	if payload.AdherenceScore == nil ||
		payload.SteelManning == nil ||
		payload.SelfCritique == nil ||
		payload.FrameworkConsistency == nil ||
		payload.IntellectualHonesty == nil {
		return models.ResponseEvaluation{}, false
	}

	score := *payload.AdherenceScore
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return models.ResponseEvaluation{
		AdherenceScore:       score,
		SteelManning:         behaviorFromPayload(payload.SteelManning),
		SelfCritique:         behaviorFromPayload(payload.SelfCritique),
		FrameworkConsistency: models.FrameworkConsistency{
			Consistent: payload.FrameworkConsistency.Consistent,
			Violations: payload.FrameworkConsistency.Violations,
		},
		IntellectualHonesty: models.IntellectualHonesty{
			Score:  honestyFromString(payload.IntellectualHonesty.Score),
			Issues: payload.IntellectualHonesty.Issues,
		},
		RequiresInterjection: payload.RequiresInterjection,
		InterjectionReason:   payload.InterjectionReason,
	}, true
}

func behaviorFromPayload(p *judgeBehaviorPayload) models.BehaviorAssessment {
	return models.BehaviorAssessment{
		Attempted: p.Attempted,
		Quality:   qualityFromString(p.Quality),
		Notes:     p.Notes,
	}
}

func qualityFromString(s string) models.Quality {
	switch models.Quality(strings.ToLower(s)) {
	case models.QualityStrong, models.QualityAdequate, models.QualityWeak, models.QualityAbsent:
		return models.Quality(strings.ToLower(s))
	}
	return models.QualityAbsent
}

func honestyFromString(s string) models.HonestyLevel {
	switch models.HonestyLevel(strings.ToLower(s)) {
	case models.HonestyHigh, models.HonestyMedium, models.HonestyLow:
		return models.HonestyLevel(strings.ToLower(s))
	}
	return models.HonestyMedium
}

// defaultEvaluation is the fixed fallback for a judge response that was
// received but could not be parsed.
func defaultEvaluation() models.ResponseEvaluation {
	return models.ResponseEvaluation{
		AdherenceScore:       50,
		SteelManning:         models.BehaviorAssessment{Quality: models.QualityAbsent},
		SelfCritique:         models.BehaviorAssessment{Quality: models.QualityAbsent},
		FrameworkConsistency: models.FrameworkConsistency{Consistent: true},
		IntellectualHonesty:  models.IntellectualHonesty{Score: models.HonestyMedium},
		RequiresInterjection: false,
	}
}

// extractJSON strips markdown code fences and surrounding prose so judge
// replies like "```json\n{...}\n```" still parse.
func extractJSON(raw string) string {
	trimmed := strings.TrimSpace(raw)

	if idx := strings.Index(trimmed, "```"); idx >= 0 {
		rest := trimmed[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			trimmed = strings.TrimSpace(rest[:end])
		} else {
			trimmed = strings.TrimSpace(rest)
		}
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		return trimmed[start : end+1]
	}
	return trimmed
}
