package adjudication

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/duelogic/duelogic/internal/llm"
	"github.com/duelogic/duelogic/internal/models"
	"github.com/duelogic/duelogic/internal/observability/metrics"
)

// urgencyThresholds maps the configured aggressiveness level to the urgency
// floor an interrupt must clear. A fixed lookup table keeps the behavior
// predictable and testable.
var urgencyThresholds = map[int]float64{
	1: 0.9,
	2: 0.8,
	3: 0.7,
	4: 0.6,
	5: 0.5,
}

const defaultUrgencyThreshold = 0.7

// Aggressiveness levels at or below this skip the judge call when the
// heuristic pre-filter finds no trigger.
const lowAggressivenessCeiling = 2

// openerBank holds the suggested lead-ins for manual interrupts, per
// trigger reason.
var openerBank = map[models.TriggerReason][]string{
	models.TriggerFactualCorrection: {
		"Hold on, that's not accurate.",
		"I have to correct the record here.",
		"That claim doesn't hold up.",
	},
	models.TriggerStrawManDetected: {
		"That's not what my position says.",
		"You're arguing against a position nobody holds.",
		"Let me restate what I actually claimed.",
	},
	models.TriggerDirectChallenge: {
		"I'll take that challenge directly.",
		"Let's test that claim right now.",
		"I disagree, and here's why.",
	},
	models.TriggerClarificationNeeded: {
		"Before you go on, what exactly do you mean?",
		"Can you pin down that term?",
		"I need you to clarify that point.",
	},
	models.TriggerStrongAgreement: {
		"Yes, exactly, and it goes further than that.",
		"I want to build on that point.",
		"That's precisely right, let me add something.",
	},
	models.TriggerPivotalPoint: {
		"This is the crux of the whole debate.",
		"Stop, this is the point everything turns on.",
		"We can't move past this moment.",
	},
}

// InterruptContext carries the live state the engine needs to decide
// whether a rival chair should cut in.
type InterruptContext struct {
	DebateID      string
	Speaker       models.Chair
	OtherChairs   []models.Chair
	RecentContent string
	DebateContext string
}

// QuickCheckResult is the outcome of the heuristic pre-filter.
type QuickCheckResult struct {
	PotentialTrigger bool
	LikelyReason     models.TriggerReason
	Confidence       float64
}

// InterruptConfig holds the policy knobs read at construction time.
type InterruptConfig struct {
	InterruptionsEnabled   bool
	ChairInterruptsEnabled bool
	Aggressiveness         int
	Cooldown               time.Duration
	EnablePersistence      bool
}

// ChairInterruptEngine watches the current speaker's in-progress content
// and decides, in real time, whether another chair should break in. Judge
// failures fail open: a silent interruption subsystem is strictly safer
// than one that throws mid-debate.
type ChairInterruptEngine struct {
	judge   llm.JudgeClient
	store   InterruptionStore
	metrics *metrics.Collector
	log     *logrus.Logger
	cfg     InterruptConfig

	cooldowns *CooldownTracker

	mu             sync.Mutex
	countsByChair  map[string]int
	countsByReason map[models.TriggerReason]int
}

// NewChairInterruptEngine creates an engine owning its own cooldown state.
// The store and collector are optional; a nil logger gets a default one.
func NewChairInterruptEngine(
	cfg InterruptConfig,
	judge llm.JudgeClient,
	store InterruptionStore,
	collector *metrics.Collector,
	log *logrus.Logger,
) *ChairInterruptEngine {
	if log == nil {
		log = logrus.New()
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	return &ChairInterruptEngine{
		judge:          judge,
		store:          store,
		metrics:        collector,
		log:            log,
		cfg:            cfg,
		cooldowns:      NewCooldownTracker(cfg.Cooldown),
		countsByChair:  make(map[string]int),
		countsByReason: make(map[models.TriggerReason]int),
	}
}

// QuickInterruptCheck runs the heuristic trigger detector on a span.
// Inspection only; no state changes.
func (e *ChairInterruptEngine) QuickInterruptCheck(text string) QuickCheckResult {
	match := DetectInterruptTrigger(text)
	return QuickCheckResult{
		PotentialTrigger: match.Found,
		LikelyReason:     match.Reason,
		Confidence:       match.Confidence,
	}
}

// CanInterrupt reports whether the chair is off cooldown.
func (e *ChairInterruptEngine) CanInterrupt(chairPosition string) bool {
	return e.cooldowns.CanInterrupt(chairPosition)
}

// GetCooldownRemaining returns how long until the chair may interrupt
// again.
func (e *ChairInterruptEngine) GetCooldownRemaining(chairPosition string) time.Duration {
	return e.cooldowns.Remaining(chairPosition)
}

// GetUrgencyThreshold maps the configured aggressiveness to the urgency
// floor required for an interrupt to proceed.
func (e *ChairInterruptEngine) GetUrgencyThreshold() float64 {
	if threshold, ok := urgencyThresholds[e.cfg.Aggressiveness]; ok {
		return threshold
	}
	return defaultUrgencyThreshold
}

// EvaluateInterrupt is the core decision procedure. It returns nil for "no
// interrupt", which is also the outcome of every failure mode.
func (e *ChairInterruptEngine) EvaluateInterrupt(ctx context.Context, ic InterruptContext) *models.ChairInterruptCandidate {
	if !e.cfg.InterruptionsEnabled || !e.cfg.ChairInterruptsEnabled {
		return nil
	}

	eligible := make([]models.Chair, 0, len(ic.OtherChairs))
	for _, chair := range ic.OtherChairs {
		if e.CanInterrupt(chair.Position) {
			eligible = append(eligible, chair)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	// Cost control: at low aggressiveness a heuristic miss skips the judge
	// call entirely.
	quick := e.QuickInterruptCheck(ic.RecentContent)
	if !quick.PotentialTrigger && e.cfg.Aggressiveness <= lowAggressivenessCeiling {
		return nil
	}

	started := time.Now()
	raw, err := e.judge.Complete(ctx, e.buildInterruptMessages(ic, eligible))
	e.metrics.ObserveJudgeCall("interrupt", time.Since(started).Seconds(), err)
	if err != nil {
		e.log.WithError(err).Debug("Judge call failed during interrupt evaluation, staying silent")
		return nil
	}

	decision, ok := parseJudgeInterrupt(raw)
	if !ok {
		e.log.Debug("Unparsable judge interrupt decision, staying silent")
		return nil
	}
	if !decision.ShouldInterrupt {
		return nil
	}

	interrupting, ok := findChair(eligible, decision.InterruptingChairPosition)
	if !ok {
		// The judge nominated a chair outside the eligible set, e.g. one on
		// cooldown. Expected model behavior, not an error.
		e.log.Debugf("Judge nominated ineligible chair %q, staying silent", decision.InterruptingChairPosition)
		return nil
	}
	if decision.Urgency < e.GetUrgencyThreshold() {
		return nil
	}

	reason := models.TriggerReason(decision.Reason)
	if !reason.Valid() {
		reason = models.TriggerDirectChallenge
	}

	candidate := &models.ChairInterruptCandidate{
		InterruptingChair: interrupting,
		InterruptedChair:  ic.Speaker,
		TriggerReason:     reason,
		TriggerContent:    decision.TriggerContent,
		Urgency:           decision.Urgency,
		SuggestedOpener:   decision.SuggestedOpener,
	}

	e.recordInterrupt(ctx, ic.DebateID, candidate)
	return candidate
}

// TriggerManualInterrupt executes an already-decided interruption: scripted
// and administrative interrupts bypass the eligibility and threshold checks
// of EvaluateInterrupt. The interrupting chair's cooldown starts
// unconditionally.
func (e *ChairInterruptEngine) TriggerManualInterrupt(
	ctx context.Context,
	debateID string,
	interruptingChair, interruptedChair models.Chair,
	reason models.TriggerReason,
	triggerContent string,
) models.ChairInterruptCandidate {
	candidate := models.ChairInterruptCandidate{
		InterruptingChair: interruptingChair,
		InterruptedChair:  interruptedChair,
		TriggerReason:     reason,
		TriggerContent:    triggerContent,
		Urgency:           1.0,
		SuggestedOpener:   randomOpener(reason),
	}

	e.recordInterrupt(ctx, debateID, &candidate)
	return candidate
}

// recordInterrupt starts the cooldown, bumps counters, and persists the
// event best-effort.
func (e *ChairInterruptEngine) recordInterrupt(ctx context.Context, debateID string, candidate *models.ChairInterruptCandidate) {
	e.cooldowns.Start(candidate.InterruptingChair.Position)

	e.mu.Lock()
	e.countsByChair[candidate.InterruptingChair.Position]++
	e.countsByReason[candidate.TriggerReason]++
	e.mu.Unlock()

	e.metrics.ObserveInterrupt(string(candidate.TriggerReason))

	e.log.WithFields(logrus.Fields{
		"debate_id":    debateID,
		"interrupting": candidate.InterruptingChair.Position,
		"interrupted":  candidate.InterruptedChair.Position,
		"reason":       candidate.TriggerReason,
		"urgency":      candidate.Urgency,
	}).Info("Chair interruption recorded")

	if !e.cfg.EnablePersistence || e.store == nil {
		return
	}
	record := models.InterruptionRecord{
		ID:                uuid.New().String(),
		DebateID:          debateID,
		InterruptingChair: candidate.InterruptingChair.Position,
		InterruptedChair:  candidate.InterruptedChair.Position,
		Reason:            candidate.TriggerReason,
		TriggerContent:    candidate.TriggerContent,
		Urgency:           candidate.Urgency,
		CreatedAt:         time.Now(),
	}
	if err := e.store.AppendInterruption(ctx, record); err != nil {
		e.log.WithError(err).Warn("Failed to persist interruption, continuing")
	}
}

// ResetCooldowns makes every chair interruptible again, e.g. for a new
// debate or test isolation.
func (e *ChairInterruptEngine) ResetCooldowns() {
	e.cooldowns.Reset()
}

// ResetCounts clears the in-memory interruption counters.
func (e *ChairInterruptEngine) ResetCounts() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.countsByChair = make(map[string]int)
	e.countsByReason = make(map[models.TriggerReason]int)
}

// GetInterruptStats aggregates interruption counts for a debate from the
// persistence layer when enabled, otherwise from the in-memory counters.
func (e *ChairInterruptEngine) GetInterruptStats(ctx context.Context, debateID string) (models.InterruptStats, error) {
	if e.cfg.EnablePersistence && e.store != nil {
		stats, err := e.store.StatsByDebate(ctx, debateID)
		if err != nil {
			return models.NewInterruptStats(), fmt.Errorf("failed to read interrupt stats: %w", err)
		}
		return stats, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	stats := models.NewInterruptStats()
	for chair, n := range e.countsByChair {
		stats.ByChair[chair] = n
		stats.TotalInterrupts += n
	}
	for reason, n := range e.countsByReason {
		stats.ByReason[reason] = n
	}
	return stats, nil
}

func findChair(chairs []models.Chair, position string) (models.Chair, bool) {
	for _, chair := range chairs {
		if chair.Position == position {
			return chair, true
		}
	}
	return models.Chair{}, false
}

func randomOpener(reason models.TriggerReason) string {
	openers, ok := openerBank[reason]
	if !ok || len(openers) == 0 {
		return "Hold on, I need to come in here."
	}
	return openers[rand.Intn(len(openers))]
}

// buildInterruptMessages constructs the judge conversation for an interrupt
// decision.
func (e *ChairInterruptEngine) buildInterruptMessages(ic InterruptContext, eligible []models.Chair) []models.ChatMessage {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("CURRENT SPEAKER: %s (%s)\n\n", ic.Speaker.Position, ic.Speaker.Framework.DisplayName()))

	sb.WriteString("CHAIRS ELIGIBLE TO INTERRUPT:\n")
	for _, chair := range eligible {
		sb.WriteString(fmt.Sprintf("- %s (%s)\n", chair.Position, chair.Framework.DisplayName()))
	}
	sb.WriteString("\n")

	if ic.DebateContext != "" {
		sb.WriteString("DEBATE CONTEXT SO FAR:\n")
		sb.WriteString(ic.DebateContext)
		sb.WriteString("\n\n")
	}

	sb.WriteString("SPEAKER'S IN-PROGRESS CONTENT:\n")
	sb.WriteString(ic.RecentContent)
	sb.WriteString("\n\nDecide whether any eligible chair should interrupt now. Reply with the JSON object only.")

	return []models.ChatMessage{
		{Role: "system", Content: interruptSystemPrompt},
		{Role: "user", Content: sb.String()},
	}
}

const interruptSystemPrompt = `You are directing a live multi-chair debate. Given the current speaker's in-progress content, decide whether one of the eligible rival chairs should interrupt right now, and why.

Valid reasons: factual_correction, straw_man_detected, direct_challenge, clarification_needed, strong_agreement, pivotal_point.

Respond with exactly one JSON object in this shape:
{
  "shouldInterrupt": <bool>,
  "interruptingChairPosition": "<position of the interrupting chair>",
  "reason": "<one of the valid reasons>",
  "triggerContent": "<the span of the speaker's content that triggered this>",
  "urgency": <float 0-1>,
  "suggestedOpener": "<one short sentence the interrupting chair could open with>"
}

Only nominate chairs from the eligible list. Interrupt sparingly; most content deserves no interruption.`

type judgeInterruptPayload struct {
	ShouldInterrupt           bool    `json:"shouldInterrupt"`
	InterruptingChairPosition string  `json:"interruptingChairPosition"`
	Reason                    string  `json:"reason"`
	TriggerContent            string  `json:"triggerContent"`
	Urgency                   float64 `json:"urgency"`
	SuggestedOpener           string  `json:"suggestedOpener"`
}

// parseJudgeInterrupt parses the judge's interrupt decision as an untrusted
// payload. The second return is false for invalid JSON.
func parseJudgeInterrupt(raw string) (judgeInterruptPayload, bool) {
	var payload judgeInterruptPayload
	if err := json.Unmarshal([]byte(extractJSON(raw)), &payload); err != nil {
		return judgeInterruptPayload{}, false
	}
	return payload, true
}
