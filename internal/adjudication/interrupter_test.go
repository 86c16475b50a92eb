package adjudication

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duelogic/duelogic/internal/models"
)

// mockInterruptionStore implements InterruptionStore for testing.
type mockInterruptionStore struct {
	mu        sync.Mutex
	records   []models.InterruptionRecord
	responded []string
	statsErr  error
	appendErr error
}

func (m *mockInterruptionStore) AppendInterruption(_ context.Context, record models.InterruptionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	m.records = append(m.records, record)
	return nil
}

func (m *mockInterruptionStore) MarkResponded(_ context.Context, interruptionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responded = append(m.responded, interruptionID)
	return nil
}

func (m *mockInterruptionStore) StatsByDebate(_ context.Context, debateID string) (models.InterruptStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statsErr != nil {
		return models.NewInterruptStats(), m.statsErr
	}
	stats := models.NewInterruptStats()
	for _, record := range m.records {
		if record.DebateID != debateID {
			continue
		}
		stats.TotalInterrupts++
		stats.ByChair[record.InterruptingChair]++
		stats.ByReason[record.Reason]++
	}
	return stats, nil
}

var (
	chairOne   = models.Chair{Position: "chair_1", Framework: models.FrameworkUtilitarian, ModelID: "model-a"}
	chairTwo   = models.Chair{Position: "chair_2", Framework: models.FrameworkVirtueEthics, ModelID: "model-b"}
	chairThree = models.Chair{Position: "chair_3", Framework: models.FrameworkDeontological, ModelID: "model-c"}
)

func newTestEngine(cfg InterruptConfig, judge *mockJudge, store InterruptionStore) *ChairInterruptEngine {
	return NewChairInterruptEngine(cfg, judge, store, nil, testLogger())
}

func enabledConfig(aggressiveness int) InterruptConfig {
	return InterruptConfig{
		InterruptionsEnabled:   true,
		ChairInterruptsEnabled: true,
		Aggressiveness:         aggressiveness,
		Cooldown:               30 * time.Second,
	}
}

func interruptContext(speaker models.Chair, others []models.Chair, content string) InterruptContext {
	return InterruptContext{
		DebateID:      "debate-1",
		Speaker:       speaker,
		OtherChairs:   others,
		RecentContent: content,
		DebateContext: "a debate about automation and labor",
	}
}

func interruptDecision(position, reason string, urgency float64) string {
	return fmt.Sprintf(`{
		"shouldInterrupt": true,
		"interruptingChairPosition": %q,
		"reason": %q,
		"triggerContent": "deontology never adapts",
		"urgency": %v,
		"suggestedOpener": "Hold on, that is not accurate."
	}`, position, reason, urgency)
}

func TestGetUrgencyThreshold(t *testing.T) {
	tests := []struct {
		aggressiveness int
		want           float64
	}{
		{1, 0.9},
		{2, 0.8},
		{3, 0.7},
		{4, 0.6},
		{5, 0.5},
		{0, 0.7},
		{9, 0.7},
	}

	for _, tt := range tests {
		engine := newTestEngine(enabledConfig(tt.aggressiveness), &mockJudge{}, nil)
		assert.Equal(t, tt.want, engine.GetUrgencyThreshold(), "aggressiveness %d", tt.aggressiveness)
	}
}

func TestEvaluateInterrupt_DisabledReturnsNil(t *testing.T) {
	judge := &mockJudge{response: interruptDecision("chair_2", "factual_correction", 0.95)}
	ic := interruptContext(chairOne, []models.Chair{chairTwo}, "utilitarians never care about rights")

	t.Run("interruptions off", func(t *testing.T) {
		cfg := enabledConfig(3)
		cfg.InterruptionsEnabled = false
		engine := newTestEngine(cfg, judge, nil)
		assert.Nil(t, engine.EvaluateInterrupt(context.Background(), ic))
	})

	t.Run("chair interrupts off", func(t *testing.T) {
		cfg := enabledConfig(3)
		cfg.ChairInterruptsEnabled = false
		engine := newTestEngine(cfg, judge, nil)
		assert.Nil(t, engine.EvaluateInterrupt(context.Background(), ic))
	})

	assert.Equal(t, 0, judge.calls(), "a disabled engine must never consult the judge")
}

func TestEvaluateInterrupt_AllOnCooldownReturnsNil(t *testing.T) {
	judge := &mockJudge{response: interruptDecision("chair_2", "factual_correction", 0.95)}
	engine := newTestEngine(enabledConfig(3), judge, nil)

	engine.TriggerManualInterrupt(context.Background(), "debate-1", chairTwo, chairOne,
		models.TriggerDirectChallenge, "earlier exchange")

	result := engine.EvaluateInterrupt(context.Background(),
		interruptContext(chairOne, []models.Chair{chairTwo}, "utilitarians never care about rights"))

	assert.Nil(t, result)
	assert.Equal(t, 0, judge.calls())
}

func TestEvaluateInterrupt_LowAggressivenessSkipsJudgeWithoutTrigger(t *testing.T) {
	judge := &mockJudge{response: interruptDecision("chair_2", "factual_correction", 0.95)}
	engine := newTestEngine(enabledConfig(2), judge, nil)

	result := engine.EvaluateInterrupt(context.Background(),
		interruptContext(chairOne, []models.Chair{chairTwo}, "A measured, unremarkable continuation."))

	assert.Nil(t, result)
	assert.Equal(t, 0, judge.calls())
}

func TestEvaluateInterrupt_HighAggressivenessConsultsJudgeWithoutTrigger(t *testing.T) {
	judge := &mockJudge{response: `{"shouldInterrupt": false}`}
	engine := newTestEngine(enabledConfig(3), judge, nil)

	result := engine.EvaluateInterrupt(context.Background(),
		interruptContext(chairOne, []models.Chair{chairTwo}, "A measured, unremarkable continuation."))

	assert.Nil(t, result)
	assert.Equal(t, 1, judge.calls(), "aggressiveness above the ceiling always consults the judge")
}

func TestEvaluateInterrupt_JudgeErrorFailsOpen(t *testing.T) {
	judge := &mockJudge{err: errors.New("timeout")}
	engine := newTestEngine(enabledConfig(3), judge, nil)

	result := engine.EvaluateInterrupt(context.Background(),
		interruptContext(chairOne, []models.Chair{chairTwo}, "utilitarians never care about rights"))

	assert.Nil(t, result)
	assert.True(t, engine.CanInterrupt("chair_2"), "a failed evaluation must not burn a cooldown")
}

func TestEvaluateInterrupt_MalformedDecisionFailsOpen(t *testing.T) {
	judge := &mockJudge{response: "let me think about whether to interrupt..."}
	engine := newTestEngine(enabledConfig(3), judge, nil)

	result := engine.EvaluateInterrupt(context.Background(),
		interruptContext(chairOne, []models.Chair{chairTwo}, "utilitarians never care about rights"))

	assert.Nil(t, result)
}

func TestEvaluateInterrupt_DeclineReturnsNil(t *testing.T) {
	judge := &mockJudge{response: `{"shouldInterrupt": false}`}
	engine := newTestEngine(enabledConfig(3), judge, nil)

	result := engine.EvaluateInterrupt(context.Background(),
		interruptContext(chairOne, []models.Chair{chairTwo}, "utilitarians never care about rights"))

	assert.Nil(t, result)
	assert.True(t, engine.CanInterrupt("chair_2"))
}

func TestEvaluateInterrupt_IneligibleNomineeReturnsNil(t *testing.T) {
	// The judge nominates the current speaker, who is never in the eligible
	// set.
	judge := &mockJudge{response: interruptDecision("chair_1", "factual_correction", 0.95)}
	engine := newTestEngine(enabledConfig(3), judge, nil)

	result := engine.EvaluateInterrupt(context.Background(),
		interruptContext(chairOne, []models.Chair{chairTwo}, "utilitarians never care about rights"))

	assert.Nil(t, result)
}

func TestEvaluateInterrupt_BelowThresholdReturnsNil(t *testing.T) {
	// Aggressiveness 1 requires urgency >= 0.9.
	judge := &mockJudge{response: interruptDecision("chair_2", "factual_correction", 0.85)}
	engine := newTestEngine(enabledConfig(1), judge, nil)

	result := engine.EvaluateInterrupt(context.Background(),
		interruptContext(chairOne, []models.Chair{chairTwo}, "utilitarians never care about rights"))

	assert.Nil(t, result)
	assert.True(t, engine.CanInterrupt("chair_2"))
}

func TestEvaluateInterrupt_ApprovedInterruptStartsCooldown(t *testing.T) {
	judge := &mockJudge{response: interruptDecision("chair_2", "factual_correction", 0.95)}
	engine := newTestEngine(enabledConfig(3), judge, nil)

	result := engine.EvaluateInterrupt(context.Background(),
		interruptContext(chairOne, []models.Chair{chairTwo, chairThree}, "utilitarians never care about rights"))

	require.NotNil(t, result)
	assert.Equal(t, chairTwo, result.InterruptingChair)
	assert.Equal(t, chairOne, result.InterruptedChair)
	assert.Equal(t, models.TriggerFactualCorrection, result.TriggerReason)
	assert.Equal(t, 0.95, result.Urgency)

	assert.False(t, engine.CanInterrupt("chair_2"))
	assert.True(t, engine.CanInterrupt("chair_3"), "uninvolved chairs keep their eligibility")
	remaining := engine.GetCooldownRemaining("chair_2")
	assert.Greater(t, remaining, time.Duration(0))
	assert.LessOrEqual(t, remaining, 30*time.Second)
}

func TestEvaluateInterrupt_UnknownReasonNormalized(t *testing.T) {
	judge := &mockJudge{response: interruptDecision("chair_2", "vibes", 0.95)}
	engine := newTestEngine(enabledConfig(3), judge, nil)

	result := engine.EvaluateInterrupt(context.Background(),
		interruptContext(chairOne, []models.Chair{chairTwo}, "utilitarians never care about rights"))

	require.NotNil(t, result)
	assert.Equal(t, models.TriggerDirectChallenge, result.TriggerReason)
}

func TestEvaluateInterrupt_ThreeChairDebate(t *testing.T) {
	judge := &mockJudge{response: interruptDecision("chair_3", "factual_correction", 0.9)}
	store := &mockInterruptionStore{}
	cfg := enabledConfig(3)
	cfg.EnablePersistence = true
	engine := newTestEngine(cfg, judge, store)

	result := engine.EvaluateInterrupt(context.Background(),
		interruptContext(chairOne, []models.Chair{chairTwo, chairThree},
			"The fact is, deontology never adapts to new circumstances."))

	require.NotNil(t, result)
	assert.Equal(t, models.FrameworkDeontological, result.InterruptingChair.Framework)
	assert.NotEmpty(t, result.SuggestedOpener)

	require.Len(t, store.records, 1)
	record := store.records[0]
	assert.Equal(t, "debate-1", record.DebateID)
	assert.Equal(t, "chair_3", record.InterruptingChair)
	assert.Equal(t, "chair_1", record.InterruptedChair)
	assert.Equal(t, models.TriggerFactualCorrection, record.Reason)
	assert.NotEmpty(t, record.ID)

	stats, err := engine.GetInterruptStats(context.Background(), "debate-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalInterrupts)
	assert.Equal(t, 1, stats.ByChair["chair_3"])
	assert.Equal(t, 1, stats.ByReason[models.TriggerFactualCorrection])
}

func TestEvaluateInterrupt_StoreFailureStillReturnsCandidate(t *testing.T) {
	judge := &mockJudge{response: interruptDecision("chair_2", "factual_correction", 0.95)}
	store := &mockInterruptionStore{appendErr: errors.New("db down")}
	cfg := enabledConfig(3)
	cfg.EnablePersistence = true
	engine := newTestEngine(cfg, judge, store)

	result := engine.EvaluateInterrupt(context.Background(),
		interruptContext(chairOne, []models.Chair{chairTwo}, "utilitarians never care about rights"))

	require.NotNil(t, result)
	assert.False(t, engine.CanInterrupt("chair_2"))
}

func TestTriggerManualInterrupt(t *testing.T) {
	engine := newTestEngine(enabledConfig(3), &mockJudge{}, nil)

	candidate := engine.TriggerManualInterrupt(context.Background(), "debate-1",
		chairTwo, chairOne, models.TriggerPivotalPoint, "everything hinges on this")

	assert.Equal(t, chairTwo, candidate.InterruptingChair)
	assert.Equal(t, chairOne, candidate.InterruptedChair)
	assert.Equal(t, 1.0, candidate.Urgency)
	assert.Contains(t, openerBank[models.TriggerPivotalPoint], candidate.SuggestedOpener)

	assert.False(t, engine.CanInterrupt("chair_2"))
	assert.True(t, engine.CanInterrupt("chair_1"))
	assert.True(t, engine.CanInterrupt("chair_3"))
}

func TestTriggerManualInterrupt_UnknownReasonGetsFallbackOpener(t *testing.T) {
	engine := newTestEngine(enabledConfig(3), &mockJudge{}, nil)

	candidate := engine.TriggerManualInterrupt(context.Background(), "debate-1",
		chairTwo, chairOne, models.TriggerReason("improvised"), "off script")

	assert.NotEmpty(t, candidate.SuggestedOpener)
}

func TestResetCooldowns(t *testing.T) {
	engine := newTestEngine(enabledConfig(3), &mockJudge{}, nil)

	engine.TriggerManualInterrupt(context.Background(), "debate-1",
		chairTwo, chairOne, models.TriggerDirectChallenge, "earlier exchange")
	require.False(t, engine.CanInterrupt("chair_2"))

	engine.ResetCooldowns()
	assert.True(t, engine.CanInterrupt("chair_2"))
}

func TestGetInterruptStats_InMemoryCounters(t *testing.T) {
	engine := newTestEngine(enabledConfig(3), &mockJudge{}, nil)
	ctx := context.Background()

	engine.TriggerManualInterrupt(ctx, "debate-1", chairTwo, chairOne,
		models.TriggerDirectChallenge, "first")
	engine.ResetCooldowns()
	engine.TriggerManualInterrupt(ctx, "debate-1", chairTwo, chairOne,
		models.TriggerFactualCorrection, "second")
	engine.TriggerManualInterrupt(ctx, "debate-1", chairThree, chairOne,
		models.TriggerDirectChallenge, "third")

	stats, err := engine.GetInterruptStats(ctx, "debate-1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalInterrupts)
	assert.Equal(t, 2, stats.ByChair["chair_2"])
	assert.Equal(t, 1, stats.ByChair["chair_3"])
	assert.Equal(t, 2, stats.ByReason[models.TriggerDirectChallenge])
	assert.Equal(t, 1, stats.ByReason[models.TriggerFactualCorrection])

	engine.ResetCounts()
	stats, err = engine.GetInterruptStats(ctx, "debate-1")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalInterrupts)
}

func TestGetInterruptStats_StoreErrorPropagates(t *testing.T) {
	store := &mockInterruptionStore{statsErr: errors.New("db down")}
	cfg := enabledConfig(3)
	cfg.EnablePersistence = true
	engine := newTestEngine(cfg, &mockJudge{}, store)

	_, err := engine.GetInterruptStats(context.Background(), "debate-1")
	assert.Error(t, err)
}

func TestQuickInterruptCheck(t *testing.T) {
	engine := newTestEngine(enabledConfig(3), &mockJudge{}, nil)

	hit := engine.QuickInterruptCheck("They just want to let markets decide everything.")
	assert.True(t, hit.PotentialTrigger)
	assert.Equal(t, models.TriggerStrawManDetected, hit.LikelyReason)

	miss := engine.QuickInterruptCheck("A measured, unremarkable continuation.")
	assert.False(t, miss.PotentialTrigger)
}
