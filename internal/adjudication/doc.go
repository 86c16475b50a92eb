// Package adjudication implements the Duelogic adjudication core: the pair
// of cooperating services that score a chair's response for adherence to
// assigned argumentative rules and decide, in real time, whether a rival
// chair should interrupt the current speaker.
//
// # Components
//
//   - Heuristic matchers: pure pattern-matching functions classifying a
//     text span as steel-manning, self-critique, or an interrupt-worthy
//     rhetorical event. No state, no I/O, callable without any LLM.
//   - ResponseEvaluator: chooses between a zero-cost heuristic evaluation
//     and a judge-model evaluation based on the accountability policy,
//     normalizes the judge's output, and decides whether the result
//     warrants halting the debate for a correction.
//   - ChairInterruptEngine: watches the current speaker's in-progress
//     content and returns structured interrupt candidates for rival chairs
//     that are off cooldown.
//   - CooldownTracker: per-chair rate limiting as a pure function of the
//     last interrupt timestamp against an injected clock.
//
// # Failure model
//
// Nothing in this package is fatal to the enclosing debate. A judge that
// cannot be reached degrades to heuristic evaluation (evaluator) or to "no
// interrupt" (engine); a judge response that arrives but cannot be parsed
// gets the fixed default evaluation. Persistence writes are best-effort.
//
// # Instantiation
//
// One ResponseEvaluator and one ChairInterruptEngine per debate. Each owns
// its cache and cooldown state exclusively; instances must not share them.
//
//	evaluator := adjudication.NewResponseEvaluator(evalCfg, judge, store, collector, log)
//	engine := adjudication.NewChairInterruptEngine(intCfg, judge, store, collector, log)
//
//	result := evaluator.Evaluate(ctx, evalContext)
//	if evaluator.ShouldInterject(result.Evaluation, cfg.AllowArbiterInterrupts) {
//	    // hand off to the arbiter
//	}
//
//	if candidate := engine.EvaluateInterrupt(ctx, interruptContext); candidate != nil {
//	    // break into the stream with candidate.SuggestedOpener
//	}
package adjudication
