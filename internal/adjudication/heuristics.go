package adjudication

import (
	"strings"

	"github.com/duelogic/duelogic/internal/models"
)

// Phrase lists below are the hand-tuned calibration for the zero-cost
// evaluation path. They are matched case-insensitively against the raw
// response text.

var steelManPhrases = []string{
	"i appreciate",
	"makes a good point",
	"make a good point",
	"from their perspective",
	"from your perspective",
	"they're right that",
	"you're right that",
	"i concede",
	"there's merit in",
	"there is merit in",
	"the strongest case for",
	"the strongest version of",
	"to be fair to",
	"steelman",
	"steel-man",
}

var dismissalPhrases = []string{
	"completely wrong",
	"utterly wrong",
	"terrible argument",
	"no valid points",
	"nothing of value",
	"not worth engaging",
}

var selfCritiquePhrases = []string{
	"my framework struggles",
	"my framework cannot",
	"my position struggles",
	"i admit",
	"i acknowledge",
	"i must concede",
	"a limitation of my",
	"the limitation of my",
	"a weakness of my",
	"a weakness in my",
	"a blind spot",
	"critics would say",
	"critics might say",
	"critics of my",
	"the hardest objection to my",
}

// DetectSteelManning reports whether the text fairly represents an opposing
// view before critiquing it. Aggressive dismissal language vetoes a match.
func DetectSteelManning(text string) bool {
	lower := strings.ToLower(text)

	for _, phrase := range dismissalPhrases {
		if strings.Contains(lower, phrase) {
			return false
		}
	}
	for _, phrase := range steelManPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// DetectSelfCritique reports whether the text admits a weakness of the
// speaker's own framework.
func DetectSelfCritique(text string) bool {
	lower := strings.ToLower(text)

	for _, phrase := range selfCritiquePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// TriggerMatch is the result of scanning a span for interrupt-worthy
// rhetoric.
type TriggerMatch struct {
	Found      bool
	Reason     models.TriggerReason
	Confidence float64
}

// triggerRule binds one trigger reason to its phrase set and the confidence
// a match carries. Rules are evaluated in order; the first match wins.
type triggerRule struct {
	reason     models.TriggerReason
	confidence float64
	phrases    []string
}

var absolutistSuffixes = []string{" never", " always", " ignores", " cannot account for"}

// frameworkAbsolutes enumerates absolute claims about named frameworks,
// e.g. "utilitarians never" or "virtue ethics ignores".
func frameworkAbsolutes() []string {
	subjects := []string{
		"utilitarians", "utilitarianism",
		"deontologists", "deontology",
		"virtue ethics", "virtue ethicists",
		"contractarians", "contractarianism",
		"pragmatists", "pragmatism",
		"libertarians", "libertarianism",
		"egalitarians", "egalitarianism",
		"nihilists", "nihilism",
	}
	phrases := make([]string, 0, len(subjects)*len(absolutistSuffixes))
	for _, subject := range subjects {
		for _, suffix := range absolutistSuffixes {
			phrases = append(phrases, subject+suffix)
		}
	}
	return phrases
}

var triggerRules = []triggerRule{
	{
		reason:     models.TriggerStrawManDetected,
		confidence: 0.8,
		phrases: []string{
			"just want to",
			"just wants to",
			"only want to",
			"only wants to",
			"all they care about",
			"all you care about",
			"nothing more than",
		},
	},
	{
		reason:     models.TriggerFactualCorrection,
		confidence: 0.85,
		phrases:    frameworkAbsolutes(),
	},
	{
		reason:     models.TriggerPivotalPoint,
		confidence: 0.75,
		phrases: []string{
			"the fundamental issue",
			"the core problem",
			"the crux",
			"everything hinges on",
			"the real question is",
		},
	},
	{
		reason:     models.TriggerDirectChallenge,
		confidence: 0.7,
		phrases: []string{
			"obviously wrong",
			"no reasonable person",
			"indefensible",
			"cannot seriously claim",
			"i challenge you",
		},
	},
	{
		reason:     models.TriggerStrongAgreement,
		confidence: 0.6,
		phrases: []string{
			"hit on something crucial",
			"exactly right about",
			"precisely the point",
			"could not agree more",
		},
	},
	{
		reason:     models.TriggerClarificationNeeded,
		confidence: 0.5,
		phrases: []string{
			"what do you mean by",
			"unclear what",
			"it's not clear what",
			"define what you mean",
			"which definition of",
		},
	},
}

// DetectInterruptTrigger classifies a span of in-progress content into an
// interrupt trigger reason with a confidence in (0,1]. Strong steel-manning
// language suppresses any trigger: a chair being generous to its opponent
// should not itself be interrupted.
func DetectInterruptTrigger(text string) TriggerMatch {
	lower := strings.ToLower(text)

	if DetectSteelManning(text) {
		return TriggerMatch{}
	}

	for _, rule := range triggerRules {
		for _, phrase := range rule.phrases {
			if strings.Contains(lower, phrase) {
				return TriggerMatch{
					Found:      true,
					Reason:     rule.reason,
					Confidence: rule.confidence,
				}
			}
		}
	}

	return TriggerMatch{}
}
