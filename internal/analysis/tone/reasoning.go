package tone

import "github.com/emojilens/backend/internal/model/interpretation"

// reasoningFor 按固定决策树为每种风格选择理由文案，
// 判断阈值与打分阶段使用的阈值保持一致。
func reasoningFor(k Kind, m interpretation.Metrics) string {
	highSarcasm := m.SarcasmProbability > highSignalThreshold
	highPassiveAggression := m.PassiveAggressionProbability > highSignalThreshold
	lowConfidence := m.Confidence < lowConfidenceBound

	switch k {
	case Direct:
		switch {
		case highPassiveAggression:
			return "The message carries passive-aggressive undertones, so naming the issue directly can clear the air."
		case highSarcasm:
			return "Sarcasm tends to hide what someone actually means; a direct reply cuts through the ambiguity."
		default:
			return "A straightforward reply keeps the conversation honest and easy to follow."
		}
	case Playful:
		if m.OverallTone == interpretation.TonePositive {
			return "The message reads upbeat, so a lighthearted reply keeps the good energy going."
		}
		return "A touch of humor can soften the exchange without escalating anything."
	case Clarifying:
		switch {
		case lowConfidence:
			return "The signals here are mixed, so a gentle question beats guessing wrong."
		case highSarcasm:
			return "When sarcasm is likely, asking what they really meant avoids taking the bait."
		case highPassiveAggression:
			return "Possible passive aggression is easier to defuse once you ask what is actually bothering them."
		default:
			return "Checking what they meant prevents a small misread from growing."
		}
	case Neutral:
		if m.OverallTone == interpretation.ToneNegative {
			return "Staying even-keeled avoids feeding any tension in the message."
		}
		return "A calm, measured reply works regardless of what they intended."
	case Matching:
		if m.OverallTone == interpretation.TonePositive {
			return "Mirroring their positive energy reinforces the connection."
		}
		return "Matching their register shows you picked up on how they feel."
	default:
		return ""
	}
}

// exampleTable 按 (风格, 整体语气) 给出两条示例回复，
// 未覆盖的组合回退到 neutral 行。
var exampleTable = map[Kind]map[interpretation.Tone][]string{
	Direct: {
		interpretation.TonePositive: {
			"Love that — tell me more!",
			"Sounds great, let's lock it in.",
		},
		interpretation.ToneNegative: {
			"I feel like something's off. Can we talk about it?",
			"Be honest with me — what's really going on?",
		},
		interpretation.ToneNeutral: {
			"Got it. What do you want to do next?",
			"Okay — just say what you need from me.",
		},
	},
	Playful: {
		interpretation.TonePositive: {
			"Haha okay now I'm intrigued 👀",
			"You can't just say that and leave me hanging 😄",
		},
		interpretation.ToneNegative: {
			"Well that's one way to keep me on my toes 😅",
			"Noted! Adding this to my list of mysteries about you.",
		},
		interpretation.ToneNeutral: {
			"Intriguing. Go on… 🧐",
			"Okay okay, I'll bite — what's the story?",
		},
	},
	Clarifying: {
		interpretation.TonePositive: {
			"Wait, good surprise or great surprise?",
			"Just making sure — that's a yes, right?",
		},
		interpretation.ToneNegative: {
			"Hey, how did you mean that?",
			"I might be reading this wrong — are you upset?",
		},
		interpretation.ToneNeutral: {
			"Just so I don't misread you — what did you mean by that?",
			"Can you say a bit more? I want to get this right.",
		},
	},
	Neutral: {
		interpretation.ToneNeutral: {
			"Sounds good.",
			"Okay, thanks for letting me know.",
		},
	},
	Matching: {
		interpretation.TonePositive: {
			"Right?! So excited about this 🎉",
			"Yes!! Exactly what I was hoping for!",
		},
		interpretation.ToneNegative: {
			"Ugh, I know. Today has been a lot.",
			"Yeah… I've been feeling that too.",
		},
		interpretation.ToneNeutral: {
			"Same here, honestly.",
			"Fair enough — I'm in the same boat.",
		},
	},
}

// examplesFor 返回给定组合的示例回复副本。
func examplesFor(k Kind, overall interpretation.Tone) []string {
	byTone, ok := exampleTable[k]
	if !ok {
		return nil
	}
	examples, ok := byTone[overall]
	if !ok {
		examples = byTone[interpretation.ToneNeutral]
	}
	return append([]string(nil), examples...)
}
