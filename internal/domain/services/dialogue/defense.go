package dialogue

import (
	"regexp"
	"strings"
)

// AccusationType classifies how the counterpart challenged the persona.
type AccusationType string

const (
	AccusationDirectBot    AccusationType = "direct_bot"
	AccusationRealQuestion AccusationType = "real_question"
	AccusationAutomated    AccusationType = "automated"
	AccusationCopyPaste    AccusationType = "copy_paste"
	AccusationAI           AccusationType = "ai"
)

var directBotRes = compileDefense(
	`\bare you (?:a )?bot\b`,
	`\byou(?:'re| are) (?:a )?bot\b`,
	`\bthis is (?:a )?bot\b`,
	`\brobot?\b`,
	`\byou a bot\b`,
	`\byou seem (?:like )?(?:a )?bot\b`,
	`\byou sound (?:like )?(?:a )?bot\b`,
	`\bacting (?:like )?(?:a )?bot\b`,
)

var realQuestionRes = compileDefense(
	`\bare you real\b`,
	`\byou real\b`,
	`\breal person\b`,
	`\bis this real\b`,
)

var automatedRes = compileDefense(
	`\bautomated\b`,
	`\bscript(?:ed)?\b`,
	`\bprogrammed\b`,
	`\bauto.?reply\b`,
)

var aiRes = compileDefense(
	`\bai\b`,
	`\bchatgpt\b`,
	`\bgpt\b`,
	`\bartificial intelligence\b`,
)

var copyPastePhrases = []string{"copy paste", "copy-paste", "copypaste", "canned response"}

func compileDefense(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// DetectAccusation reports whether the message challenges the persona's
// humanity and how.
func DetectAccusation(text string) (bool, AccusationType) {
	lower := strings.ToLower(text)

	for _, re := range directBotRes {
		if re.MatchString(lower) {
			return true, AccusationDirectBot
		}
	}
	for _, re := range realQuestionRes {
		if re.MatchString(lower) {
			return true, AccusationRealQuestion
		}
	}
	for _, re := range automatedRes {
		if re.MatchString(lower) {
			return true, AccusationAutomated
		}
	}
	for _, phrase := range copyPastePhrases {
		if strings.Contains(lower, phrase) {
			return true, AccusationCopyPaste
		}
	}
	for _, re := range aiRes {
		if re.MatchString(lower) {
			return true, AccusationAI
		}
	}
	return false, ""
}

var humorDefenses = []string{
	"Haha what? No I'm just sitting here with my phone 😅",
	"LOL I wish I was a bot, then I'd understand all this better!",
	"Ha! My son says I'm terrible with technology, definitely not a bot 😄",
	"Hehe no, just confused! Why would you think that?",
	"😂 I'm very real, just not good with these things",
	"Haha no, bots probably understand this stuff better than me!",
	"What? 😂 No I'm just slow at typing on my phone",
	"LOL nope, just an old person trying to figure this out",
}

var confusionDefenses = []string{
	"What do you mean? I don't understand...",
	"Bot? What's that got to do with this?",
	"I'm not sure what you're asking... I'm just trying to help",
	"Sorry, I don't follow. Did I say something wrong?",
	"What? I'm confused now... what makes you say that?",
	"I don't understand... is there a problem?",
	"What? I'm just responding to what you're telling me",
	"I'm lost... why would you ask that?",
	"Huh? I'm just asking questions like anyone would",
	"I'm confused... did I miss something?",
}

var redirectDefenses = []string{
	"Anyway, you were saying about the account verification?",
	"Let's get back to the issue - what exactly do I need to do?",
	"Okay... so what's the next step you mentioned?",
	"Right, so about my account - what was that number again?",
	"Can we focus on fixing this? I'm already stressed enough",
	"Never mind that - just tell me what I need to pay",
	"Anyway, you said something about UPI?",
	"Okay okay, let's just solve this problem first",
	"So what's the process? You were explaining...",
	"Alright, can you just repeat the instructions?",
}

var technicalDefenses = []string{
	"Sorry, my phone is acting weird. What did you ask?",
	"Hold on, my connection keeps dropping. Say that again?",
	"My battery is dying, can we make this quick?",
	"Sorry, my messages aren't sending properly. Can you repeat?",
	"My phone just froze for a second. What were you saying?",
	"This app keeps glitching. Did you send something?",
	"Sorry, bad signal here. What did you say?",
	"My keyboard is being weird today. What was the question?",
	"Give me a sec, my phone is lagging so bad",
	"Sorry, autocorrect is messing up my typing. What did you ask?",
}

var clarifyingDefenses = []string{
	"What do you mean by that? Why would you ask?",
	"I don't understand - what makes you think that?",
	"Why are you asking me this? Is something wrong?",
	"What? Why would you say that about me?",
	"I'm confused - why do you think I'm not real?",
	"What kind of question is that? I'm just asking for help",
	"Why would you ask that? Have I done something strange?",
	"What makes you think that? I'm just trying to understand",
	"I don't get it - why are you questioning me?",
	"That's odd... why would you ask that?",
}

var defensePools = map[string][]string{
	"humor":      humorDefenses,
	"confusion":  confusionDefenses,
	"redirect":   redirectDefenses,
	"technical":  technicalDefenses,
	"clarifying": clarifyingDefenses,
}

// Defend produces a persona-preserving reply to an accusation. Strategy
// shifts with conversation depth: early turns act confused, mid turns
// lean on humor and redirection, late turns blame the phone.
func (b *Behaviors) Defend(turnCount int) (string, string) {
	var strategy string
	switch {
	case turnCount < 5:
		strategy = pickWeighted(b, []string{"confusion", "clarifying"}, []float64{0.5, 0.5})
	case turnCount < 10:
		strategy = pickWeighted(b, []string{"humor", "redirect", "clarifying"}, []float64{0.4, 0.4, 0.2})
	default:
		strategy = pickWeighted(b, []string{"technical", "redirect", "confusion"}, []float64{0.4, 0.4, 0.2})
	}
	pool := defensePools[strategy]
	return pool[b.Intn(len(pool))], strategy
}

func pickWeighted(b *Behaviors, options []string, weights []float64) string {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := b.Float64() * total
	for i, w := range weights {
		if r < w {
			return options[i]
		}
		r -= w
	}
	return options[len(options)-1]
}
