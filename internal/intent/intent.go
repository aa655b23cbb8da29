// Package intent maps free-form chat text onto a closed set of actions.
//
// Classification is an ordered keyword table, not a grammar: the first
// matching rule wins, and the order is load-bearing (a feedback body may
// well contain the word "help").
package intent

import "strings"

// Kind enumerates every action the bot knows how to perform.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindGreet
	KindShowHelp
	KindTellJoke
	KindReportStatus
	KindListTopics
	KindRecordFeedback
	KindScheduleReminder
	KindPromptCheckin
)

func (k Kind) String() string {
	switch k {
	case KindGreet:
		return "greet"
	case KindShowHelp:
		return "show_help"
	case KindTellJoke:
		return "tell_joke"
	case KindReportStatus:
		return "report_status"
	case KindListTopics:
		return "list_topics"
	case KindRecordFeedback:
		return "record_feedback"
	case KindScheduleReminder:
		return "schedule_reminder"
	case KindPromptCheckin:
		return "prompt_checkin"
	default:
		return "unrecognized"
	}
}

// Action is the classified outcome of one message. It lives for the
// duration of a single request and is never persisted.
type Action struct {
	Kind  Kind
	Query string // ListTopics: optional search query
	Body  string // RecordFeedback: feedback text, original casing
	Task  string // ScheduleReminder: what to remind about
	When  string // ScheduleReminder: raw time phrase
	Hint  string // Unrecognized: guidance text for the user
}

// Canned guidance for the unrecognized variants.
const (
	HintGeneric       = "I didn't understand that. Try `help`."
	HintFeedbackUsage = "Please include your feedback after the keyword, like `feedback I love this bot!`."
	HintReminderUsage = "Please include both the task and time, like `remind me to stretch in 30 minutes` or `remind me to submit report at 5:30pm`."
)

// rule is one entry of the ordered classification table. Matching runs
// over the lowered text; builders receive the original casing too so that
// extracted payloads (a feedback body, a reminder task) keep it.
type rule struct {
	match func(lower string) bool
	build func(lower, raw string) Action
}

// rules is evaluated top to bottom; the first match wins. Do not reorder.
var rules = []rule{
	{matchGreeting, constant(Action{Kind: KindGreet})},
	{contains("help"), constant(Action{Kind: KindShowHelp})},
	{contains("joke"), constant(Action{Kind: KindTellJoke})},
	{contains("status"), constant(Action{Kind: KindReportStatus})},
	{matchTopicList, constant(Action{Kind: KindListTopics})},
	{hasPrefixWord("faq"), buildTopicQuery},
	{hasPrefixWord("feedback"), buildFeedback},
	{contains("remind me to"), buildReminder},
	{contains("checkin"), constant(Action{Kind: KindPromptCheckin})},
}

// Classify derives the Action for the given raw text. It is a pure
// function: identical text always yields the identical Action.
func Classify(text string) Action {
	raw := strings.TrimSpace(text)
	lower := strings.ToLower(raw)
	if lower == "" {
		return Action{Kind: KindUnrecognized, Hint: HintGeneric}
	}
	if len(lower) != len(raw) {
		// Lowercasing changed byte offsets (non-ASCII edge case); give
		// the builders the lowered text so slicing stays in sync.
		raw = lower
	}
	for _, r := range rules {
		if r.match(lower) {
			return r.build(lower, raw)
		}
	}
	return Action{Kind: KindUnrecognized, Hint: HintGeneric}
}

func constant(a Action) func(string, string) Action {
	return func(string, string) Action { return a }
}

func contains(keyword string) func(string) bool {
	return func(lower string) bool { return strings.Contains(lower, keyword) }
}

// matchGreeting requires "hi" or "hello" as a standalone word, so that a
// phrase like "this broke" does not greet back.
func matchGreeting(lower string) bool {
	for _, word := range strings.Fields(lower) {
		if word == "hi" || word == "hello" {
			return true
		}
	}
	return false
}

func matchTopicList(lower string) bool {
	return strings.Contains(lower, "faq list") ||
		strings.Contains(lower, "list faqs") ||
		lower == "faq"
}

// hasPrefixWord matches "<word>" and "<word> ..." but not "<word>suffix".
func hasPrefixWord(word string) func(string) bool {
	return func(lower string) bool {
		return lower == word || strings.HasPrefix(lower, word+" ")
	}
}

func buildTopicQuery(lower, raw string) Action {
	query := strings.TrimSpace(raw[len("faq"):])
	if query == "" {
		return Action{Kind: KindListTopics}
	}
	return Action{Kind: KindListTopics, Query: query}
}

func buildFeedback(lower, raw string) Action {
	body := strings.TrimSpace(raw[len("feedback"):])
	if body == "" {
		return Action{Kind: KindUnrecognized, Hint: HintFeedbackUsage}
	}
	return Action{Kind: KindRecordFeedback, Body: body}
}

// buildReminder splits "remind me to <task> in|at <time>". The split is at
// the last occurrence of " in ", falling back to the last " at ": time
// phrases come at the end, so the last separator is the right one.
func buildReminder(lower, raw string) Action {
	start := strings.Index(lower, "remind me to") + len("remind me to")
	rest := raw[start:]
	restLower := lower[start:]

	var task, when string
	if idx := strings.LastIndex(restLower, " in "); idx >= 0 {
		task, when = rest[:idx], rest[idx+len(" in "):]
	} else if idx := strings.LastIndex(restLower, " at "); idx >= 0 {
		task, when = rest[:idx], rest[idx+len(" at "):]
	} else {
		return Action{Kind: KindUnrecognized, Hint: HintReminderUsage}
	}

	task = strings.TrimSpace(task)
	when = strings.TrimSpace(when)
	if task == "" || when == "" {
		return Action{Kind: KindUnrecognized, Hint: HintReminderUsage}
	}
	return Action{Kind: KindScheduleReminder, Task: task, When: when}
}
