package intent

import "testing"

func TestClassify_Greeting(t *testing.T) {
	for _, text := range []string{"hi", "hello", "hello there", "say hi"} {
		if got := Classify(text); got.Kind != KindGreet {
			t.Errorf("Classify(%q) = %v, want greet", text, got.Kind)
		}
	}
}

func TestClassify_GreetingNotSubstring(t *testing.T) {
	// "this" contains "hi" but is not a greeting.
	if got := Classify("this broke"); got.Kind == KindGreet {
		t.Errorf("Classify(\"this broke\") = greet, want something else")
	}
}

func TestClassify_SimpleKeywords(t *testing.T) {
	cases := map[string]Kind{
		"help":                 KindShowHelp,
		"tell me a joke":       KindTellJoke,
		"status":               KindReportStatus,
		"what's the status?":   KindReportStatus,
		"checkin":              KindPromptCheckin,
		"daily checkin please": KindPromptCheckin,
	}
	for text, want := range cases {
		if got := Classify(text); got.Kind != want {
			t.Errorf("Classify(%q) = %v, want %v", text, got.Kind, want)
		}
	}
}

func TestClassify_HelpBeatsLaterRules(t *testing.T) {
	// "help" appears before the feedback rule in the table, so a message
	// containing both resolves to help.
	if got := Classify("feedback help"); got.Kind != KindShowHelp {
		t.Errorf("Classify(\"feedback help\") = %v, want show_help", got.Kind)
	}
}

func TestClassify_TopicList(t *testing.T) {
	for _, text := range []string{"faq list", "list faqs", "faq", "show faq list"} {
		got := Classify(text)
		if got.Kind != KindListTopics || got.Query != "" {
			t.Errorf("Classify(%q) = %+v, want bare list_topics", text, got)
		}
	}
}

func TestClassify_TopicQuery(t *testing.T) {
	got := Classify("faq leave policy")
	if got.Kind != KindListTopics || got.Query != "leave policy" {
		t.Errorf("Classify(\"faq leave policy\") = %+v", got)
	}
}

func TestClassify_Feedback(t *testing.T) {
	got := Classify("feedback I love this bot!")
	if got.Kind != KindRecordFeedback {
		t.Fatalf("kind = %v, want record_feedback", got.Kind)
	}
	if got.Body != "I love this bot!" {
		t.Errorf("body = %q, want original casing preserved", got.Body)
	}
}

func TestClassify_FeedbackEmpty(t *testing.T) {
	got := Classify("feedback")
	if got.Kind != KindUnrecognized || got.Hint != HintFeedbackUsage {
		t.Errorf("Classify(\"feedback\") = %+v, want usage hint", got)
	}

	got = Classify("feedback   ")
	if got.Kind != KindUnrecognized || got.Hint != HintFeedbackUsage {
		t.Errorf("Classify(\"feedback   \") = %+v, want usage hint", got)
	}
}

func TestClassify_ReminderIn(t *testing.T) {
	got := Classify("remind me to stretch in 30 minutes")
	if got.Kind != KindScheduleReminder {
		t.Fatalf("kind = %v, want schedule_reminder", got.Kind)
	}
	if got.Task != "stretch" || got.When != "30 minutes" {
		t.Errorf("task=%q when=%q", got.Task, got.When)
	}
}

func TestClassify_ReminderAt(t *testing.T) {
	got := Classify("remind me to submit report at 5:30pm")
	if got.Kind != KindScheduleReminder {
		t.Fatalf("kind = %v, want schedule_reminder", got.Kind)
	}
	if got.Task != "submit report" || got.When != "5:30pm" {
		t.Errorf("task=%q when=%q", got.Task, got.When)
	}
}

func TestClassify_ReminderLastSeparatorWins(t *testing.T) {
	got := Classify("remind me to drop in on alice in 2 hours")
	if got.Task != "drop in on alice" || got.When != "2 hours" {
		t.Errorf("task=%q when=%q, want split at the last \" in \"", got.Task, got.When)
	}
}

func TestClassify_ReminderMissingTime(t *testing.T) {
	got := Classify("remind me to stretch")
	if got.Kind != KindUnrecognized || got.Hint != HintReminderUsage {
		t.Errorf("Classify(\"remind me to stretch\") = %+v, want reminder hint", got)
	}
}

func TestClassify_Empty(t *testing.T) {
	got := Classify("")
	if got.Kind != KindUnrecognized || got.Hint != HintGeneric {
		t.Errorf("Classify(\"\") = %+v, want generic hint", got)
	}
	got = Classify("   ")
	if got.Kind != KindUnrecognized {
		t.Errorf("Classify(whitespace) = %+v, want unrecognized", got)
	}
}

func TestClassify_Unrecognized(t *testing.T) {
	got := Classify("flurble the wibble")
	if got.Kind != KindUnrecognized || got.Hint != HintGeneric {
		t.Errorf("Classify(gibberish) = %+v", got)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	texts := []string{"hi", "faq leave policy", "remind me to stretch in 30 minutes", "nonsense"}
	for _, text := range texts {
		a, b := Classify(text), Classify(text)
		if a != b {
			t.Errorf("Classify(%q) not deterministic: %+v vs %+v", text, a, b)
		}
	}
}
