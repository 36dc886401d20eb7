package repl

import (
	"context"
	"testing"

	"github.com/ardnew/nia/interp"
	"github.com/ardnew/nia/log"
)

func newTestModel(t *testing.T, preload string) model {
	t.Helper()

	it := interp.New()
	if preload != "" {
		if _, err := it.Execute(preload); err != nil {
			t.Fatalf("preload %q failed: %s", preload, err)
		}
	}

	m := newModel(context.Background(), it, preload, NewHistory(t.TempDir()+"/history.utf8"), log.Make(nil))

	return m
}

func TestWordBoundsFindsCurrentWord(t *testing.T) {
	word, start, end := wordBounds("(defn sq (x)", 8)
	if word != "sq" || start != 6 || end != 8 {
		t.Fatalf("wordBounds = %q, %d, %d; want \"sq\", 6, 8", word, start, end)
	}
}

func TestWordBoundsEmptyAtBoundary(t *testing.T) {
	word, _, _ := wordBounds("(+ 1 ", 5)
	if word != "" {
		t.Fatalf("wordBounds at boundary = %q, want empty", word)
	}
}

func TestWordBoundsAllowsLispPunctuation(t *testing.T) {
	word, start, end := wordBounds("(object:set! obj", 12)
	if word != "object:set!" || start != 1 || end != 12 {
		t.Fatalf("wordBounds = %q, %d, %d; want \"object:set!\", 1, 12", word, start, end)
	}
}

func TestCandidateNamesIncludesUserDefinitionsAndSpecialForms(t *testing.T) {
	m := newTestModel(t, "(defn sq (x) (* x x))")

	names := m.candidateNames()

	var hasSq, hasWhen bool

	for _, n := range names {
		if n == "sq" {
			hasSq = true
		}

		if n == "when" {
			hasWhen = true
		}
	}

	if !hasSq {
		t.Errorf("candidateNames() missing user-defined %q", "sq")
	}

	if !hasWhen {
		t.Errorf("candidateNames() missing special form %q", "when")
	}
}

func TestComputeMatchesFiltersByPrefix(t *testing.T) {
	m := newTestModel(t, "(defn square (x) (* x x)) (defn sum (x y) (+ x y))")

	m.input.SetValue("(squ")
	m.input.SetCursor(4)

	matches, _, wordStart, wordEnd := m.computeMatches()

	if wordStart != 1 || wordEnd != 4 {
		t.Fatalf("word bounds = %d, %d; want 1, 4", wordStart, wordEnd)
	}

	if len(matches) == 0 {
		t.Fatalf("expected at least one match for prefix %q", "squ")
	}

	found := false

	for _, match := range matches {
		if match.Str == "square" {
			found = true
		}
	}

	if !found {
		t.Errorf("expected %q among matches, got %v", "square", matches)
	}
}

func TestComputeMatchesEmptyWordYieldsNoMatches(t *testing.T) {
	m := newTestModel(t, "")

	m.input.SetValue("(+ 1 ")
	m.input.SetCursor(5)

	matches, _, _, _ := m.computeMatches()
	if len(matches) != 0 {
		t.Fatalf("expected no matches at word boundary, got %v", matches)
	}
}

func TestComputeMatchesCtrlModeUsesCommands(t *testing.T) {
	m := newTestModel(t, "")
	m.mode = modeCtrl

	m.input.SetValue("he")
	m.input.SetCursor(2)

	matches, candidates, _, _ := m.computeMatches()

	if len(candidates) != len(ctrlCommands) {
		t.Fatalf("candidates = %v, want ctrlCommands", candidates)
	}

	found := false

	for _, match := range matches {
		if match.Str == "help" {
			found = true
		}
	}

	if !found {
		t.Errorf("expected %q among matches, got %v", "help", matches)
	}
}

func TestMatchPriorityRanksBindingsBeforeSpecialForms(t *testing.T) {
	m := newTestModel(t, "(defn when-like (x) x)")

	if p := m.matchPriority("when-like"); p != 0 {
		t.Errorf("matchPriority(user binding) = %d, want 0", p)
	}

	if p := m.matchPriority("when"); p != 1 {
		t.Errorf("matchPriority(special form) = %d, want 1", p)
	}
}
