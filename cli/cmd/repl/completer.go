package repl

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "edit", "clear", "quit"}

// specialFormNames lists the special-form heads a user can type. Each is
// bound in the root environment's function namespace by interp.New, except
// "catch", which is only syntax inside a try form.
var specialFormNames = []string{
	"quote", "cond", "progn", "set!", "let", "let*", "fn", "lambda",
	"function", "flookup", "try", "catch", "define-variable", "defv",
	"define-function", "defn", "define-macro", "defm", "while", "dotimes",
	"dokeys", "dovalues", "doitems", "and", "or", "when", "unless",
	"break", "continue",
}

// isWordBoundary reports whether r delimits two completion candidates. Nia
// identifiers may contain hyphens, colons (keywords), and bangs/question
// marks (e.g. "object:set!", "nil?"), so only whitespace, parens, and quote
// characters break a word.
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '(', ')', '{', '}', '\'', '"':
		return true
	}

	return false
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input. Returns an empty word when the cursor sits on a
// boundary (after a space, start of line, etc.).
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	start = cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := m.input.Position()

	word, ws, we := wordBounds(input, cursor)
	wordStart, wordEnd = ws, we

	if m.mode == modeCtrl {
		if word == "" {
			return nil, nil, wordStart, wordEnd
		}

		candidates = ctrlCommands
	} else {
		candidates = m.candidateNames()

		if word == "" {
			return nil, nil, wordStart, wordEnd
		}
	}

	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	matches = fuzzy.Find(word, candidates)
	m.sortMatchesByPriority(matches)

	return matches, candidates, wordStart, wordEnd
}

// candidateNames lists every bare-word completion candidate: bindings in the
// session's root environment plus the fixed special-form vocabulary.
func (m model) candidateNames() []string {
	vars, funcs, _ := m.interp.BindingNames(m.interp.RootEnvironment())

	names := make([]string, 0, len(vars)+len(funcs)+len(specialFormNames))
	names = append(names, vars...)
	names = append(names, funcs...)
	names = append(names, specialFormNames...)

	return names
}

// matchPriority ranks session-defined bindings ahead of the fixed special
// forms, so a user's own definitions surface first.
func (m model) matchPriority(name string) int {
	if slices.Contains(specialFormNames, name) {
		return 1
	}

	return 0
}

func (m model) sortMatchesByPriority(matches fuzzy.Matches) {
	slices.SortStableFunc(matches, func(x, y fuzzy.Match) int {
		return cmp.Compare(m.matchPriority(x.Str), m.matchPriority(y.Str))
	})
}

// candidateEntry holds the pre-rendered text and display width of one
// completion candidate.
type candidateEntry struct {
	rendered string
	w        int
}

// buildCandidateEntries pre-renders every match.
func buildCandidateEntries(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
) []candidateEntry {
	entries := make([]candidateEntry, len(matches))

	for i, match := range matches {
		r := renderCandidate(match, tabActive && i == suggIdx)
		entries[i] = candidateEntry{r, lipgloss.Width(r)}
	}

	return entries
}

// candidateWindowStart returns the smallest start index <= suggIdx such that
// the range [start..suggIdx] fits within the given budget.
func candidateWindowStart(
	entries []candidateEntry,
	suggIdx int,
	sepWidth, leftArrowWidth, rightArrowWidth int,
	totalWidth int,
) int {
	for start := range suggIdx {
		leftCost := 0
		if start > 0 {
			leftCost = leftArrowWidth
		}

		budget := totalWidth - leftCost - rightArrowWidth
		needed := 0

		for i := start; i <= suggIdx; i++ {
			if i > start {
				needed += sepWidth
			}

			needed += entries[i].w
		}

		if needed <= budget {
			return start
		}
	}

	return suggIdx
}

// candidateWindowEnd returns the last index reachable from windowStart within
// budget.
func candidateWindowEnd(
	entries []candidateEntry,
	windowStart int,
	sepWidth, rightArrowWidth int,
	budget int,
) int {
	used := 0
	windowEnd := windowStart - 1

	for i := windowStart; i < len(entries); i++ {
		extra := entries[i].w
		if i > windowStart {
			extra += sepWidth
		}

		rightReserve := 0
		if i < len(entries)-1 {
			rightReserve = rightArrowWidth
		}

		if used+extra+rightReserve > budget {
			break
		}

		used += extra
		windowEnd = i
	}

	if windowEnd < windowStart {
		return windowStart
	}

	return windowEnd
}

// renderCandidateBar builds the single-line completion bar that fits within
// the given terminal width, scrolling horizontally so the selected candidate
// stays visible.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)

	leftArrow := hintStyle.Render("< ")
	rightArrow := hintStyle.Render(" >")
	leftArrowWidth := lipgloss.Width(leftArrow)
	rightArrowWidth := lipgloss.Width(rightArrow)

	entries := buildCandidateEntries(matches, suggIdx, tabActive)

	windowStart := 0
	if tabActive && suggIdx > 0 {
		windowStart = candidateWindowStart(
			entries, suggIdx,
			sepWidth, leftArrowWidth, rightArrowWidth,
			width,
		)
	}

	needLeft := windowStart > 0

	budget := width
	if needLeft {
		budget -= leftArrowWidth
	}

	windowEnd := candidateWindowEnd(
		entries, windowStart,
		sepWidth, rightArrowWidth,
		budget,
	)

	needRight := windowEnd < len(entries)-1

	var b strings.Builder

	if needLeft {
		b.WriteString(leftArrow)
	}

	for i := windowStart; i <= windowEnd; i++ {
		if i > windowStart {
			b.WriteString(sep)
		}

		b.WriteString(entries[i].rendered)
	}

	if needRight {
		b.WriteString(rightArrow)
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	baseStyle := suggestionStyle
	highlightStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("4")).
		Bold(true)

	if selected {
		baseStyle = selectedStyle
		highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4")).
			Bold(true)
	}

	matchSet := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matchSet[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		ch := string(r)
		if matchSet[i] {
			b.WriteString(highlightStyle.Render(ch))
		} else {
			b.WriteString(baseStyle.Render(ch))
		}
	}

	return b.String()
}
