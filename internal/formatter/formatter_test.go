package formatter

import (
	"strings"
	"testing"

	"github.com/lhaig/quill/internal/parser"
)

// helper: parse source, format, return formatted string
func formatSource(t *testing.T, source string) string {
	t.Helper()
	datums, err := parser.New("<test>", source).Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return Format(datums)
}

// --- Short forms ---

func TestShortFormsStayOnOneLine(t *testing.T) {
	got := formatSource(t, "(defn   inc (x)\n   (+ x 1))")
	expected := "(defn inc (x) (+ x 1))\n"
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestFormsSeparatedByBlankLine(t *testing.T) {
	got := formatSource(t, "(def a 1) (def b 2)\n\n\n(display a b)")
	expected := "(def a 1)\n\n(def b 2)\n\n(display a b)\n"
	if got != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, got)
	}
}

func TestEmptySource(t *testing.T) {
	if got := formatSource(t, "  ; nothing here\n"); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestCommentsAreDropped(t *testing.T) {
	got := formatSource(t, "; leading\n(def a 1) ; trailing\n")
	if strings.Contains(got, ";") {
		t.Errorf("expected comments to be dropped, got:\n%s", got)
	}
}

func TestBracketsPreserved(t *testing.T) {
	got := formatSource(t, "(let [[x 1]] x)")
	if got != "(let [[x 1]] x)\n" {
		t.Errorf("expected brackets to be kept, got %q", got)
	}
}

func TestStringsRequoted(t *testing.T) {
	got := formatSource(t, `(display "line\nnext \"q\"")`)
	expected := `(display "line\nnext \"q\"")` + "\n"
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

// --- Long forms ---

func TestLongDefnBreaksAfterHeader(t *testing.T) {
	src := "(defn long-function-name (alpha beta gamma) (if (< alpha beta) (+ alpha beta gamma 100000000) (- alpha beta gamma 200000000)))"
	got := formatSource(t, src)
	expected := `(defn long-function-name (alpha beta gamma)
  (if (< alpha beta)
    (+ alpha beta gamma 100000000)
    (- alpha beta gamma 200000000)))
`
	if got != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, got)
	}
}

func TestLongLetAlignsBindings(t *testing.T) {
	src := "(let ((first-value (compute-something 1 2 3)) (second-value (compute-something 4 5 6))) (+ first-value second-value))"
	got := formatSource(t, src)
	expected := `(let ((first-value (compute-something 1 2 3))
      (second-value (compute-something 4 5 6)))
  (+ first-value second-value))
`
	if got != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, got)
	}
}

func TestLongCallIndentsArguments(t *testing.T) {
	src := `(display "a fairly long string literal" "and another one that goes past" the-limit)`
	got := formatSource(t, src)
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got:\n%s", got)
	}
	if lines[0] != "(display" {
		t.Errorf("expected head alone on first line, got %q", lines[0])
	}
	for _, line := range lines[1:] {
		if !strings.HasPrefix(line, "  ") || strings.HasPrefix(line, "   ") {
			t.Errorf("expected two-space indent, got %q", line)
		}
	}
}

func TestLinesFitWhenPossible(t *testing.T) {
	src := "(defn classify (n) (cond ((< n 0) \"negative number here\") ((= n 0) \"exactly zero, nothing else\") (else \"a positive number for sure\")))"
	got := formatSource(t, src)
	for _, line := range strings.Split(got, "\n") {
		if len(line) > MaxWidth {
			t.Errorf("line exceeds %d columns: %q", MaxWidth, line)
		}
	}
}

// --- Stability ---

func TestIdempotent(t *testing.T) {
	sources := []string{
		"(defn long-function-name (alpha beta gamma) (if (< alpha beta) (+ alpha beta gamma 100000000) (- alpha beta gamma 200000000)))",
		"(let ((first-value (compute-something 1 2 3)) (second-value (compute-something 4 5 6))) (+ first-value second-value))",
		"(def a 1)\n(set! a (do (display a) (+ a 1)))",
	}
	for _, src := range sources {
		once := formatSource(t, src)
		twice := formatSource(t, once)
		if once != twice {
			t.Errorf("formatting is not idempotent:\nfirst:\n%s\nsecond:\n%s", once, twice)
		}
	}
}
