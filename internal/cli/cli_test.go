package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhaig/quill/internal/prelude"
)

const header = "// Generated JavaScript code from Quill\n"

type runResult struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, stdin string, args ...string) runResult {
	t.Helper()
	var out, errOut bytes.Buffer
	code := Run(args, strings.NewReader(stdin), &out, &errOut)
	return runResult{code: code, stdout: out.String(), stderr: errOut.String()}
}

func writeSource(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

// --- Root ---

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "quillc", cmd.Use)
	for _, target := range []string{"JavaScript", "LLVM IR", "WebAssembly"} {
		assert.Contains(t, cmd.Long, target)
	}
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"build", "check", "lint", "fmt", "ir", "targets", "cache"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestInvalidFormat(t *testing.T) {
	res := run(t, "", "--format", "xml", "targets")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, `invalid format "xml"`)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))
	wrapped := WrapExitError(ExitFailure, "outer", errors.New("inner"))
	assert.Equal(t, "outer: inner", wrapped.Error())
}

// --- build ---

func TestBuildWritesPreludeAndCode(t *testing.T) {
	path := writeSource(t, t.TempDir(), "one.ql", "1")
	res := run(t, "", "build", path)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, prelude.JavaScript()+"\n"+header+"1;\n", res.stdout)
}

func TestBuildNoPrelude(t *testing.T) {
	path := writeSource(t, t.TempDir(), "sum.ql", "(+ 1 2)")
	res := run(t, "", "build", "--no-prelude", path)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, header+"(1 + 2);\n", res.stdout)
}

func TestBuildCustomPrelude(t *testing.T) {
	dir := t.TempDir()
	pre := writeSource(t, dir, "pre.js", "var display = print;")
	path := writeSource(t, dir, "one.ql", "1")
	res := run(t, "", "build", "--prelude", pre, path)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "var display = print;\n"+header+"1;\n", res.stdout)
}

func TestBuildFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeSource(t, dir, "a.ql", "(def a 1)")
	b := writeSource(t, dir, "b.ql", "(display a)")
	res := run(t, "", "build", "--no-prelude", a, b)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, header+"var a = 1;\n"+header+"display(a);\n", res.stdout)
}

func TestBuildFromStdin(t *testing.T) {
	res := run(t, "(display 1)", "build", "--no-prelude", "-")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, header+"display(1);\n", res.stdout)
}

func TestBuildSyntaxError(t *testing.T) {
	dir := t.TempDir()
	good := writeSource(t, dir, "good.ql", "1")
	bad := writeSource(t, dir, "bad.ql", "(f 1 2")
	res := run(t, "", "build", good, bad)
	assert.Equal(t, ExitFailure, res.code)
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, "error["+bad+":1:7]: expected ')' to close '(' opened at 1:1, got end of input")
	assert.Contains(t, res.stderr, "1 of 2 file(s) failed to compile")
}

func TestBuildGenerationError(t *testing.T) {
	path := writeSource(t, t.TempDir(), "s.ql", `(display "hi")`)
	res := run(t, "", "build", "--target", "llvm", path)
	assert.Equal(t, ExitFailure, res.code)
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, "llvm backend cannot render")
}

func TestBuildLLVM(t *testing.T) {
	path := writeSource(t, t.TempDir(), "sum.ql", "(+ 1 2)")
	res := run(t, "", "build", "-t", "llvm", path)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "add i64 1, 2")
	assert.NotContains(t, res.stdout, "var display")
}

func TestBuildWasm(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "sum.ql", "(+ 1 2)")
	outPath := filepath.Join(dir, "sum.wasm")
	// the prelude flag is ignored for standalone modules
	res := run(t, "", "build", "-t", "wasm", "--prelude", path, "-o", outPath, path)
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x00asm"), data[:4])
}

func TestBuildStandaloneRejectsManyFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeSource(t, dir, "a.ql", "1")
	b := writeSource(t, dir, "b.ql", "2")
	for _, target := range []string{"llvm", "wasm"} {
		res := run(t, "", "build", "-t", target, a, b)
		assert.Equal(t, ExitCommandError, res.code, target)
		assert.Contains(t, res.stderr, "standalone module per file")
		assert.Empty(t, res.stdout)
	}
}

func TestBuildBinaryRejectsJSON(t *testing.T) {
	path := writeSource(t, t.TempDir(), "one.ql", "1")
	res := run(t, "", "--format", "json", "build", "-t", "wasm", path)
	assert.Equal(t, ExitCommandError, res.code)

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeGeneric, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "binary output")
}

func TestBuildUnknownTarget(t *testing.T) {
	path := writeSource(t, t.TempDir(), "one.ql", "1")
	res := run(t, "", "build", "--target", "cobol", path)
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "unknown target: cobol")
}

func TestBuildMissingFile(t *testing.T) {
	res := run(t, "", "build", filepath.Join(t.TempDir(), "nope.ql"))
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "reading source")
}

func TestBuildOutputFile(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "one.ql", "1")
	outPath := filepath.Join(dir, "one.js")
	res := run(t, "", "build", "--no-prelude", "-o", outPath, path)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Empty(t, res.stdout)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, header+"1;\n", string(data))
}

func TestBuildJSON(t *testing.T) {
	dir := t.TempDir()
	good := writeSource(t, dir, "good.ql", "1")
	res := run(t, "", "--format", "json", "build", good)
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	var resp struct {
		Status string `json:"status"`
		Data   []struct {
			File   string `json:"file"`
			Result struct {
				OK     bool   `json:"ok"`
				Output string `json:"output"`
			} `json:"result"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, good, resp.Data[0].File)
	assert.True(t, resp.Data[0].Result.OK)
	assert.Equal(t, header+"1;\n", resp.Data[0].Result.Output)
}

func TestBuildJSONFailure(t *testing.T) {
	bad := writeSource(t, t.TempDir(), "bad.ql", "(f 1 2")
	res := run(t, "", "--format", "json", "build", bad)
	assert.Equal(t, ExitFailure, res.code)

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code string `json:"code"`
		} `json:"error"`
		Data []struct {
			Result struct {
				OK         bool `json:"ok"`
				Diagnostic struct {
					Message  string `json:"message"`
					Location struct {
						Line   int `json:"line"`
						Column int `json:"column"`
					} `json:"location"`
				} `json:"diagnostic"`
			} `json:"result"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeCompile, resp.Error.Code)
	require.Len(t, resp.Data, 1)
	assert.False(t, resp.Data[0].Result.OK)
	assert.Equal(t, 1, resp.Data[0].Result.Diagnostic.Location.Line)
	assert.Equal(t, 7, resp.Data[0].Result.Diagnostic.Location.Column)
}

func TestBuildUsesConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeSource(t, dir, "quill.yaml", "target: js-es5\nprelude: false\n")
	path := writeSource(t, dir, "f.ql", "(fn (x) x)")

	res := run(t, "", "--config", cfg, "build", path)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, header+"(function (x) { return x; });\n", res.stdout)

	// flags override the config file
	res = run(t, "", "--config", cfg, "build", "--target", "js", path)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, header+"((x) => x);\n", res.stdout)
}

func TestBadConfig(t *testing.T) {
	cfg := writeSource(t, t.TempDir(), "quill.yaml", "target: cobol\n")
	res := run(t, "", "--config", cfg, "targets")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "loading config")
}

func TestBuildCache(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "one.ql", "(+ 1 2)")
	db := filepath.Join(dir, "cache", "quill.db")

	first := run(t, "", "build", "--no-prelude", "--cache", db, path)
	require.Equal(t, ExitSuccess, first.code, first.stderr)
	second := run(t, "", "build", "--no-prelude", "--cache", db, path)
	require.Equal(t, ExitSuccess, second.code, second.stderr)
	assert.Equal(t, first.stdout, second.stdout)

	stats := run(t, "", "cache", "stats", "--cache", db)
	require.Equal(t, ExitSuccess, stats.code, stats.stderr)
	assert.Contains(t, stats.stdout, "artifacts: 1")
	assert.Contains(t, stats.stdout, "builds:    2")
	assert.Contains(t, stats.stdout, "hits:      1")

	cleared := run(t, "", "cache", "clear", "--cache", db)
	require.Equal(t, ExitSuccess, cleared.code, cleared.stderr)
	stats = run(t, "", "--format", "json", "cache", "stats", "--cache", db)
	require.Equal(t, ExitSuccess, stats.code, stats.stderr)
	assert.JSONEq(t, `{"status":"ok","data":{"artifacts":0,"builds":0,"hits":0}}`, stats.stdout)
}

func TestCacheWithoutPath(t *testing.T) {
	res := run(t, "", "cache", "stats")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "no build cache configured")
}

// --- check ---

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	good := writeSource(t, dir, "good.ql", `(display "hi")`)
	bad := writeSource(t, dir, "bad.ql", "(let ((x 1) (x 2)) x)")

	res := run(t, "", "check", good)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "No errors found.\n", res.stdout)

	res = run(t, "", "check", good, bad)
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "duplicate binding 'x' in 'let'")
}

func TestCheckWithTarget(t *testing.T) {
	path := writeSource(t, t.TempDir(), "s.ql", `(display "hi")`)
	res := run(t, "", "check", "--target", "llvm", path)
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "llvm backend cannot render")
	assert.Empty(t, res.stdout)
}

// --- lint ---

func TestLint(t *testing.T) {
	path := writeSource(t, t.TempDir(), "l.ql", "(let ((x 1)) 2)")

	res := run(t, "", "lint", path)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "warning["+path+":1:7]: unused binding 'x' (unused-binding)")
	assert.Contains(t, res.stdout, "1 warning(s) found.")

	res = run(t, "", "lint", "--disable", "unused-binding", path)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "No lint warnings.\n", res.stdout)
}

func TestLintUnknownRule(t *testing.T) {
	path := writeSource(t, t.TempDir(), "l.ql", "1")
	res := run(t, "", "lint", "--disable", "nope", path)
	assert.Equal(t, ExitCommandError, res.code)
}

func TestLintJSON(t *testing.T) {
	path := writeSource(t, t.TempDir(), "l.ql", "(if true 1 2)")
	res := run(t, "", "--format", "json", "lint", path)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.JSONEq(t, `{"status":"ok","data":[{"file":"`+path+`","warnings":[
		{"rule":"constant-condition","message":"condition is always true","line":1,"column":5}
	]}]}`, res.stdout)
}

// --- fmt ---

func TestFmtStdout(t *testing.T) {
	path := writeSource(t, t.TempDir(), "f.ql", "(def   a\n 1)   (display a)")
	res := run(t, "", "fmt", path)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "(def a 1)\n\n(display a)\n", res.stdout)
}

func TestFmtWrite(t *testing.T) {
	path := writeSource(t, t.TempDir(), "f.ql", "(def   a 1)")
	res := run(t, "", "fmt", "-w", path)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Empty(t, res.stdout)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "(def a 1)\n", string(data))
}

func TestFmtWriteRefusesCommentedFiles(t *testing.T) {
	dir := t.TempDir()
	clean := writeSource(t, dir, "clean.ql", "(def   b 2)")
	original := "; keep me\n(def   a 1)"
	commented := writeSource(t, dir, "commented.ql", original)

	res := run(t, "", "fmt", "-w", clean, commented)
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "refusing to rewrite "+commented)

	// nothing is written when any file would lose comments
	data, err := os.ReadFile(commented)
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
	data, err = os.ReadFile(clean)
	require.NoError(t, err)
	assert.Equal(t, "(def   b 2)", string(data))

	// printing to stdout is still allowed
	res = run(t, "", "fmt", commented)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "(def a 1)\n", res.stdout)
}

func TestFmtSyntaxError(t *testing.T) {
	path := writeSource(t, t.TempDir(), "f.ql", "(def a")
	res := run(t, "", "fmt", path)
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "error["+path+":1:7]")
}

// --- ir ---

func TestIRText(t *testing.T) {
	path := writeSource(t, t.TempDir(), "i.ql", "(def x 1)")
	res := run(t, "", "ir", path)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "Program "+path+" (1 forms)\n  Def x\n    Number 1\n", res.stdout)
}

func TestIRJSON(t *testing.T) {
	path := writeSource(t, t.TempDir(), "i.ql", "(def x 1)")
	res := run(t, "", "ir", "--json", path)
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &doc))
	assert.Equal(t, "Program", doc["type"])
	assert.Len(t, doc["forms"], 1)
}

// --- targets ---

func TestTargets(t *testing.T) {
	res := run(t, "", "targets")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "js       .js (default)\njs-es5   .js\nllvm     .ll\nwasm     .wasm\n", res.stdout)
}
