package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lhaig/quill/internal/frontend"
	"github.com/lhaig/quill/internal/linter"
)

// LintOptions holds flags for the lint command.
type LintOptions struct {
	*RootOptions
	Disable []string
}

type lintWarning struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Hint    string `json:"hint,omitempty"`
}

type lintResult struct {
	File     string        `json:"file"`
	Warnings []lintWarning `json:"warnings"`
}

// NewLintCommand creates the lint command.
func NewLintCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LintOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "lint <file.ql>...",
		Short: "Run lint checks for style and likely mistakes",
		Long: fmt.Sprintf(`Report warnings over the IR of each file. Warnings never fail the
command; syntax errors do.

Rules: %s`, strings.Join(linter.Rules, ", ")),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(opts, args, cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Disable, "disable", nil, "rules to disable, in addition to the config file")

	return cmd
}

func runLint(opts *LintOptions, paths []string, cmd *cobra.Command) error {
	f := opts.output(cmd)

	for _, rule := range opts.Disable {
		if !knownRule(rule) {
			return commandError(f, ExitCommandError, ErrCodeGeneric, fmt.Sprintf("unknown lint rule %q", rule), nil)
		}
	}

	srcs, err := readSources(cmd, f, paths)
	if err != nil {
		return err
	}

	lintOpts := linter.Options{Disable: append(append([]string{}, opts.Config.Lint.Disable...), opts.Disable...)}
	results := make([]lintResult, 0, len(srcs))
	total := 0
	for _, src := range srcs {
		prog, err := frontend.Parse(src)
		if err != nil {
			f.Diagnostic(errorText(err))
			f.Failure(ErrCodeCompile, err.Error(), results)
			return NewExitError(ExitFailure, err.Error())
		}

		diags := linter.Lint(prog, lintOpts)
		res := lintResult{File: src.Name, Warnings: []lintWarning{}}
		for _, d := range diags.All() {
			res.Warnings = append(res.Warnings, lintWarning{
				Rule:    d.Rule,
				Message: d.Message,
				Line:    d.Pos.Line,
				Column:  d.Pos.Column,
				Hint:    d.Hint,
			})
		}
		total += diags.Count()
		results = append(results, res)

		if !f.IsJSON() && diags.Count() > 0 {
			fmt.Fprintln(f.Writer, diags.Format(src.Name))
		}
	}

	if f.IsJSON() {
		return f.Success(results)
	}
	if total == 0 {
		return f.Success("No lint warnings.")
	}
	return f.Success(fmt.Sprintf("%d warning(s) found.", total))
}

func knownRule(rule string) bool {
	for _, r := range linter.Rules {
		if r == rule {
			return true
		}
	}
	return false
}
