package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lhaig/quill/internal/formatter"
	"github.com/lhaig/quill/internal/parser"
)

// FmtOptions holds flags for the fmt command.
type FmtOptions struct {
	*RootOptions
	Write bool
}

type fmtResult struct {
	File      string `json:"file"`
	Changed   bool   `json:"changed"`
	Formatted string `json:"formatted,omitempty"`
}

// NewFmtCommand creates the fmt command.
func NewFmtCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FmtOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fmt <file.ql>...",
		Short: "Print source in canonical layout",
		Long: `Reformat source files. Lists that fit in 80 columns stay on one
line; longer forms keep their head and header operands on the first line
and indent the rest by two spaces. Comments are not preserved, so
--write refuses to rewrite a file that has any.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Write, "write", "w", false, "write result to the source file instead of stdout")

	return cmd
}

func runFmt(opts *FmtOptions, paths []string, cmd *cobra.Command) error {
	f := opts.output(cmd)

	srcs, err := readSources(cmd, f, paths)
	if err != nil {
		return err
	}

	outputs := make([]string, len(srcs))
	for i, src := range srcs {
		p := parser.New(src.Name, src.Text)
		datums, err := p.Parse()
		if err != nil {
			f.Diagnostic(errorText(err))
			f.Failure(ErrCodeCompile, err.Error(), nil)
			return NewExitError(ExitFailure, err.Error())
		}
		if opts.Write && src.Name != stdinName && p.Comments() > 0 {
			return commandError(f, ExitFailure, ErrCodeWriteFailed, "refusing to rewrite "+src.Name,
				fmt.Errorf("it has %d comment(s), which fmt does not preserve", p.Comments()))
		}
		outputs[i] = formatter.Format(datums)
	}

	results := make([]fmtResult, 0, len(srcs))
	for i, src := range srcs {
		formatted := outputs[i]
		res := fmtResult{File: src.Name, Changed: formatted != src.Text}

		switch {
		case opts.Write && src.Name != stdinName:
			if res.Changed {
				if err := os.WriteFile(src.Name, []byte(formatted), 0o644); err != nil {
					return commandError(f, ExitCommandError, ErrCodeWriteFailed, "writing formatted file", err)
				}
				opts.Logger.Info("formatted", "path", src.Name)
			}
		case f.IsJSON():
			res.Formatted = formatted
		default:
			fmt.Fprint(f.Writer, formatted)
		}
		results = append(results, res)
	}

	if f.IsJSON() {
		return f.Success(results)
	}
	return nil
}
