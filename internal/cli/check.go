package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lhaig/quill/internal/backend"
	"github.com/lhaig/quill/internal/frontend"
	"github.com/lhaig/quill/internal/ir"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Target string
}

// checkResult is the JSON payload for one checked file.
type checkResult struct {
	File    string `json:"file"`
	OK      bool   `json:"ok"`
	Forms   int    `json:"forms"`
	Message string `json:"message,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <file.ql>...",
		Short: "Parse and validate source without generating code",
		Long: `Parse each file to IR and validate it. With --target the file is
also compiled with that backend, so constructs the backend cannot render
are reported without writing any output.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Target, "target", "t", "", "also check that this backend can render the program")

	return cmd
}

func runCheck(opts *CheckOptions, paths []string, cmd *cobra.Command) error {
	f := opts.output(cmd)

	var be backend.Backend
	if opts.Target != "" {
		var err error
		if be, err = backend.Lookup(opts.Target); err != nil {
			return commandError(f, ExitCommandError, ErrCodeUnknownTarget, "selecting target", err)
		}
	}

	srcs, err := readSources(cmd, f, paths)
	if err != nil {
		return err
	}

	checked := make([]checkResult, 0, len(srcs))
	failed := 0
	for _, src := range srcs {
		res := checkSource(src, be)
		if !res.OK {
			failed++
			f.Diagnostic(res.Message)
		}
		checked = append(checked, res)
	}

	if failed > 0 {
		msg := fmt.Sprintf("%d of %d file(s) have errors", failed, len(srcs))
		f.Failure(ErrCodeCompile, msg, checked)
		return NewExitError(ExitFailure, msg)
	}
	if f.IsJSON() {
		return f.Success(checked)
	}
	return f.Success("No errors found.")
}

func checkSource(src frontend.Source, be backend.Backend) checkResult {
	res := checkResult{File: src.Name}

	prog, err := frontend.Parse(src)
	if err != nil {
		res.Message = errorText(err)
		return res
	}
	res.Forms = len(prog.Forms)

	if issues := ir.Validate(prog); len(issues) > 0 {
		res.Message = fmt.Sprintf("error[%s]: invalid IR: %s", src.Name, issues[0])
		return res
	}

	if be != nil {
		if out := be.Compile(src); !out.OK() {
			res.Message = out.Diagnostic.String()
			return res
		}
	}

	res.OK = true
	return res
}
