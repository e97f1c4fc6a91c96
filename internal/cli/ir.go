package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lhaig/quill/internal/frontend"
	"github.com/lhaig/quill/internal/ir"
)

// IROptions holds flags for the ir command.
type IROptions struct {
	*RootOptions
	JSON bool
}

// NewIRCommand creates the ir command.
func NewIRCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IROptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ir <file.ql>",
		Short: "Dump the IR of a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIR(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "dump the IR as JSON")

	return cmd
}

func runIR(opts *IROptions, path string, cmd *cobra.Command) error {
	f := opts.output(cmd)

	srcs, err := readSources(cmd, f, []string{path})
	if err != nil {
		return err
	}
	src := srcs[0]

	prog, err := frontend.Parse(src)
	if err != nil {
		f.Diagnostic(errorText(err))
		f.Failure(ErrCodeCompile, err.Error(), nil)
		return NewExitError(ExitFailure, err.Error())
	}
	if issues := ir.Validate(prog); len(issues) > 0 {
		msg := fmt.Sprintf("invalid IR: %s", strings.Join(issues, "; "))
		f.Diagnostic(fmt.Sprintf("error[%s]: %s", src.Name, msg))
		f.Failure(ErrCodeCompile, msg, nil)
		return NewExitError(ExitFailure, msg)
	}

	if opts.JSON || f.IsJSON() {
		return ir.FprintJSON(f.Writer, prog)
	}
	fmt.Fprint(f.Writer, ir.Print(prog))
	return nil
}
