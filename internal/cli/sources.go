package cli

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lhaig/quill/internal/compiler"
	"github.com/lhaig/quill/internal/diagnostic"
	"github.com/lhaig/quill/internal/frontend"
)

// stdinName is the unit name used for source read from standard input.
const stdinName = "<stdin>"

// readSources loads every path as a source unit. "-" reads standard input.
func readSources(cmd *cobra.Command, f *OutputFormatter, paths []string) ([]frontend.Source, error) {
	srcs := make([]frontend.Source, 0, len(paths))
	for _, path := range paths {
		var (
			data []byte
			err  error
			name = path
		)
		if path == "-" {
			name = stdinName
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, commandError(f, ExitCommandError, ErrCodeNotFound, "reading source", err)
		}
		srcs = append(srcs, frontend.Source{Name: name, Text: string(data)})
	}
	return srcs, nil
}

// unitResult pairs a unit name with its compilation result for JSON output.
type unitResult struct {
	File   string           `json:"file"`
	Result *compiler.Result `json:"result"`
}

// reportResults prints diagnostics for failed units and returns how many
// failed.
func reportResults(f *OutputFormatter, srcs []frontend.Source, results []*compiler.Result) ([]unitResult, int) {
	units := make([]unitResult, len(results))
	failed := 0
	for i, res := range results {
		units[i] = unitResult{File: srcs[i].Name, Result: res}
		if res.OK() {
			continue
		}
		failed++
		if res.Diagnostic != nil {
			f.Diagnostic(res.Diagnostic.String())
		} else {
			f.Diagnostic(res.Err.Error())
		}
	}
	return units, failed
}

// errorText renders a front-end error the way compile diagnostics are
// rendered.
func errorText(err error) string {
	var se *diagnostic.SyntaxError
	if errors.As(err, &se) {
		return se.Diagnostic().String()
	}
	return err.Error()
}
