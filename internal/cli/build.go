package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lhaig/quill/internal/backend"
	"github.com/lhaig/quill/internal/cache"
	"github.com/lhaig/quill/internal/compiler"
	"github.com/lhaig/quill/internal/frontend"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	Target      string
	PreludePath string
	NoPrelude   bool
	Output      string
	CachePath   string
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build <file.ql>...",
		Short: "Compile source files for a target",
		Long: `Compile one or more Quill source files with the selected backend.

The runtime prelude of the target is written first, followed by the
generated code of every file in the order given. Nothing is written
if any file fails to compile.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Target, "target", "t", "", "backend to use (default from config, or js)")
	cmd.Flags().StringVar(&opts.PreludePath, "prelude", "", "prelude file to use instead of the built-in one")
	cmd.Flags().BoolVar(&opts.NoPrelude, "no-prelude", false, "do not write a prelude")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path (default stdout)")
	cmd.Flags().StringVar(&opts.CachePath, "cache", "", "build cache database (default from config)")

	return cmd
}

func runBuild(ctx context.Context, opts *BuildOptions, paths []string, cmd *cobra.Command) error {
	f := opts.output(cmd)

	target := opts.Target
	if target == "" {
		target = opts.Config.Target
	}
	be, err := backend.Lookup(target)
	if err != nil {
		return commandError(f, ExitCommandError, ErrCodeUnknownTarget, "selecting target", err)
	}

	if be.Binary() && f.IsJSON() {
		return commandError(f, ExitCommandError, ErrCodeGeneric, "selecting output",
			fmt.Errorf("target %s produces binary output, which cannot be reported as JSON", be.Name()))
	}

	srcs, err := readSources(cmd, f, paths)
	if err != nil {
		return err
	}
	if be.Standalone() && len(srcs) > 1 {
		return commandError(f, ExitCommandError, ErrCodeGeneric, "selecting sources",
			fmt.Errorf("target %s produces a standalone module per file; got %d files", be.Name(), len(srcs)))
	}
	opts.Logger.Debug("compiling", "target", be.Name(), "files", len(srcs))

	results, err := opts.compile(ctx, be, srcs)
	if err != nil {
		return commandError(f, ExitCommandError, ErrCodeCache, "build cache", err)
	}

	units, failed := reportResults(f, srcs, results)
	if failed > 0 {
		msg := fmt.Sprintf("%d of %d file(s) failed to compile", failed, len(srcs))
		f.Diagnostic(msg)
		f.Failure(ErrCodeCompile, msg, units)
		return NewExitError(ExitFailure, msg)
	}

	prelude, err := opts.prelude(be)
	if err != nil {
		return commandError(f, ExitCommandError, ErrCodeNotFound, "reading prelude", err)
	}
	var sb strings.Builder
	if prelude != "" {
		sb.WriteString(prelude)
		sb.WriteString("\n")
	}
	for _, res := range results {
		sb.WriteString(res.Output)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(sb.String()), 0o644); err != nil {
			return commandError(f, ExitCommandError, ErrCodeWriteFailed, "writing output file", err)
		}
		opts.Logger.Info("wrote output", "path", opts.Output, "bytes", sb.Len())
	}

	if f.IsJSON() {
		return f.Success(units)
	}
	if opts.Output == "" {
		fmt.Fprint(f.Writer, sb.String())
	}
	return nil
}

// compile builds every unit, through the cache when one is configured.
func (o *BuildOptions) compile(ctx context.Context, be backend.Backend, srcs []frontend.Source) ([]*compiler.Result, error) {
	path := o.CachePath
	if path == "" {
		path = o.Config.Cache
	}
	if path == "" {
		return backend.CompileAll(ctx, be, srcs), nil
	}

	c, err := openCache(path)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	results := make([]*compiler.Result, len(srcs))
	for i, src := range srcs {
		res, hit, err := c.Compile(ctx, be, src)
		if err != nil {
			return nil, err
		}
		o.Logger.Debug("cache lookup", "file", src.Name, "hit", hit)
		results[i] = res
	}
	return results, nil
}

// prelude returns the prelude text for be. Flags take precedence over
// the config file. Standalone modules never carry a prelude.
func (o *BuildOptions) prelude(be backend.Backend) (string, error) {
	switch {
	case o.NoPrelude, be.Standalone():
		return "", nil
	case o.PreludePath != "":
		data, err := os.ReadFile(o.PreludePath)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case !o.Config.Prelude:
		return "", nil
	default:
		return be.Prelude(), nil
	}
}

func openCache(path string) (*cache.Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return cache.Open(path)
}
