package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lhaig/quill/internal/cache"
)

// CacheOptions holds flags shared by the cache subcommands.
type CacheOptions struct {
	*RootOptions
	Path string
}

// NewCacheCommand creates the cache command and its subcommands.
func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CacheOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the build cache",
	}
	cmd.PersistentFlags().StringVar(&opts.Path, "cache", "", "build cache database (default from config)")

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show build cache statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheStats(opts, cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached artifact and build record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheClear(opts, cmd)
		},
	})

	return cmd
}

func (o *CacheOptions) open(f *OutputFormatter) (*cache.Cache, error) {
	path := o.Path
	if path == "" {
		path = o.Config.Cache
	}
	if path == "" {
		return nil, commandError(f, ExitCommandError, ErrCodeCache, "no build cache configured (use --cache or the cache config key)", nil)
	}
	c, err := openCache(path)
	if err != nil {
		return nil, commandError(f, ExitCommandError, ErrCodeCache, "opening build cache", err)
	}
	return c, nil
}

func runCacheStats(opts *CacheOptions, cmd *cobra.Command) error {
	f := opts.output(cmd)
	c, err := opts.open(f)
	if err != nil {
		return err
	}
	defer c.Close()

	stats, err := c.Stats(cmd.Context())
	if err != nil {
		return commandError(f, ExitCommandError, ErrCodeCache, "reading build cache", err)
	}
	if f.IsJSON() {
		return f.Success(map[string]int{
			"artifacts": stats.Artifacts,
			"builds":    stats.Builds,
			"hits":      stats.Hits,
		})
	}
	return f.Success(fmt.Sprintf("artifacts: %d\nbuilds:    %d\nhits:      %d",
		stats.Artifacts, stats.Builds, stats.Hits))
}

func runCacheClear(opts *CacheOptions, cmd *cobra.Command) error {
	f := opts.output(cmd)
	c, err := opts.open(f)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Clear(cmd.Context()); err != nil {
		return commandError(f, ExitCommandError, ErrCodeCache, "clearing build cache", err)
	}
	opts.Logger.Debug("cleared build cache")
	if f.IsJSON() {
		return f.Success(map[string]bool{"cleared": true})
	}
	return f.Success("Build cache cleared.")
}
