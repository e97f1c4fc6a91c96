package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lhaig/quill/internal/backend"
)

type targetInfo struct {
	Name      string `json:"name"`
	Extension string `json:"extension"`
	Default   bool   `json:"default"`
}

// NewTargetsCommand creates the targets command.
func NewTargetsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List available backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTargets(rootOpts, cmd)
		},
	}
}

func runTargets(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.output(cmd)

	var infos []targetInfo
	for _, name := range backend.Names() {
		be, err := backend.Lookup(name)
		if err != nil {
			return commandError(f, ExitCommandError, ErrCodeUnknownTarget, "listing targets", err)
		}
		infos = append(infos, targetInfo{
			Name:      name,
			Extension: be.Extension(),
			Default:   name == opts.Config.Target,
		})
	}

	if f.IsJSON() {
		return f.Success(infos)
	}
	var sb strings.Builder
	for _, info := range infos {
		marker := ""
		if info.Default {
			marker = " (default)"
		}
		fmt.Fprintf(&sb, "%-8s %s%s\n", info.Name, info.Extension, marker)
	}
	fmt.Fprint(f.Writer, sb.String())
	return nil
}
