package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"pushfile/pkg/github"
)

var planOutput string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the change a push would make",
	Long: `Read the local and remote copies of the file and print the change a push
would make, without writing to the repository.

The same inputs as the root command are required. Exit codes match the root
command, so a plan that would remove a protected file exits with 2.

Examples:
  pushfile plan
  pushfile plan --output json
  pushfile plan --env-file .env --output yaml`,
	Args: noArgs,
	RunE: runPlan,
}

// planView is the printable form of a reconciliation plan
type planView struct {
	Repository string            `json:"repository" yaml:"repository"`
	Branch     string            `json:"branch" yaml:"branch"`
	Path       string            `json:"path" yaml:"path"`
	Change     github.ChangeType `json:"change" yaml:"change"`
	Local      fileView          `json:"local" yaml:"local"`
	Remote     fileView          `json:"remote" yaml:"remote"`
}

type fileView struct {
	Exists bool   `json:"exists" yaml:"exists"`
	Size   int    `json:"size" yaml:"size"`
	SHA    string `json:"sha,omitempty" yaml:"sha,omitempty"`
}

func init() {
	planCmd.Flags().StringVarP(&planOutput, "output", "o", "text", "output format (text, json, yaml)")
}

func runPlan(cmd *cobra.Command, _ []string) error {
	switch planOutput {
	case "text", "json", "yaml":
	default:
		return &usageError{err: fmt.Errorf("invalid output format %q: expected text, json or yaml", planOutput)}
	}

	r, err := newRunner(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = r.logger.Sync() }()

	p, err := r.plan(cmd.Context())
	if err != nil {
		return err
	}

	view := planView{
		Repository: p.config.Repository,
		Branch:     p.plan.Branch,
		Path:       p.plan.Path,
		Change:     p.plan.Type,
		Local: fileView{
			Exists: p.plan.Local.Exists,
			Size:   p.plan.Local.Size(),
		},
		Remote: fileView{
			Exists: p.plan.Remote.Exists,
			Size:   p.plan.Remote.Size(),
			SHA:    p.plan.Remote.SHA,
		},
	}

	return writePlan(cmd.OutOrStdout(), view, planOutput)
}

func writePlan(w io.Writer, view planView, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(view)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(view); err != nil {
			return err
		}
		return encoder.Close()
	default:
		fmt.Fprintf(w, "Repository: %s\n", view.Repository)
		fmt.Fprintf(w, "Branch:     %s\n", view.Branch)
		fmt.Fprintf(w, "Path:       %s\n", view.Path)
		fmt.Fprintf(w, "Local:      %s\n", describeFile(view.Local))
		fmt.Fprintf(w, "Remote:     %s\n", describeFile(view.Remote))
		fmt.Fprintf(w, "Change:     %s\n", view.Change)
		return nil
	}
}

func describeFile(f fileView) string {
	if !f.Exists {
		return "absent"
	}
	if f.SHA != "" {
		return fmt.Sprintf("%d bytes (%s)", f.Size, f.SHA)
	}
	return fmt.Sprintf("%d bytes", f.Size)
}
