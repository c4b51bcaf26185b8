package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/jingkaihe/skillsync/pkg/config"
	"github.com/jingkaihe/skillsync/pkg/presenter"
	"github.com/jingkaihe/skillsync/pkg/skills"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ListConfig holds the list command options
type ListConfig struct {
	From   string
	Output string
}

// NewListConfig returns the list defaults
func NewListConfig() *ListConfig {
	return &ListConfig{
		From:   "installed",
		Output: "table",
	}
}

// Validate checks the option values
func (c *ListConfig) Validate() error {
	switch c.From {
	case "installed", "source":
	default:
		return errors.Errorf("invalid --from %q: must be one of installed, source", c.From)
	}
	switch c.Output {
	case "table", "yaml":
	default:
		return errors.Errorf("invalid --output %q: must be one of table, yaml", c.Output)
	}
	return nil
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List skill documents with their declared dependencies",
	Long: `List the command definition and skill documents in the destination (default)
or in the source checkout, with the title and the skills each one should be
loaded alongside. Dependencies are read from a "requires" frontmatter list or
a "Load with: a.md + b.md" line and are not validated.

Examples:
  skillsync list
  skillsync list --from source
  skillsync list --output yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		lc := getListConfigFromFlags(cmd)
		if err := lc.Validate(); err != nil {
			return err
		}
		return runList(appConfig, lc)
	},
}

func getListConfigFromFlags(cmd *cobra.Command) *ListConfig {
	lc := NewListConfig()
	if from, err := cmd.Flags().GetString("from"); err == nil {
		lc.From = from
	}
	if output, err := cmd.Flags().GetString("output"); err == nil {
		lc.Output = output
	}
	return lc
}

func runList(cfg config.Config, lc *ListConfig) error {
	root := cfg.Dest
	if lc.From == "source" {
		root = cfg.Source
	}
	layout := skills.Layout{Root: root, CommandFile: cfg.CommandFile, SkillPattern: cfg.SkillPattern}

	docs, err := layout.Documents()
	if err != nil {
		return errors.Wrapf(err, "failed to read documents in %s", root)
	}
	if presenter.IsQuiet() {
		return nil
	}

	if lc.Output == "yaml" {
		out, err := yaml.Marshal(docs)
		if err != nil {
			return errors.Wrap(err, "failed to encode documents")
		}
		fmt.Print(string(out))
		return nil
	}

	if len(docs) == 0 {
		presenter.Info(fmt.Sprintf("No documents found in %s", root))
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tTITLE\tLOAD WITH")
	fmt.Fprintln(tw, "----\t----\t-----\t---------")
	for _, doc := range docs {
		deps := "-"
		if len(doc.Dependencies) > 0 {
			deps = strings.Join(doc.Dependencies, ", ")
		}
		title := doc.Title
		if title == "" {
			title = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", doc.Name, doc.Kind, title, deps)
	}
	return tw.Flush()
}

func init() {
	defaults := NewListConfig()
	listCmd.Flags().String("from", defaults.From, "Where to read documents from (installed, source)")
	listCmd.Flags().StringP("output", "o", defaults.Output, "Output format (table, yaml)")
	rootCmd.AddCommand(listCmd)
}
