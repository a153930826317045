package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storyline/pkg/story"
)

// newValidateCmd creates the validate command for checking story files.
func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [story file]",
		Short: "Check a story file for structural errors",
		Long: `Check a story file for structural errors.

Validation verifies that node and edge identifiers are unique and
non-empty, that edge endpoints name declared nodes, that every step
references only declared elements, and that sub-state assignments name
sub-states the node declares.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := story.ReadStoryFile(args[0])
			if err != nil {
				printError("Validation failed")
				printDetail("%v", err)
				return fmt.Errorf("validate %s: %w", args[0], err)
			}

			title := st.Title
			if title == "" {
				title = args[0]
			}
			printSuccess("%s is valid", title)
			printStats(len(st.Nodes), len(st.Edges), st.StepCount())
			printNextStep("Preview it", fmt.Sprintf("storyline play %s", args[0]))
			return nil
		},
	}
}
