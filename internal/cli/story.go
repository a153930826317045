package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storyline/pkg/store"
	"github.com/matzehuels/storyline/pkg/story"
)

// newStoryCmd creates the story command group for the story store.
func newStoryCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "story",
		Short: "Manage stories in the configured store",
	}

	cmd.AddCommand(newStoryPushCmd(configPath))
	cmd.AddCommand(newStoryListCmd(configPath))
	cmd.AddCommand(newStoryPullCmd(configPath))
	cmd.AddCommand(newStoryDeleteCmd(configPath))

	return cmd
}

// newStoryPushCmd creates the "story push" subcommand.
func newStoryPushCmd(configPath *string) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "push [story file]",
		Short: "Validate a story file and save it to the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, err := story.ReadStoryFile(args[0])
			if err != nil {
				return fmt.Errorf("load story %s: %w", args[0], err)
			}

			s, err := openStore(cmd, *configPath)
			if err != nil {
				return err
			}
			defer s.Close()

			rec, err := store.NewRecord(st)
			if err != nil {
				return fmt.Errorf("encode story: %w", err)
			}
			if id != "" {
				rec.ID = id
			}
			if err := s.Put(ctx, rec); err != nil {
				return fmt.Errorf("save story: %w", err)
			}

			printSuccess("Pushed %s", rec.Title)
			printKeyValue("id", rec.ID)
			printStats(len(st.Nodes), len(st.Edges), st.StepCount())
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "store under a fixed id (default: new id)")

	return cmd
}

// newStoryListCmd creates the "story list" subcommand.
func newStoryListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stories in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd, *configPath)
			if err != nil {
				return err
			}
			defer s.Close()

			summaries, err := s.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list stories: %w", err)
			}
			if len(summaries) == 0 {
				printInfo("Store is empty")
				return nil
			}

			for _, sum := range summaries {
				title := sum.Title
				if title == "" {
					title = "(untitled)"
				}
				fmt.Println(StyleValue.Render(title))
				printDetail("%s · updated %s", sum.ID, sum.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

// newStoryPullCmd creates the "story pull" subcommand.
func newStoryPullCmd(configPath *string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pull [id]",
		Short: "Fetch a story from the store and write it to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd, *configPath)
			if err != nil {
				return err
			}
			defer s.Close()

			rec, err := s.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("fetch story %s: %w", args[0], err)
			}
			st, err := rec.Story()
			if err != nil {
				return fmt.Errorf("decode story %s: %w", args[0], err)
			}

			path := output
			if path == "" {
				path = args[0] + ".json"
			}
			if err := story.WriteStoryFile(st, path); err != nil {
				return fmt.Errorf("write story: %w", err)
			}

			printSuccess("Pulled %s", rec.Title)
			printFile(path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <id>.json)")

	return cmd
}

// newStoryDeleteCmd creates the "story delete" subcommand.
func newStoryDeleteCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a story from the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd, *configPath)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete story %s: %w", args[0], err)
			}
			printSuccess("Deleted %s", args[0])
			return nil
		},
	}
}

// openStore loads the config and opens the configured story store.
func openStore(cmd *cobra.Command, configPath string) (store.Store, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	s, err := newStore(cmd.Context(), cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("initialize store: %w", err)
	}
	return s, nil
}
