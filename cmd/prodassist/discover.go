package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"prodassist/internal/discovery"
)

var (
	discoverForce bool
	discoverWait  bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover [project]",
	Short: "Discover and analyze the product capabilities of a project",
	Long: `Runs the feature discovery pipeline: lists the project's high-level
product capabilities, analyzes each one, and persists the results. Existing
features make this a no-op unless --force is set.`,
	Args: cobra.ExactArgs(1),
	RunE: runDiscover,
}

var featuresCmd = &cobra.Command{
	Use:   "features [project]",
	Short: "List a project's discovered features",
	Args:  cobra.ExactArgs(1),
	RunE:  runFeatures,
}

func init() {
	discoverCmd.Flags().BoolVar(&discoverForce, "force", false, "Re-discover even if features already exist")
	discoverCmd.Flags().BoolVar(&discoverWait, "wait", true, "Wait for discovery to finish before returning")

	rootCmd.AddCommand(featuresCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	project, err := a.store.GetProjectByName(args[0])
	if err != nil {
		return fmt.Errorf("project %q: %w", args[0], err)
	}

	pipeline := discovery.NewPipeline(a.llm, a.analyzer, a.store)
	if !discoverWait {
		worker := discovery.NewWorker(pipeline, cfg.Discovery.MaxConcurrent)
		worker.Trigger(ctx, project.ID, project.RepoPath, discoverForce)
		fmt.Printf("Discovery started for project %s\n", project.Name)
		worker.Wait()
		return nil
	}

	features, err := pipeline.Discover(ctx, project.ID, project.RepoPath, discoverForce)
	if err != nil {
		return err
	}
	if len(features) == 0 {
		fmt.Println("No capabilities discovered.")
		return nil
	}

	fmt.Printf("Discovered %d features:\n", len(features))
	for _, f := range features {
		fmt.Printf("  - %s\n", f.Name)
	}
	return nil
}

func runFeatures(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	project, err := a.store.GetProjectByName(args[0])
	if err != nil {
		return fmt.Errorf("project %q: %w", args[0], err)
	}

	features, err := a.store.ListFeatures(project.ID)
	if err != nil {
		return err
	}
	if len(features) == 0 {
		fmt.Println("No features discovered yet. Run: prodassist discover", project.Name)
		return nil
	}

	for _, f := range features {
		fmt.Printf("%s\n", f.Name)
		if f.Overview != "" {
			fmt.Printf("  %s\n", f.Overview)
		}
		fmt.Printf("  conversation: %s\n\n", f.ConversationID)
	}
	return nil
}
