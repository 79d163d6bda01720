package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"prodassist/internal/orchestrator"
	"prodassist/internal/types"
)

var (
	askProject      string
	askConversation string
	askFeature      string
	askRequirement  string
	askContext      string
)

// askCmd runs one orchestration turn
var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Ask about a feature, a new requirement, or continue a conversation",
	Long: `Runs one turn against a project. The free-text message is routed
automatically; --feature and --requirement force the analysis kind directly.

Examples:
  prodassist ask --project billing "How does the invoicing feature work?"
  prodassist ask --project billing --requirement "Add multi-currency support"
  prodassist ask --conversation 4f2c... "What about edge cases?"`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askProject, "project", "p", "", "Project name")
	askCmd.Flags().StringVarP(&askConversation, "conversation", "c", "", "Conversation ID to continue")
	askCmd.Flags().StringVar(&askFeature, "feature", "", "Feature query (forces feature analysis)")
	askCmd.Flags().StringVar(&askRequirement, "requirement", "", "New requirement (forces feasibility analysis)")
	askCmd.Flags().StringVar(&askContext, "context", "", "Additional context for a feasibility request")
}

func runAsk(cmd *cobra.Command, args []string) error {
	message := strings.TrimSpace(strings.Join(args, " "))
	if message == "" && askFeature == "" && askRequirement == "" && askConversation == "" {
		return fmt.Errorf("provide a message, --feature, --requirement, or --conversation")
	}

	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	env := &types.Envelope{
		ConversationID: askConversation,
		Message:        message,
	}
	if askProject != "" {
		project, err := a.store.GetProjectByName(askProject)
		if err != nil {
			return fmt.Errorf("project %q: %w", askProject, err)
		}
		env.ProjectID = project.ID
		env.RepoPath = project.RepoPath
	}
	if askFeature != "" {
		env.Feature = &types.FeatureQuery{Query: askFeature}
	}
	if askRequirement != "" {
		env.Feasibility = &types.FeasibilityRequest{
			Requirement: askRequirement,
			Context:     askContext,
		}
	}

	coord := orchestrator.NewCoordinator(a.llm, a.analyzer, a.store)
	result, err := coord.Run(ctx, env)
	if err != nil {
		return err
	}

	printResult(result)
	return nil
}

func printResult(result *types.TurnResult) {
	switch result.Kind {
	case types.KindFeature:
		fmt.Println(result.Feature.Details)
	case types.KindFeasibility:
		printFeasibility(result.Feasibility)
	default:
		fmt.Println(result.Response)
	}

	if result.ConversationID != "" {
		fmt.Printf("\nConversation: %s\n", result.ConversationID)
	}
	if verbose {
		for _, entry := range result.Trace {
			fmt.Printf("  trace: %s\n", entry)
		}
	}
}

func printFeasibility(r *types.FeasibilityResult) {
	fmt.Printf("Feasibility: %s\n\n", r.Rating)
	fmt.Printf("Approach:\n%s\n", r.Approach)
	if len(r.Risks) > 0 {
		fmt.Println("\nRisks:")
		for _, risk := range r.Risks {
			fmt.Printf("  - %s\n", risk)
		}
	}
	if len(r.OpenQuestions) > 0 {
		fmt.Println("\nOpen Questions:")
		for _, q := range r.OpenQuestions {
			fmt.Printf("  - %s\n", q)
		}
	}
	if r.RoughEstimate.RawText != "" {
		fmt.Printf("\nEstimate:\n%s\n", r.RoughEstimate.RawText)
	}
	if r.TaskBreakdown.RawText != "" {
		fmt.Printf("\nTask Breakdown:\n%s\n", r.TaskBreakdown.RawText)
	}
}
