package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"prodassist/internal/summary"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [project]",
	Short: "Generate a business summary, purpose, and tech stack for a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummarize,
}

func runSummarize(cmd *cobra.Command, args []string) error {
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

	svc := summary.NewService(a.llm, a.analyzer, a.store)
	result := svc.Generate(ctx, project)
	if result.Summary == "" && result.Purpose == "" && len(result.TechStack) == 0 {
		fmt.Println("Summary generation produced no result; check the logs.")
		return nil
	}

	fmt.Printf("Summary:\n%s\n\n", result.Summary)
	fmt.Printf("Purpose:\n%s\n\n", result.Purpose)
	if len(result.TechStack) > 0 {
		fmt.Printf("Tech Stack: %s\n", strings.Join(result.TechStack, ", "))
	}
	return nil
}
