package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"prodassist/internal/types"
)

var (
	projectGitURL      string
	projectDescription string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage registered projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Register a project and clone its repository",
	Args:  cobra.ExactArgs(1),
	RunE:  projectCreate,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered projects",
	RunE:  projectList,
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete a project and its conversations and features",
	Args:  cobra.ExactArgs(1),
	RunE:  projectDelete,
}

func init() {
	projectCreateCmd.Flags().StringVar(&projectGitURL, "git-url", "", "Git URL to clone (required)")
	projectCreateCmd.Flags().StringVar(&projectDescription, "description", "", "Project description")
	_ = projectCreateCmd.MarkFlagRequired("git-url")

	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectDeleteCmd)
}

func projectCreate(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	logger.Info("cloning repository", zap.String("project", name), zap.String("url", projectGitURL))
	localPath, err := a.provider.Ensure(ctx, name, projectGitURL)
	if err != nil {
		return fmt.Errorf("failed to prepare repository: %w", err)
	}

	project := &types.Project{
		Name:        name,
		GitURL:      projectGitURL,
		RepoPath:    localPath,
		Description: projectDescription,
	}
	if err := a.store.CreateProject(project); err != nil {
		return err
	}

	fmt.Printf("Created project %s (%s)\n", project.Name, project.ID)
	fmt.Printf("Repository: %s\n", project.RepoPath)
	return nil
}

func projectList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	projects, err := a.store.ListProjects()
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Println("No projects registered.")
		return nil
	}

	for _, p := range projects {
		fmt.Printf("%s  %s\n", p.ID, p.Name)
		if p.Summary != "" {
			fmt.Printf("    %s\n", p.Summary)
		}
		count, err := a.store.CountFeatures(p.ID)
		if err == nil && count > 0 {
			fmt.Printf("    %d discovered features\n", count)
		}
	}
	return nil
}

func projectDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	project, err := a.store.GetProjectByName(args[0])
	if err != nil {
		return fmt.Errorf("project %q: %w", args[0], err)
	}
	if err := a.store.DeleteProject(project.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted project %s\n", project.Name)
	return nil
}
