package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

func newProjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List or show portfolio projects",
		Long: "Projects are read from the table service, newest first. When the service\n" +
			"cannot be reached the last snapshot is used.",
		Args: cobra.NoArgs,
		RunE: runProjectsList,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE:  runProjectsList,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show one project with its normalized images, stack and features",
		Example: "  showcase projects show 12\n" +
			"  showcase projects show 12 --json",
		Args: cobra.ExactArgs(1),
		RunE: runProjectsShow,
	})
	return cmd
}

func runProjectsList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	projects := types.ProjectViews(a.fetcher.Projects(cmd.Context()))
	if flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), projects)
	}

	out := cmd.OutOrStdout()
	if len(projects) == 0 {
		fmt.Fprintln(out, "No projects found.")
		return nil
	}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10),
			truncate(p.Title, 40),
			truncate(strings.Join(p.TechStack, ", "), 40),
			strconv.Itoa(len(p.Images)),
		})
	}
	printTable(out, []string{"ID", "TITLE", "STACK", "IMAGES"}, rows)
	fmt.Fprintf(out, "Total: %d project(s)\n", len(projects))
	return nil
}

func runProjectsShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	project, err := a.fetcher.Project(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return fmt.Errorf("project %s not found", args[0])
		}
		return fmt.Errorf("get project: %w", err)
	}

	p := project.View()
	if flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), p)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (#%d)\n", p.Title, p.ID)
	if p.Description != "" {
		fmt.Fprintf(out, "\n%s\n", p.Description)
	}
	printList(out, "Tech stack", p.TechStack)
	printList(out, "Features", p.Features)
	printList(out, "Images", p.Images)
	if p.Github != "" {
		fmt.Fprintf(out, "\nSource: %s\n", p.Github)
	}
	return nil
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}
