package projects

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/crucial707/landscape-lab/cmd/cli/client"
	"github.com/crucial707/landscape-lab/cmd/cli/output"
	"github.com/crucial707/landscape-lab/internal/models"
	"github.com/spf13/cobra"
)

// ==========================
// Init Projects
// ==========================
func InitProjects(rootCmd *cobra.Command) {

	projectsCmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage landscape projects",
	}

	projectsCmd.AddCommand(
		listProjectsCmd(),
		createProjectCmd(),
		deleteProjectCmd(),
	)

	rootCmd.AddCommand(projectsCmd)
}

// ==========================
// LIST
// ==========================
func listProjectsCmd() *cobra.Command {
	var search, status string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.Authenticated()
			if err != nil {
				return err
			}

			q := url.Values{}
			q.Set("limit", strconv.Itoa(limit))
			q.Set("offset", strconv.Itoa(offset))
			if search != "" {
				q.Set("search", search)
			}
			if status != "" {
				q.Set("status", status)
			}

			var page client.Page[models.Project]
			if err := c.Do(cmd.Context(), http.MethodGet, "/projects?"+q.Encode(), nil, &page); err != nil {
				return err
			}
			if output.WantJSON(cmd) {
				return output.JSON(cmd.OutOrStdout(), page)
			}

			rows := make([][]interface{}, 0, len(page.Items))
			for _, p := range page.Items {
				rows = append(rows, []interface{}{p.ID, p.Name, p.Status, p.Location, p.AreaSize, p.OwnerID})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"ID", "Name", "Status", "Location", "Area", "Owner"}, rows)
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d\n", len(page.Items), page.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Filter by name, description or location")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (draft, in_progress, completed, archived)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Rows to skip")
	return cmd
}

// ==========================
// CREATE
// ==========================
func createProjectCmd() *cobra.Command {
	var in models.ProjectInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Name == "" {
				return fmt.Errorf("--name is required")
			}
			c, err := client.Authenticated()
			if err != nil {
				return err
			}

			var p models.Project
			if err := c.Do(cmd.Context(), http.MethodPost, "/projects", in, &p); err != nil {
				return err
			}
			if output.WantJSON(cmd) {
				return output.JSON(cmd.OutOrStdout(), p)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %d (%s).\n", p.ID, p.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "Project name")
	cmd.Flags().StringVar(&in.Description, "description", "", "Project description")
	cmd.Flags().StringVar(&in.Location, "location", "", "Site location")
	cmd.Flags().Float64Var(&in.AreaSize, "area", 0, "Area in square meters")
	cmd.Flags().StringVar(&in.DesignStyle, "style", "", "Design style")
	return cmd
}

// ==========================
// DELETE
// ==========================
func deleteProjectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid project id %q", args[0])
			}
			c, err := client.Authenticated()
			if err != nil {
				return err
			}
			if err := c.Do(cmd.Context(), http.MethodDelete, "/projects/"+strconv.Itoa(id), nil, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %d.\n", id)
			return nil
		},
	}
}
