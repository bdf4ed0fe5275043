// Package catalog lists the plant and material catalogs.
package catalog

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

func InitCatalog(rootCmd *cobra.Command) {
	plantsCmd := &cobra.Command{Use: "plants", Short: "Browse plants"}
	plantsCmd.AddCommand(listCmd("plants", renderPlants))

	materialsCmd := &cobra.Command{Use: "materials", Short: "Browse materials"}
	materialsCmd.AddCommand(listCmd("materials", renderMaterials))

	rootCmd.AddCommand(plantsCmd, materialsCmd)
}

type listFilter struct {
	search    string
	category  string
	projectID int
	limit     int
	offset    int
}

func (f listFilter) query() string {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(f.limit))
	q.Set("offset", strconv.Itoa(f.offset))
	if f.search != "" {
		q.Set("search", f.search)
	}
	if f.category != "" {
		q.Set("category", f.category)
	}
	if f.projectID > 0 {
		q.Set("project_id", strconv.Itoa(f.projectID))
	}
	return q.Encode()
}

type renderFunc func(cmd *cobra.Command, c *client.Client, path string) error

func listCmd(resource string, render renderFunc) *cobra.Command {
	var f listFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + resource,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.Authenticated()
			if err != nil {
				return err
			}
			return render(cmd, c, "/"+resource+"?"+f.query())
		},
	}

	cmd.Flags().StringVar(&f.search, "search", "", "Free-text filter")
	cmd.Flags().StringVar(&f.category, "category", "", "Filter by category")
	cmd.Flags().IntVar(&f.projectID, "project", 0, "Only rows belonging to this project")
	cmd.Flags().IntVar(&f.limit, "limit", 20, "Page size")
	cmd.Flags().IntVar(&f.offset, "offset", 0, "Rows to skip")
	return cmd
}

func renderPlants(cmd *cobra.Command, c *client.Client, path string) error {
	var page client.Page[models.Plant]
	if err := c.Do(cmd.Context(), http.MethodGet, path, nil, &page); err != nil {
		return err
	}
	if output.WantJSON(cmd) {
		return output.JSON(cmd.OutOrStdout(), page)
	}
	rows := make([][]interface{}, 0, len(page.Items))
	for _, p := range page.Items {
		rows = append(rows, []interface{}{p.ID, p.Name, p.ScientificName, p.Category,
			fmt.Sprintf("%g-%g", p.HeightMin, p.HeightMax), p.ProjectID})
	}
	output.RenderTable(cmd.OutOrStdout(), []string{"ID", "Name", "Scientific name", "Category", "Height", "Project"}, rows)
	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d\n", len(page.Items), page.Total)
	return nil
}

func renderMaterials(cmd *cobra.Command, c *client.Client, path string) error {
	var page client.Page[models.Material]
	if err := c.Do(cmd.Context(), http.MethodGet, path, nil, &page); err != nil {
		return err
	}
	if output.WantJSON(cmd) {
		return output.JSON(cmd.OutOrStdout(), page)
	}
	rows := make([][]interface{}, 0, len(page.Items))
	for _, m := range page.Items {
		rows = append(rows, []interface{}{m.ID, m.Name, m.Category, m.Unit, fmt.Sprintf("%.2f", m.UnitPrice), m.ProjectID})
	}
	output.RenderTable(cmd.OutOrStdout(), []string{"ID", "Name", "Category", "Unit", "Unit price", "Project"}, rows)
	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d\n", len(page.Items), page.Total)
	return nil
}
