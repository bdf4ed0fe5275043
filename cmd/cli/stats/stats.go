package stats

import (
	"fmt"
	"net/http"

	"github.com/crucial707/landscape-lab/cmd/cli/client"
	"github.com/crucial707/landscape-lab/cmd/cli/output"
	"github.com/crucial707/landscape-lab/internal/models"
	"github.com/spf13/cobra"
)

// InitStats registers `stats <plants|materials|projects>`. The endpoints are
// admin-only; a regular account gets the API's 403 back.
func InitStats(rootCmd *cobra.Command) {
	rootCmd.AddCommand(&cobra.Command{
		Use:       "stats <plants|materials|projects>",
		Short:     "Show catalog statistics",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"plants", "materials", "projects"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.Authenticated()
			if err != nil {
				return err
			}
			path := "/" + args[0] + "/statistics"

			var total int
			var groups []models.GroupCount
			var raw any
			switch args[0] {
			case "plants":
				s := &models.PlantStatistics{}
				err = c.Do(cmd.Context(), http.MethodGet, path, nil, s)
				raw, total, groups = s, s.TotalPlants, s.PlantCategories
			case "materials":
				s := &models.MaterialStatistics{}
				err = c.Do(cmd.Context(), http.MethodGet, path, nil, s)
				raw, total, groups = s, s.TotalMaterials, s.MaterialTypes
			default:
				s := &models.ProjectStatistics{}
				err = c.Do(cmd.Context(), http.MethodGet, path, nil, s)
				raw, total, groups = s, s.TotalProjects, s.ProjectStatuses
			}
			if err != nil {
				return err
			}
			if output.WantJSON(cmd) {
				return output.JSON(cmd.OutOrStdout(), raw)
			}

			rows := make([][]interface{}, 0, len(groups))
			for _, g := range groups {
				rows = append(rows, []interface{}{g.Key, g.Count})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"Group", "Count"}, rows)
			fmt.Fprintf(cmd.OutOrStdout(), "Total %s: %d\n", args[0], total)
			return nil
		},
	})
}
