package models

// GroupCount is one row of a GROUP BY breakdown.
type GroupCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type PlantStatistics struct {
	TotalPlants     int          `json:"total_plants"`
	PlantCategories []GroupCount `json:"plant_categories"`
	RecentAdditions []Plant      `json:"recent_additions"`
}

type MaterialStatistics struct {
	TotalMaterials  int          `json:"total_materials"`
	MaterialTypes   []GroupCount `json:"material_types"`
	RecentAdditions []Material   `json:"recent_additions"`
}

type ProjectStatistics struct {
	TotalProjects   int          `json:"total_projects"`
	ProjectStatuses []GroupCount `json:"project_statuses"`
	RecentAdditions []Project    `json:"recent_additions"`
}
