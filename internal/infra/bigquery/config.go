package bigquery

// Project and dataset are set once at startup from the environment.
// Defaults match the shared development dataset.
var (
	projectID = "momo-tracker-dev"
	datasetID = "momo"
)

// Configure overrides the project and dataset used by all package-level
// operations. Call it before any queries run, typically right after
// config.Load in main.
func Configure(project, dataset string) {
	if project != "" {
		projectID = project
	}
	if dataset != "" {
		datasetID = dataset
	}
}
