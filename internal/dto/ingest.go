package dto

// IngestRequest scopes an ingestion run. Car and track narrow the query
// sent to each source; Sources restricts the run to the named connectors
// (empty means all configured).
type IngestRequest struct {
	Car     string   `json:"car"`
	Track   string   `json:"track"`
	Sources []string `json:"sources"`
}

// SourceReport summarizes one connector's contribution to a run. A failed
// connector reports its error here instead of aborting the run.
type SourceReport struct {
	Source           string `json:"source"`
	Attempted        int    `json:"attempted"`
	Normalized       int    `json:"normalized"`
	Inserted         int    `json:"inserted"`
	SkippedDuplicate int    `json:"skipped_duplicate"`
	Error            string `json:"error,omitempty"`
}

type IngestResponse struct {
	Query   string         `json:"query"`
	Reports []SourceReport `json:"reports"`
}
