package models

// ReportFilters defines the query options accepted by the zone report endpoint
type ReportFilters struct {
	Policy  string `schema:"policy"`
	NoCache bool   `schema:"no_cache"`
}
