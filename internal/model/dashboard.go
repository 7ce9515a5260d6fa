package model

// ProcessDashboard aggregates the fixed counters shown on the process
// dashboard. Every field is a count(processes) under one fixed predicate.
type ProcessDashboard struct {
	Total               int64 `json:"total"`
	Attended            int64 `json:"attended"`
	CitiesDirectorate   int64 `json:"cities_directorate"`
	WorksDirectorate    int64 `json:"works_directorate"`
	PlanningDirectorate int64 `json:"planning_directorate"`
	Unfounded           int64 `json:"unfounded"`
	ReturnedToRegion    int64 `json:"returned_to_region"`
	Urgent              int64 `json:"urgent"`
	ExecutionDeadline   int64 `json:"execution_deadline"`
	Ombudsman           int64 `json:"ombudsman"`
}

// ReportRow is one flat tuple of the advanced report: a movement joined to
// its user, entry, process and the demand routing hierarchy.
type ReportRow struct {
	Date          string `json:"date"`
	ProcessNumber string `json:"process_number"`
	Region        string `json:"region"`
	Status        string `json:"status"`
	Directorate   string `json:"directorate"`
	Department    string `json:"department"`
	Demand        string `json:"demand"`
	Responsible   string `json:"responsible"`
	Note          string `json:"note"`
}

// ReportSummary carries the card totals rendered above the report table.
type ReportSummary struct {
	TotalRows       int    `json:"total_rows"`
	DistinctRegions int    `json:"distinct_regions"`
	DistinctDemands int    `json:"distinct_demands"`
	AverageDays     string `json:"average_days"` // mean days between intake and movement, one decimal
}
