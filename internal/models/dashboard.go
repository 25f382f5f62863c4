package models

// DashboardSummary aggregates document counts for a viewer's scope.
type DashboardSummary struct {
	Total      int `db:"total" json:"total"`
	Pending    int `db:"pending" json:"pending"`
	Approved   int `db:"approved" json:"approved"`
	Rejected   int `db:"rejected" json:"rejected"`
	Archived   int `db:"archived" json:"archived"`
	HighPrio   int `db:"high_priority" json:"high_priority"`
	MediumPrio int `db:"medium_priority" json:"medium_priority"`
	LowPrio    int `db:"low_priority" json:"low_priority"`
}

// DashboardScope narrows the summary query per the viewer's role.
type DashboardScope struct {
	SubmittedByID string
	DesignationID string
}
