package dashboard

type TrendPoint struct {
	Date      string `json:"date"`
	CheckedIn int    `json:"checked_in"`
}

type HistogramBucket struct {
	Hour  int    `json:"hour"`
	Label string `json:"label"` // e.g. "08:00"
	Count int    `json:"count"`
}

type SummaryResponse struct {
	Date           string            `json:"date"`
	TotalEmployees int               `json:"total_employees"`
	CheckedIn      int               `json:"checked_in"`
	NotCheckedIn   int               `json:"not_checked_in"`
	Rate           float64           `json:"rate"`
	Trend          []TrendPoint      `json:"trend"`
	TimeHistogram  []HistogramBucket `json:"time_histogram"`
	Degraded       bool              `json:"degraded,omitempty"` // store was unreachable, zeros are placeholders
}

type EmployeeDaySummary struct {
	EmployeeID     string  `json:"employee_id"`
	Name           string  `json:"name"`
	Date           string  `json:"date"`
	Present        bool    `json:"present"`
	FirstIn        *string `json:"first_in,omitempty"`
	LastOut        *string `json:"last_out,omitempty"`
	WorkedDuration string  `json:"worked_duration,omitempty"`
	PunchCount     int     `json:"punch_count"`
}
