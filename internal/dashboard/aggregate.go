package dashboard

import (
	"fmt"
	"sort"
	"time"

	"github.com/MySundayS/employee-lita/internal/store"
)

const trendDays = 7

// Aggregate folds the full record set into the dashboard summary for
// asOf's date. Pure function: same records and date, same output.
func Aggregate(records []store.Record, asOf time.Time) SummaryResponse {
	date := asOf.Format(store.DateLayout)

	total := map[string]struct{}{}
	byDay := map[string]map[string]struct{}{}
	firstIn := map[string]time.Time{} // employee -> earliest punch on asOf date

	for _, r := range records {
		total[r.UserID] = struct{}{}

		day := r.Date()
		if byDay[day] == nil {
			byDay[day] = map[string]struct{}{}
		}
		byDay[day][r.UserID] = struct{}{}

		if day == date {
			if cur, ok := firstIn[r.UserID]; !ok || r.Timestamp.Before(cur) {
				firstIn[r.UserID] = r.Timestamp
			}
		}
	}

	checkedIn := len(byDay[date])
	rate := 0.0
	if len(total) > 0 {
		rate = float64(checkedIn) / float64(len(total))
	}

	// Trend is always exactly 7 points, oldest first, zero-filled for days
	// with no data.
	trend := make([]TrendPoint, 0, trendDays)
	for i := trendDays - 1; i >= 0; i-- {
		day := asOf.AddDate(0, 0, -i).Format(store.DateLayout)
		trend = append(trend, TrendPoint{Date: day, CheckedIn: len(byDay[day])})
	}

	histogram := make([]HistogramBucket, 24)
	for h := range histogram {
		histogram[h] = HistogramBucket{Hour: h, Label: fmt.Sprintf("%02d:00", h)}
	}
	for _, ts := range firstIn {
		histogram[ts.Hour()].Count++
	}

	return SummaryResponse{
		Date:           date,
		TotalEmployees: len(total),
		CheckedIn:      checkedIn,
		NotCheckedIn:   len(total) - checkedIn,
		Rate:           rate,
		Trend:          trend,
		TimeHistogram:  histogram,
	}
}

// DaySummaries derives per-employee day detail for every employee in the
// record set, sorted by employee id. Employees with no punch on the date
// appear with Present=false.
func DaySummaries(records []store.Record, asOf time.Time) []EmployeeDaySummary {
	date := asOf.Format(store.DateLayout)

	type agg struct {
		name    string
		first   time.Time
		last    time.Time
		punches int
	}
	employees := map[string]*agg{}

	for _, r := range records {
		a, ok := employees[r.UserID]
		if !ok {
			a = &agg{}
			employees[r.UserID] = a
		}
		if a.name == "" || (r.Name != "" && r.Name != "Unknown") {
			a.name = r.Name
		}
		if r.Date() != date {
			continue
		}
		a.punches++
		if a.first.IsZero() || r.Timestamp.Before(a.first) {
			a.first = r.Timestamp
		}
		if r.Timestamp.After(a.last) {
			a.last = r.Timestamp
		}
	}

	summaries := make([]EmployeeDaySummary, 0, len(employees))
	for id, a := range employees {
		summaries = append(summaries, daySummary(id, a.name, date, a.first, a.last, a.punches))
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].EmployeeID < summaries[j].EmployeeID
	})
	return summaries
}

// DaySummaryFor derives one employee's day detail. The bool reports
// whether the employee appears anywhere in the record set at all.
func DaySummaryFor(records []store.Record, employeeID string, asOf time.Time) (EmployeeDaySummary, bool) {
	date := asOf.Format(store.DateLayout)

	var (
		known   bool
		name    string
		first   time.Time
		last    time.Time
		punches int
	)
	for _, r := range records {
		if r.UserID != employeeID {
			continue
		}
		known = true
		if name == "" || (r.Name != "" && r.Name != "Unknown") {
			name = r.Name
		}
		if r.Date() != date {
			continue
		}
		punches++
		if first.IsZero() || r.Timestamp.Before(first) {
			first = r.Timestamp
		}
		if r.Timestamp.After(last) {
			last = r.Timestamp
		}
	}
	if !known {
		return EmployeeDaySummary{}, false
	}
	return daySummary(employeeID, name, date, first, last, punches), true
}

func daySummary(id, name, date string, first, last time.Time, punches int) EmployeeDaySummary {
	s := EmployeeDaySummary{
		EmployeeID: id,
		Name:       name,
		Date:       date,
		Present:    punches > 0,
		PunchCount: punches,
	}
	if punches > 0 {
		in := first.Format(store.TimeLayout)
		out := last.Format(store.TimeLayout)
		s.FirstIn = &in
		s.LastOut = &out
		s.WorkedDuration = last.Sub(first).String()
	}
	return s
}
