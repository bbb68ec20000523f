package dashboard

import "html/template"

// pageTemplate is the whole UI: summary cards, a 7-day trend, a first-in
// histogram and the per-employee table. The meta refresh is the dashboard's
// auto-reload timer.
var pageTemplate = template.Must(template.New("dashboard.tmpl").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="{{.RefreshSeconds}}">
<title>Attendance Dashboard</title>
<style>
  body { font-family: sans-serif; margin: 2rem; background: #f7f7f8; color: #222; }
  h1 { margin-bottom: 0.25rem; }
  .cards { display: flex; gap: 1rem; margin: 1rem 0; flex-wrap: wrap; }
  .card { background: #fff; border-radius: 8px; padding: 1rem 1.5rem; box-shadow: 0 1px 3px rgba(0,0,0,.1); min-width: 10rem; }
  .card .value { font-size: 2rem; font-weight: bold; }
  .degraded { color: #b45309; }
  table { border-collapse: collapse; background: #fff; width: 100%; }
  th, td { padding: .5rem .75rem; border-bottom: 1px solid #eee; text-align: left; }
  .bar { display: inline-block; background: #2563eb; height: .75rem; }
  .muted { color: #888; }
</style>
</head>
<body>
<h1>Attendance Dashboard</h1>
<p class="muted">{{.Summary.Date}} &middot; sync: {{.Status.State}} ({{.Status.SyncCount}} runs)
{{if .Summary.Degraded}}<span class="degraded"> &middot; store unreachable, showing placeholders</span>{{end}}</p>

<div class="cards">
  <div class="card"><div>Total employees</div><div class="value">{{.Summary.TotalEmployees}}</div></div>
  <div class="card"><div>Checked in</div><div class="value">{{.Summary.CheckedIn}}</div></div>
  <div class="card"><div>Not checked in</div><div class="value">{{.Summary.NotCheckedIn}}</div></div>
  <div class="card"><div>Rate</div><div class="value">{{.RatePercent}}%</div></div>
</div>

<h2>Last 7 days</h2>
<table>
  <tr><th>Date</th><th>Checked in</th><th></th></tr>
  {{range .Summary.Trend}}
  <tr><td>{{.Date}}</td><td>{{.CheckedIn}}</td>
      <td><span class="bar" style="width:{{.CheckedIn}}rem"></span></td></tr>
  {{end}}
</table>

<h2>First check-in times</h2>
<table>
  <tr><th>Hour</th><th>Employees</th><th></th></tr>
  {{range .Summary.TimeHistogram}}{{if .Count}}
  <tr><td>{{.Label}}</td><td>{{.Count}}</td>
      <td><span class="bar" style="width:{{.Count}}rem"></span></td></tr>
  {{end}}{{end}}
</table>

<h2>Employees</h2>
<table>
  <tr><th>ID</th><th>Name</th><th>Present</th><th>First in</th><th>Last out</th><th>Worked</th></tr>
  {{range .Employees}}
  <tr>
    <td>{{.EmployeeID}}</td>
    <td>{{.Name}}</td>
    <td>{{if .Present}}✅{{else}}—{{end}}</td>
    <td>{{if .FirstIn}}{{.FirstIn}}{{else}}<span class="muted">—</span>{{end}}</td>
    <td>{{if .LastOut}}{{.LastOut}}{{else}}<span class="muted">—</span>{{end}}</td>
    <td>{{.WorkedDuration}}</td>
  </tr>
  {{end}}
</table>
</body>
</html>
`))
