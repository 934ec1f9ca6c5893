package report

import "html/template"

var reportTmpl = template.Must(template.New("report").Parse(reportHTML))

const reportHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Arial, sans-serif; margin: 24px; }
  .header { text-align: center; margin-bottom: 30px; }
  .section { margin-bottom: 20px; }
  table { width: 100%; border-collapse: collapse; margin-bottom: 20px; }
  th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
  th { background-color: #f2f2f2; }
  .warn { color: #b45309; }
</style>
</head>
<body>
<div class="header">
  <h1>Production Efficiency Report</h1>
  <p>{{.DatasetName}} — generated {{.GeneratedAt}} UTC</p>
</div>

<div class="section">
  <h2>1. Overall</h2>
  <p>Average efficiency: {{.AvgEfficiency}}</p>
  <p>Qualified rate (&ge;80%): {{.QualifiedRate}}</p>
  {{if .BestStation}}<p>Best station: {{.BestStation}} ({{.BestEfficiency}})</p>{{end}}
  <p>Workers: {{.TotalWorkers}} (low {{.LowCount}}, normal {{.NormalCount}}, high {{.HighCount}})</p>
</div>

<div class="section">
  <h2>2. Station Efficiency</h2>
  <table>
    <tr><th>Station</th><th>Efficiency</th><th>Workers</th></tr>
    {{range .Stations}}<tr><td>{{.Station}}</td><td>{{.Efficiency}}</td><td>{{.Workers}}</td></tr>
    {{end}}
  </table>
</div>

<div class="section">
  <h2>3. Efficiency Anomalies</h2>
  {{if .Low}}
  <h3>Low efficiency (&lt;80%)</h3>
  <table>
    <tr><th>Station</th><th>Worker</th><th>Efficiency</th></tr>
    {{range .Low}}<tr><td>{{.Station}}</td><td>{{.Worker}}</td><td>{{.Efficiency}}</td></tr>
    {{end}}
  </table>
  {{end}}
  {{if .High}}
  <h3>High efficiency (&gt;105%)</h3>
  <table>
    <tr><th>Station</th><th>Worker</th><th>Efficiency</th></tr>
    {{range .High}}<tr><td>{{.Station}}</td><td>{{.Worker}}</td><td>{{.Efficiency}}</td></tr>
    {{end}}
  </table>
  {{end}}
  {{if and (not .Low) (not .High)}}<p>No efficiency anomalies found.</p>{{end}}
</div>

{{if .CTAbnormal}}
<div class="section">
  <h2>4. Cycle-Time Anomalies (&gt;20% deviation)</h2>
  <table>
    <tr><th>Station</th><th>Worker</th><th>Standard CT</th><th>Actual CT</th><th>Delta</th><th>Delta %</th></tr>
    {{range .CTAbnormal}}<tr><td>{{.Station}}</td><td>{{.Worker}}</td><td>{{.StandardCT}}</td><td>{{.ActualCT}}</td><td>{{.CTDelta}}</td><td>{{.CTDeltaRatio}}</td></tr>
    {{end}}
  </table>
</div>
{{end}}

{{if .Top}}
<div class="section">
  <h2>5. Top Performers</h2>
  <table>
    <tr><th>Station</th><th>Worker</th><th>Efficiency</th></tr>
    {{range .Top}}<tr><td>{{.Station}}</td><td>{{.Worker}}</td><td>{{.Efficiency}}</td></tr>
    {{end}}
  </table>
</div>
{{end}}

{{if or .Coercions .RangeWarnings}}
<div class="section">
  <h2>Data Quality Notes</h2>
  {{if .Coercions}}<p class="warn">{{.Coercions}} cell(s) could not be parsed as numbers and were treated as missing.</p>{{end}}
  {{range .RangeWarnings}}<p class="warn">{{.}}</p>{{end}}
</div>
{{end}}
</body>
</html>
`
