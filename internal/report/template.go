package report

// ReportTemplate is the HTML template for the distribution report.
const ReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --bg: #ffffff;
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #1f77b4;
    --section-bg: #f8fafc;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    background: var(--bg);
    line-height: 1.6;
    max-width: 900px;
    margin: 0 auto;
    padding: 20px;
  }
  h1 { font-size: 1.5rem; margin-bottom: 4px; color: var(--accent); font-weight: 600; }
  h2 { font-size: 1.2rem; margin: 24px 0 12px; padding-bottom: 6px; border-bottom: 2px solid var(--accent); font-weight: 600; }
  .muted { color: var(--muted); font-size: 0.85rem; }

  .header {
    border-bottom: 3px solid var(--accent);
    padding-bottom: 12px;
    margin-bottom: 16px;
  }

  .stat-grid {
    display: grid;
    grid-template-columns: repeat(auto-fill, minmax(160px, 1fr));
    gap: 8px;
    background: var(--section-bg);
    padding: 12px;
    border-radius: 8px;
    margin-bottom: 16px;
  }
  .stat-item { text-align: center; }
  .stat-item .label { font-size: 0.75rem; color: var(--muted); text-transform: uppercase; }
  .stat-item .value { font-size: 1rem; font-weight: 600; }

  .chart-container { margin: 12px 0 20px; text-align: center; }
  .chart-container svg { max-width: 100%; height: auto; }

  table { width: 100%; border-collapse: collapse; margin: 8px 0 16px; font-size: 0.9rem; }
  th { background: var(--section-bg); text-align: left; padding: 8px; font-weight: 600; }
  td { padding: 8px; border-bottom: 1px solid var(--border); }
  td.num, th.num { text-align: right; font-variant-numeric: tabular-nums; }

  .footer { margin-top: 32px; padding-top: 12px; border-top: 1px solid var(--border); color: var(--muted); font-size: 0.8rem; }
</style>
</head>
<body>

<div class="header">
  <h1>{{.Title}}</h1>
  {{if .Source}}<p class="muted">Source: {{.Source}}</p>{{end}}
  <p class="muted">Generated on {{.GeneratedAt}}</p>
</div>

<div class="stat-grid">
  <div class="stat-item"><div class="label">Distributions</div><div class="value">{{.Rows}}</div></div>
  <div class="stat-item"><div class="label">Date Range</div><div class="value">{{.DateRange}}</div></div>
  <div class="stat-item"><div class="label">Total Dozens</div><div class="value">{{.TotalDozens}}</div></div>
  <div class="stat-item"><div class="label">Total Revenue</div><div class="value">{{.TotalRevenue}}</div></div>
  <div class="stat-item"><div class="label">Avg / Dozen</div><div class="value">{{.AvgPerDozen}}</div></div>
  <div class="stat-item"><div class="label">Avg / Donut</div><div class="value">{{.AvgPerDonut}}</div></div>
</div>
{{if .DroppedRows}}<p class="muted">{{.DroppedRows}} row(s) skipped: unparseable date or number.</p>{{end}}
{{if .Undefined}}<p class="muted">{{.Undefined}} row(s) with zero dozens have no unit price and are left out of the price charts.</p>{{end}}

<!-- ═══════ CHARTS ═══════ -->
<h2>Charts</h2>
{{range .Charts}}
<div class="chart-container">{{.SVG}}</div>
{{end}}

<!-- ═══════ DATA ═══════ -->
{{if .Records}}
<h2>Distributions</h2>
<table>
  <thead><tr><th>Date</th><th class="num">Dozens</th><th class="num">Total Price</th><th class="num">Per Dozen</th><th class="num">Per Donut</th><th class="num">Cumulative</th></tr></thead>
  <tbody>
  {{range .Records}}
  <tr>
    <td>{{.Date}}</td>
    <td class="num">{{.Dozens}}</td>
    <td class="num">{{.TotalPrice}}</td>
    <td class="num">{{.PricePerDozen}}</td>
    <td class="num">{{.PricePerDonut}}</td>
    <td class="num">{{.CumulativeTotal}}</td>
  </tr>
  {{end}}
  </tbody>
</table>
{{end}}

<div class="footer">
  <p>Generated by donutreport · {{.GeneratedAt}}</p>
</div>

</body>
</html>`
