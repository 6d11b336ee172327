package renderer

const documentTemplate = `<!DOCTYPE html><html>{{template "head"}}<body>` +
	`<div class="header">{{.Title}}</div>` +
	`<table class="runInfo"><tr><td>Elapsed time</td><td>{{.Elapsed}}</td></tr></table>` +
	`{{template "summary" .Summary}}` +
	`{{range .Features}}{{template "feature" .}}{{end}}` +
	`</body></html>` +
	headTemplate + summaryTemplate + featureTemplate + cellTemplate + stackTemplate

const headTemplate = `{{define "head"}}<head><meta http-equiv="Content-Type" content="text/html" />` +
	`<style type="text/css">` + stylesheet + `</style>` +
	`<script type="text/javascript">` + toggleScript + `</script>` +
	`</head>{{end}}`

const summaryTemplate = `{{define "summary"}}<table class="summary"><tr><th>Total</th>` +
	`{{if .HasPending}}<th>Executed</th><th>Pending</th>{{end}}` +
	`<th>Pass</th><th>Fail</th><th>Pass%</th></tr>` +
	`<tr><td>{{.Total}}</td>` +
	`{{if .HasPending}}<td>{{.Executed}}</td><td>{{.Skipped}}</td>{{end}}` +
	`<td>{{.Passed}}</td><td>{{.Failed}}</td><td>{{.PassPercentage}}</td></tr></table>{{end}}`

const featureTemplate = `{{define "feature"}}<table class="testlist">` +
	`<tr><th>Test#</th><th>{{.Name}}</th>{{range .Browsers}}<th>{{.}}</th>{{end}}</tr>` +
	`{{range .Rows}}<tr><td>{{.Index}}</td><td class="testname">{{.Label}}</td>` +
	`{{range .Cells}}{{template "cell" .}}{{end}}</tr>` +
	`{{range .Details}}{{template "stack" .}}{{end}}{{end}}` +
	`</table>{{end}}`

const cellTemplate = `{{define "cell"}}` +
	`{{if eq .Kind "pass"}}<td class="pass"><a href="{{.Screenshot}}">PASS</a></td>` +
	`{{else if eq .Kind "fail"}}<td class="fail">FAIL <a href="{{.Screenshot}}">screen shot</a>` +
	`{{if .HasTrace}} <a href="#" onclick="showhide('{{.ID}}')">stack trace</a>{{end}}</td>` +
	`{{else if eq .Kind "skip"}}<td class="skip">Skipped (test duration {{.Duration}}ms)</td>` +
	`{{else}}<td></td>{{end}}{{end}}`

const stackTemplate = `{{define "stack"}}<tr class="stack" style="display:none" id="{{.ID}}">` +
	`<td colspan="{{.Colspan}}" style="background-color: #FFBBBB"><table class="stacker">` +
	`<tr><td class="error">{{.Primary}}</td></tr>` +
	`{{range .Lines}}<tr><td>{{.}}</td></tr>{{end}}` +
	`</table></td></tr>{{end}}`

const toggleScript = `function showhide(id) {` +
	`var e = document.getElementById(id);` +
	`if (!e) return;` +
	`e.style.display = (e.style.display == "none") ? "table-row" : "none";` +
	`}`

const stylesheet = `body{font-family: verdana, arial, sans-serif;}` +
	`table {border-collapse: collapse;display: table;}` +
	`.header {font-size: 21px;margin-top: 21px;text-decoration: underline;margin-bottom:21px;}` +
	`table.runInfo tr {border-bottom-width: 1px;border-bottom-style: solid;border-bottom-color: #d0d0d0;font-size: 10px;color: #999999;}` +
	`table.runInfo td:first-child {padding-right: 25px;}` +
	`table.summary {font-size: 9px;color: #333333;border-width: 1px;border-color: #999999;margin-top: 21px;}` +
	`table.summary tr {background-color: #EFEFEF}` +
	`table.summary th {background-color: #DEDEDE;border-width: 1px;padding: 6px;border-style: solid;border-color: #B3B3B3;}` +
	`table.summary td {border-width: 1px;padding: 6px;border-style: solid;border-color: #CFCFCF;text-align: center}` +
	`table.testlist {font-size: 10px;color: #666666;border-width: 1px;border-color: #999999;margin-top: 21px;width: 100%;}` +
	`table.testlist th {background-color: #CDCDCD;border-width: 1px;padding: 6px;border-style: solid;border-color: #B3B3B3;}` +
	`table.testlist tr {background-color: #EFEFEF}` +
	`table.testlist td {border-width: 1px;padding: 6px;border-style: solid;border-color: #CFCFCF;text-align: center}` +
	`table.testlist td.pass {background-color: #BBFFBB;}` +
	`table.testlist td.clean a {text-decoration: none;}` +
	`table.testlist td.fail {background-color: #FFBBBB;}` +
	`table.testlist td.skip {color: #787878;}` +
	`table.testlist td.testname {text-align: left;}` +
	`table.testlist td.totals {background-color: #CDCDCD;border-color: #B3B3B3;color: #666666;padding: 2px;}` +
	`tr.stack {display : none}` +
	`table.stacker {font-size: 10px;width: 100%;border-style: solid;border-width: 1px;border-color: #CFCFCF;}` +
	`table.stacker td {text-align: left;padding: 3px;padding-left:43px;color: #666666;border-style: none;}` +
	`table.stacker td.error {text-align: left;color: #FF0000;padding: 3px;padding-left:13px;border-style: none;}` +
	`table.stacker tr:nth-child(odd) {background-color: #F8F8F8;}`
