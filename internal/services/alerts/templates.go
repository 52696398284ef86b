package alerts

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"github.com/jeevanmalviyayash/LogAnalyzer/internal/models"
)

const htmlBody = `<html>
<body style="font-family: Arial, sans-serif; color: #333;">
<h2 style="color: #c0392b;">Error Threshold Alert</h2>
<p>The following error types in <strong>{{.ApplicationName}}</strong> exceeded the threshold of {{.Threshold}} occurrences and are linked to open tickets.</p>
<table style="border-collapse: collapse; width: 100%;">
<tr style="background-color: #f2f2f2;">
<th style="border: 1px solid #ddd; padding: 8px; text-align: left;">Error Type</th>
<th style="border: 1px solid #ddd; padding: 8px; text-align: right;">Count</th>
</tr>
{{- range .Types}}
<tr>
<td style="border: 1px solid #ddd; padding: 8px;">{{.ErrorType}}</td>
<td style="border: 1px solid #ddd; padding: 8px; text-align: right;">{{.Count}}</td>
</tr>
{{- end}}
<tr>
<td style="border: 1px solid #ddd; padding: 8px;"><strong>Total</strong></td>
<td style="border: 1px solid #ddd; padding: 8px; text-align: right;"><strong>{{.Total}}</strong></td>
</tr>
</table>
<p style="font-size: 12px; color: #888;">Generated at {{.RanAt}}</p>
</body>
</html>
`

const textBody = `Error Threshold Alert - {{.ApplicationName}}

The following error types exceeded the threshold of {{.Threshold}} occurrences and are linked to open tickets:
{{range .Types}}
  {{.ErrorType}}: {{.Count}}
{{- end}}

Total: {{.Total}}
Generated at {{.RanAt}}
`

var (
	htmlTmpl = htmltemplate.Must(htmltemplate.New("alert_html").Parse(htmlBody))
	textTmpl = texttemplate.Must(texttemplate.New("alert_text").Parse(textBody))
)

type alertView struct {
	ApplicationName string
	Threshold       int64
	Types           []models.AlertTypeCount
	Total           int64
	RanAt           string
}

func newAlertView(appName string, threshold int64, types []models.AlertTypeCount, total int64, ranAt time.Time) alertView {
	return alertView{
		ApplicationName: appName,
		Threshold:       threshold,
		Types:           types,
		Total:           total,
		RanAt:           ranAt.Format("2006-01-02 15:04:05 MST"),
	}
}

// render produces the html and plain text bodies of the alert email
func render(view alertView) (string, string, error) {
	var html, text bytes.Buffer
	if err := htmlTmpl.Execute(&html, view); err != nil {
		return "", "", fmt.Errorf("failed to render html alert: %w", err)
	}
	if err := textTmpl.Execute(&text, view); err != nil {
		return "", "", fmt.Errorf("failed to render text alert: %w", err)
	}
	return html.String(), text.String(), nil
}
