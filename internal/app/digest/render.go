// internal/app/digest/render.go
package digest

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/dalemusser/boatfinder/internal/app/system/mailer"
)

// Render turns one operator's digest into an email with text and HTML
// bodies. baseURL points at the calendar for the footer links.
func Render(d OperatorDigest, baseURL string) mailer.Email {
	return mailer.Email{
		To:       d.Operator.Email,
		Subject:  subject(d),
		TextBody: renderText(d, baseURL),
		HTMLBody: renderHTML(d, baseURL),
	}
}

func subject(d OperatorDigest) string {
	return fmt.Sprintf("Boat Finder: %d %s with %d+ divers",
		len(d.All), plural(len(d.All), "date", "dates"), d.Operator.Threshold)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// prettyDate formats YYYY-MM-DD for reading ("Sun, 15 Feb").
func prettyDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Mon, 2 Jan")
}

func diverLine(divers []Diver) string {
	parts := make([]string, 0, len(divers))
	for _, dv := range divers {
		parts = append(parts, fmt.Sprintf("%s (%dm)", dv.Name, dv.MaxDepth))
	}
	return strings.Join(parts, ", ")
}

func renderText(d OperatorDigest, baseURL string) string {
	var b strings.Builder
	greeting := d.Operator.FirstName
	if greeting == "" {
		greeting = "there"
	}
	fmt.Fprintf(&b, "Hi %s,\n\n", greeting)

	if len(d.NewToday) > 0 {
		fmt.Fprintf(&b, "New today (%d %s just reached your threshold of %d divers):\n",
			len(d.NewToday), plural(len(d.NewToday), "date", "dates"), d.Operator.Threshold)
		for _, s := range d.NewToday {
			fmt.Fprintf(&b, "  %s - %d divers: %s\n", prettyDate(s.Date), s.Count, diverLine(s.Divers))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "All upcoming dates with %d+ divers (next 3 weeks):\n", d.Operator.Threshold)
	for _, s := range d.All {
		fmt.Fprintf(&b, "  %s - %d divers: %s\n", prettyDate(s.Date), s.Count, diverLine(s.Divers))
	}

	fmt.Fprintf(&b, "\nView the full calendar: %s\n\n", baseURL)
	fmt.Fprintf(&b, "You're receiving this because you're a boat operator and your notification threshold is %d %s. Update your preferences at %s/profile\n",
		d.Operator.Threshold, plural(d.Operator.Threshold, "diver", "divers"), baseURL)
	return b.String()
}

// htmlData is the template payload; dates are pre-formatted so the
// template stays dumb.
type htmlData struct {
	Greeting  string
	Threshold int
	NewToday  []htmlDate
	All       []htmlDate
	BaseURL   string
}

type htmlDate struct {
	Date   string
	Count  int
	Divers string
}

func renderHTML(d OperatorDigest, baseURL string) string {
	greeting := d.Operator.FirstName
	if greeting == "" {
		greeting = "there"
	}
	data := htmlData{
		Greeting:  greeting,
		Threshold: d.Operator.Threshold,
		BaseURL:   baseURL,
	}
	for _, s := range d.NewToday {
		data.NewToday = append(data.NewToday, htmlDate{prettyDate(s.Date), s.Count, diverLine(s.Divers)})
	}
	for _, s := range d.All {
		data.All = append(data.All, htmlDate{prettyDate(s.Date), s.Count, diverLine(s.Divers)})
	}

	var buf bytes.Buffer
	_ = digestTmpl.Execute(&buf, data)
	return buf.String()
}

var digestTmpl = template.Must(template.New("digest").Parse(digestHTMLTemplate))

const digestHTMLTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; color: #1f2937;">
  <h2>Boat Finder Daily Digest</h2>
  <p>Hi {{.Greeting}},</p>

  {{if .NewToday}}
  <h3>New Today ({{len .NewToday}})</h3>
  <p>These dates just reached your threshold of {{.Threshold}} divers:</p>
  {{range .NewToday}}
  <div style="margin: 15px 0; padding: 10px; background: #f0f8ff; border-left: 4px solid #0066cc;">
    <strong>{{.Date}}</strong> - {{.Count}} divers<br/>
    <span style="font-size: 14px; color: #666;">{{.Divers}}</span>
  </div>
  {{end}}
  {{end}}

  <h3>All Upcoming Dates (Next 3 Weeks)</h3>
  <p>{{len .All}} dates have {{.Threshold}}+ divers:</p>
  {{range .All}}
  <div style="margin: 10px 0; padding: 8px; background: #f9f9f9; border-left: 3px solid #999;">
    <strong>{{.Date}}</strong> - {{.Count}} divers<br/>
    <span style="font-size: 14px; color: #666;">{{.Divers}}</span>
  </div>
  {{end}}

  <p style="margin-top: 20px;">
    <a href="{{.BaseURL}}" style="display: inline-block; padding: 10px 20px; background: #0066cc; color: white; text-decoration: none; border-radius: 4px;">View Full Calendar</a>
  </p>
  <hr style="margin: 30px 0; border: none; border-top: 1px solid #ddd;" />
  <p style="font-size: 12px; color: #666;">
    You're receiving this because you're a boat operator and your notification threshold is {{.Threshold}} divers.<br/>
    Update your preferences at <a href="{{.BaseURL}}/profile">{{.BaseURL}}/profile</a>
  </p>
</body>
</html>`
