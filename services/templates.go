package services

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/jaytaylor/html2text"

	"github.com/rpupo63/melba-site-backend/models"
)

const siteName = "Melba Community Center"

// Notification describes one accepted submission.
type Notification struct {
	Kind  string // route key, used in logs
	Label string // "Volunteer Application"
	Name  string
	Email string
	// Fields are the submitted values in display order.
	Fields []models.Field
	// Acknowledge sends the submitter a copy.
	Acknowledge bool
	Submitted   time.Time
}

var funcs = template.FuncMap{
	"lines": func(s string) []string { return strings.Split(s, "\n") },
	"lower": strings.ToLower,
	"date":  func(t time.Time) string { return t.Format("January 2, 2006 at 3:04 PM MST") },
}

const layout = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6;">
<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
<div style="background-color: #2E86AB; color: white; padding: 20px; text-align: center;">
<h2>{{template "heading" .}}</h2>
</div>
<div style="padding: 20px; background-color: #f9f9f9;">
{{template "intro" .}}
<table cellpadding="4">
{{range .Fields}}<tr><td valign="top"><strong>{{.Label}}:</strong></td><td>{{range $i, $l := lines .Value}}{{if $i}}<br>{{end}}{{$l}}{{end}}</td></tr>
{{end}}</table>
</div>
<div style="padding: 10px; text-align: center; font-size: 12px; color: #777;">
<p>{{template "footer" .}}</p>
</div>
</div>
</body>
</html>`

var (
	adminTmpl = template.Must(template.Must(template.New("admin").Funcs(funcs).Parse(layout)).Parse(`
{{define "heading"}}New {{.Label}}{{end}}
{{define "intro"}}<p>{{.Name}} submitted the form on {{date .Submitted}}.</p>{{end}}
{{define "footer"}}This email was sent from the ` + siteName + ` website.{{end}}`))

	ackTmpl = template.Must(template.Must(template.New("ack").Funcs(funcs).Parse(layout)).Parse(`
{{define "heading"}}Thank you, {{.Name}}!{{end}}
{{define "intro"}}<p>We received your {{lower .Label}} and will be in touch soon. Here is a copy of what you sent:</p>{{end}}
{{define "footer"}}` + siteName + `{{end}}`))
)

func render(tmpl *template.Template, n Notification) (html, text string, err error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, n); err != nil {
		return "", "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	html = buf.String()
	text, err = html2text.FromString(html, html2text.Options{OmitLinks: true})
	if err != nil {
		return "", "", fmt.Errorf("text alternative: %w", err)
	}
	return html, text, nil
}

// adminEnvelope goes to the site inbox with reply-to set to the submitter.
func adminEnvelope(n Notification, to string) (Envelope, error) {
	html, text, err := render(adminTmpl, n)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		To:      to,
		Subject: fmt.Sprintf("New %s: %s", n.Label, n.Name),
		HTML:    html,
		Text:    text,
		ReplyTo: n.Email,
	}, nil
}

func ackEnvelope(n Notification, replyTo string) (Envelope, error) {
	html, text, err := render(ackTmpl, n)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		To:      n.Email,
		Subject: fmt.Sprintf("We received your %s", strings.ToLower(n.Label)),
		HTML:    html,
		Text:    text,
		ReplyTo: replyTo,
	}, nil
}
