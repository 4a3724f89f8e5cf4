package card

import (
	"bytes"
	"fmt"
	"html/template"
)

// ContentType is attached to uploads so gateways serve the artifact as a page.
const ContentType = "text/html; charset=utf-8"

// cardStyle is shared by the artifact and the web preview.
const cardStyle = "border: 1px solid black; width: 400px; height: 450px; border-radius: 15px; " +
	"background: linear-gradient(135deg, lightblue, lightcoral); " +
	"box-shadow: 5px 5px 15px rgba(0, 0, 0, 0.3); padding: 10px; margin: auto; margin-top: 20px;"

var artifactTmpl = template.Must(template.New("artifact").Parse(`<div style="` + cardStyle + `">
  <h1 style="text-align: center;">{{.Title}}</h1>
  <h3 style="text-align: center;">Owner: {{.Owner}}</h3>
  <div style="text-align: center; display: flex; flex-direction: column; justify-content: center;">
{{- range .Links}}
    <div><a href="{{.Href}}" target="_blank" rel="noopener noreferrer" style="margin-right: 10px;">{{.Text}}</a><br /></div>
{{- end}}
  </div>
  <div style="text-align: center;">
    <h2>Description</h2>
    <p>{{.Description}}</p>
  </div>
</div>
`))

// BuildArtifact renders m into the self-contained HTML fragment that gets
// uploaded. Output is byte-identical for equal metadata.
func BuildArtifact(m Metadata) (string, error) {
	var buf bytes.Buffer
	if err := artifactTmpl.Execute(&buf, m); err != nil {
		return "", fmt.Errorf("failed to render artifact: %w", err)
	}
	return buf.String(), nil
}

// Payload converts an artifact into the bytes submitted to storage.
func Payload(artifact string) []byte {
	return []byte(artifact)
}
