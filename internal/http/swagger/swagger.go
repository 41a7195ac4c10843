package swagger

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	// DocsURL serves the Swagger UI.
	DocsURL = "/docs"

	// SpecURL serves the raw OpenAPI document.
	SpecURL = "/docs/openapi.yml"
)

var page = template.Must(template.New("swagger").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.29.3/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.29.3/swagger-ui-bundle.js" crossorigin></script>
<script>
  window.onload = () => {
    window.ui = SwaggerUIBundle({
      url: '{{.SpecURL}}',
      dom_id: '#swagger-ui',
      deepLinking: true,
      tryItOutEnabled: true,
    });
  };
</script>
</body>
</html>
`))

// Register serves specBytes and a Swagger UI rendering it.
func Register(r chi.Router, title string, specBytes []byte) {
	var html strings.Builder
	if err := page.Execute(&html, struct{ Title, SpecURL string }{title, SpecURL}); err != nil {
		panic(fmt.Errorf("render swagger page: %w", err))
	}
	htmlBytes := []byte(html.String())

	r.Get(DocsURL, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck
		w.Write(htmlBytes)
	})

	r.Get(SpecURL, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck
		w.Write(specBytes)
	})
}
