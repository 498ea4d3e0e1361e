package handler

import (
	"embed"
	"html/template"

	"github.com/Bristo123/smart-task-analyser/internal/middleware"
	"github.com/Bristo123/smart-task-analyser/internal/model"
	"github.com/Bristo123/smart-task-analyser/internal/service"
	"github.com/Bristo123/smart-task-analyser/internal/view"
)

//go:embed templates/*.html
var templatesFS embed.FS

// PageTemplate is the name of the main page template
const PageTemplate = "index.html"

// feedbackButton is the data of one feedback form on the page
type feedbackButton struct {
	CSRFField string
	CSRFToken string
	Version   uint64
	Control   view.Control
	Disabled  bool
	Label     string
}

var templateFuncs = template.FuncMap{
	"control": func(field, token string, version uint64, c view.Control, disabled bool, label string) feedbackButton {
		return feedbackButton{CSRFField: field, CSRFToken: token, Version: version, Control: c, Disabled: disabled, Label: label}
	},
}

// Templates parses the embedded page templates for gin's SetHTMLTemplate
func Templates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
}

// pageData is what the page template renders
type pageData struct {
	service.SessionView
	Strategies []string
	CSRFField  string
	CSRFToken  string
	GraphJSON  template.JS

	// PageVersion acompanha cada controle de feedback renderizado
	PageVersion uint64
}

func newPageData(v service.SessionView, csrfToken string) (pageData, error) {
	data := pageData{
		SessionView: v,
		Strategies:  model.Strategies,
		CSRFField:   middleware.CSRFFormField,
		CSRFToken:   csrfToken,
	}
	if v.Page != nil {
		data.PageVersion = v.Page.Version
		graph, err := v.Page.Graph.JSON()
		if err != nil {
			return data, err
		}
		// json.Marshal escapes <, > and &, so the graph is safe inside a script element
		data.GraphJSON = template.JS(graph)
	}
	return data, nil
}
