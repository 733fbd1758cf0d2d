package forms

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/Its-donkey/circuit-console/internal/ui/model"
)

// ErrorNotice builds a single-item danger notice.
func ErrorNotice(message string) model.Notice {
	return model.Notice{Kind: model.NoticeDanger, Items: []string{message}}
}

// SuccessNotice builds a single-item success notice.
func SuccessNotice(message string) model.Notice {
	return model.Notice{Kind: model.NoticeSuccess, Items: []string{message}}
}

// JobNotice builds the info notice shown after a job was accepted.
func JobNotice(jobID string) model.Notice {
	return model.Notice{
		Kind:  model.NoticeInfo,
		Items: []string{JobSubmittedMessage(jobID)},
		Link: &model.NoticeLink{
			Label:  "IBM Quantum Dashboard",
			Href:   DashboardURL,
			Suffix: "for status.",
		},
	}
}

// RenderNotice renders a dismissible alert.
func RenderNotice(n model.Notice) string {
	if len(n.Items) == 0 {
		return ""
	}
	kind := n.Kind
	if kind == "" {
		kind = model.NoticeDanger
	}
	var builder strings.Builder
	builder.WriteString(`<div class="alert alert-` + string(kind) + ` alert-dismissible fade show mb-4" role="alert">`)
	builder.WriteString(`<ul class="mb-0">`)
	for i, item := range n.Items {
		builder.WriteString("<li>")
		builder.WriteString(html.EscapeString(item))
		if n.Link != nil && i == len(n.Items)-1 {
			if n.Link.Prefix != "" {
				builder.WriteString(" " + html.EscapeString(n.Link.Prefix))
			}
			builder.WriteString(` <a href="` + html.EscapeString(n.Link.Href) + `" target="_blank" rel="noopener noreferrer">`)
			builder.WriteString(html.EscapeString(n.Link.Label))
			builder.WriteString("</a>")
			if n.Link.Suffix != "" {
				builder.WriteString(" " + html.EscapeString(n.Link.Suffix))
			}
		}
		builder.WriteString("</li>")
	}
	builder.WriteString(`</ul>`)
	builder.WriteString(`<button type="button" class="btn-close" data-bs-dismiss="alert" aria-label="Close"></button>`)
	builder.WriteString(`</div>`)
	return builder.String()
}

// RenderConnectionStatus renders the connection badge.
func RenderConnectionStatus(connected bool) string {
	if connected {
		return `<span class="connection-status is-connected">Status: Connected</span>`
	}
	return `<span class="connection-status is-disconnected">Status: Not Connected</span>`
}

// TargetOptionLabel decorates a target label with its optional attributes.
func TargetOptionLabel(t model.Target) string {
	label := strings.TrimSpace(t.Label)
	if label == "" {
		label = t.ID
	}
	var extras []string
	if t.Qubits != nil {
		extras = append(extras, fmt.Sprintf("%d qubits", *t.Qubits))
	}
	if t.QueueDepth != nil {
		extras = append(extras, fmt.Sprintf("queue %d", *t.QueueDepth))
	}
	if len(extras) == 0 {
		return label
	}
	return label + " (" + strings.Join(extras, ", ") + ")"
}

// RenderTargetOptions renders the option list for the target select.
func RenderTargetOptions(targets []model.Target) string {
	var builder strings.Builder
	for _, t := range targets {
		builder.WriteString(`<option value="` + html.EscapeString(t.ID) + `">`)
		builder.WriteString(html.EscapeString(TargetOptionLabel(t)))
		builder.WriteString(`</option>`)
	}
	return builder.String()
}

// BuildResultView maps returned artifacts to tabs. The diagram tab is always
// present; the histogram tab needs both an image and counts.
func BuildResultView(a model.ResultArtifact) model.ResultView {
	view := model.ResultView{
		Tabs: []model.ResultTab{{
			ID:       "circuit",
			Title:    "Circuit",
			Heading:  "Circuit Diagram",
			Image:    a.DiagramImage,
			ImageAlt: "Circuit Diagram",
			Active:   true,
		}},
	}
	if strings.TrimSpace(a.HistogramImage) == "" || len(a.Counts) == 0 {
		return view
	}
	counts, err := json.MarshalIndent(a.Counts, "", "  ")
	if err != nil {
		return view
	}
	view.Tabs = append(view.Tabs, model.ResultTab{
		ID:            "histogram",
		Title:         "Local Simulation",
		Heading:       "Ideal Simulation Histogram",
		Image:         a.HistogramImage,
		ImageAlt:      "Histogram",
		CountsHeading: "Simulation Counts",
		CountsJSON:    string(counts),
	})
	return view
}

// RenderResultTabs renders tab headers and panes for the results area.
func RenderResultTabs(view model.ResultView) (tabs string, panes string) {
	var head, body strings.Builder
	for _, tab := range view.Tabs {
		id := html.EscapeString(tab.ID)
		active := ""
		selected := "false"
		paneClass := "tab-pane fade"
		if tab.Active {
			active = " active"
			selected = "true"
			paneClass += " show active"
		}
		head.WriteString(`<li class="nav-item" role="presentation">`)
		head.WriteString(`<button class="nav-link` + active + `" id="` + id + `-tab" data-bs-toggle="tab" data-bs-target="#` + id + `" type="button" role="tab" aria-controls="` + id + `" aria-selected="` + selected + `">`)
		head.WriteString(html.EscapeString(tab.Title))
		head.WriteString(`</button></li>`)

		body.WriteString(`<div class="` + paneClass + `" id="` + id + `" role="tabpanel" aria-labelledby="` + id + `-tab">`)
		body.WriteString(`<h3 class="mb-3">` + html.EscapeString(tab.Heading) + `</h3>`)
		if tab.Image != "" {
			body.WriteString(`<div class="d-flex justify-content-center">`)
			body.WriteString(`<img src="data:image/png;base64,` + html.EscapeString(tab.Image) + `" alt="` + html.EscapeString(tab.ImageAlt) + `" class="img-fluid rounded shadow-sm">`)
			body.WriteString(`</div>`)
		}
		if tab.CountsJSON != "" {
			body.WriteString(`<h3 class="mb-3">` + html.EscapeString(tab.CountsHeading) + `</h3>`)
			body.WriteString(`<pre class="text-sm p-3 rounded">` + html.EscapeString(tab.CountsJSON) + `</pre>`)
		}
		body.WriteString(`</div>`)
	}
	return head.String(), body.String()
}
