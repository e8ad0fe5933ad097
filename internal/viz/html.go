package viz

import (
	"bytes"
	"fmt"
	"html/template"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate = template.Must(template.New("viz").Parse(htmlTemplate))

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	Title  string // Page heading
	Layout string // "force", "circle", "grid" or "concentric"
}

// DefaultOptions returns default HTML generation options.
func DefaultOptions() HTMLOptions {
	return HTMLOptions{
		Title:  "Citation graph",
		Layout: "force",
	}
}

// ValidLayouts lists the supported layout algorithm names.
var ValidLayouts = []string{"force", "circle", "grid", "concentric"}

// GenerateHTML generates a self-contained HTML page for the graph.
func GenerateHTML(graph *GraphData, opts HTMLOptions) (string, error) {
	if graph == nil {
		return "", fmt.Errorf("graph cannot be nil")
	}

	layout, err := layoutToCytoscape(opts.Layout)
	if err != nil {
		return "", err
	}

	data := templateData{
		Title:     opts.Title,
		Layout:    layout,
		Empty:     graph.IsEmpty(),
		Elements:  graph.Elements(),
		NodeCount: len(graph.Nodes),
		EdgeCount: len(graph.Edges),
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering graph page: %w", err)
	}
	return buf.String(), nil
}

// templateData holds data for the HTML template.
type templateData struct {
	Title     string
	Layout    string
	Empty     bool
	Elements  CytoscapeElements // Encoded by html/template in the script context
	NodeCount int
	EdgeCount int
}

// layoutToCytoscape converts user-facing layout names to Cytoscape.js layout names.
func layoutToCytoscape(layout string) (string, error) {
	switch layout {
	case "", "force":
		return "cose", nil
	case "circle", "grid", "concentric":
		return layout, nil
	default:
		return "", fmt.Errorf("invalid layout %q: must be one of %v", layout, ValidLayouts)
	}
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <script src="https://unpkg.com/cytoscape@3/dist/cytoscape.min.js"></script>
  <style>
    body { font-family: -apple-system, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; margin: 0; }
    header { padding: 8px 16px; border-bottom: 1px solid #ddd; }
    #cy { position: absolute; top: 56px; bottom: 0; left: 0; right: 0; }
    #tooltip { position: absolute; display: none; background: #fff; border: 1px solid #ccc;
               padding: 6px 8px; max-width: 320px; font-size: 13px; pointer-events: none; }
    .empty { text-align: center; color: #666; margin-top: 20vh; }
  </style>
</head>
<body>
  <header><strong>{{.Title}}</strong> &middot; {{.NodeCount}} articles, {{.EdgeCount}} citations</header>
{{if .Empty}}
  <div class="empty">
    <h2>No citations</h2>
    <p>Import citation edges with <code>citeline import citations</code>.</p>
  </div>
{{else}}
  <div id="cy"></div>
  <div id="tooltip"></div>
  <script>
    (function() {
      const elements = {{.Elements}};
      const cy = cytoscape({
        container: document.getElementById('cy'),
        elements: elements,
        layout: { name: {{.Layout}} },
        style: [
          { selector: 'node', style: {
              'label': 'data(label)', 'font-size': 8,
              'width': 'mapData(citedByCount, 0, 50, 10, 60)',
              'height': 'mapData(citedByCount, 0, 50, 10, 60)',
              'background-color': '#4a90d9' } },
          { selector: 'node[type = "citing"]', style: { 'background-color': '#bbb' } },
          { selector: 'edge', style: {
              'width': 1, 'line-color': '#ccc', 'target-arrow-color': '#ccc',
              'target-arrow-shape': 'triangle', 'curve-style': 'bezier' } },
          { selector: '.dimmed', style: { 'opacity': 0.15 } }
        ]
      });

      const tooltip = document.getElementById('tooltip');
      cy.on('mouseover', 'node', function(evt) {
        const d = evt.target.data();
        tooltip.textContent = d.title ? d.id + ' (' + (d.year || 'n.d.') + '): ' + d.title : d.id;
        const p = evt.renderedPosition;
        tooltip.style.left = (p.x + 12) + 'px';
        tooltip.style.top = (p.y + 68) + 'px';
        tooltip.style.display = 'block';
      });
      cy.on('mouseout', 'node', function() { tooltip.style.display = 'none'; });

      cy.on('tap', 'node', function(evt) {
        const d = evt.target.data();
        if (d.link && evt.originalEvent.shiftKey) {
          window.open(d.link, '_blank');
          return;
        }
        const hood = evt.target.closedNeighborhood();
        cy.elements().removeClass('dimmed');
        cy.elements().not(hood).addClass('dimmed');
      });
      cy.on('tap', function(evt) {
        if (evt.target === cy) cy.elements().removeClass('dimmed');
      });
    })();
  </script>
{{end}}
</body>
</html>`
