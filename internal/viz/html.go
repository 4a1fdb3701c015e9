package viz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/matsen/ppigraph/internal/literature"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate *template.Template

func init() {
	compiledTemplate = template.Must(template.New("viz").Parse(htmlTemplate))
}

// PageOptions configures page generation.
type PageOptions struct {
	Title  string
	Layout string // "preset", "force", "circle", or "grid"
	Live   bool   // Drive the page from the HTTP API and websocket
}

// DefaultOptions returns default page options.
func DefaultOptions() PageOptions {
	return PageOptions{
		Title:  "Protein Interaction Knowledge Graph",
		Layout: "preset",
	}
}

// ValidLayouts lists the supported layout algorithm names.
var ValidLayouts = []string{"preset", "force", "circle", "grid"}

// ValidateLayout checks if the layout option is valid.
func ValidateLayout(layout string) error {
	switch layout {
	case "", "preset", "force", "circle", "grid":
		return nil
	default:
		return fmt.Errorf("invalid layout %q: must be preset, force, circle, or grid", layout)
	}
}

// templateData holds data for the HTML template.
type templateData struct {
	Title          string
	GraphJSON      template.JS
	LiteratureJSON template.JS
	Layout         string
	Live           bool
}

// GeneratePage generates the three-panel viewer page: literature on the
// left, the graph in the middle and the controls on the right.
func GeneratePage(graph *GraphData, opts PageOptions) (string, error) {
	if graph == nil {
		return "", fmt.Errorf("graph cannot be nil")
	}
	if err := ValidateLayout(opts.Layout); err != nil {
		return "", err
	}
	if opts.Title == "" {
		opts.Title = DefaultOptions().Title
	}

	graphJSON, err := graph.ToCytoscapeJSON()
	if err != nil {
		return "", err
	}

	litJSON, err := json.Marshal(literature.All())
	if err != nil {
		return "", fmt.Errorf("marshaling literature: %w", err)
	}

	data := templateData{
		Title:          opts.Title,
		GraphJSON:      template.JS(graphJSON),
		LiteratureJSON: template.JS(litJSON),
		Layout:         layoutToCytoscape(opts.Layout),
		Live:           opts.Live,
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// layoutToCytoscape converts user-friendly layout names to Cytoscape.js layout algorithm names.
func layoutToCytoscape(layout string) string {
	switch layout {
	case "circle":
		return "circle"
	case "grid":
		return "grid"
	case "force":
		return "cose"
	default:
		return "preset"
	}
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <script src="https://unpkg.com/cytoscape@3/dist/cytoscape.min.js"></script>
  <style>
    * { box-sizing: border-box; }
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0;
      background: #f5f7fb;
      color: #1f2937;
    }
    header { padding: 12px 20px; border-bottom: 1px solid #e5e7eb; background: white; }
    header h1 { margin: 0; font-size: 18px; }
    main {
      display: grid;
      grid-template-columns: 320px 1fr 300px;
      gap: 12px;
      padding: 12px;
      height: calc(100vh - 50px);
    }
    .panel { background: white; border: 1px solid #e5e7eb; border-radius: 8px; padding: 12px; overflow-y: auto; }
    .panel h2 { font-size: 15px; margin: 0 0 4px; }
    .panel .hint { font-size: 12px; color: #6b7280; margin: 0 0 12px; }
    #graph { position: relative; padding: 0; }
    #cy { width: 100%; height: 100%; }
    .paper { border: 1px solid #e5e7eb; border-radius: 6px; padding: 8px; margin-bottom: 8px; }
    .paper .title { font-weight: 600; font-size: 13px; }
    .paper .meta { font-size: 11px; color: #6b7280; margin: 4px 0; }
    .badge {
      display: inline-block; font-size: 11px; padding: 1px 6px; margin: 2px;
      border-radius: 10px; background: #eef2ff; color: #3730a3; cursor: pointer;
    }
    .badge.active { background: #3730a3; color: white; }
    .control { margin-bottom: 14px; }
    .control label { display: block; font-size: 12px; font-weight: 600; margin-bottom: 4px; }
    .control input[type=text] { width: 100%; padding: 6px; border: 1px solid #d1d5db; border-radius: 4px; }
    .control button { margin-top: 4px; padding: 5px 10px; border-radius: 4px; border: 1px solid #d1d5db; background: #f9fafb; cursor: pointer; }
    .control button:disabled { opacity: 0.5; cursor: default; }
    #ref-image { max-width: 100%; margin-top: 6px; display: none; }
    #stats td { font-size: 12px; padding: 1px 6px 1px 0; }
    #toasts { position: fixed; bottom: 16px; right: 16px; z-index: 1000; }
    .toast { background: #111827; color: white; padding: 8px 12px; border-radius: 6px; margin-top: 6px; font-size: 13px; }
    .toast.error { background: #b91c1c; }
    #label-editor { position: absolute; display: none; z-index: 10; font-size: 12px; padding: 2px 4px; width: 120px; }
  </style>
</head>
<body>
  <header><h1>{{.Title}}</h1></header>
  <main>
    <section class="panel" id="literature">
      <h2>Literature Evidence</h2>
      <p class="hint">Scientific publications supporting protein interactions</p>
      <div id="papers"></div>
    </section>
    <section class="panel" id="graph">
      <div id="cy"></div>
      <input id="label-editor" type="text">
    </section>
    <section class="panel" id="controls">
      <h2>Controls</h2>
      <p class="hint">Double-click a protein to rename it. Shift-click two nodes to connect them.</p>
      <div class="control live">
        <label for="search">Protein search</label>
        <input id="search" type="text" placeholder="e.g. Tau">
        <button id="search-btn">Search</button>
      </div>
      <div class="control live">
        <label for="protein-id">Protein ID</label>
        <input id="protein-id" type="text" placeholder="e.g. P10636">
        <button id="fetch-btn">Fetch</button>
      </div>
      <div class="control live">
        <label for="csv">Interactions CSV</label>
        <input id="csv" type="file" accept=".csv">
        <button id="csv-btn">Process CSV</button>
      </div>
      <div class="control live">
        <label for="image">Reference graph image</label>
        <input id="image" type="file" accept="image/*">
        <button id="image-remove">Remove image</button>
        <img id="ref-image" alt="Reference knowledge graph">
      </div>
      <div class="control">
        <label>Graph</label>
        <table id="stats"></table>
        <div id="task-status" class="hint"></div>
      </div>
    </section>
  </main>
  <div id="toasts"></div>
  <script>
    (function() {
      const initialElements = {{.GraphJSON}};
      const papers = {{.LiteratureJSON}};
      const layout = "{{.Layout}}";
      const live = {{.Live}};

      const cy = cytoscape({
        container: document.getElementById('cy'),
        elements: initialElements,
        style: [
          {
            selector: 'node',
            style: {
              'label': 'data(label)',
              'font-size': '10px',
              'color': '#333',
              'text-valign': 'bottom',
              'text-margin-y': '5px',
              'opacity': 'data(opacity)'
            }
          },
          // Proteins - blue circles sized by degree
          {
            selector: 'node[kind="protein"]',
            style: {
              'background-color': '#4A90D9',
              'width': 'mapData(degree, 0, 6, 30, 50)',
              'height': 'mapData(degree, 0, 6, 30, 50)'
            }
          },
          // Interactions - orange diamonds
          {
            selector: 'node[kind="ppi"]',
            style: {
              'background-color': '#E8923A',
              'shape': 'diamond',
              'width': '26px',
              'height': '26px'
            }
          },
          // Papers - gray rectangles
          {
            selector: 'node[kind="paper"]',
            style: {
              'background-color': '#7F8C8D',
              'shape': 'rectangle',
              'width': '22px',
              'height': '22px'
            }
          },
          {
            selector: 'edge',
            style: {
              'line-color': 'data(color)',
              'target-arrow-color': 'data(color)',
              'target-arrow-shape': 'triangle',
              'curve-style': 'bezier',
              'width': 2
            }
          },
          {
            selector: 'edge.predicted',
            style: { 'line-style': 'dashed' }
          },
          {
            selector: 'node.highlighted',
            style: { 'border-width': 3, 'border-color': '#ff6b6b' }
          },
          {
            selector: 'node.editing',
            style: { 'border-width': 2, 'border-color': '#10b981', 'border-style': 'dashed' }
          },
          {
            selector: 'node.source',
            style: { 'border-width': 3, 'border-color': '#8b5cf6' }
          }
        ],
        layout: {
          name: layout,
          animate: false,
          nodeRepulsion: 8000,
          idealEdgeLength: 100,
          edgeElasticity: 100
        }
      });

      function escapeHtml(str) {
        if (!str) return '';
        return String(str).replace(/&/g, '&amp;')
                          .replace(/</g, '&lt;')
                          .replace(/>/g, '&gt;')
                          .replace(/"/g, '&quot;');
      }

      function toast(message, level) {
        const el = document.createElement('div');
        el.className = 'toast' + (level === 'error' ? ' error' : '');
        el.textContent = message;
        document.getElementById('toasts').appendChild(el);
        setTimeout(function() { el.remove(); }, 4000);
      }

      function renderPapers(selectedLabel) {
        const box = document.getElementById('papers');
        box.innerHTML = papers.map(function(p) {
          const badges = p.relevant_proteins.map(function(name) {
            const active = selectedLabel && name.toLowerCase() === selectedLabel.toLowerCase();
            return '<span class="badge' + (active ? ' active' : '') + '" data-protein="' + escapeHtml(name) + '">' + escapeHtml(name) + '</span>';
          }).join('');
          return '<div class="paper">' +
            '<div class="title">' + escapeHtml(p.title) + '</div>' +
            '<div class="meta">' + escapeHtml(p.authors) + ' · ' + escapeHtml(p.journal) + ' ' + p.year +
            ' · ' + p.citations + ' citations · ' + escapeHtml(p.type) + '</div>' +
            '<div>' + badges + '</div>' +
            '<div class="meta"><a href="#" data-pmid="' + escapeHtml(p.pmid) + '">PMID: ' + escapeHtml(p.pmid) + '</a></div>' +
            '</div>';
        }).join('');
      }

      function renderStats(snap) {
        const s = snap.stats;
        document.getElementById('stats').innerHTML =
          '<tr><td>Nodes</td><td>' + s.nodes + '</td></tr>' +
          '<tr><td>Edges</td><td>' + s.edges + '</td></tr>' +
          '<tr><td>Proteins</td><td>' + s.proteins + '</td></tr>' +
          '<tr><td>Interactions</td><td>' + s.interactions + '</td></tr>' +
          '<tr><td>Papers</td><td>' + s.papers + '</td></tr>';
        const busy = !!snap.task;
        document.getElementById('task-status').textContent = busy ? 'Processing ' + snap.task.source + '…' : '';
        ['search-btn', 'fetch-btn', 'csv-btn'].forEach(function(id) {
          document.getElementById(id).disabled = busy;
        });
        document.getElementById('csv-btn').disabled = busy || !snap.csv;
        const img = document.getElementById('ref-image');
        if (snap.image_url) {
          img.src = snap.image_url;
          img.style.display = 'block';
        } else {
          img.removeAttribute('src');
          img.style.display = 'none';
        }
      }

      function selectedLabel() {
        const sel = cy.nodes('.highlighted');
        return sel.length ? sel[0].data('label') : '';
      }

      renderPapers('');

      if (!live) {
        // Static page: highlight locally, dimming the other proteins.
        cy.on('tap', 'node[kind="protein"]', function(evt) {
          cy.nodes().removeClass('highlighted').data('opacity', 1);
          evt.target.addClass('highlighted');
          cy.nodes('[kind="protein"]').not(evt.target).data('opacity', 0.5);
          renderPapers(evt.target.data('label'));
        });
        cy.on('tap', function(evt) {
          if (evt.target === cy) {
            cy.nodes().removeClass('highlighted').data('opacity', 1);
            renderPapers('');
          }
        });
        document.querySelectorAll('.live').forEach(function(el) { el.style.display = 'none'; });
        return;
      }

      function api(method, path, body) {
        const init = { method: method, headers: {} };
        if (body instanceof FormData) {
          init.body = body;
        } else if (body !== undefined) {
          init.headers['Content-Type'] = 'application/json';
          init.body = JSON.stringify(body);
        }
        return fetch(path, init).then(function(resp) {
          return resp.json().then(function(data) {
            if (!resp.ok) throw data;
            return data;
          });
        });
      }

      function intent(body) {
        return api('POST', '/api/intents', body).catch(function() {});
      }

      function refresh() {
        return Promise.all([
          api('GET', '/api/graph/elements'),
          api('GET', '/api/graph')
        ]).then(function(res) {
          const elements = res[0];
          const snap = res[1];
          cy.batch(function() {
            cy.elements().remove();
            cy.add(elements);
          });
          renderPapers(selectedLabel());
          renderStats(snap);
          placeEditor(snap);
        });
      }

      // Inline label editing
      const editorInput = document.getElementById('label-editor');
      let editingId = null;

      function placeEditor(snap) {
        const node = snap.nodes.find(function(n) { return n.editing; });
        if (!node) {
          editingId = null;
          editorInput.style.display = 'none';
          return;
        }
        const pos = cy.getElementById(node.id).renderedPosition();
        if (editingId !== node.id) {
          editorInput.value = node.draft || '';
        }
        editingId = node.id;
        editorInput.style.left = (pos.x - 60) + 'px';
        editorInput.style.top = (pos.y + 18) + 'px';
        editorInput.style.display = 'block';
        editorInput.focus();
      }

      editorInput.addEventListener('keydown', function(evt) {
        if (!editingId) return;
        const id = editingId;
        if (evt.key === 'Enter' || evt.key === 'Escape') {
          evt.preventDefault();
          const key = evt.key;
          const label = editorInput.value;
          editingId = null;
          editorInput.style.display = 'none';
          intent({ type: 'set_draft', node_id: id, label: label }).then(function() {
            return intent({ type: 'key', node_id: id, key: key });
          });
        }
      });

      // Leaving the field keeps the draft; only Enter commits.
      editorInput.addEventListener('blur', function() {
        if (!editingId) return;
        intent({ type: 'set_draft', node_id: editingId, label: editorInput.value });
      });

      // Graph gestures
      let connectSource = null;

      cy.on('tap', 'node', function(evt) {
        const node = evt.target;
        if (evt.originalEvent && evt.originalEvent.shiftKey) {
          if (!connectSource) {
            connectSource = node.id();
            node.addClass('source');
            return;
          }
          const source = connectSource;
          connectSource = null;
          intent({ type: 'connect', source: source, target: node.id() });
          return;
        }
        if (node.data('kind') === 'protein') {
          intent({ type: 'select', node_id: node.id() });
        }
      });

      cy.on('dbltap', 'node[kind="protein"]', function(evt) {
        intent({ type: 'begin_edit', node_id: evt.target.id() });
      });

      cy.on('dragfree', 'node', function(evt) {
        const p = evt.target.position();
        intent({ type: 'move', node_id: evt.target.id(), x: p.x, y: p.y });
      });

      cy.on('tap', function(evt) {
        if (evt.target === cy) {
          connectSource = null;
          cy.nodes().removeClass('source');
          intent({ type: 'clear_selection' });
        }
      });

      // Literature panel
      document.getElementById('papers').addEventListener('click', function(evt) {
        const protein = evt.target.getAttribute('data-protein');
        if (protein) {
          intent({ type: 'select_label', label: protein });
          return;
        }
        const pmid = evt.target.getAttribute('data-pmid');
        if (pmid) {
          evt.preventDefault();
          api('GET', '/api/literature/' + encodeURIComponent(pmid) + '/open').then(function(res) {
            window.open(res.url, '_blank');
          }).catch(function() {});
        }
      });

      // Controls
      document.getElementById('search-btn').addEventListener('click', function() {
        api('POST', '/api/tasks', { source: 'search', query: document.getElementById('search').value }).catch(function() {});
      });
      document.getElementById('fetch-btn').addEventListener('click', function() {
        api('POST', '/api/tasks', { source: 'id', protein_id: document.getElementById('protein-id').value }).catch(function() {});
      });
      document.getElementById('csv').addEventListener('change', function(evt) {
        const file = evt.target.files[0];
        if (!file) return;
        const form = new FormData();
        form.append('file', file);
        api('POST', '/api/uploads/csv', form).catch(function() {});
      });
      document.getElementById('csv-btn').addEventListener('click', function() {
        api('POST', '/api/tasks', { source: 'csv' }).catch(function() {});
      });
      document.getElementById('image').addEventListener('change', function(evt) {
        const file = evt.target.files[0];
        if (!file) return;
        const form = new FormData();
        form.append('file', file);
        api('POST', '/api/uploads/image', form).catch(function() {});
      });
      document.getElementById('image-remove').addEventListener('click', function() {
        api('DELETE', '/api/uploads/image').catch(function() {});
      });

      // Server push
      function connect() {
        const scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
        const ws = new WebSocket(scheme + location.host + '/ws');
        ws.onmessage = function(evt) {
          const msg = JSON.parse(evt.data);
          if (msg.type === 'snapshot') {
            refresh();
          } else if (msg.type === 'notification') {
            toast(msg.notification.message, msg.notification.level);
          }
        };
        ws.onclose = function() { setTimeout(connect, 2000); };
      }

      refresh();
      connect();
    })();
  </script>
</body>
</html>`
