package http

import (
	"html/template"
	"net/http"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// displayLabel turns a stored class name like "slow_down" into "Slow Down".
func displayLabel(label string) string {
	return titleCaser.String(strings.ReplaceAll(label, "_", " "))
}

// adviceFor maps the recommendation classes to the dashboard hint text.
// Unknown classes get no advice.
func adviceFor(label string) string {
	switch label {
	case "continue":
		return "You're doing fine. Keep going!"
	case "slow_down":
		return "Consider reducing your pace."
	case "take_break":
		return "You need a break. Step away and recharge!"
	default:
		return ""
	}
}

func RegisterDashboardRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", handleDashboard)
}

type formField struct {
	Name       string
	Label      string
	Categories []string
}

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	if predictorService == nil {
		http.Error(w, "service not initialized", http.StatusServiceUnavailable)
		return
	}

	schema := predictorService.Schema()
	fields := make([]formField, 0, len(schema.Features))
	for _, name := range schema.Features {
		field := formField{
			Name:  name,
			Label: displayLabel(name),
		}
		if schema.IsCategorical(name) {
			field.Categories = schema.Categories(name)
		}
		fields = append(fields, field)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTemplate.Execute(w, map[string]interface{}{
		"Fields": fields,
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

var dashboardTemplate = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"display": displayLabel,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Decision Fatigue Predictor</title>
<style>
body { font-family: sans-serif; max-width: 720px; margin: 2em auto; }
form { display: grid; grid-template-columns: 1fr 1fr; gap: 0.6em 1.5em; }
label { display: flex; flex-direction: column; font-size: 0.9em; }
input, select { padding: 0.3em; margin-top: 0.2em; }
button { grid-column: span 2; padding: 0.6em; }
#result { margin-top: 1.5em; padding: 1em; border: 1px solid #ccc; display: none; }
#feed { margin-top: 1.5em; font-size: 0.85em; color: #555; }
</style>
</head>
<body>
<h1>Decision Fatigue Predictor</h1>
<p>Enter your current state to get a recommendation.</p>
<form id="predict-form">
{{range .Fields}}
  <label>{{.Label}}
  {{if .Categories}}
    <select name="{{.Name}}">
    {{range .Categories}}<option value="{{.}}">{{display .}}</option>{{end}}
    </select>
  {{else}}
    <input type="number" step="any" name="{{.Name}}" value="0">
  {{end}}
  </label>
{{end}}
  <button type="submit">Predict</button>
</form>
<div id="result"></div>
<div id="feed"></div>
<script>
const form = document.getElementById('predict-form');
const result = document.getElementById('result');
form.addEventListener('submit', async (e) => {
  e.preventDefault();
  const row = {};
  for (const el of form.elements) {
    if (!el.name) continue;
    row[el.name] = el.tagName === 'SELECT' ? el.value : parseFloat(el.value);
  }
  const resp = await fetch('/api/predict', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify(row),
  });
  const data = await resp.json();
  result.style.display = 'block';
  if (!resp.ok) {
    result.textContent = 'Error: ' + data.error;
    return;
  }
  result.innerHTML = '<strong>' + data.display_label + '</strong>' +
    ' (confidence ' + (data.confidence * 100).toFixed(0) + '%)' +
    (data.advice ? '<br>' + data.advice : '');
});

const feed = document.getElementById('feed');
try {
  const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/api/ws/dashboard');
  ws.onmessage = (ev) => {
    const msg = JSON.parse(ev.data);
    if (msg.type !== 'prediction') return;
    const line = document.createElement('div');
    line.textContent = msg.timestamp + ': ' + msg.data.label;
    feed.prepend(line);
    while (feed.childElementCount > 10) feed.removeChild(feed.lastChild);
  };
} catch (e) { /* live feed is optional */ }
</script>
</body>
</html>
`))
