package handlers

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strings"
)

// ShareStore хранит расшаренные результаты. nil — standalone режим.
type ShareStore interface {
	CreateShare(result json.RawMessage) (string, error)
	GetShare(id string) (json.RawMessage, error)
}

type ShareHandler struct {
	store   ShareStore
	baseURL string
}

func NewShareHandler(store ShareStore, baseURL string) *ShareHandler {
	return &ShareHandler{store: store, baseURL: baseURL}
}

// Create — POST /api/share → {"id":"…","url":"…"}. Хранится сырой JSON
// результата, срок жизни ссылки 30 дней.
func (h *ShareHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "Sharing is unavailable in standalone mode")
		return
	}

	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	id, err := h.store.CreateShare(raw)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":  id,
		"url": h.baseURL + "/s/" + id,
	})
}

// GetResult — GET /api/share/{id} → сырой JSON результата.
func (h *ShareHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/share/")
	if id == "" || h.store == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	raw, err := h.store.GetShare(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "link expired or does not exist")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write(raw)
}

var shareTmpl = template.Must(template.New("share").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>TrueVail — shared result</title>
<style>
*{box-sizing:border-box;margin:0;padding:0}
body{background:#0a0e1a;color:#e2e8f0;font-family:'Segoe UI',system-ui,sans-serif;min-height:100vh;display:flex;align-items:center;justify-content:center;padding:20px}
.card{background:#111827;border:1px solid #1f2937;border-radius:16px;max-width:680px;width:100%;padding:32px;box-shadow:0 25px 50px rgba(0,0,0,.5)}
.status{font-size:40px;font-weight:800;line-height:1.2}
.status.real,.status.likely-authentic{color:#22c55e}
.status.uncertain{color:#eab308}
.status.fake,.status.likely-deepfake{color:#ef4444}
.confidence{font-size:18px;font-weight:600;margin:8px 0 24px;color:#94a3b8}
.reason{color:#cbd5e1;line-height:1.6;margin-bottom:24px}
.section{margin-bottom:20px}
.section h3{font-size:13px;text-transform:uppercase;letter-spacing:.1em;color:#64748b;margin-bottom:10px}
.section p{color:#94a3b8;font-size:14px;line-height:1.5}
.footer{margin-top:28px;padding-top:20px;border-top:1px solid #1f2937;display:flex;justify-content:space-between;flex-wrap:wrap;gap:8px}
.footer a{color:#3b82f6;text-decoration:none;font-size:14px}
.badge{font-size:12px;color:#475569}
</style>
</head>
<body>
<div class="card">
  <div class="badge">Verified by TrueVail</div>
  <div id="content" style="margin-top:16px;color:#475569">Loading...</div>
</div>
<script>
const id=location.pathname.split('/').pop();
fetch('/api/share/'+id)
  .then(r=>r.json())
  .then(d=>{
    const status=d.status||'Unknown';
    const slug=status.toLowerCase().replace(/ /g,'-').replace(/[^a-z0-9-]/g,'');
    const conf=d.confidence!==undefined?(parseFloat(d.confidence)*100).toFixed(1)+'%':'N/A';
    document.getElementById('content').innerHTML=
      '<div class="status '+slug+'">'+status+'</div>'+
      '<div class="confidence">Confidence: '+conf+'</div>'+
      '<div class="reason">'+(d.reason||'')+'</div>'+
      (d.privacy_risk?'<div class="section"><h3>Privacy Risk</h3><p>'+d.privacy_risk+(d.privacy_explanation?' — '+d.privacy_explanation:'')+'</p></div>':'')+
      (d.correction?'<div class="section"><h3>Correction</h3><p>'+d.correction+'</p></div>':'')+
      '<div class="footer"><a href="/">Run your own check →</a><span class="badge">Shared analysis result</span></div>';
  })
  .catch(()=>{document.getElementById('content').innerHTML='<div style="color:#ef4444">This link has expired or does not exist</div>';});
</script>
</body>
</html>`))

// ShowPage — GET /s/{id} → HTML страница с результатом.
func (h *ShareHandler) ShowPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	shareTmpl.Execute(w, nil)
}
