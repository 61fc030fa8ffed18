package api

import "github.com/prasetyowira/qrstudio/constant"

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>QR Studio</title>
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
    background: #0b1220;
    color: #e0e0e0;
    display: flex;
    justify-content: center;
    align-items: center;
    min-height: 100vh;
  }
  .card {
    background: #111a2e;
    border: 1px solid #24304a;
    border-radius: 16px;
    padding: 32px;
    display: grid;
    grid-template-columns: 1fr 1fr;
    gap: 32px;
    max-width: 860px;
    width: 100%;
  }
  label { display: block; font-size: 13px; color: #9aa4b8; margin: 12px 0 4px; }
  textarea, input, select {
    width: 100%; padding: 8px; border-radius: 8px;
    border: 1px solid #24304a; background: #0b1220; color: #e0e0e0;
  }
  textarea { min-height: 96px; resize: vertical; }
  .row { display: flex; gap: 12px; }
  .row > div { flex: 1; }
  .buttons { display: flex; gap: 8px; margin-top: 20px; }
  button {
    flex: 1; padding: 10px; border: 0; border-radius: 8px;
    background: #3b82f6; color: #fff; font-weight: 600; cursor: pointer;
  }
  button.secondary { background: #24304a; }
  button:disabled { opacity: .4; cursor: not-allowed; }
  #qrContainer {
    min-height: 280px;
    display: flex; align-items: center; justify-content: center;
    background: #fff; border-radius: 12px; color: #555; padding: 12px;
  }
  #qrContainer img { max-width: 100%; height: auto; border-radius: 8px; }
  #metaText { font-size: 13px; color: #9aa4b8; margin-top: 12px; word-break: break-all; }
</style>
</head>
<body>
<div class="card">
  <div>
    <label for="textInput">Text or URL</label>
    <textarea id="textInput" placeholder="https://example.com"></textarea>
    <div class="row">
      <div><label for="size">Size (px)</label><input id="size" type="number" min="100" max="1200"></div>
      <div><label for="ec">Error correction</label>
        <select id="ec">
          <option value="L">L (7%)</option>
          <option value="M">M (15%)</option>
          <option value="Q">Q (25%)</option>
          <option value="H">H (30%)</option>
        </select>
      </div>
    </div>
    <div class="row">
      <div><label for="fg">Foreground</label><input id="fg" type="color"></div>
      <div><label for="bg">Background</label><input id="bg" type="color"></div>
    </div>
    <div class="buttons">
      <button id="generateBtn">Generate</button>
      <button id="downloadBtn" disabled>Download</button>
      <button id="clearBtn" class="secondary">Clear</button>
    </div>
  </div>
  <div>
    <div id="qrContainer"><span id="placeholder"></span></div>
    <div id="metaText"></div>
  </div>
</div>
<script>
(function() {
  var fields = {
    text: document.getElementById('textInput'),
    size: document.getElementById('size'),
    foreground: document.getElementById('fg'),
    background: document.getElementById('bg'),
    level: document.getElementById('ec')
  };
  var container = document.getElementById('qrContainer');
  var meta = document.getElementById('metaText');
  var downloadBtn = document.getElementById('downloadBtn');
  var emptyTextMessage = '` + constant.ErrEmptyText + `';
  var revision = 0;
  var pending;

  function readForm() {
    var form = {};
    Object.keys(fields).forEach(function(k) { form[k] = fields[k].value; });
    form.revision = ++revision;
    return form;
  }

  function render(state, withForm) {
    if (state.revision > revision) revision = state.revision;
    if (withForm) {
      Object.keys(fields).forEach(function(k) { fields[k].value = state.form[k]; });
    }
    while (container.firstChild) container.removeChild(container.firstChild);
    if (state.preview === 'shown' && state.image) {
      var img = document.createElement('img');
      img.src = state.image.data_uri;
      img.alt = 'QR code';
      img.width = state.image.size;
      img.height = state.image.size;
      container.appendChild(img);
    } else {
      var span = document.createElement('span');
      span.textContent = state.message || '';
      container.appendChild(span);
    }
    meta.textContent = state.meta;
    downloadBtn.disabled = !state.download_enabled;
  }

  function call(method, url, body) {
    var opts = { method: method, headers: {} };
    if (body) {
      opts.headers['Content-Type'] = 'application/json';
      opts.body = JSON.stringify(body);
    }
    return fetch(url, opts).then(function(r) {
      return r.json().then(function(data) { return { ok: r.ok, status: r.status, data: data }; });
    });
  }

  function refresh(withForm) {
    return call('GET', '/api/state').then(function(res) { render(res.data, withForm); });
  }

  // requests run one at a time so the server sees edits in typing order;
  // the body is read when the request goes out
  function enqueue(method, url, body) {
    var next = pending.then(function() { return call(method, url, body && body()); });
    pending = next.catch(function() {});
    return next;
  }

  function sendForm() {
    enqueue('PUT', '/api/form', readForm);
  }

  function generate() {
    if (!fields.text.value.trim()) {
      alert(emptyTextMessage);
      fields.text.focus();
      return;
    }
    render({ preview: 'generating', message: 'Generating…', meta: meta.textContent, download_enabled: !downloadBtn.disabled });
    enqueue('POST', '/api/generate', readForm).then(function(res) {
      if (res.ok) { render(res.data, false); return; }
      if (res.status === 400) { alert(res.data.error); fields.text.focus(); }
      refresh(false);
    });
  }

  fields.text.addEventListener('input', sendForm);
  ['size', 'foreground', 'background', 'level'].forEach(function(k) {
    fields[k].addEventListener('change', sendForm);
  });
  fields.text.addEventListener('keydown', function(e) {
    if (e.key === 'Enter' && !e.shiftKey) { e.preventDefault(); generate(); }
  });
  document.getElementById('generateBtn').addEventListener('click', generate);
  document.getElementById('clearBtn').addEventListener('click', function() {
    enqueue('POST', '/api/clear').then(function(res) { render(res.data, true); });
  });
  downloadBtn.addEventListener('click', function() {
    if (!downloadBtn.disabled) window.location.href = '/api/download';
  });

  pending = refresh(true).catch(function() {});
})();
</script>
</body>
</html>`
