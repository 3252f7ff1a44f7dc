package echo

// openAPIDocument is the static API description served at
// /openapi.json.
const openAPIDocument = `{
  "openapi": "3.0.3",
  "info": {
    "title": "Doughmonster Gateway",
    "description": "Edge gateway over the point-of-sale vendor API: expanded orders, menus and kitchen configuration.",
    "version": "1.0.0"
  },
  "paths": {
    "/api/orders": {
      "get": {
        "summary": "Expanded orders",
        "parameters": [
          {"name": "pageToken", "in": "query", "schema": {"type": "string"}},
          {"name": "lastModified", "in": "query", "schema": {"type": "string"}},
          {"name": "limit", "in": "query", "schema": {"type": "integer", "minimum": 0}}
        ],
        "responses": {
          "200": {"description": "Expanded, deterministically ordered orders payload"},
          "502": {"description": "Upstream failure"}
        }
      }
    },
    "/api/menus": {
      "get": {
        "summary": "Menu catalog",
        "responses": {"200": {"description": "Menu document plus lastUpdated stamp"}}
      }
    },
    "/api/kitchen/config": {
      "get": {
        "summary": "Kitchen configuration",
        "responses": {"200": {"description": "Prep station configuration"}}
      }
    },
    "/api/cache/stats": {
      "get": {
        "summary": "Composition cache counters",
        "responses": {"200": {"description": "Hit/miss/size counters"}}
      }
    },
    "/healthz": {
      "get": {
        "summary": "Liveness probe",
        "responses": {"200": {"description": "Process is up"}}
      }
    }
  }
}`

// docsPage is the static documentation page served at /docs.
const docsPage = `<!DOCTYPE html>
<html>
<head><title>Doughmonster Gateway</title></head>
<body>
<h1>Doughmonster Gateway</h1>
<p>Edge gateway over the point-of-sale vendor API.</p>
<ul>
<li><code>GET /api/orders</code> &mdash; expanded orders (query: pageToken, lastModified, limit)</li>
<li><code>GET /api/menus</code> &mdash; menu catalog</li>
<li><code>GET /api/kitchen/config</code> &mdash; kitchen configuration</li>
<li><code>GET /api/cache/stats</code> &mdash; composition cache counters</li>
<li><code>GET /healthz</code> &mdash; liveness</li>
</ul>
<p>The machine-readable description lives at <a href="/openapi.json">/openapi.json</a>.</p>
</body>
</html>`
