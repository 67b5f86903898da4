package api

import "net/http"

// wellKnownManifest is the static JSON manifest for /.well-known/fiveplanner.json.
const wellKnownManifest = `{
  "name": "Five Planner",
  "description": "Planner for 5-a-side football sessions",
  "version": "0.1.0",
  "api_base": "/api/v1",
  "auth": {
    "type": "bearer",
    "header": "Authorization",
    "scope": "mutations"
  },
  "endpoints": {
    "players": "/api/v1/players",
    "groups": "/api/v1/groups",
    "pitches": "/api/v1/pitches",
    "sessions": "/api/v1/sessions",
    "history": "/api/v1/history",
    "stats": "/api/v1/stats",
    "email_parse": "/api/v1/email/parse"
  },
  "health": "/health"
}`

// WellKnownHandler returns the static well-known manifest.
func WellKnownHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(wellKnownManifest))
}
