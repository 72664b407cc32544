package api

import (
	"encoding/json"
	"net/http"

	"github.com/smartnotify/console/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// viewerFromRequest reads the identity the auth proxy attached to the
// request. The console never validates credentials itself.
func viewerFromRequest(r *http.Request) (model.Viewer, bool) {
	id := r.Header.Get("X-User-Id")
	if id == "" {
		return model.Viewer{}, false
	}

	return model.Viewer{
		ID:          id,
		Username:    r.Header.Get("X-User-Name"),
		Email:       r.Header.Get("X-User-Email"),
		IsStaff:     headerFlag(r, "X-User-Staff"),
		IsSuperuser: headerFlag(r, "X-User-Superuser"),
	}, true
}

func headerFlag(r *http.Request, name string) bool {
	switch r.Header.Get(name) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func requireViewer(w http.ResponseWriter, r *http.Request) (model.Viewer, bool) {
	viewer, ok := viewerFromRequest(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "missing viewer identity")
		return model.Viewer{}, false
	}
	return viewer, true
}
