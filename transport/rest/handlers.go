package rest

import (
	"encoding/json"
	"net/http"
)

func (that *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "statusHandler")

	status, err := that.status.Status(r.Context())
	if err != nil {
		log.Error("failed to build line status", "error", err)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(status); err != nil {
		log.Error("failed to encode line status", "error", err)
	}
}
