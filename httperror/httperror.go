// Package httperror writes errors as JSON from the exporter's HTTP handlers
package httperror

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

type jsonError struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}

// Send replies with status and a JSON body carrying message.
func Send(w http.ResponseWriter, req *http.Request, status int, message string) {
	log.Warn().Str("Path", req.URL.Path).Int("Status", status).Msg(message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Status: status, Error: message})
}
