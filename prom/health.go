package prom

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/helpcomp/firefly-iii-gnucash-importer/firefly"
	"github.com/helpcomp/firefly-iii-gnucash-importer/httperror"
)

// Pinger reports whether Firefly answers.
type Pinger interface {
	About(ctx context.Context) (firefly.About, error)
}

type healthResponse struct {
	Status         string `json:"status"`
	FireflyVersion string `json:"firefly_version"`
	APIVersion     string `json:"api_version"`
}

// HealthHandler answers 200 with the Firefly version when the server is
// reachable and 503 otherwise.
func HealthHandler(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 10*time.Second)
		defer cancel()

		about, err := p.About(ctx)
		if err != nil {
			httperror.Send(w, req, http.StatusServiceUnavailable, fmt.Sprintf("Firefly unreachable: %s", err))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(healthResponse{
			Status:         "ok",
			FireflyVersion: about.Version,
			APIVersion:     about.APIVersion,
		})
	}
}
