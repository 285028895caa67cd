package scorer

import (
	"net/http"
	"time"

	"github.com/agenticfraud/fraud-pipeline/internal/ports"
)

// NewCloudClient builds the scorer.profile=cloud adapter: requests carry a
// bearer credential (scorer.credentials in spec.md §6).
func NewCloudClient(baseURL, credential string, timeout time.Duration) ports.Scorer {
	return newHTTPClient(baseURL, timeout, func(r *http.Request) {
		if credential != "" {
			r.Header.Set("Authorization", "Bearer "+credential)
		}
	})
}

// NewLocalClient builds the scorer.profile=local adapter: no auth header,
// typically pointed at an in-network scoring service. Spec.md §6 states
// there is no behavioral difference in the core between the two profiles.
func NewLocalClient(baseURL string, timeout time.Duration) ports.Scorer {
	return newHTTPClient(baseURL, timeout, nil)
}
