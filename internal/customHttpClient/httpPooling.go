package customHttpClient

import (
	"net/http"
	"sync"

	"github.com/biolens/BioLensAPI/internal/config"
)

var (
	once   sync.Once
	pooled *http.Client
)

// Pooled returns the shared connection-reusing client handed to the model
// backends. Cascade calls hit the same few hosts over and over, so keeping
// idle connections warm saves a TLS handshake per attempt.
func Pooled() *http.Client {
	once.Do(func() {
		pooled = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        config.MaxIdleConns,
				MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
				IdleConnTimeout:     config.IdleConnTimeout,
			},
		}
	})
	return pooled
}
