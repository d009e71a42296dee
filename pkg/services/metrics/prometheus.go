package metrics

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/nspcc-dev/near-go/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// WriteTextfile dumps metrics gathered by g (prometheus.DefaultGatherer if
// nil) into the file in the text exposition format. The file is replaced
// atomically.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("can't create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("can't write metrics: %w", err)
	}
	return nil
}
