package cli

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/synheart/synheart-monitor/internal/config"
	"github.com/synheart/synheart-monitor/internal/logging"
	"github.com/synheart/synheart-monitor/internal/rhythm"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, "synheart-monitor")
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// loadTable returns the built-in rhythm table unless a profiles file is set
func loadTable(cfg *config.Config) (*rhythm.Table, error) {
	if cfg.Monitor.ProfilesFile == "" {
		return rhythm.Builtin(), nil
	}
	table, err := rhythm.LoadFile(cfg.Monitor.ProfilesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load rhythm profiles: %w", err)
	}
	return table, nil
}

func isPortAvailable(host string, port int) bool {
	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return false
	}
	listener.Close()
	return true
}

// probeMonitor reports whether the HTTP server on host:port is a running
// monitor, judged by the banner on its root page
func probeMonitor(host string, port int) (bool, error) {
	resp, err := resty.New().
		SetTimeout(2 * time.Second).
		R().
		Get(fmt.Sprintf("http://%s:%d/", host, port))
	if err != nil {
		return false, err
	}
	return resp.StatusCode() == http.StatusOK && strings.Contains(resp.String(), "Synheart Monitor"), nil
}
