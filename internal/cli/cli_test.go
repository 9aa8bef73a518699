package cli

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synheart/synheart-monitor/internal/models"
	"github.com/synheart/synheart-monitor/internal/monitor"
	"github.com/synheart/synheart-monitor/internal/rhythm"
	"github.com/synheart/synheart-monitor/internal/vitals"
)

func TestOverrideCommands(t *testing.T) {
	cmds, err := overrideCommands("50", "150/95", "", "30")
	require.NoError(t, err)
	require.Len(t, cmds, 3)

	assert.Equal(t, monitor.CmdSetHeartRate, cmds[0].Type)
	assert.Equal(t, monitor.Input("50"), cmds[0].Value)
	assert.Equal(t, monitor.CmdSetBloodPressure, cmds[1].Type)
	assert.Equal(t, monitor.Input("150"), cmds[1].Systolic)
	assert.Equal(t, monitor.Input("95"), cmds[1].Diastolic)
	assert.Equal(t, monitor.CmdSetRespirationRate, cmds[2].Type)

	_, err = overrideCommands("", "150", "", "")
	assert.ErrorIs(t, err, monitor.ErrInvalidInput)

	cmds, err = overrideCommands("", "", "", "")
	require.NoError(t, err)
	assert.Empty(t, cmds)
}

func TestRenderBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░", renderBar(0.5, 10))
	assert.Equal(t, "██████████", renderBar(1.5, 10))
	assert.Equal(t, "░░░░░░░░░░", renderBar(-1, 10))
}

func TestWriteRow(t *testing.T) {
	state := vitals.FromProfile(rhythm.Builtin().Lookup(rhythm.VT))
	frame := models.NewFrame("f-1", models.Session{}, state, 1)

	var buf bytes.Buffer
	writeHeader(&buf)
	writeRow(&buf, 3, frame)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "RHYTHM")
	assert.Contains(t, lines[1], "VT")
	assert.Contains(t, lines[1], "180!")
	assert.Contains(t, lines[1], "CRITICAL")
	assert.Contains(t, lines[1], "ST HIGHER")
	assert.Contains(t, lines[1], "rhythm")
}

func serverPort(t *testing.T, url string) int {
	t.Helper()
	_, portText, ok := strings.Cut(strings.TrimPrefix(url, "http://"), ":")
	require.True(t, ok)
	port, err := strconv.Atoi(portText)
	require.NoError(t, err)
	return port
}

func TestProbeMonitor(t *testing.T) {
	monitorSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Synheart Monitor\n\nWebSocket endpoint: ws://127.0.0.1/monitor\n")
	}))
	defer monitorSrv.Close()

	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "hello")
	}))
	defer other.Close()

	running, err := probeMonitor("127.0.0.1", serverPort(t, monitorSrv.URL))
	require.NoError(t, err)
	assert.True(t, running)

	running, err = probeMonitor("127.0.0.1", serverPort(t, other.URL))
	require.NoError(t, err)
	assert.False(t, running)
}
