package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check environment and print connection info",
	Long:  `Validates the configuration and rhythm table, checks port availability, and provides connection examples.`,
	RunE:  runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	fmt.Println("🏥 Synheart Monitor Environment Check")

	fmt.Printf("Go Version:        %s\n", runtime.Version())
	fmt.Printf("OS/Arch:           %s/%s\n\n", runtime.GOOS, runtime.GOARCH)

	cfg, err := loadConfig(cmd)
	if err != nil {
		fmt.Printf("❌ Configuration invalid: %v\n\n", err)
		return err
	}
	fmt.Printf("✅ Configuration valid\n")
	fmt.Printf("   Tick %s, frames every %s, review every %s\n\n",
		cfg.Monitor.TickInterval, cfg.Monitor.FrameInterval, cfg.Monitor.ReviewInterval)

	table, err := loadTable(cfg)
	if err != nil {
		fmt.Printf("❌ Rhythm table failed to load: %v\n\n", err)
		return err
	}
	source := "built-in"
	if cfg.Monitor.ProfilesFile != "" {
		source = cfg.Monitor.ProfilesFile
	}
	fmt.Printf("✅ Rhythm table loaded (%s)\n", source)
	fmt.Printf("   Found %d rhythms: %v\n\n", len(table.IDs()), table.IDs())

	for _, port := range []struct {
		name string
		port int
		flag string
	}{
		{"WebSocket", cfg.Server.Port, "--port"},
		{"SSE", cfg.Server.SSEPort, "--sse-port"},
	} {
		if isPortAvailable(cfg.Server.Host, port.port) {
			fmt.Printf("✅ %s port %d is available\n", port.name, port.port)
		} else if running, _ := probeMonitor(cfg.Server.Host, port.port); running {
			fmt.Printf("ℹ️  %s port %d is served by a running monitor\n", port.name, port.port)
		} else {
			fmt.Printf("⚠️  %s port %d is in use\n", port.name, port.port)
			fmt.Printf("   Use %s to specify a different port\n", port.flag)
		}
	}
	fmt.Println()

	ws := fmt.Sprintf("ws://localhost:%d/monitor", cfg.Server.Port)

	fmt.Println("📡 Connection Examples:")
	fmt.Println()

	fmt.Println("JavaScript:")
	fmt.Printf("  const ws = new WebSocket('%s');\n", ws)
	fmt.Println("  ws.onmessage = (msg) => {")
	fmt.Println("    const frame = JSON.parse(msg.data);")
	fmt.Println("    console.log(frame.vitals, frame.alerts);")
	fmt.Println("  };")
	fmt.Println("  ws.send(JSON.stringify({ type: 'set_rhythm', rhythm: 'VT' }));")
	fmt.Println("  ws.send(JSON.stringify({ type: 'set_hr', value: '50' }));")
	fmt.Println()

	fmt.Println("Go:")
	fmt.Printf("  conn, _, err := websocket.DefaultDialer.Dial(%q, nil)\n", ws)
	fmt.Println("  for {")
	fmt.Println("    _, message, err := conn.ReadMessage()")
	fmt.Println("    var frame Frame")
	fmt.Println("    json.Unmarshal(message, &frame)")
	fmt.Println("  }")
	fmt.Println()

	fmt.Println("curl (SSE):")
	fmt.Printf("  curl -N http://localhost:%d/monitor/sse\n", cfg.Server.SSEPort)
	fmt.Println()

	fmt.Println("✅ Environment check complete")
	return nil
}
