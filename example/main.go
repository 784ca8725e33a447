package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trustwatch/trustwatch"
)

func main() {
	// start mock feed server (see mock_server.go)
	go StartMockFeedServer(":9999")
	time.Sleep(100 * time.Millisecond)

	tw, err := trustwatch.New(
		trustwatch.WithSource(trustwatch.Source{
			URL:     "http://localhost:9999/feed",
			Name:    "mock feed",
			Enabled: true,
		}),
		trustwatch.WithSource(trustwatch.Source{
			URL:     "http://localhost:9999/broken",
			Name:    "broken feed",
			Enabled: true,
		}),
		trustwatch.WithSyncInterval(time.Minute),
		trustwatch.WithFetchTimeout(5*time.Second),
		trustwatch.WithPort(8080),
	)
	if err != nil {
		slog.Error("failed to create trustwatch", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   TrustWatch Demo                                     ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Open http://localhost:8080 in your browser          ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Sources:                                            ║")
	fmt.Println("  ║   • mock feed (rotates content, serves 304s)          ║")
	fmt.Println("  ║   • broken feed (always 502, isolated per cycle)      ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := tw.Start(ctx); err != nil {
		slog.Error("trustwatch error", "error", err)
		os.Exit(1)
	}
}
