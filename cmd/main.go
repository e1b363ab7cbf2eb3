// FilePath: server/telemetry/cmd/main.go
package main

import (
	"fmt"
	"log"
	"os"

	tm "github.com/buger/goterm"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/config"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/server"
	nuts "github.com/vaudience/go-nuts"
)

// @title Telemetry Service API
// @version 1.0
// @description Sensor ingestion and zone reporting
// @BasePath /v1
func main() {
	// Clear console and draw logo
	ClearConsole()
	DrawLogo()
	// Initialize version info
	nuts.InitVersion()
	nuts.L.Infof("[Main] Starting Telemetry Server v%s", nuts.GetVersion())

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	nuts.L.Infof("[Main] Archive backend %s, collision policy %s", cfg.ObjectStore.Backend, cfg.Reporting.CollisionPolicy)

	// Create and start server
	srv := server.New(cfg)
	if err := srv.Start(); err != nil {
		nuts.L.Errorf("[Main] Server error: %v", err)
		os.Exit(1)
	}
}

// ClearConsole clears the console screen.
func ClearConsole() {
	tm.Clear()
	tm.MoveCursor(1, 1)
	tm.Flush()
}

func DrawLogo() {
	fmt.Println()
	lines := []string{
		" _______ _____ ____  ",
		"|_  / _ \\_   _|  _ \\ ",
		" / / | | || | | |_) |",
		"/ /| |_| || | |  __/ ",
		"/___\\___/ |_| |_|    ",
		"......................  " + nuts.GetVersion(),
	}

	for _, line := range lines {
		fmt.Println(line)
	}
}
