package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/rstindex/internal/database"
	"github.com/dshills/rstindex/internal/mcp"
	"github.com/dshills/rstindex/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// configFromEnv builds the database configuration from the environment.
//
//	RSTINDEX_DB_PATH        database file path (default ~/.rstindex/workspace.db)
//	RSTINDEX_IN_MEMORY      "1" for an ephemeral in-memory database
//	RSTINDEX_BUFFER_WRITES  "1" to buffer writes until flush/close
func configFromEnv() database.Config {
	return database.Config{
		Path:         os.Getenv("RSTINDEX_DB_PATH"),
		InMemory:     os.Getenv("RSTINDEX_IN_MEMORY") == "1",
		BufferWrites: os.Getenv("RSTINDEX_BUFFER_WRITES") == "1",
	}
}

func main() {
	// Handle version flag
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("rstindex MCP Server\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", storage.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
		os.Exit(0)
	}

	// Log startup info to stderr (stdout reserved for MCP protocol)
	log.SetOutput(os.Stderr)
	log.Printf("rstindex MCP Server v%s starting...", version)
	log.Printf("Build Mode: %s, Driver: %s", storage.BuildMode, storage.DriverName)

	server, err := mcp.NewServer(configFromEnv())
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Println("MCP server ready, listening on stdio...")
		return server.Serve(ctx)
	})
	g.Go(func() error {
		select {
		case sig := <-sigChan:
			log.Printf("Received signal %v, shutting down gracefully...", sig)
			cancel()
			return nil
		case <-ctx.Done():
			return nil
		}
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}
