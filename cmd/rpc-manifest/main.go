package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/decklab/rpc-manifest/internal/pipeline"
	"github.com/decklab/rpc-manifest/internal/tools"
)

var version = "dev"

const (
	exitOK    = 0
	exitDirty = 1 // structural or validation diagnostics recorded
	exitFatal = 2 // unparsable source or filesystem failure
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Println("rpc-manifest", version)
		os.Exit(exitOK)
	}

	if len(os.Args) > 1 && os.Args[1] == "mcp" {
		srv := tools.NewServer(version)
		if err := srv.MCPServer().Run(context.Background(), &mcp.StdioTransport{}); err != nil {
			slog.Error("mcp server", "err", err)
			os.Exit(exitFatal)
		}
		return
	}

	root, err := os.Getwd()
	if err != nil {
		slog.Error("getwd", "err", err)
		os.Exit(exitFatal)
	}

	p := pipeline.New(context.Background(), root)
	res, err := p.Run()
	p.Close()
	if err != nil {
		slog.Error("run aborted", "err", err)
		os.Exit(exitFatal)
	}

	if n := len(res.Diagnostics); n > 0 {
		fmt.Fprintf(os.Stderr, "rpc-manifest: %d problem(s) found, manifest not written\n", n)
		os.Exit(exitDirty)
	}

	if res.CacheHit {
		fmt.Println("rpc-manifest: up to date")
		return
	}
	fmt.Printf("rpc-manifest: wrote %s (version %s)\n", res.OutPath, res.Version)
}
