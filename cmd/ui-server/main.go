package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	uiserver "github.com/Its-donkey/circuit-console/internal/ui/server"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
		// If a second signal arrives, force exit immediately.
		<-sigCh
		log.Println("second interrupt received, forcing shutdown")
		os.Exit(1)
	}()
	defer func() {
		signal.Stop(sigCh)
		cancel()
	}()

	listen := flag.String("listen", "", "address to serve the circuit console (defaults to config.json server.addr+port)")
	templatesDir := flag.String("templates", "", "directory of html/template overrides (defaults to the embedded templates)")
	assetsDir := flag.String("assets", "", "directory holding main.wasm, wasm_exec.js and styles.css (defaults to config.json app.assets)")
	logDir := flag.String("logs", "", "directory for rotated JSON logs (defaults to config.json app.logs)")
	catalogPath := flag.String("catalog", "", "YAML predefined circuit catalog (defaults to config.json app.catalog, then the built-in set)")
	configPath := flag.String("config", "config.json", "path to server configuration")
	flag.Parse()

	opts := uiserver.Options{
		Listen:       *listen,
		TemplatesDir: *templatesDir,
		AssetsDir:    *assetsDir,
		LogDir:       *logDir,
		CatalogPath:  *catalogPath,
		ConfigPath:   *configPath,
	}

	if err := uiserver.Run(ctx, opts); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("server error: %v", err)
	}
}
