package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"iotagateway/internal/config"
)

// main initializes the gateway and keeps it running until terminated.
func main() {
	cfg, err := config.Load()
	if nil != err {
		log.Fatal(err)
	}

	gw, err := NewGateway(cfg)
	if err != nil {
		log.Fatal(err)
	}

	setupSignals(gw)
	gw.Run()
}

// setupSignals terminates the gateway gracefully on SIGINT/SIGTERM.
func setupSignals(gw *Gateway) {
	ts := make(chan os.Signal, 1)
	signal.Notify(ts, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-ts
		gw.Stop()
		os.Exit(0)
	}()
}
