// hingechat-relay is the relay server: it accepts TCP connections from
// peers, enforces the version/registration preamble, and forwards
// handshake and loop frames between registered peers by id.
//
// Usage:
//
//	hingechat-relay [options]
//
// Options:
//
//	-addr            listen address (default: ":7007")
//	-log-level       trace|debug|info|warn|error|disabled (default: info)
//	-max-send-queue  per-connection outbound queue bound (default: 1024)
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pion/logging"

	"hingechat/pkg/relay"
)

func main() {
	addr := flag.String("addr", ":7007", "listen address")
	logLevel := flag.String("log-level", "info", "trace|debug|info|warn|error|disabled")
	maxSendQueue := flag.Int("max-send-queue", relay.DefaultSendQueueSize, "per-connection outbound queue bound")
	flag.Parse()

	factory := logging.NewDefaultLoggerFactory()
	factory.DefaultLogLevel = parseLogLevel(*logLevel)

	server := relay.NewServer(relay.ServerConfig{
		SendQueueSize: *maxSendQueue,
		LoggerFactory: factory,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe(*addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("relay: %v", err)
		}
	case sig := <-sigCh:
		log.Printf("relay: received %v, shutting down", sig)
		if err := server.Shutdown(); err != nil {
			log.Fatalf("relay: shutdown failed: %v", err)
		}
	}
}

func parseLogLevel(s string) logging.LogLevel {
	switch s {
	case "trace":
		return logging.LogLevelTrace
	case "debug":
		return logging.LogLevelDebug
	case "warn":
		return logging.LogLevelWarn
	case "error":
		return logging.LogLevelError
	case "disabled":
		return logging.LogLevelDisabled
	default:
		return logging.LogLevelInfo
	}
}
