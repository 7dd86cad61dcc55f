// roomd is the room relay: a single process that fans broadcast and presence
// traffic between farm clients over websockets. It holds no game state; the
// clients own their farms and the relay only routes.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"farmgrid.app/internal/transport/memhub"
	"farmgrid.app/internal/transport/ws"
)

func main() {
	var (
		addr = flag.String("addr", ":8080", "http listen address")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[roomd] ", log.LstdFlags|log.Lmicroseconds)

	hub := memhub.New()
	defer hub.Close()

	ctx, cancel := signalContext()
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		s := hub.Stats()

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP farmgrid_relay_rooms Currently active room topics.\n")
		fmt.Fprintf(rw, "# TYPE farmgrid_relay_rooms gauge\n")
		fmt.Fprintf(rw, "farmgrid_relay_rooms %d\n", s.Rooms)

		fmt.Fprintf(rw, "# HELP farmgrid_relay_members Current room memberships across all topics.\n")
		fmt.Fprintf(rw, "# TYPE farmgrid_relay_members gauge\n")
		fmt.Fprintf(rw, "farmgrid_relay_members %d\n", s.Members)
	})
	mux.HandleFunc("/v1/ws", ws.NewServer(hub, logger).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
