package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	wayfarer "github.com/wayfarerhq/wayfarer"
	"github.com/wayfarerhq/wayfarer/pkg/adapters/httpapi"
	redisAdapter "github.com/wayfarerhq/wayfarer/pkg/adapters/redis"
	"github.com/wayfarerhq/wayfarer/pkg/adapters/wsbridge"
	"github.com/wayfarerhq/wayfarer/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and the agent websocket bridge",
	Long: `Starts the interpreter as a server. Clients render screens and post
events over the JSON API; the voice-agent runtime connects on /agent via
websocket. With --redis, run state and locks live in Redis so replicas
can share runs.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runServe(cmd); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for run state (empty: in-memory)")
	serveCmd.Flags().String("redis-password", "", "Redis password")
	serveCmd.Flags().Int("redis-db", 0, "Redis database number")
	serveCmd.Flags().Duration("run-ttl", 0, "Expiration for persisted runs (0: none)")
}

func runServe(cmd *cobra.Command) error {
	port, _ := cmd.Flags().GetString("port")
	redisAddr, _ := cmd.Flags().GetString("redis")

	activity := observability.NewActivity()
	opts := []wayfarer.Option{
		wayfarer.WithLifecycleHooks(activity.Hooks()),
		wayfarer.WithRecorder(activity),
	}
	if redisAddr != "" {
		password, _ := cmd.Flags().GetString("redis-password")
		db, _ := cmd.Flags().GetInt("redis-db")
		ttl, _ := cmd.Flags().GetDuration("run-ttl")

		store := redisAdapter.New(redisAddr, password, db, redisAdapter.WithTTL(ttl))
		defer store.Close()

		opts = append(opts,
			wayfarer.WithStore(store),
			wayfarer.WithLocker(redisAdapter.NewLocker(store.Client(), "wayfarer:")),
		)
	}

	itp, err := newInterpreter(cmd, opts...)
	if err != nil {
		return err
	}
	defer itp.Shutdown()

	mux := http.NewServeMux()
	mux.Handle("/agent", wsbridge.NewHandler(itp))
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(activity.Snapshot())
	})
	mux.Handle("/", httpapi.NewHandler(itp))

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		fmt.Printf("Wayfarer serving journey %q on %s\n", itp.Journey().ID, srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		fmt.Printf("\nShutting down (signal: %v)...\n", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			if closeErr := srv.Close(); closeErr != nil {
				return fmt.Errorf("forced close failed: %w", closeErr)
			}
		}
		fmt.Println("Wayfarer stopped gracefully")
		return nil
	}
}
