package main

import (
	"context"
	"net"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/chazu/intcode/server"
)

// shutdownGrace is how long serve waits for running requests after an
// interrupt before cancelling them.
const shutdownGrace = 5 * time.Second

var (
	serveAddr     string
	serveGRPCAddr string
	serveWorkers  int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MachineService over Connect and gRPC",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		grpcAddr := cfg.Server.GRPCAddr
		if cmd.Flags().Changed("grpc-addr") {
			grpcAddr = serveGRPCAddr
		}
		workers := cfg.Server.Workers
		if cmd.Flags().Changed("workers") {
			workers = serveWorkers
		}

		httpLis, err := net.Listen("tcp", addr)
		if err != nil {
			return err
		}
		var grpcLis net.Listener
		if grpcAddr != "" {
			if grpcLis, err = net.Listen("tcp", grpcAddr); err != nil {
				httpLis.Close()
				return err
			}
		}
		return serve(cmd.Context(), server.New(server.WithWorkers(workers)), httpLis, grpcLis)
	},
}

// serve runs srv on the given listeners until ctx is done or a listener
// fails, then shuts it down.
func serve(ctx context.Context, srv *server.IntcodeServer, httpLis, grpcLis net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Serve(httpLis) })
	if grpcLis != nil {
		g.Go(func() error { return srv.ServeGRPC(grpcLis) })
	}
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":4567", "Connect (HTTP) listen address")
	serveCmd.Flags().StringVar(&serveGRPCAddr, "grpc-addr", "", "gRPC listen address (disabled when empty)")
	serveCmd.Flags().IntVar(&serveWorkers, "workers", 4, "Machines allowed to run at once")
	rootCmd.AddCommand(serveCmd)
}
