package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tsriharsha402/cleaning-booking-system/internal/grpcapi"
	"github.com/tsriharsha402/cleaning-booking-system/internal/httpapi"
	"github.com/tsriharsha402/cleaning-booking-system/internal/model"
)

func newServeCmd() *cobra.Command {
	var migrateUp, seed bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and gRPC APIs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			if migrateUp {
				if err := model.AutoMigrate(a.db); err != nil {
					return err
				}
			}
			if seed {
				if err := model.Seed(a.db); err != nil {
					return err
				}
			}

			if a.cfg.IsProduction() {
				gin.SetMode(gin.ReleaseMode)
			}
			router := httpapi.NewRouter(httpapi.Deps{
				Bookings:       a.bookings,
				Availability:   a.availability,
				Policy:         a.policy,
				Logger:         a.logger,
				RequestsPerMin: a.cfg.Server.MaxRequestsPerMin,
				Ping:           a.ping,
			})
			httpSrv := &http.Server{Addr: a.cfg.Server.HTTPAddr, Handler: router}

			grpcSrv, hs := grpcapi.NewGRPCServer(grpcapi.NewServer(a.bookings, a.availability, a.policy, a.logger), a.logger)
			lis, err := net.Listen("tcp", a.cfg.Server.GRPCAddr)
			if err != nil {
				return err
			}

			errCh := make(chan error, 2)
			go func() {
				a.logger.Info("http server listening", zap.String("addr", a.cfg.Server.HTTPAddr))
				if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()
			go func() {
				a.logger.Info("grpc server listening", zap.String("addr", a.cfg.Server.GRPCAddr))
				if err := grpcSrv.Serve(lis); err != nil {
					errCh <- err
				}
			}()

			var serveErr error
			select {
			case <-ctx.Done():
				a.logger.Info("shutting down servers")
			case serveErr = <-errCh:
				a.logger.Error("server failed", zap.Error(serveErr))
			}

			hs.Shutdown()
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
			defer cancelShutdown()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				a.logger.Warn("http shutdown", zap.Error(err))
			}
			grpcSrv.GracefulStop()

			a.logger.Info("servers stopped")
			return serveErr
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")
	cmd.Flags().BoolVar(&seed, "seed", false, "insert the reference fleet on startup")
	return cmd
}
