package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gots/slice"
	"github.com/secmon-lab/ghdigest/pkg/controller/server"
	"github.com/secmon-lab/ghdigest/pkg/utils/errutil"
	"github.com/secmon-lab/ghdigest/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	var (
		addr     string
		resume   bool
		shutdown time.Duration
	)
	st := newStack(true)

	serveFlags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Binding address",
			Value:       "127.0.0.1:8000",
			Sources:     cli.EnvVars("GHDIGEST_ADDR"),
			Destination: &addr,
		},
		&cli.BoolFlag{
			Name:        "resume",
			Usage:       "Re-poll tasks left pending by a previous process on startup",
			Value:       true,
			Sources:     cli.EnvVars("GHDIGEST_RESUME"),
			Destination: &resume,
		},
		&cli.DurationFlag{
			Name:        "shutdown-timeout",
			Usage:       "Time to wait for in-flight requests and jobs on shutdown",
			Value:       30 * time.Second,
			Sources:     cli.EnvVars("GHDIGEST_SHUTDOWN_TIMEOUT"),
			Destination: &shutdown,
		},
	}

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Server mode",
		Flags:   slice.Flatten(serveFlags, st.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.Default().Info("starting serve",
				slog.Any("Addr", addr),
				slog.Any("Resume", resume),
				slog.Any("Config", st),
			)

			uc, closer, err := st.build(ctx)
			if err != nil {
				return err
			}
			defer closer()

			s := server.New(uc)

			if resume {
				go func() {
					report, err := uc.ResumeOutstandingTasks(context.Background())
					if err != nil {
						errutil.HandleError(ctx, "failed to resume outstanding tasks", err)
						return
					}
					logging.Default().Info("resumed outstanding tasks", slog.Any("report", report))
				}()
			}

			serverErr := make(chan error, 1)
			httpServer := &http.Server{
				Addr:    addr,
				Handler: s.Mux(),

				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       30 * time.Second,
				// A question is answered synchronously and may poll the task service for a while
				WriteTimeout:      5 * time.Minute,
			}

			go func() {
				logging.Default().Info("starting http server", "addr", addr)
				if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
					serverErr <- goerr.Wrap(err, "failed to listen and serve")
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-serverErr:
				return err

			case sig := <-quit:
				logging.Default().Info("shutting down server", "signal", sig)

				ctx, cancel := context.WithTimeout(context.Background(), shutdown)
				defer cancel()

				if err := httpServer.Shutdown(ctx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server")
				}

				done := make(chan struct{})
				go func() {
					s.Wait()
					close(done)
				}()
				select {
				case <-done:
				case <-ctx.Done():
					logging.Default().Warn("background jobs are still running at shutdown")
				}
			}

			return nil
		},
	}
}
