package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"bookborrow/app/echoServer"
	bookctrl "bookborrow/app/echoServer/controller/book"
	borrowctrl "bookborrow/app/echoServer/controller/borrow"
	paymentctrl "bookborrow/app/echoServer/controller/payment"
	"bookborrow/app/echoServer/validation"
	"bookborrow/service/sweep"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the notification worker and the daily sweep",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		d, err := wire(ctx)
		if err != nil {
			return err
		}
		defer d.db.Close()

		// controllers
		bookC := &bookctrl.Controller{Svc: d.books, Log: log}
		borrowC := &borrowctrl.Controller{Svc: d.borrows, Log: log}
		paymentC := &paymentctrl.Controller{Svc: d.payments, Log: log}

		// echo
		e := echo.New()
		e.HideBanner = true
		echoServer.RegisterMiddlewares(e, log)
		e.Validator = validation.New()
		echoServer.Register(e, echoServer.C{
			Book:      bookC,
			Borrow:    borrowC,
			Payment:   paymentC,
			JWTSecret: cfg.JWTSecret,
		})

		sched := &sweep.Scheduler{Sweep: d.sweep, Retrier: d.payments, Hour: cfg.SweepHour, Log: log}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return d.dispatcher.Run(gctx) })
		g.Go(func() error { return sched.Start(gctx) })
		g.Go(func() error {
			log.Info("starting server", "port", cfg.Port, "env", cfg.Env)
			if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return e.Shutdown(sctx)
		})
		return g.Wait()
	},
}
