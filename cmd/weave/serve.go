package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/vango-dev/weave/internal/config"
	"github.com/vango-dev/weave/internal/errors"
	"github.com/vango-dev/weave/pkg/devtools"
	"github.com/vango-dev/weave/pkg/dom"
	"github.com/vango-dev/weave/pkg/metrics"
	"github.com/vango-dev/weave/pkg/reactive"
	"github.com/vango-dev/weave/pkg/sched"
	"github.com/vango-dev/weave/pkg/weave"
)

func serveCmd() *cobra.Command {
	var (
		dir  string
		addr string
		tick time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live demo tree with devtools",
		Long: `Run a demo tree on the reconciler loop and serve devtools for it.

Routes:
  /ws       websocket stream of platform mutations (snapshot first)
  /tree     current markup
  /metrics  Prometheus metrics
  /healthz  health check

Settings come from weave.yaml in --dir, with WEAVE_* environment
overrides.

Examples:
  weave serve
  weave serve --addr=:9090 --tick=250ms`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(dir)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return runServe(cmd, cfg, tick)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory containing weave.yaml")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from weave.yaml)")
	cmd.Flags().DurationVar(&tick, "tick", time.Second, "Interval between demo updates")

	return cmd
}

func runServe(cmd *cobra.Command, cfg *config.Config, tick time.Duration) error {
	out := cmd.OutOrStdout()
	logger := cfg.NewLogger(os.Stderr)

	reg := prometheus.NewRegistry()
	var rec *metrics.Recorder
	loopOpts := []sched.Option{
		sched.WithFrameBudget(cfg.Scheduler.FrameBudget),
		sched.WithLogger(logger),
	}
	hostOpts := []weave.Option{
		weave.WithLogger(logger),
		weave.WithTracer(otel.Tracer(cfg.Tracing.TracerName)),
	}
	if cfg.Metrics.Enabled {
		rec = metrics.New(metrics.WithRegistry(reg), metrics.WithNamespace(cfg.Metrics.Namespace))
		loopOpts = append(loopOpts, sched.WithObserver(rec))
		hostOpts = append(hostOpts, weave.WithRecorder(rec))
	} else {
		warn(out, "metrics disabled in %s", config.ConfigFileName)
	}

	loop := sched.NewLoop(loopOpts...)
	host := weave.NewHost(loop, hostOpts...)

	doc := dom.NewDocument()
	body := dom.NewElement("body")
	doc.AppendChild(body)

	ticks := reactive.NewSignal(0)
	if _, err := host.Render(body, weave.H(demo, weave.Props{"ticks": ticks})); err != nil {
		return err
	}

	var dtOpts []devtools.Option
	dtOpts = append(dtOpts, devtools.WithLogger(logger), devtools.WithGatherer(reg))
	if rec != nil {
		dtOpts = append(dtOpts, devtools.WithRecorder(rec))
	}
	tools := devtools.New(loop, body, dtOpts...)
	tools.Start()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		loop.Run(ctx, cfg.Scheduler.FrameInterval)
	}()

	go func() {
		t := time.NewTicker(tick)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				loop.Post(func() {
					ticks.Update(func(n int) int { return n + 1 })
				})
			}
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           tools.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	printBanner(out)
	success(out, "Serving devtools on %s", cfg.Server.Addr)
	info(out, "ws://%s/ws", displayAddr(cfg.Server.Addr))
	info(out, "http://%s/metrics", displayAddr(cfg.Server.Addr))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !stderrors.Is(err, http.ErrServerClosed) {
			serveErr = errors.New(errors.CodeTransport).Wrap(err)
		}
		stop()
	}

	fmt.Fprintln(out, "\n  Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
	<-loopDone
	tools.Close()
	host.Dispose()
	return serveErr
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

// demo renders a clock and a keyed list that rotates on every tick, so the
// stream shows text patches and keyed moves. The ticks prop is a signal;
// reading it through Prop subscribes the render.
var demo = weave.Func("demo", func(ctx *weave.Ctx) any {
	n, _ := ctx.Prop("ticks").(int)
	names := []string{"alpha", "beta", "gamma", "delta"}

	items := make([]any, len(names))
	for i := range names {
		name := names[(i+n)%len(names)]
		items[i] = weave.H("li", weave.Props{"key": name, "class": "item"}, name)
	}
	return weave.H("main", weave.Props{"data-tick": n},
		weave.H("h1", nil, fmt.Sprintf("tick %d", n)),
		weave.H("ul", nil, items...),
	)
})
