// cmd/mstore/station_cmds.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tamzrod/mstore/internal/config"
	"github.com/tamzrod/mstore/internal/poller"
	"github.com/tamzrod/mstore/internal/uplink"
	"github.com/tamzrod/mstore/internal/writer"
)

var (
	storeReportFlag = &cli.BoolFlag{
		Name:  "store",
		Usage: "also store the report line in the first free page",
	}
	sampleFlag = &cli.DurationFlag{
		Name:  "sample",
		Usage: "read the meter and store a report at this interval (0 disables)",
	}
	drainFlag = &cli.DurationFlag{
		Name:  "drain",
		Usage: "upload and clear stored messages at this interval (0 disables; needs uplink)",
	}

	meterCommand = &cli.Command{
		Action: meter,
		Name:   "meter",
		Usage:  "Read one report from the wind/rain meter",
		Flags:  []cli.Flag{storeReportFlag},
	}
	drainCommand = &cli.Command{
		Action: drain,
		Name:   "drain",
		Usage:  "Upload stored messages to the station server and clear them",
	}
	monitorCommand = &cli.Command{
		Action: monitor,
		Name:   "monitor",
		Usage:  "Run the station loop: status mirror, metrics, sampling and uplink",
		Flags:  []cli.Flag{sampleFlag, drainFlag},
	}
)

func meter(ctx *cli.Context) error {
	return withStore(ctx, func(st *station) error {
		page, line, err := sample(st, ctx.Bool(storeReportFlag.Name))
		if err != nil {
			return err
		}
		fmt.Fprintf(ctx.App.Writer, "%s\n", line)
		if page >= 0 {
			fmt.Fprintf(ctx.App.Writer, "stored in page %d\n", page)
		}
		return nil
	})
}

// sample reads one report and optionally stores it; page is -1 when not stored.
func sample(st *station, keep bool) (int, []byte, error) {
	r, err := st.meter.Read()
	if err != nil {
		return -1, nil, err
	}
	line := r.Message()
	if !keep {
		return -1, line, nil
	}
	page, err := st.store.StoreMessage(line)
	if err != nil {
		return -1, line, err
	}
	return page, line, nil
}

func newUploader(cfg *config.Config) (*uplink.Client, error) {
	if cfg.Uplink == nil {
		return nil, errors.New("uplink not configured")
	}
	return uplink.NewClient(uplink.Config{
		URL:     cfg.Uplink.URL,
		Timeout: time.Duration(cfg.Uplink.TimeoutMs) * time.Millisecond,
	})
}

func drain(ctx *cli.Context) error {
	rt := getRuntime(ctx)
	up, err := newUploader(rt.cfg)
	if err != nil {
		return err
	}
	return withStore(ctx, func(st *station) error {
		res, err := uplink.Drain(ctx.Context, st.store, up, rt.log)
		if err != nil {
			return err
		}
		fmt.Fprintf(ctx.App.Writer, "uploaded %d, cleared %d, skipped %d\n", res.Uploaded, res.Cleared, len(res.Skipped))
		return nil
	})
}

func monitor(ctx *cli.Context) error {
	rt := getRuntime(ctx)
	log := rt.log

	sigCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var up *uplink.Client
	if ctx.Duration(drainFlag.Name) > 0 {
		var err error
		if up, err = newUploader(rt.cfg); err != nil {
			return err
		}
	}

	return withStore(ctx, func(st *station) error {
		// serializes every store user in this process
		var mu sync.Mutex

		// everything that can fail is built before the first goroutine starts
		sc := rt.cfg.Status
		if sc == nil {
			sc = &config.StatusConfig{IntervalMs: config.DefaultStatusIntervalMs}
		}
		p, err := poller.Build(sc, st.store, &mu, log)
		if err != nil {
			return err
		}
		m, closeMirror, err := buildMirror(rt.cfg.Status, log)
		if err != nil {
			return err
		}
		defer closeMirror()

		g, gCtx := errgroup.WithContext(sigCtx)

		// --------------------
		// Metrics
		// --------------------
		if addr := rt.cfg.Metrics.Listen; addr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

			g.Go(func() error {
				log.Info("metrics listening", zap.String("addr", addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gCtx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
		}

		// --------------------
		// Status poller + mirror
		// --------------------
		results := make(chan poller.PollResult)
		g.Go(func() error {
			p.Run(gCtx, results)
			return nil
		})

		if m != nil {
			g.Go(func() error {
				m.Run(gCtx, results)
				return nil
			})
		} else {
			g.Go(func() error {
				for {
					select {
					case <-gCtx.Done():
						return nil
					case res := <-results:
						if res.Err != nil {
							continue
						}
						log.Info("store",
							zap.Int("messages", res.Stats.Messages),
							zap.Int("free", res.Stats.FreePages),
							zap.Int("worn", res.Stats.WornPages),
						)
					}
				}
			})
		}

		// --------------------
		// Meter sampling
		// --------------------
		if every := ctx.Duration(sampleFlag.Name); every > 0 {
			g.Go(func() error {
				return tick(gCtx, every, func() {
					mu.Lock()
					defer mu.Unlock()
					page, line, err := sample(st, true)
					if err != nil {
						log.Warn("sample failed", zap.Error(err))
						return
					}
					log.Debug("sample stored", zap.Int("page", page), zap.ByteString("line", line))
				})
			})
		}

		// --------------------
		// Uplink
		// --------------------
		if up != nil {
			every := ctx.Duration(drainFlag.Name)
			g.Go(func() error {
				return tick(gCtx, every, func() {
					mu.Lock()
					defer mu.Unlock()
					if _, err := uplink.Drain(gCtx, st.store, up, log); err != nil && gCtx.Err() == nil {
						log.Warn("drain failed", zap.Error(err))
					}
				})
			})
		}

		log.Info("monitor started", zap.Uint8("address", st.store.Address()))
		return g.Wait()
	})
}

// buildMirror connects the status mirror. Without a status section it
// returns a nil mirror and a no-op close.
func buildMirror(sc *config.StatusConfig, log *zap.Logger) (*writer.Mirror, func(), error) {
	if sc == nil {
		return nil, func() {}, nil
	}
	plan, err := writer.BuildPlan(sc)
	if err != nil {
		return nil, nil, err
	}
	ep, err := writer.BuildEndpointClient(sc)
	if err != nil {
		return nil, nil, err
	}
	sw, ok := writer.NewDeviceStatusWriter(plan, ep)
	if !ok {
		_ = ep.Close()
		return nil, nil, errors.New("status mirror: no status plan")
	}
	return writer.NewMirror(sw, log), func() { _ = ep.Close() }, nil
}

// tick runs fn every interval until ctx is done.
func tick(ctx context.Context, every time.Duration, fn func()) error {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			fn()
		}
	}
}
