package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dep2p/go-mquic"
	"github.com/dep2p/go-mquic/internal/core/metrics"
)

// ErrStreamCountMismatch 收到的流数量与预期不符
var ErrStreamCountMismatch = errors.New("stream count mismatch")

func runRecv(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("recv", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	listen := fs.String("listen", "", "监听地址（默认使用配置中的 listen_addr）")
	expect := fs.Int("expect-streams", -1, "每轮预期的流数量（-1 = 不检查）")
	outDir := fs.String("out", "", "把重组后的流写入该目录")
	rounds := fs.Int("rounds", 0, "接收的轮数（0 = 直到对端发送 FIN）")
	metricsAddr := fs.String("metrics-addr", "", "Prometheus 指标监听地址，如 :9100")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setupLogging(common.verbose)

	cfg, err := common.load(fs)
	if err != nil {
		return err
	}
	if *metricsAddr != "" {
		cfg.Stats.MetricsAddr = *metricsAddr
	}

	if common.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, common.timeout)
		defer cancel()
	}

	opts := []mquic.Option{mquic.WithConfig(cfg)}
	if cfg.Stats.EnablePrometheus && cfg.Stats.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		opts = append(opts, mquic.WithRegisterer(reg))

		srv := serveMetrics(cfg.Stats.MetricsAddr, reg)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	fmt.Printf("等待对端握手: %s\n", displayAddr(*listen, cfg.Transport.ListenAddr))
	conn, err := mquic.Listen(ctx, *listen, opts...)
	if err != nil {
		return fmt.Errorf("握手: %w", err)
	}
	defer conn.Close()
	fmt.Printf("会话已建立，对端 %s\n", conn.RemoteAddr())

	for round := 1; *rounds == 0 || round <= *rounds; round++ {
		res, err := conn.Receive(ctx)
		if errors.Is(err, mquic.ErrSessionFinished) {
			fmt.Println("对端已结束会话")
			return nil
		}
		if err != nil {
			return fmt.Errorf("第 %d 轮接收: %w", round, err)
		}

		fmt.Printf("\n第 %d 轮: %d 条流\n", round, len(res.Streams))
		if err := metrics.WriteReport(os.Stdout, res.Report); err != nil {
			return err
		}
		if *outDir != "" {
			if err := writeStreams(*outDir, round, res.Streams); err != nil {
				return err
			}
		}
		if *expect >= 0 && len(res.Streams) != *expect {
			return fmt.Errorf("%w: expected %d, got %d", ErrStreamCountMismatch, *expect, len(res.Streams))
		}
	}
	return nil
}

// serveMetrics 在后台提供 /metrics
func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("指标服务退出", "addr", addr, "error", err)
		}
	}()
	logger.Info("指标服务已启动", "addr", addr)
	return srv
}

// writeStreams 把一轮的流写到 dir/round-N/stream-ID.bin
func writeStreams(dir string, round int, streams []mquic.StreamPayload) error {
	roundDir := filepath.Join(dir, fmt.Sprintf("round-%d", round))
	if err := os.MkdirAll(roundDir, 0o755); err != nil {
		return err
	}
	for _, s := range streams {
		path := filepath.Join(roundDir, fmt.Sprintf("stream-%d.bin", s.ID))
		if err := os.WriteFile(path, s.Data, 0o644); err != nil {
			return fmt.Errorf("写入 %s: %w", path, err)
		}
		if !s.Complete {
			logger.Warn("流不完整", "stream", s.ID, "bytes", len(s.Data))
		}
	}
	return nil
}

func displayAddr(flagAddr, cfgAddr string) string {
	if flagAddr != "" {
		return flagAddr
	}
	return cfgAddr
}
