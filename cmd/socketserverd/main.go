// Command socketserverd runs a broadcast/echo daemon on top of the socket
// server framework. Every chunk received from a client is fanned out to all
// connected clients, either locally or through the Redis bridge when one is
// configured so multiple instances share one broadcast domain.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cyberinferno/socketserver/bridge"
	"github.com/cyberinferno/socketserver/logger"
	"github.com/cyberinferno/socketserver/metrics"
	"github.com/cyberinferno/socketserver/tcpserver"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:           "socketserverd",
		Short:         "Broadcast socket server daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfgFile)
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "path to YAML config file")

	return cmd
}

// loadConfig builds the daemon configuration from defaults, an optional
// config file, and SOCKETSERVER_* environment variables.
func loadConfig(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault("listen", ":7420")
	v.SetDefault("backlog", 128)
	v.SetDefault("reuse_addr", true)
	v.SetDefault("buffer.initial_count", 32)
	v.SetDefault("buffer.receive_size", 4096)
	v.SetDefault("metrics.listen", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.channel", "socketserver.broadcast")
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("SOCKETSERVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	return v, nil
}

// relayDispatcher fans every received chunk out to all connected clients.
// With a bridge attached the payload travels through the shared Redis
// channel instead, so every instance (this one included) delivers it via
// its own Broadcast.
type relayDispatcher struct {
	srv    *tcpserver.Server
	bridge *bridge.RedisBridge
	log    logger.Logger
}

func (d *relayDispatcher) OnSessionStarted(s *tcpserver.Session) {
	d.log.Info("client connected",
		logger.Field{Key: "session", Value: s.Key()},
		logger.Field{Key: "remote", Value: s.RemoteAddr().String()})
}

func (d *relayDispatcher) OnSessionDataReceived(s *tcpserver.Session, data []byte) {
	if d.bridge != nil {
		if err := d.bridge.Publish(context.Background(), data); err != nil {
			d.log.Error("bridge publish failed", logger.Field{Key: "error", Value: err})
		}
		return
	}

	d.srv.Broadcast(data)
}

func (d *relayDispatcher) OnSessionClosed(s *tcpserver.Session) {
	d.log.Info("client disconnected", logger.Field{Key: "session", Value: s.Key()})
}

func run(cfgFile string) error {
	v, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(v.GetString("log.level"))
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	log := logger.NewStdoutLogger("socketserverd", level)

	cfg := tcpserver.Config{
		Addr:               v.GetString("listen"),
		Backlog:            v.GetInt("backlog"),
		ReuseAddr:          v.GetBool("reuse_addr"),
		InitialBufferCount: v.GetInt("buffer.initial_count"),
		ReceiveBufferSize:  v.GetInt("buffer.receive_size"),
	}

	opts := []tcpserver.Option{tcpserver.WithLogger(log)}

	var metricsSrv *http.Server
	if addr := v.GetString("metrics.listen"); addr != "" {
		reg := prometheus.NewRegistry()
		opts = append(opts, tcpserver.WithMetrics(metrics.NewServerMetrics(reg)))

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{Addr: addr, Handler: mux}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", logger.Field{Key: "error", Value: err})
			}
		}()
		log.Info("metrics listening", logger.Field{Key: "addr", Value: addr})
	}

	disp := &relayDispatcher{log: log}
	srv := tcpserver.NewServer(cfg, disp, opts...)
	disp.srv = srv

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var bridgeDone chan struct{}
	if addr := v.GetString("redis.addr"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		b := bridge.NewRedisBridge(client, v.GetString("redis.channel"), log)
		disp.bridge = b

		bridgeDone = make(chan struct{})
		go func() {
			defer close(bridgeDone)
			if err := b.Run(ctx, srv.Broadcast); err != nil {
				log.Error("bridge stopped", logger.Field{Key: "error", Value: err})
			}
		}()
	}

	if err := srv.Start(); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	cancel()
	if bridgeDone != nil {
		<-bridgeDone
	}
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(context.Background())
	}

	return srv.Stop()
}
