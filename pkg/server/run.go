package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/solarwallbox/solarwallbox/pkg/config"
	"github.com/solarwallbox/solarwallbox/pkg/dashboard"
	"github.com/solarwallbox/solarwallbox/pkg/events"
	"github.com/solarwallbox/solarwallbox/pkg/goecharger"
	"github.com/solarwallbox/solarwallbox/pkg/metrics"
	"github.com/solarwallbox/solarwallbox/pkg/senec"
	"github.com/solarwallbox/solarwallbox/pkg/sink"
	"github.com/solarwallbox/solarwallbox/pkg/store"
)

// Run starts the dashboard runtime and the HTTP server and blocks until
// SIGINT or SIGTERM. SIGHUP reloads the config file.
func Run(configPath string) error {
	conf, err := config.NewFile(configPath)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to parse config during startup")
	}
	logrus.WithFields(conf.LogrusFields()).Infof("config loaded")

	// Receive SIGHUP to reload config
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			err := conf.Load()
			if err != nil {
				logrus.Errorf("failed to reload config: %v", err)
				continue
			}
			logrus.Infof("config reloaded")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := events.NewEventHub()
	m := metrics.New()

	senecClient := senec.NewClient(conf.SenecDeviceIP(), conf.SenecAPIPath(), conf.SenecDesignCapacityWh())
	cr := cron.New()
	daily := senec.NewDaily()
	if err := daily.Schedule(cr); err != nil {
		return pkgerrors.Wrapf(err, "failed to schedule daily statistics reset")
	}
	cr.Start()
	defer cr.Stop()

	var wallboxes []dashboard.Wallbox
	for _, wb := range conf.Wallboxes() {
		if wb.IP == "" {
			logrus.Warnf("wallbox %q has no ip, it will not be reachable", wb.Name)
		}
		wallboxes = append(wallboxes, goecharger.NewClient(wb.IP))
	}

	opts := dashboard.Options{
		Config:    conf,
		Senec:     senecClient,
		Wallboxes: wallboxes,
		Hub:       hub,
		Metrics:   m,
		Daily:     daily,
	}

	var st *store.Store
	if p := conf.DatabasePath(); p != "" {
		st, err = store.Open(p)
		if err != nil {
			return err
		}
		defer func() {
			logrus.Info("closing database")
			if err := st.Close(); err != nil {
				logrus.Errorf("failed to close database: %v", err)
			}
		}()
		opts.Store = st
	}

	sinks := sink.Multi{}
	if brokers := conf.KafkaBrokers(); len(brokers) > 0 {
		k, err := sink.NewKafka(brokers, conf.KafkaTopic())
		if err != nil {
			return err
		}
		sinks = append(sinks, k)
	}
	opts.Sink = &sinks

	rt := dashboard.New(opts)

	// The MQTT sink dispatches set commands to rt, so it joins the sinks
	// after rt exists and before rt starts polling.
	if server := conf.MQTTServer(); server != "" {
		sinks = append(sinks, sink.NewMQTT(ctx, server, conf.MQTTClientID(), conf.MQTTTopicPrefix(), rt))
	}
	defer func() {
		logrus.Info("closing sinks")
		if err := sinks.Close(); err != nil {
			logrus.Errorf("failed to close sinks: %v", err)
		}
	}()

	srvOpts := Options{Config: conf, Runtime: rt}
	if st != nil {
		srvOpts.History = st
	}
	srv := &http.Server{
		Handler:           New(srvOpts).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	l, err := net.Listen("tcp", conf.ListenAddress())
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to listen on %s", conf.ListenAddress())
	}

	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := rt.Run(ctx); err != nil {
			logrus.Errorf("dashboard loop exited: %v", err)
		}
	}()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	// Wait for a SIGINT or SIGTERM:
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	logrus.Info("shutting down http server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = srv.Shutdown(shutdownCtx)
	if err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	shutdownCancel()

	logrus.Info("stopping dashboard loop")
	cancel()
	<-loopDone

	logrus.Info("exiting")
	return nil
}
