package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kilianp07/smartgrid/config"
	"github.com/kilianp07/smartgrid/core/cluster"
	"github.com/kilianp07/smartgrid/core/events"
	coremetrics "github.com/kilianp07/smartgrid/core/metrics"
	coremqtt "github.com/kilianp07/smartgrid/core/mqtt"
	"github.com/kilianp07/smartgrid/core/model"
	"github.com/kilianp07/smartgrid/core/pipeline"
	"github.com/kilianp07/smartgrid/core/runlog"
	"github.com/kilianp07/smartgrid/infra/dataset"
	"github.com/kilianp07/smartgrid/infra/logger"
	"github.com/kilianp07/smartgrid/infra/metrics"
	"github.com/kilianp07/smartgrid/infra/mqtt"
	"github.com/kilianp07/smartgrid/internal/eventbus"
	"github.com/kilianp07/smartgrid/pkg/export"
)

// Service wires the configured sinks, stores and publishers around a
// pipeline run.
type Service struct {
	cfg       *config.Config
	log       logger.Logger
	sink      coremetrics.MetricsSink
	store     runlog.Store
	publisher coremqtt.Publisher
	paho      *mqtt.PahoPublisher
	stdout    io.Writer
}

// New creates a Service from the configuration. The MQTT publisher is only
// connected when a broker is configured.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	store, err := runlog.Open(cfg.Logging.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("run log: %w", err)
	}
	svc := &Service{
		cfg:    cfg,
		log:    logg,
		sink:   sink,
		store:  store,
		stdout: os.Stdout,
	}
	if cfg.MQTT.Enabled() {
		pub, err := mqtt.NewPahoPublisher(cfg.MQTT)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.paho = pub
		svc.publisher = pub
	}
	return svc, nil
}

// SetOutput redirects the result written when no output path is configured.
func (s *Service) SetOutput(w io.Writer) { s.stdout = w }

// SetPublisher replaces the MQTT publisher.
func (s *Service) SetPublisher(p coremqtt.Publisher) { s.publisher = p }

// Store returns the run log store.
func (s *Service) Store() runlog.Store { return s.store }

// LoadGrid reads the configured district and the optional start assignment.
func (s *Service) LoadGrid() (*model.Grid, model.Assignment, error) {
	g, err := dataset.LoadGrid(s.cfg.Data.Batteries, s.cfg.Data.Houses, s.cfg.Grid.DatasetOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("load district: %w", err)
	}
	if s.cfg.Data.Start == "" {
		return g, nil, nil
	}
	start, err := dataset.LoadConnectionsFile(s.cfg.Data.Start)
	if err != nil {
		return nil, nil, fmt.Errorf("load start: %w", err)
	}
	return g, start, nil
}

// Run executes the configured pipeline once, writes the result and
// publishes it. Observers are drained before it returns.
func (s *Service) Run(ctx context.Context) (pipeline.Result, error) {
	g, start, err := s.LoadGrid()
	if err != nil {
		return pipeline.Result{}, err
	}
	s.log.Infof("loaded %s: %d batteries, %d houses", s.cfg.Data.Name(), len(g.Batteries()), len(g.Houses()))

	bus := eventbus.NewTyped[events.Event]()
	obsCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(obsCtx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	collected := metrics.StartEventCollector(obsCtx, bus, s.sink)
	forwarded := mqtt.StartProgressForwarder(obsCtx, bus, s.publisher)

	pc := s.pipelineConfig(start)
	runner := pipeline.Runner{
		Log:     logger.New("pipeline"),
		Events:  bus,
		Metrics: s.sink,
		Store:   s.store,
	}
	res, err := runner.Run(ctx, g, pc)
	bus.Close()
	<-collected
	<-forwarded
	if err != nil {
		return pipeline.Result{}, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishResult(ctx, coremqtt.NewResultMessage(g, res)); err != nil {
			s.log.Errorf("publish result: %v", err)
		}
	}
	if err := s.write(g, res); err != nil {
		return res, fmt.Errorf("write output: %w", err)
	}
	if dropped := bus.Dropped(); dropped > 0 {
		s.log.Warnf("%d progress events dropped", dropped)
	}
	s.log.Infof("run %s: total cost %.0f (batteries %.0f, cables %.0f), valid %t, took %s",
		res.RunID, res.Costs.Total, res.Costs.Batteries, res.Costs.Cables, res.Valid, res.Duration.Round(time.Millisecond))
	return res, nil
}

func (s *Service) pipelineConfig(start model.Assignment) pipeline.Config {
	pc := s.cfg.Pipeline
	cfg := pipeline.Config{
		District:   s.cfg.Data.District,
		Dataset:    s.cfg.Data.Name(),
		Seed:       pc.Seed,
		Initial:    pc.Initial,
		Optimizers: pc.Optimizers,
		Router:     pc.Router,
		Budget:     pc.Budget(),
		Clustering: cluster.Options{MaxIterations: pc.KMeansIterations},
	}
	if start != nil {
		cfg.Initial.Type = ""
		cfg.Start = start
	}
	return cfg
}

func (s *Service) write(g *model.Grid, res pipeline.Result) error {
	out := s.cfg.Output
	if out.Path == "" {
		return export.Write(s.stdout, out.Format, g, res)
	}
	if err := export.WriteFile(out.Path, out.Format, g, res); err != nil {
		return err
	}
	s.log.Infof("wrote %s result to %s", out.Format, out.Path)
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.paho != nil {
		s.paho.Disconnect()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	return s.store.Close()
}
