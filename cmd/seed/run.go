package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/socialseed/internal/bootstrap"
	"github.com/dropDatabas3/socialseed/internal/config"
	"github.com/dropDatabas3/socialseed/internal/lock"
	"github.com/dropDatabas3/socialseed/internal/metrics"
	"github.com/dropDatabas3/socialseed/internal/observability/logger"
	"github.com/dropDatabas3/socialseed/internal/report"
	"github.com/dropDatabas3/socialseed/internal/store"
	_ "github.com/dropDatabas3/socialseed/internal/store/adapters/dal"
	"github.com/dropDatabas3/socialseed/internal/util"
)

type app struct {
	cfgPath  string
	logLevel string
	driver   string
	dsn      string

	cfg   *config.Config
	log   *zap.Logger
	runID string
	rep   *report.Report
	reg   *prometheus.Registry
}

// setup carga config, logger y métricas. Los flags se aplican como env para
// que pasen por los mismos overrides/defaults que el resto de la config.
func (a *app) setup() error {
	for k, v := range map[string]string{"LOG_LEVEL": a.logLevel, "STORAGE_DRIVER": a.driver, "STORAGE_DSN": a.dsn} {
		if v != "" {
			_ = os.Setenv(k, v)
		}
	}

	cfg, loaded, err := config.LoadOrDefault(a.cfgPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "socialseed"})
	a.runID = uuid.NewString()
	a.log = logger.L().With(logger.RunID(a.runID))
	if !loaded {
		a.log.Debug("config file not found, using defaults", logger.String("path", a.cfgPath))
	}

	a.reg = prometheus.NewRegistry()
	if err := metrics.Register(a.reg); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	a.rep = &report.Report{
		RunID:     a.runID,
		Generated: time.Now().UTC(),
		Driver:    store.Canonical(cfg.Storage.Driver),
		DSN:       util.MaskDSN(cfg.Storage.DSN),
	}
	return nil
}

// wrap agrega ctx con señales + logger y vuelca reporte/métricas al final,
// también cuando la corrida falla.
func (a *app) wrap(fn func(ctx context.Context) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = logger.ToContext(ctx, a.log)

		start := time.Now()
		err := fn(ctx)
		if err != nil {
			a.rep.Errors = append(a.rep.Errors, err.Error())
			a.log.Error("seed failed", logger.Duration(time.Since(start)), logger.Err(err))
		} else {
			a.log.Info("seed finished", logger.Duration(time.Since(start)))
		}
		a.flush()
		_ = logger.Sync()
		return err
	}
}

func (a *app) flush() {
	if p := a.cfg.Report.Path; p != "" {
		if err := report.Write(p, a.rep); err != nil {
			a.log.Warn("report write failed", logger.Err(err))
		} else {
			a.log.Debug("report written", logger.String("path", p))
		}
	}
	if p := a.cfg.Metrics.Textfile; p != "" {
		if err := metrics.WriteTextfile(p, a.reg); err != nil {
			a.log.Warn("metrics textfile write failed", logger.Err(err))
		}
	}
}

func (a *app) open(ctx context.Context, sc config.StorageConfig) (store.Connection, error) {
	a.log.Info("connecting", logger.Driver(store.Canonical(sc.Driver)), logger.DSN(util.MaskDSN(sc.DSN)))
	conn, err := store.OpenAdapter(ctx, store.AdapterConfig{
		Name:            sc.Driver,
		DSN:             sc.DSN,
		ConnectTimeout:  sc.Timeout(),
		MaxOpenConns:    sc.Pool.MaxOpenConns,
		MaxIdleConns:    sc.Pool.MaxIdleConns,
		ConnMaxLifetime: sc.Lifetime(),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", sc.Driver, err)
	}
	return conn, nil
}

func (a *app) runMessages(ctx context.Context) error {
	conn, err := a.open(ctx, a.cfg.Storage)
	if err != nil {
		return err
	}
	defer conn.Close()

	docs, err := store.DocumentsOf(conn)
	if err != nil {
		return err
	}

	g := a.cfg.Messages.Guard
	locker, err := lock.New(lock.Config{Kind: g.Kind, Addr: g.Redis.Addr, DB: g.Redis.DB, Prefix: g.Redis.Prefix})
	if err != nil {
		return err
	}
	if locker != nil {
		defer locker.Close()
	}

	res, err := bootstrap.SeedMessages(ctx, bootstrap.MessagesConfig{
		Store:   docs,
		Plan:    bootstrap.MessagesPlanFrom(a.cfg),
		Locker:  locker,
		LockTTL: a.cfg.GuardTTL(),
	})
	a.rep.Messages = &res
	if err != nil {
		return fmt.Errorf("messages: %w", err)
	}
	switch {
	case res.Seeded:
		fmt.Printf("messages: %s.%s sembrada con %d documentos ✅\n", res.Database, res.Collection, res.Inserted)
	default:
		fmt.Printf("messages: %s.%s sin cambios (%s)\n", res.Database, res.Collection, res.Skipped)
	}
	return nil
}

func (a *app) runAdmin(ctx context.Context) error {
	conn, err := a.open(ctx, a.cfg.Admin.Storage)
	if err != nil {
		return err
	}
	defer conn.Close()

	users, err := store.UsersOf(conn)
	if err != nil {
		return fmt.Errorf("admin: %s: %w", conn.Name(), err)
	}
	res, err := bootstrap.SeedAdmin(ctx, bootstrap.AdminConfig{Users: users, Plan: bootstrap.AdminPlanFrom(a.cfg)})
	a.rep.Admin = &res
	if err != nil {
		return fmt.Errorf("admin: %w", err)
	}
	if res.Created {
		fmt.Printf("admin: usuario %q creado (id=%d) ✅\n", res.Username, res.UserID)
	} else {
		fmt.Printf("admin: usuario %q ya existe\n", res.Username)
	}
	return nil
}

// runBoth corre ambos targets en paralelo. Cada uno escribe su propio campo
// del reporte; no se cancelan entre sí para no cortar un insert a medias.
func (a *app) runBoth(ctx context.Context) error {
	var g errgroup.Group
	var msgErr, admErr error
	g.Go(func() error { msgErr = a.runMessages(ctx); return msgErr })
	g.Go(func() error { admErr = a.runAdmin(ctx); return admErr })
	_ = g.Wait()
	return errors.Join(msgErr, admErr)
}

func (a *app) runAll(ctx context.Context) error {
	if a.cfg.Admin.Enabled {
		return a.runBoth(ctx)
	}
	return a.runMessages(ctx)
}

func (a *app) runStatus(ctx context.Context) error {
	conn, err := a.open(ctx, a.cfg.Storage)
	if err != nil {
		return err
	}
	defer conn.Close()

	docs, err := store.DocumentsOf(conn)
	if err != nil {
		return err
	}
	st, err := bootstrap.Inspect(ctx, docs, bootstrap.MessagesPlanFrom(a.cfg))
	if err != nil {
		return err
	}
	a.rep.Status = &st

	out, err := yaml.Marshal(st)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}
