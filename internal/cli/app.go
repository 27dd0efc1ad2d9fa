package cli

import (
	"context"
	"errors"
	"io"

	"github.com/chronoduo/reportjob/internal/config"
	"github.com/chronoduo/reportjob/internal/logging"
	"github.com/chronoduo/reportjob/internal/render"
	"github.com/chronoduo/reportjob/internal/storage"
	"github.com/chronoduo/reportjob/internal/store/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app holds the collaborators built from configuration.
type app struct {
	cfg       *config.Config
	log       *logrus.Logger
	logCloser io.Closer
	store     *sqlite.Store
}

// openApp loads configuration, sets up logging and opens the database.
// The caller must Close the result.
func openApp(cmd *cobra.Command) (*app, error) {
	var files []string
	if envFile, _ := cmd.Flags().GetString("env-file"); envFile != "" {
		files = append(files, envFile)
	}

	cfg, err := config.Load(files...)
	if err != nil {
		return nil, err
	}

	log, closer, err := logging.New(logging.Options{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		Out:        cmd.ErrOrStderr(),
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	if err != nil {
		return nil, err
	}

	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}

	return &app{cfg: cfg, log: log, logCloser: closer, store: st}, nil
}

func (a *app) Close() error {
	return errors.Join(a.store.Close(), a.logCloser.Close())
}

// bucket returns the configured storage backend.
func (a *app) bucket() storage.Bucket {
	if a.cfg.StorageBackend == config.BackendSupabase {
		return storage.NewSupabaseBucket(a.cfg.SupabaseURL, a.cfg.StorageBucket, a.cfg.SupabaseServiceKey, a.cfg.HTTPTimeout)
	}
	return storage.NewDirBucket(a.cfg.StorageDir, a.cfg.StorageBucket)
}

// renderers returns PDF and XLSX, plus HTML when a template is configured.
// A template that cannot be loaded is an error.
func (a *app) renderers() ([]render.Renderer, error) {
	rs := []render.Renderer{render.PDF{}, render.XLSX{}}
	if a.cfg.TemplatePath == "" {
		return rs, nil
	}
	tmpl, err := render.LoadTemplate(a.cfg.TemplatePath)
	if err != nil {
		return nil, err
	}
	return append(rs, tmpl), nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
