package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve in minimal containers

	"github.com/caarlos0/env/v6"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// ErrInvalid wraps every configuration failure.
var ErrInvalid = errors.New("invalid configuration")

const (
	BackendDir      = "dir"
	BackendSupabase = "supabase"
)

// Config holds the settings of a report run.
type Config struct {
	DatabasePath string `env:"DATABASE_PATH" validate:"required"`

	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"dir" validate:"oneof=dir supabase"`
	StorageDir     string `env:"STORAGE_DIR" envDefault:"./out" validate:"required_if=StorageBackend dir"`
	StorageBucket  string `env:"STORAGE_BUCKET" envDefault:"berichte" validate:"required"`

	SupabaseURL        string `env:"SUPABASE_URL" validate:"required_if=StorageBackend supabase"`
	SupabaseServiceKey string `env:"SUPABASE_SERVICE_KEY" validate:"required_if=StorageBackend supabase"`

	TemplatePath string `env:"TEMPLATE_PATH"`
	LogoPath     string `env:"LOGO_PATH"`
	Timezone     string `env:"TIMEZONE" envDefault:"Europe/Berlin" validate:"required"`

	LogLevel      string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=trace debug info warn warning error fatal panic"`
	LogFormat     string `env:"LOG_FORMAT" envDefault:"auto" validate:"oneof=auto text json"`
	LogFile       string `env:"LOG_FILE"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"10" validate:"min=1"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5" validate:"min=0"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"30" validate:"min=0"`

	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s" validate:"min=0"`

	location *time.Location
}

// Load reads dotenv files, then the process environment, and validates the
// result. Without files a ".env" in the working directory is used if present.
// Every failure wraps ErrInvalid.
func Load(envFiles ...string) (*Config, error) {
	if err := loadDotenv(envFiles); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotenv(files []string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		return godotenv.Load(".env")
	}
	return godotenv.Load(files...)
}

// Validate checks field constraints and resolves the timezone.
func (c *Config) Validate() error {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("env"), ",", 2)[0]
	})

	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag())
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("%w: TIMEZONE: %v", ErrInvalid, err)
	}
	c.location = loc
	return nil
}

// Location returns the timezone the job's calendar runs in.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}
