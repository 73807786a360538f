package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

type Config struct {
	Addr         string
	Debug        bool
	Settle       time.Duration
	Grace        time.Duration
	Reminder     time.Duration
	EvalCooldown time.Duration
	FrameRate    int
	DatabaseURL  string // empty disables the transcript
}

func Default() Config {
	return Config{
		Addr:         ":8080",
		Settle:       33 * time.Millisecond,
		Grace:        50 * time.Millisecond,
		Reminder:     30 * time.Second,
		EvalCooldown: 15 * time.Second,
		FrameRate:    120,
	}
}

// InitConfig loads a .env file into the environment when one exists.
func InitConfig(files ...string) error {
	err := godotenv.Load(files...)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func GetEnvVariable(v string) (string, error) {
	if v == "" {
		return "", fmt.Errorf("input param empty")
	}
	b := os.Getenv(v)
	if b == "" {
		return "", fmt.Errorf("failed to get variable for %s", v)
	}

	return b, nil
}

// Load reads the configuration from the environment. Every bad variable is
// reported, not just the first.
func Load() (Config, error) {
	cfg := Default()
	var errs error

	if v, err := GetEnvVariable("COMMENTATOR_ADDR"); err == nil {
		cfg.Addr = v
	}
	if v, err := GetEnvVariable("COMMENTATOR_DEBUG"); err == nil {
		b, err := strconv.ParseBool(v)
		errs = multierr.Append(errs, wrap("COMMENTATOR_DEBUG", err))
		cfg.Debug = b
	}
	errs = multierr.Append(errs, intVar("COMMENTATOR_SETTLE_MS", time.Millisecond, &cfg.Settle))
	errs = multierr.Append(errs, intVar("COMMENTATOR_GRACE_MS", time.Millisecond, &cfg.Grace))
	errs = multierr.Append(errs, intVar("COMMENTATOR_REMINDER_SEC", time.Second, &cfg.Reminder))
	errs = multierr.Append(errs, intVar("COMMENTATOR_EVAL_COOLDOWN_SEC", time.Second, &cfg.EvalCooldown))
	if v, err := GetEnvVariable("COMMENTATOR_FRAME_RATE"); err == nil {
		n, err := strconv.Atoi(v)
		errs = multierr.Append(errs, wrap("COMMENTATOR_FRAME_RATE", err))
		cfg.FrameRate = n
	}
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	if errs != nil {
		return Config{}, errs
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs error
	if c.Addr == "" {
		errs = multierr.Append(errs, errors.New("addr is empty"))
	}
	if c.Settle < time.Millisecond || c.Settle >= 100*time.Millisecond {
		errs = multierr.Append(errs, fmt.Errorf("settle %v must be between 1ms and 99ms", c.Settle))
	}
	if c.Grace <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("grace %v must be positive", c.Grace))
	}
	if c.Reminder <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("reminder %v must be positive", c.Reminder))
	}
	if c.EvalCooldown <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("eval cooldown %v must be positive", c.EvalCooldown))
	}
	if c.FrameRate <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("frame rate %d must be positive", c.FrameRate))
	}
	return errs
}

func intVar(name string, unit time.Duration, dst *time.Duration) error {
	v, err := GetEnvVariable(name)
	if err != nil {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return wrap(name, err)
	}
	*dst = time.Duration(n) * unit
	return nil
}

func wrap(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}
