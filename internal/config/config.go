package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables
// (optionally seeded from a .env file in the working directory).
type Config struct {
	DataDir   string `validate:"required"`
	OutputDir string
	HTTPAddr  string `validate:"required"`
	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=json text"`

	ShutdownTimeout    time.Duration
	BatchSize          int
	BatchFlushInterval time.Duration

	// Analysis settings.
	GumbelMinYears    int `validate:"gte=2"`
	DirectionBinWidth int `validate:"gt=0,lte=180,divides360"`

	// Optional artifact writers.
	XLSXEnabled    bool
	ParquetEnabled bool

	// Worker mode.
	KafkaBrokers      []string `validate:"min=1"`
	KafkaRequestTopic string   `validate:"required"`
	KafkaResultTopic  string   `validate:"required"`
	KafkaGroupID      string   `validate:"required"`
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	minYears, err := envInt("GUMBEL_MIN_YEARS", 10)
	if err != nil {
		return nil, err
	}

	binWidth, err := envInt("DIRECTION_BIN_WIDTH", 20)
	if err != nil {
		return nil, err
	}

	xlsxEnabled, err := envBool("XLSX_ENABLED", false)
	if err != nil {
		return nil, err
	}

	parquetEnabled, err := envBool("PARQUET_ENABLED", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:            sharedcfg.EnvOrDefault("DATA_DIR", "data"),
		OutputDir:          os.Getenv("OUTPUT_DIR"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
		GumbelMinYears:     minYears,
		DirectionBinWidth:  binWidth,
		XLSXEnabled:        xlsxEnabled,
		ParquetEnabled:     parquetEnabled,
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaRequestTopic:  sharedcfg.EnvOrDefault("KAFKA_REQUEST_TOPIC", "wind-analysis-requests"),
		KafkaResultTopic:   sharedcfg.EnvOrDefault("KAFKA_RESULT_TOPIC", "wind-analysis-results"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "wind-stats"),
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, describeValidation(err)
	}
	return cfg, nil
}

// envNames maps struct fields to the environment variable that sets them, so
// validation errors name something the operator can change.
var envNames = map[string]string{
	"DataDir":           "DATA_DIR",
	"HTTPAddr":          "HTTP_ADDR",
	"LogLevel":          "LOG_LEVEL",
	"LogFormat":         "LOG_FORMAT",
	"GumbelMinYears":    "GUMBEL_MIN_YEARS",
	"DirectionBinWidth": "DIRECTION_BIN_WIDTH",
	"KafkaBrokers":      "KAFKA_BROKERS",
	"KafkaRequestTopic": "KAFKA_REQUEST_TOPIC",
	"KafkaResultTopic":  "KAFKA_RESULT_TOPIC",
	"KafkaGroupID":      "KAFKA_GROUP_ID",
	"Name":              "name",
	"Folder":            "folder",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Wind-rose sectors must tile the full circle.
	_ = v.RegisterValidation("divides360", func(fl validator.FieldLevel) bool {
		w := fl.Field().Int()
		return w > 0 && 360%w == 0
	})
	return v
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	name, ok := envNames[fe.Field()]
	if !ok {
		name = fe.Field()
	}
	if fe.Param() != "" {
		return fmt.Errorf("invalid %s: %q fails %s=%s", name, fmt.Sprint(fe.Value()), fe.Tag(), fe.Param())
	}
	return fmt.Errorf("invalid %s: %q fails %s", name, fmt.Sprint(fe.Value()), fe.Tag())
}

func envInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
