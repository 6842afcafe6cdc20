package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store backends
const (
	StoreDynamoDB = "dynamodb"
	StoreMemory   = "memory"
)

// Lambda event formats
const (
	EventFormatREST = "rest"
	EventFormatHTTP = "http"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServiceName   string `yaml:"service_name"`
	ServerAddress string `yaml:"server_address"`
	Environment   string `yaml:"environment"`
	BasePath      string `yaml:"base_path"`

	// AWS configuration
	AWSRegion        string `yaml:"aws_region"`
	DynamoDBTable    string `yaml:"dynamodb_table"`
	DynamoDBEndpoint string `yaml:"dynamodb_endpoint"`
	EventBusName     string `yaml:"event_bus_name"`

	// Store configuration
	StoreBackend    string   `yaml:"store_backend"`
	ScanPageSize    int      `yaml:"scan_page_size"`
	MaxScanPages    int      `yaml:"max_scan_pages"`
	UpdatableFields []string `yaml:"updatable_fields"`

	// Lambda configuration
	LambdaEventFormat string `yaml:"lambda_event_format"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Feature flags
	EnableMetrics        bool   `yaml:"enable_metrics"`
	EnableTracing        bool   `yaml:"enable_tracing"`
	OTELEndpoint         string `yaml:"otel_endpoint"`
	EnableCircuitBreaker bool   `yaml:"enable_circuit_breaker"`
	EnableCORS           bool   `yaml:"enable_cors"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		ServiceName:       "products-api",
		ServerAddress:     ":8080",
		Environment:       "development",
		AWSRegion:         "us-east-1",
		DynamoDBTable:     "products",
		StoreBackend:      StoreDynamoDB,
		UpdatableFields:   []string{"name", "description", "price"},
		LambdaEventFormat: EventFormatREST,
		LogLevel:          "info",
		EnableMetrics:     true,
		OTELEndpoint:      "localhost:4317",
		EnableCORS:        true,
	}
}

// LoadConfig loads configuration from an optional YAML file named by
// CONFIG_FILE and then from environment variables, which take precedence.
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServiceName = getEnv("SERVICE_NAME", c.ServiceName)
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.BasePath = getEnv("BASE_PATH", c.BasePath)

	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.DynamoDBTable = getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", c.DynamoDBTable))
	c.DynamoDBEndpoint = getEnv("DYNAMODB_ENDPOINT", c.DynamoDBEndpoint)
	c.EventBusName = getEnv("EVENT_BUS_NAME", c.EventBusName)

	c.StoreBackend = strings.ToLower(getEnv("STORE_BACKEND", c.StoreBackend))
	c.ScanPageSize = getEnvInt("SCAN_PAGE_SIZE", c.ScanPageSize)
	c.MaxScanPages = getEnvInt("MAX_SCAN_PAGES", c.MaxScanPages)
	c.UpdatableFields = getEnvList("UPDATABLE_FIELDS", c.UpdatableFields)

	c.LambdaEventFormat = strings.ToLower(getEnv("LAMBDA_EVENT_FORMAT", c.LambdaEventFormat))

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
	c.OTELEndpoint = getEnv("OTEL_ENDPOINT", c.OTELEndpoint)
	c.EnableCircuitBreaker = getEnvBool("ENABLE_CIRCUIT_BREAKER", c.EnableCircuitBreaker)
	c.EnableCORS = getEnvBool("ENABLE_CORS", c.EnableCORS)
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreDynamoDB:
		if c.DynamoDBTable == "" {
			return fmt.Errorf("TABLE_NAME is required for the dynamodb store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	switch c.LambdaEventFormat {
	case EventFormatREST, EventFormatHTTP:
	default:
		return fmt.Errorf("unknown LAMBDA_EVENT_FORMAT %q", c.LambdaEventFormat)
	}

	if c.ScanPageSize < 0 {
		return fmt.Errorf("SCAN_PAGE_SIZE must not be negative")
	}
	if c.MaxScanPages < 0 {
		return fmt.Errorf("MAX_SCAN_PAGES must not be negative")
	}
	if len(c.UpdatableFields) == 0 {
		return fmt.Errorf("UPDATABLE_FIELDS must name at least one attribute")
	}
	for _, name := range c.UpdatableFields {
		if name == "id" {
			return fmt.Errorf("UPDATABLE_FIELDS must not contain the key attribute id")
		}
	}
	if c.BasePath != "" && !strings.HasPrefix(c.BasePath, "/") {
		return fmt.Errorf("BASE_PATH must start with /")
	}
	if c.EnableTracing && c.OTELEndpoint == "" {
		return fmt.Errorf("OTEL_ENDPOINT is required when tracing is enabled")
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvList gets a comma-separated environment variable with a default value
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
