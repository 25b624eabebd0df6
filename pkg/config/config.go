package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Drivers de almacenamiento soportados (DB_DRIVER).
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongodb"
	DriverMemory   = "memory"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	Log       LogConfig
	DB        DBConfig
	Mongo     MongoConfig
	HTTP      HTTPConfig
	Kafka     KafkaConfig
	Telemetry TelemetryConfig
	Scheduler SchedulerConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// LogConfig nivel y formato del logger.
type LogConfig struct {
	Level string // trace, debug, info, warn, error
}

// DBConfig configuración del almacenamiento. Driver elige el backend; el resto aplica a PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	Driver      string
	AutoMigrate bool // crea tablas/índices al arrancar
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int32
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// MongoConfig conexión a MongoDB (requiere replica set para transacciones).
type MongoConfig struct {
	URI         string
	Database    string
	AppName     string
	MaxPoolSize uint64
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host      string
	Port      int
	APIPrefix string
	BodyLimit int // bytes
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// KafkaConfig publicación de eventos del ledger. Sin brokers no se publica nada.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Enabled indica si hay brokers configurados.
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// TelemetryConfig trazas OTLP y métricas Prometheus.
type TelemetryConfig struct {
	ServiceName    string
	OTLPEndpoint   string // host:port del colector OTLP/HTTP; vacío = sin exportar trazas
	OTLPInsecure   bool
	MetricsEnabled bool
}

// SchedulerConfig barrido periódico de bajo stock. LowStockCron vacío desactiva el job.
type SchedulerConfig struct {
	LowStockCron      string
	LowStockThreshold int64
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_DRIVER, DB_HOST, MONGO_URI, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo .env o config.env; se ignora si no existe
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.MergeInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "stock-ledger-api"),
		},
		Log: LogConfig{
			Level: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			Driver:      strings.ToLower(getString(v, "DB_DRIVER", DriverPostgres)),
			AutoMigrate: getBool(v, "DB_AUTO_MIGRATE", true),
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "stock_ledger"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    int32(getInt(v, "DB_MAX_CONNS", 25)),
		},
		Mongo: MongoConfig{
			URI:         getString(v, "MONGO_URI", "mongodb://localhost:27017/?replicaSet=rs0"),
			Database:    getString(v, "MONGO_DATABASE", "stock_ledger"),
			AppName:     getString(v, "APP_NAME", "stock-ledger-api"),
			MaxPoolSize: uint64(getInt(v, "MONGO_MAX_POOL_SIZE", 50)),
		},
		HTTP: HTTPConfig{
			Host:      getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:      getInt(v, "HTTP_PORT", 8080),
			APIPrefix: getString(v, "HTTP_API_PREFIX", "/api"),
			BodyLimit: getInt(v, "HTTP_BODY_LIMIT", 1024*1024),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getString(v, "KAFKA_BROKERS", "")),
			Topic:   getString(v, "KAFKA_TOPIC", "stock-ledger.events"),
		},
		Telemetry: TelemetryConfig{
			ServiceName:    getString(v, "OTEL_SERVICE_NAME", "stock-ledger-api"),
			OTLPEndpoint:   getString(v, "OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			OTLPInsecure:   getBool(v, "OTEL_EXPORTER_OTLP_INSECURE", true),
			MetricsEnabled: getBool(v, "METRICS_ENABLED", true),
		},
		Scheduler: SchedulerConfig{
			LowStockCron:      getString(v, "LOW_STOCK_CRON", ""),
			LowStockThreshold: int64(getInt(v, "LOW_STOCK_THRESHOLD", 10)),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case DriverPostgres, DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("DB_DRIVER inválido %q: use %s, %s o %s", c.DB.Driver, DriverPostgres, DriverMongo, DriverMemory)
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("HTTP_PORT fuera de rango: %d", c.HTTP.Port)
	}
	if c.Scheduler.LowStockThreshold < 0 {
		return fmt.Errorf("LOW_STOCK_THRESHOLD no puede ser negativo")
	}
	if !strings.HasPrefix(c.HTTP.APIPrefix, "/") {
		c.HTTP.APIPrefix = "/" + c.HTTP.APIPrefix
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		b, err := strconv.ParseBool(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return def
		}
		return b
	}
	return def
}

// splitList separa una lista por comas descartando elementos vacíos.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
