package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the configuration settings for the station resolver service.
//
// Scalars come from the environment (optionally through a .env file).
// Lists that do not fit into environment variables, such as the ordered
// station sources, the static stations and the efficiency table, come from
// the YAML file named by AMPERE_CONFIG_FILE.
type Config struct {
	Env        string             // Env is the current environment: local, development, production.
	Port       int                // Port is the HTTP server port.
	Geocoder   GeocoderConfig     // Geocoder selects and tunes the place name provider.
	Resolver   ResolverConfig     // Resolver tunes the merge of station sources.
	Backfill   BackfillConfig     // Backfill tunes the catalogue geocoding workers.
	Database   PostgresConfig     // Database holds the postgres database configuration.
	Sources    []SourceConfig     // Sources in priority order, highest first.
	Efficiency map[string]float64 // Efficiency maps a vehicle category to km per kWh.
}

// GeocoderConfig configures the geocoding provider and its cache.
type GeocoderConfig struct {
	Type      string        // Type is google, nominatim or mapbox.
	APIKey    string        // APIKey is the key or access token of the provider.
	Country   string        // Country biases the results to one ISO 3166-1 alpha-2 country.
	RateLimit int           // RateLimit is the number of requests per second.
	CacheSize int           // CacheSize is the number of places kept in memory.
	CacheTTL  time.Duration // CacheTTL is how long a place stays in memory.
}

// ResolverConfig tunes the resolution of nearest stations.
type ResolverConfig struct {
	K             int           // K is the number of stations returned when a request does not say.
	DedupKm       float64       // DedupKm is the distance under which two stations are one.
	SourceTimeout time.Duration // SourceTimeout bounds every source query.
	RadiusKm      float64       // RadiusKm is the search radius handed to the sources.
}

// BackfillConfig configures the catalogue backfill workers.
type BackfillConfig struct {
	Workers       int           // Workers is the number of concurrent geocoding workers.
	Interval      time.Duration // Interval is the duration between two batches.
	AddressSuffix string        // AddressSuffix is appended to catalogue addresses for more accurate geocoding.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// Enabled reports whether a database is configured.
func (p PostgresConfig) Enabled() bool {
	return p.Host != ""
}

// MustLoad loads the configuration from the environment and the optional YAML file.
// It panics when a value cannot be parsed.
func MustLoad() *Config {
	_ = godotenv.Load()

	port, err := strconv.Atoi(setDefaultEnv("AMPERE_PORT", "8080"))
	if err != nil {
		panic("failed to parse port for http server from configuration")
	}

	k, err := strconv.Atoi(setDefaultEnv("AMPERE_K", "3"))
	if err != nil || k <= 0 {
		panic("failed to parse number of stations from configuration, must be a positive integer")
	}

	dedupKm, err := strconv.ParseFloat(setDefaultEnv("AMPERE_DEDUP_KM", "0.05"), 64)
	if err != nil || dedupKm < 0 {
		panic("failed to parse dedup threshold from configuration")
	}

	radiusKm, err := strconv.ParseFloat(setDefaultEnv("AMPERE_RADIUS_KM", "25"), 64)
	if err != nil {
		panic("failed to parse search radius from configuration")
	}

	sourceTimeout, err := time.ParseDuration(setDefaultEnv("AMPERE_SOURCE_TIMEOUT", "8s"))
	if err != nil || sourceTimeout <= 0 {
		panic("failed to parse source timeout from configuration")
	}

	rateLimit, err := strconv.Atoi(setDefaultEnv("AMPERE_GEOCODER_RATE_LIMIT", "0"))
	if err != nil {
		panic("failed to parse geocoder rate limit from configuration")
	}

	cacheSize, err := strconv.Atoi(setDefaultEnv("AMPERE_GEOCODER_CACHE_SIZE", "1024"))
	if err != nil || cacheSize <= 0 {
		panic("failed to parse geocoder cache size from configuration")
	}

	cacheTTL, err := time.ParseDuration(setDefaultEnv("AMPERE_GEOCODER_CACHE_TTL", "24h"))
	if err != nil {
		panic("failed to parse geocoder cache ttl from configuration")
	}

	interval, err := time.ParseDuration(setDefaultEnv("AMPERE_BACKFILL_INTERVAL", "10m"))
	if err != nil {
		panic("failed to parse backfill interval from configuration")
	}

	workers, err := strconv.Atoi(setDefaultEnv("AMPERE_BACKFILL_WORKERS", "4"))
	if err != nil {
		panic("failed to parse backfill workers from configuration, must be an integer types")
	}

	cfg := &Config{
		Env:  setDefaultEnv("AMPERE_ENV", "production"),
		Port: port,
		Geocoder: GeocoderConfig{
			Type:      setDefaultEnv("AMPERE_GEOCODER", "nominatim"),
			APIKey:    os.Getenv("AMPERE_GEOCODER_KEY"),
			Country:   os.Getenv("AMPERE_COUNTRY"),
			RateLimit: rateLimit,
			CacheSize: cacheSize,
			CacheTTL:  cacheTTL,
		},
		Resolver: ResolverConfig{
			K:             k,
			DedupKm:       dedupKm,
			SourceTimeout: sourceTimeout,
			RadiusKm:      radiusKm,
		},
		Backfill: BackfillConfig{
			Workers:       workers,
			Interval:      interval,
			AddressSuffix: os.Getenv("AMPERE_ADDRESS_SUFFIX"),
		},
		Database: PostgresConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     setDefaultEnv("DB_PORT", "5432"),
			User:     os.Getenv("DB_USERNAME"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
		},
		Sources: sourcesFromEnv(),
	}

	if path := os.Getenv("AMPERE_CONFIG_FILE"); path != "" {
		file, errFile := loadFile(path)
		if errFile != nil {
			panic("failed to load config file: " + errFile.Error())
		}
		if len(file.Sources) > 0 {
			cfg.Sources = file.Sources
		}
		cfg.Efficiency = file.Efficiency
	}

	return cfg
}

// sourcesFromEnv builds the source list from AMPERE_SOURCES, a comma separated list of source types.
func sourcesFromEnv() []SourceConfig {
	var sources []SourceConfig
	for _, kind := range strings.Split(setDefaultEnv("AMPERE_SOURCES", "static,nominatim"), ",") {
		kind = strings.TrimSpace(kind)
		if kind == "" {
			continue
		}

		source := SourceConfig{Type: kind}
		switch kind {
		case "openchargemap":
			source.APIKey = os.Getenv("AMPERE_OCM_KEY")
		case "google":
			source.APIKey = os.Getenv("AMPERE_GOOGLE_PLACES_KEY")
		}
		sources = append(sources, source)
	}

	return sources
}

func setDefaultEnv(key, override string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = override
	}

	return value
}
