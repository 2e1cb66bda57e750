// Package config loads client configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11: an
// optional .env file in the working directory is loaded once, then the
// environment is parsed into any annotated struct.
//
// # Usage
//
//	type ClientConfig struct {
//	    APIBaseURL string        `env:"PASTRYJOY_API_URL" envDefault:"http://localhost:8000"`
//	    Timeout    time.Duration `env:"PASTRYJOY_HTTP_TIMEOUT" envDefault:"10s"`
//	}
//
//	var cfg ClientConfig
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// Sentinel errors ErrNilPointer and ErrParsingConfig support errors.Is.
package config
