package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/libradesk/libradesk/pkg/logger"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"LIBRADESK_HTTP_HOST"`
	Port         string        `yaml:"port" envconfig:"LIBRADESK_HTTP_PORT" default:"8090"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ"`
	WriteTimeout time.Duration
}

// LibraryAPI locates the remote library REST API the client talks to.
type LibraryAPI struct {
	BaseURL string `yaml:"baseURL" envconfig:"LIBRARY_API_URL" default:"http://localhost:8000"`
}

// LookupAPI locates the external bibliographic lookup collaborator.
type LookupAPI struct {
	BaseURL string `yaml:"baseURL" envconfig:"LOOKUP_API_URL" default:"https://openlibrary.org"`
}

type Store struct {
	Path string `yaml:"path" envconfig:"LIBRADESK_STORE" default:"libradesk.db"`
}

type Config struct {
	Server HTTPServer `yaml:"server"`
	API    LibraryAPI `yaml:"api"`
	Lookup LookupAPI  `yaml:"lookup"`
	Store  Store      `yaml:"store"`
	Log    logger.Log `yaml:"log"`
}

var (
	once sync.Once
	cfg  Config
)

// NewConfig reads config from environment.
func NewConfig(ops ...Option) Config {
	once.Do(func() {
		var config Config
		for _, op := range ops {
			op(&config)
		}
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = config
	})

	return cfg
}

func printConfig(cfg Config) { //nolint:unused
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
