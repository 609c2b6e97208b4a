package config

import (
	"encoding/json"
	"log"
	"os"
)

type Configuration struct {
	ApiPort string `json:"api_port"`
	LogPath string `json:"log_path"`

	Database string `json:"database"` // "sqlite3" or "postgres"
	DbHost   string `json:"db_host"`
	DbPort   string `json:"db_port"`
	DbUser   string `json:"db_user"`
	DbName   string `json:"db_name"`
	DbPass   string `json:"db_pass"`

	Nats struct {
		URL     string `json:"url"`
		Stream  string `json:"stream"`
		Durable string `json:"durable"`
	} `json:"nats"`

	Slack struct {
		VerifyToken string `json:"verify_token"`
	} `json:"slack"`

	Security struct {
		AdminAPIKey string `json:"admin_api_key"`
	} `json:"security"`
}

func Get(path string) Configuration {
	b, err := os.ReadFile(path)
	if err != nil {
		log.Fatal(err)
	}
	var c Configuration
	if err := json.Unmarshal(b, &c); err != nil {
		log.Fatal(err)
	}

	// defaults
	if c.ApiPort == "" {
		c.ApiPort = "8080"
	}
	if c.LogPath == "" {
		c.LogPath = "logs/server.log"
	}
	if c.Database == "" {
		c.Database = "sqlite3"
	}
	if c.Nats.URL == "" {
		c.Nats.URL = "nats://localhost:4222"
	}
	if c.Nats.Stream == "" {
		c.Nats.Stream = "OTIS_EVENTS"
	}
	if c.Nats.Durable == "" {
		c.Nats.Durable = "otis-issue-worker"
	}

	// secrets prefer env over the config file
	if v := os.Getenv("SLACK_VERIFY_TOKEN"); v != "" {
		c.Slack.VerifyToken = v
	}
	if v := os.Getenv("ADMIN_API_KEY"); v != "" {
		c.Security.AdminAPIKey = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		c.Nats.URL = v
	}

	return c
}
