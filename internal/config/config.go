package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`
	Database struct {
		Driver string `yaml:"driver"`
		URL    string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	S3 struct {
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		Bucket    string `yaml:"bucket"`
		Region    string `yaml:"region"`
		Endpoint  string `yaml:"endpoint"`
	} `yaml:"s3"`
	SMTP struct {
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
	} `yaml:"smtp"`
	Razorpay struct {
		KeyID      string `yaml:"key_id"`
		KeySecret  string `yaml:"key_secret"`
		PlanID     string `yaml:"plan_id"`
		BaseURL    string `yaml:"base_url"`
		RefundDays int    `yaml:"refund_days"`
	} `yaml:"razorpay"`
	Frontend struct {
		URL string `yaml:"url"`
	} `yaml:"frontend"`
	Firebase struct {
		CredentialsFile string `yaml:"credentials_file"`
	} `yaml:"firebase"`
	JWT struct {
		SigningKey string `yaml:"signing_key"`
	} `yaml:"jwt"`
}

func LoadConfig() Config {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		log.Fatalf("Failed to unmarshal config data: %v", err)
	}

	applyEnvOverrides(&cfg)

	if cfg.Razorpay.BaseURL == "" {
		cfg.Razorpay.BaseURL = "https://api.razorpay.com"
	}
	if cfg.Razorpay.RefundDays == 0 {
		cfg.Razorpay.RefundDays = 7
	}
	return cfg
}

// Secrets usually come from the environment in deployment, the yaml file
// only carries local defaults.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RAZORPAY_API_KEY"); v != "" {
		cfg.Razorpay.KeyID = v
	}
	if v := os.Getenv("RAZORPAY_API_SECRET"); v != "" {
		cfg.Razorpay.KeySecret = v
	}
	if v := os.Getenv("RAZORPAY_PLAN_ID"); v != "" {
		cfg.Razorpay.PlanID = v
	}
	if v := os.Getenv("JWT_SIGNING_KEY"); v != "" {
		cfg.JWT.SigningKey = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.SMTP.Password = v
	}
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		cfg.Frontend.URL = v
	}
}
