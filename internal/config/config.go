package config

import (
	"flag"
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string        `yaml:"env" env:"ENV" env-default:"local"`
	DatabaseUrl string        `yaml:"database_url" env:"DATABASE_URL" env-required:"true"`
	Server      ServerConfig  `yaml:"rest"`
	JWT         JWTSecret     `yaml:"jwt"`
	Storage     StorageConfig `yaml:"storage"`
}

type ServerConfig struct {
	Port          string `yaml:"port" env-default:"8080"`
	AllowedOrigin string `yaml:"allowed_origin" env-default:"http://localhost:3000"`
}

type JWTSecret struct {
	Secret string `yaml:"secret" env:"JWT_SECRET" env-required:"true"`
}

type StorageConfig struct {
	Driver     string   `yaml:"driver" env-default:"disk"`
	UploadsDir string   `yaml:"uploads_dir" env-default:"./uploads"`
	S3         S3Config `yaml:"s3"`
}

type S3Config struct {
	Region    string `yaml:"region" env:"S3_REGION"`
	Bucket    string `yaml:"bucket" env:"S3_BUCKET"`
	Endpoint  string `yaml:"endpoint" env:"S3_ENDPOINT"`
	AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY"`
}

func MustLoad() *Config {
	path := fetchConfigPath()

	if path == "" {
		panic("Config file not found in path")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		panic("Config file not found in path")
	}

	var config Config
	log.Printf("Loading config from %s", path)
	if err := cleanenv.ReadConfig(path, &config); err != nil {
		panic(err)
	}
	return &config
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "./config/local.yaml", "config path")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
