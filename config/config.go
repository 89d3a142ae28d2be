package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// This function will Load the ENVIORNMENT VARIABLES from .env if GO_ENV variable is not set
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil {
			return err
		}
	}

	return nil
}

type EnviornmentVariable struct {
	// All variables
	GO_ENV       string
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string
	PORT         int
	// Redis Configuration
	REDIS_URL string
	// Import archive (S3-compatible object storage)
	ARCHIVE_ACCESS_KEY string
	ARCHIVE_SECRET_KEY string
	ARCHIVE_BUCKET     string
	ARCHIVE_REGION     string
	ARCHIVE_ENDPOINT   string
}

func Get() (*EnviornmentVariable, error) {

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080
	}

	// Database defaults
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}

	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}

	envVariables := &EnviornmentVariable{
		GO_ENV:       os.Getenv("GO_ENV"),
		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DB_HOST:      dbHost,
		DB_PORT:      dbPort,
		DB_SSL_MODE:  os.Getenv("DB_SSL_MODE"),
		PORT:         port,
		// Redis
		REDIS_URL: os.Getenv("REDIS_URL"),
		// Import archive
		ARCHIVE_ACCESS_KEY: os.Getenv("ARCHIVE_ACCESS_KEY"),
		ARCHIVE_SECRET_KEY: os.Getenv("ARCHIVE_SECRET_KEY"),
		ARCHIVE_BUCKET:     os.Getenv("ARCHIVE_BUCKET"),
		ARCHIVE_REGION:     os.Getenv("ARCHIVE_REGION"),
		ARCHIVE_ENDPOINT:   os.Getenv("ARCHIVE_ENDPOINT"),
	}

	return envVariables, nil
}
