package config

import "os"

type Config struct {
	Port        string
	Env         string
	PostgresURL string
	MongoURI    string
	JWTSecret   string
	UploadDir   string
	// BodyLimit caps the total request size (multipart fields included).
	BodyLimit string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "5001"),
		Env:         getEnv("ENV", "development"),
		PostgresURL: getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:    getEnv("MONGO_URI", ""),
		JWTSecret:   getEnv("JWT_SECRET", "supersecretjwtkey"),
		UploadDir:   getEnv("UPLOAD_DIR", "uploads"),
		BodyLimit:   getEnv("BODY_LIMIT", "25M"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
