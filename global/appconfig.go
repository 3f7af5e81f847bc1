package global

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"

	"WChat/tools/errs"
)

// AppConfig is everything main() needs to wire the process. Values come
// from the environment (.env is honored in development).
type AppConfig struct {
	Port   int    `mapstructure:"PORT"`
	NodeID int64  `mapstructure:"NODE_ID"`
	Env    string `mapstructure:"APP_ENV"`

	JWTSecret   string `mapstructure:"JWT_SECRET"`
	TokenTTLMin int    `mapstructure:"TOKEN_TTL_MIN"`

	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`
	MongoUser     string `mapstructure:"MONGO_USER"`
	MongoPassword string `mapstructure:"MONGO_PASSWORD"`

	// PresenceStore selects the registry backing: "memory" (default,
	// single node) or "redis" (shared across gateway nodes).
	PresenceStore string `mapstructure:"PRESENCE_STORE"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	MediaDir     string `mapstructure:"MEDIA_DIR"`
	ClientOrigin string `mapstructure:"CLIENT_ORIGIN"`
}

var envKeys = []string{
	"PORT", "NODE_ID", "APP_ENV",
	"JWT_SECRET", "TOKEN_TTL_MIN",
	"MONGO_URI", "MONGO_DATABASE", "MONGO_USER", "MONGO_PASSWORD",
	"PRESENCE_STORE", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"MEDIA_DIR", "CLIENT_ORIGIN",
}

// LoadAppConfig reads .env (best effort) and decodes the environment into
// an AppConfig with defaults applied.
func LoadAppConfig() (*AppConfig, error) {
	_ = godotenv.Load()

	raw := map[string]any{}
	for _, k := range envKeys {
		if v, ok := os.LookupEnv(k); ok {
			raw[k] = v
		}
	}

	cfg := &AppConfig{
		Port:          5001,
		NodeID:        1,
		Env:           "development",
		TokenTTLMin:   7 * 24 * 60,
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "wchat",
		PresenceStore: "memory",
		RedisAddr:     "127.0.0.1:6379",
		MediaDir:      "./media",
		ClientOrigin:  "http://localhost:3001",
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true, // env vars are strings
	})
	if err != nil {
		return nil, errs.Wrap(err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, errs.WrapMsg(err, "decode app config")
	}
	return cfg, nil
}
