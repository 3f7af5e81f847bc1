package global

import (
	"context"
	"time"

	mongoutil "WChat/data/database/mgo/mongoutil"
	"WChat/logger"
	mgoSrv "WChat/service/mgo"
	rds "WChat/service/storage/redis"
	"WChat/tools/ids"
	"WChat/tools/security"
)

// App holds the loaded process configuration; ConfigAll populates it.
var App *AppConfig

func ConfigAll() {
	cfg, err := LoadAppConfig()
	if err != nil {
		logger.Errorf("[config] load failed: %v", err)
		cfg = &AppConfig{}
	}
	App = cfg

	ConfigIds()
	ConfigMgo()
	if App.PresenceStore == "redis" {
		ConfigRedis()
	}
}

func ConfigIds() {
	if App != nil {
		ids.SetNodeID(App.NodeID)
		return
	}
	ids.SetNodeID(1)
}

func GetJwtSecret() []byte {
	if App != nil && App.JWTSecret != "" {
		return []byte(App.JWTSecret)
	}
	// dev fallback only; set JWT_SECRET in any real deployment
	return []byte("mN9b1f8zPq+W2xjX/45sKcVd0TfyoG+3Hp5Z8q9Rj1o=")
}

// JwtOptions is the one set of token options the whole process uses: the
// HTTP auth middleware, login/signup, and the ws handshake check.
func JwtOptions() security.Options {
	opts := security.DefaultOptions(GetJwtSecret())
	if App != nil && App.TokenTTLMin > 0 {
		opts.TTL = time.Duration(App.TokenTTLMin) * time.Minute
	}
	return opts
}

func ConfigRedis() {
	err := rds.InitRedis(rds.Config{
		Addr:     App.RedisAddr,
		Password: App.RedisPassword,
		DB:       App.RedisDB,
		PoolSize: 20,
	})
	if err != nil {
		logger.Errorf("[config] redis init failed: %v", err)
	}
}

func ConfigMgo() {
	go func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		cfg := &mongoutil.Config{
			Uri:         App.MongoURI,
			Database:    App.MongoDatabase,
			Username:    App.MongoUser,
			Password:    App.MongoPassword,
			MaxPoolSize: 20,
		}

		mgoSrv.StartAsync(ctx, cfg)
		if err := mgoSrv.WaitReady(ctx, mgoSrv.Manager()); err != nil {
			logger.Errorf("[config] mongo not ready: %v", err)
			return
		}
		<-ctx.Done()
	}()
}
