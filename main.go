package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"WChat/global"
	"WChat/logger"
	mid "WChat/middleware"
	chathandler "WChat/module/chat"
	chatservice "WChat/module/chat/service"
	userhandler "WChat/module/user"
	"WChat/service/chat"
	mgoSrv "WChat/service/mgo"
	"WChat/service/storage"
)

func main() {
	global.ConfigAll()
	cfg := global.App

	// block startup on the database; the HTTP surface is useless without it
	{
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := mgoSrv.WaitReady(ctx, mgoSrv.Manager()); err != nil {
			cancel()
			log.Fatalf("mongo not ready: %v", err)
		}
		cancel()
	}

	media, err := storage.NewMediaStore(cfg.MediaDir, "/media")
	if err != nil {
		log.Fatalf("media store: %v", err)
	}

	// presence registry: in-process by default, redis when several
	// gateway nodes need to share it
	var reg chat.Registry = chat.NewMemoryRegistry()
	if cfg.PresenceStore == "redis" {
		reg = storage.NewRedisRegistry(24 * time.Hour)
		logger.Infof("[main] presence registry backed by redis")
	}

	gw := chat.NewGateway(reg, chat.GatewayConf{JWT: global.JwtOptions()})
	userhandler.Init(gw, media)
	chatservice.Init(gw, media)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(mid.CORS(cfg.ClientOrigin))

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Hi from backend")
	})

	// ws://host/ws?userId=...&token=...
	r.GET("/ws", gw.HandleWS)

	mid.POST(r, "/api/auth/signup", userhandler.HandlerSignup, mid.RouteOpt{IsAuth: false})
	mid.POST(r, "/api/auth/login", userhandler.HandlerLogin, mid.RouteOpt{IsAuth: false})
	mid.POST(r, "/api/auth/logout", userhandler.HandlerLogout, mid.RouteOpt{IsAuth: false})

	mid.GET(r, "/api/users", userhandler.HandlerList, mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/api/users/me", userhandler.HandlerMe, mid.RouteOpt{IsAuth: true})
	mid.PUT(r, "/api/users/me", userhandler.HandlerUpdate, mid.RouteOpt{IsAuth: true})
	mid.DELETE(r, "/api/users/me", userhandler.HandlerDelete, mid.RouteOpt{IsAuth: true})

	mid.POST(r, "/api/conversations/start", chathandler.HandlerStartConversation, mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/api/messages/conversation/:conversationId", chathandler.HandlerListMessages, mid.RouteOpt{IsAuth: true})
	mid.POST(r, "/api/messages/conversation/:conversationId", chathandler.HandlerSendMessage, mid.RouteOpt{IsAuth: true})

	r.Static("/media", cfg.MediaDir)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Infof("[main] listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("HTTP server failed: %v", err)
	}
}
