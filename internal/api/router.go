package api

import (
	"github.com/gin-gonic/gin"
	"github.com/wfunc/card-battle/internal/config"
	"github.com/wfunc/card-battle/internal/game"
	"github.com/wfunc/card-battle/internal/logger"
	"github.com/wfunc/card-battle/internal/middleware"
	"github.com/wfunc/card-battle/internal/room"
	ws "github.com/wfunc/card-battle/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Router API路由器
type Router struct {
	engine      *gin.Engine
	db          *gorm.DB
	roomHandler *RoomHandler
	gameHandler *GameHandler
	wsHandler   *WebSocketHandler
	wsPath      string
	log         *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(db *gorm.DB, registry *room.Registry, gameEngine *game.Engine, hub *ws.Hub, wsRoom *ws.RoomHandler, cfg *config.Config) *Router {
	if cfg != nil && cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	log := logger.GetModuleLogger("api")

	// 全局中间件
	engine.Use(middleware.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(log))
	engine.Use(middleware.CORS())

	var wsCfg *config.WebSocketConfig
	wsPath := "/ws"
	if cfg != nil {
		wsCfg = &cfg.WebSocket
		if cfg.WebSocket.Path != "" {
			wsPath = cfg.WebSocket.Path
		}
	}

	router := &Router{
		engine:      engine,
		db:          db,
		roomHandler: NewRoomHandler(registry, wsRoom),
		gameHandler: NewGameHandler(gameEngine),
		wsHandler:   NewWebSocketHandler(hub, wsRoom, wsCfg),
		wsPath:      wsPath,
		log:         log,
	}

	router.setupRoutes()
	return router
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	// 健康检查
	r.engine.GET("/health", r.healthCheck)

	// API v1路由组
	v1 := r.engine.Group("/api/v1")
	{
		// 房间路由
		rooms := v1.Group("/rooms")
		{
			rooms.POST("", r.roomHandler.CreateRoom)
			rooms.GET("", r.roomHandler.ListRooms)
			rooms.GET("/:id", r.roomHandler.GetRoom)
			rooms.POST("/:id/join", r.roomHandler.JoinRoom)
			rooms.POST("/:id/leave", r.roomHandler.LeaveRoom)
			rooms.POST("/:id/ready", r.roomHandler.SetReady)
			rooms.POST("/:id/start", r.roomHandler.StartSession)
		}

		// 对局路由
		games := v1.Group("/games")
		{
			games.GET("", r.gameHandler.ListGames)
			games.GET("/:id", r.gameHandler.GetGame)
			games.POST("/:id/actions", r.gameHandler.PostAction)
			games.POST("/:id/turn/start", r.gameHandler.StartTurn)
			games.POST("/:id/end", r.gameHandler.EndGame)
		}
	}

	// WebSocket路由
	r.engine.GET(r.wsPath, r.wsHandler.Serve)

	// 404处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"success": false,
			"error":   gin.H{"code": 1002, "message": "接口不存在"},
		})
	})
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	sqlDB, err := r.db.DB()
	if err != nil {
		c.JSON(500, gin.H{"status": "unhealthy", "message": "数据库连接失败"})
		return
	}
	if err := sqlDB.Ping(); err != nil {
		c.JSON(500, gin.H{"status": "unhealthy", "message": "数据库ping失败"})
		return
	}
	c.JSON(200, gin.H{"status": "healthy"})
}

// Run 运行服务器
func (r *Router) Run(addr string) error {
	r.log.Info("API服务启动", zap.String("address", addr))
	return r.engine.Run(addr)
}

// GetEngine 获取Gin引擎（用于测试和自定义http.Server）
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
