package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/wfunc/card-battle/internal/api"
	"github.com/wfunc/card-battle/internal/config"
	"github.com/wfunc/card-battle/internal/database"
	"github.com/wfunc/card-battle/internal/errors"
	"github.com/wfunc/card-battle/internal/event"
	"github.com/wfunc/card-battle/internal/game"
	"github.com/wfunc/card-battle/internal/logger"
	"github.com/wfunc/card-battle/internal/repository"
	"github.com/wfunc/card-battle/internal/room"
	"github.com/wfunc/card-battle/internal/websocket"
	"go.uber.org/zap"
)

// 版本信息
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Server 服务器实例
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	repos    *repository.Manager
	bus      *event.Bus
	engine   *game.Engine
	registry *room.Registry
	hub      *websocket.Hub
	bridge   *websocket.EventBridge
	http     *http.Server
}

func main() {
	var (
		configPath  = flag.String("config", "", "配置文件路径")
		showVersion = flag.Bool("version", false, "显示版本信息")
	)
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	// 加载配置
	if err := config.Init(*configPath); err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Get()

	// 初始化日志系统
	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	server := NewServer(cfg)
	if err := server.Start(); err != nil {
		logger.Fatal("服务器启动失败", zap.Error(err))
	}

	server.WaitForShutdown()

	if err := server.Shutdown(); err != nil {
		logger.Error("服务器关闭失败", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("服务器已安全关闭")
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger.GetLogger(),
	}
}

// Start 启动服务器
func (s *Server) Start() error {
	s.logger.Info("正在启动卡牌对战服务器...",
		zap.String("version", Version),
		zap.String("mode", s.cfg.Server.Mode))

	if err := s.initComponents(); err != nil {
		return errors.Wrap(err, errors.ErrUnknown, "初始化组件失败")
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.buildRouter().GetEngine(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP服务异常退出", zap.Error(err))
		}
	}()

	// 监听配置变化
	config.Watch(func(newCfg *config.Config) {
		s.cfg = newCfg
		s.logger.Info("配置已重新加载")
	})

	s.logger.Info("服务器启动成功",
		zap.String("http", addr),
		zap.String("websocket", addr+s.cfg.WebSocket.Path))
	return nil
}

// initComponents 初始化组件
func (s *Server) initComponents() error {
	// 数据库
	if err := database.Init(&s.cfg.Database); err != nil {
		return errors.Wrap(err, errors.ErrDatabaseConnect, "初始化数据库连接失败")
	}
	if s.cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(); err != nil {
			return errors.Wrap(err, errors.ErrDatabaseConnect, "数据库迁移失败")
		}
	}
	if !database.IsConnected() {
		return errors.New(errors.ErrDatabaseConnect, "数据库连接检查失败")
	}

	// 仓储、事件总线、对局引擎、房间注册表
	s.repos = repository.NewManager(database.GetDB())
	if err := repository.EnsureDefaultCatalog(context.Background(), s.repos, s.cfg.Game.DefaultDeckID); err != nil {
		return errors.Wrap(err, errors.ErrDatabaseInsert, "初始化默认图鉴失败")
	}
	s.bus = event.NewBus()
	s.engine = game.NewEngine(s.repos, s.bus, &s.cfg.Game)
	s.registry = room.NewRegistry(s.repos, s.engine, &s.cfg.Game)

	// 重启后恢复进行中的对局
	if err := s.engine.Recover(context.Background()); err != nil {
		return errors.Wrap(err, errors.ErrUnknown, "恢复进行中对局失败")
	}

	// 实时传输：连接中心 + 总线转发
	s.hub = websocket.NewHub()
	s.bridge = websocket.NewEventBridge(s.hub, s.repos.GameSession())
	s.bridge.Start(s.bus)

	s.logger.Info("所有组件初始化完成",
		zap.Int("active_games", len(s.engine.ListActive())))
	return nil
}

// buildRouter 组装API路由
func (s *Server) buildRouter() *api.Router {
	wsRoom := websocket.NewRoomHandler(s.hub, s.registry, &s.cfg.Game)
	return api.NewRouter(database.GetDB(), s.registry, s.engine, s.hub, wsRoom, s.cfg)
}

// WaitForShutdown 等待退出信号
func (s *Server) WaitForShutdown() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	sig := <-sigCh
	s.logger.Info("收到退出信号", zap.String("signal", sig.String()))
}

// Shutdown 优雅关闭
func (s *Server) Shutdown() error {
	s.logger.Info("正在优雅关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if s.http != nil {
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("HTTP服务关闭超时", zap.Error(err))
		}
	}

	if s.bridge != nil {
		s.bridge.Stop()
	}

	if err := database.Close(); err != nil {
		s.logger.Error("关闭数据库失败", zap.Error(err))
	}

	logger.Cleanup()
	return nil
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("卡牌对战服务器\n")
	fmt.Printf("版本: %s\n", Version)
	fmt.Printf("构建时间: %s\n", BuildTime)
	fmt.Printf("Git提交: %s\n", GitCommit)
	fmt.Printf("Go版本: %s\n", runtime.Version())
	fmt.Printf("操作系统: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
