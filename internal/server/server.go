package server

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"sites/internal/config"
	"sites/internal/handler/admin"
	"sites/internal/middleware"
	"sites/internal/site"
)

// Server 应用服务器
type Server struct {
	echo     *echo.Echo
	config   *config.Config
	manager  *site.Manager
	resolver *site.Resolver
}

// New 创建新的服务器实例，manager 为 nil 表示未安装站点存储
func New(cfg *config.Config, m *site.Manager, resolver *site.Resolver) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:     e,
		config:   cfg,
		manager:  m,
		resolver: resolver,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware 设置中间件
func (s *Server) setupMiddleware() {
	s.echo.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogHost:     true,
		LogError:    true,
		HandleError: true, // 将错误转发给全局错误处理程序，以便其决定适当的响应状态码
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			if v.Error == nil {
				slog.LogAttrs(context.Background(), slog.LevelInfo, "REQ",
					slog.Int("status", v.Status),
					slog.String("host", v.Host),
					slog.String("uri", v.URI),
				)
			} else {
				slog.LogAttrs(context.Background(), slog.LevelError, "REQ_ERR",
					slog.Int("status", v.Status),
					slog.String("host", v.Host),
					slog.String("uri", v.URI),
					slog.String("err", v.Error.Error()),
				)
			}
			return nil
		},
	}))

	s.echo.Use(echomw.Recover())
	s.echo.Use(middleware.CurrentSite(s.resolver))
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	adminGroup := s.echo.Group("/_api")
	if pass := s.config.Server.AdminPass; pass != "" {
		user := s.config.Server.AdminUser
		adminGroup.Use(echomw.BasicAuth(func(username, password string, c echo.Context) (bool, error) {
			userOK := subtle.ConstantTimeCompare([]byte(username), []byte(user)) == 1
			passOK := subtle.ConstantTimeCompare([]byte(password), []byte(pass)) == 1
			return userOK && passOK, nil
		}))
	} else {
		slog.Warn("未设置 admin_pass，管理 API 不做认证")
	}

	admin.NewHandler(s.manager, s.resolver).RegisterRoutes(adminGroup)

	s.echo.GET("/", s.currentSite)
}

// currentSite 返回中间件解析出的当前站点
func (s *Server) currentSite(c echo.Context) error {
	current, ok := middleware.FromContext(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, admin.Response{
			Success: false,
			Message: "当前站点不可用",
		})
	}
	return c.JSON(http.StatusOK, admin.Response{
		Success: true,
		Data:    admin.CurrentSiteView(current),
	})
}

// Start 启动服务器
func (s *Server) Start() error {
	s.printStartupInfo()
	return s.echo.Start(":" + s.config.Server.Port)
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// printStartupInfo 打印启动信息
func (s *Server) printStartupInfo() {
	fmt.Println("站点服务启动中...")
	fmt.Printf("监听端口: %s\n", s.config.Server.Port)
	if s.resolver.Installed() {
		if id, ok := s.manager.SiteID(); ok {
			fmt.Printf("当前站点: SITE_ID=%d\n", id)
		} else {
			fmt.Println("⚠️ 未设置 site_id")
		}
	} else {
		fmt.Println("未安装站点存储，当前站点取自请求 Host")
	}
	fmt.Println("\n管理 API:")
	fmt.Println("   - GET    /_api/health              健康检查")
	fmt.Println("   - GET    /_api/sites/current       当前站点")
	fmt.Println("   - POST   /_api/sites/cache/clear   清空站点缓存")
	if s.resolver.Installed() {
		fmt.Println("   - GET    /_api/sites               站点列表")
		fmt.Println("   - POST   /_api/sites               创建站点")
		fmt.Println("   - GET    /_api/sites/:id           获取站点")
		fmt.Println("   - PUT    /_api/sites/:id           更新站点")
		fmt.Println("   - DELETE /_api/sites/:id           删除站点")
	}
}

// Echo 返回 Echo 实例（用于扩展路由等）
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
