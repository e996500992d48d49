package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/parley-server/internal/api/dto"
	"github.com/dtroode/parley-server/internal/api/http/handler"
	"github.com/dtroode/parley-server/internal/api/http/middleware"
	"github.com/dtroode/parley-server/internal/logger"
	"github.com/dtroode/parley-server/internal/model"
)

// Router wires REST handlers, the WebSocket endpoint and middleware into a gin engine.
type Router struct {
	authService    handler.AuthService
	userService    handler.UserService
	messageService handler.MessageService
	notifier       handler.Notifier
	verifier       middleware.TokenVerifier
	contextManager model.ContextManager
	realtime       gin.HandlerFunc
	logger         *logger.Logger
}

// New creates new HTTP Router instance.
// realtime serves GET /ws and may be nil when WebSocket sessions are not exposed.
func New(
	authService handler.AuthService,
	userService handler.UserService,
	messageService handler.MessageService,
	notifier handler.Notifier,
	verifier middleware.TokenVerifier,
	contextManager model.ContextManager,
	realtime gin.HandlerFunc,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		userService:    userService,
		messageService: messageService,
		notifier:       notifier,
		verifier:       verifier,
		contextManager: contextManager,
		realtime:       realtime,
		logger:         logger,
	}
}

// Register builds the engine with all routes.
func (r *Router) Register() *gin.Engine {
	engine := gin.New()
	engine.Use(
		middleware.NewLogging(r.logger).Handle,
		gin.CustomRecovery(r.recoverPanic),
		middleware.CORS,
	)
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "route not found"})
	})

	engine.GET("/", handler.Root)
	if r.realtime != nil {
		engine.GET("/ws", r.realtime)
	}

	api := engine.Group("/api")
	r.registerAuthRoutes(api)

	authenticate := middleware.NewAuthenticate(r.verifier, r.contextManager, r.logger)
	protected := api.Group("", authenticate.Handle)
	r.registerUserRoutes(protected)
	r.registerMessageRoutes(protected)

	return engine
}

func (r *Router) registerAuthRoutes(group *gin.RouterGroup) {
	h := handler.NewAuth(r.authService, r.logger)
	group.POST("/auth/signup", h.Signup)
	group.POST("/auth/login", h.Login)
}

func (r *Router) registerUserRoutes(group *gin.RouterGroup) {
	h := handler.NewUser(r.userService, r.contextManager, r.logger)
	group.GET("/users", h.List)
}

func (r *Router) registerMessageRoutes(group *gin.RouterGroup) {
	h := handler.NewMessage(r.messageService, r.notifier, r.contextManager, r.logger)
	group.POST("/messages/send", h.Send)
	group.GET("/messages/:peerId", h.History)
	group.POST("/messages/:peerId/archive", h.Archive)
}

func (r *Router) recoverPanic(c *gin.Context, recovered any) {
	r.logger.Error("HTTP handler panicked",
		"path", c.Request.URL.Path,
		"panic", recovered)
	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "internal error"})
}
