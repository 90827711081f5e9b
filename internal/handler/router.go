package handler

import (
	"net/http"
	"time"

	"dreamrelay/backend/internal/auth"
	"dreamrelay/backend/internal/protocol"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Banner is what GET / answers with.
const Banner = "DreamServer Gateway is running!"

// RouterOptions tunes NewRouter.
type RouterOptions struct {
	AllowedOrigins []string
	// Swagger mounts the API docs under /swagger.
	Swagger bool
}

// NewRouter builds the HTTP handler for the whole server.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(h.log))

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, Banner)
	})

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	if opts.Swagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Websocket channels. The room channel also admits anonymous players so
	// a client that lost its token mid-match can still rejoin.
	ws := router.Group("/ws")
	{
		ws.GET("/directory", auth.AuthMiddleware(h.verifier), h.ServeWS(protocol.Directory))
		ws.GET("/lobby", auth.AuthMiddleware(h.verifier), h.ServeWS(protocol.Lobby))
		ws.GET("/room", auth.OptionalAuthMiddleware(h.verifier), h.ServeWS(protocol.Room))
	}

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/login", h.Login)
			authRoutes.POST("/signup", h.Signup)
			authRoutes.POST("/logout", h.Logout)
			authRoutes.GET("/me", h.GetMe)
		}

		lobbyRoutes := apiV1.Group("/lobbies")
		{
			lobbyRoutes.GET("", h.ListLobbies)
			lobbyRoutes.GET("/:name", h.GetLobby)
		}

		roomRoutes := apiV1.Group("/rooms")
		{
			roomRoutes.GET("", h.ListRooms)
			roomRoutes.GET("/:name", h.GetRoom)
		}

		apiV1.GET("/stats", h.GetStats)
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	})(router)
}

// RequestLogger writes one line per request.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		switch {
		case status >= http.StatusInternalServerError:
			event = logger.Error()
		case status >= http.StatusBadRequest:
			event = logger.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
