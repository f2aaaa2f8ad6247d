package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/usersvc/backend/internal/service"
)

type RouterDeps struct {
	Accounts       *service.AccountService
	Auth           *service.AuthService
	AllowedOrigins []string
	Log            zerolog.Logger
}

// NewRouter wires every route. /, /health, /openapi.json, /register and
// /login are public; everything under /users requires a bearer token.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(deps.Log))
	router.Use(CORSMiddleware(deps.AllowedOrigins, false))

	router.GET("/", Root)
	router.GET("/health", Health)
	router.GET("/openapi.json", OpenAPIDoc)

	authHandler := NewAuthHandler(deps.Accounts, deps.Log)
	router.POST("/register", authHandler.Register)
	router.POST("/login", authHandler.Login)

	userHandler := NewUserHandler(deps.Accounts, deps.Log)
	users := router.Group("/users")
	users.Use(AuthMiddleware(deps.Auth, deps.Log))
	{
		users.POST("", userHandler.CreateUser)
		users.GET("", userHandler.ListUsers)
		users.GET("/:id", userHandler.GetUser)
		users.PUT("/:id", userHandler.UpdateUser)
		users.DELETE("/:id", userHandler.DeleteUser)
	}

	return router
}
