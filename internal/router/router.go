package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/ruslanbektulqinov01/todo-api/api/handler"
)

type Handlers struct {
	Auth   *apiHandler.AuthHandler
	Task   *apiHandler.TaskHandler
	Health *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/register", handlers.Auth.Register)
	r.POST("/login", handlers.Auth.Login)
	r.GET("/logout", handlers.Auth.Logout)

	// Protected routes
	r.GET("/tasks", authMiddleware(handlers.Task.GetTasks))
	r.POST("/tasks", authMiddleware(handlers.Task.CreateTask))
	r.PUT("/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	r.DELETE("/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))

	return r
}
