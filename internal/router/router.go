package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/taskboard/api/handler"
)

type Handlers struct {
	Task   *apiHandler.TaskHandler
	Health *apiHandler.HealthHandler
}

// New builds the route table and wraps it with the given middleware, outermost first.
func New(handlers Handlers, middleware ...func(fasthttp.RequestHandler) fasthttp.RequestHandler) fasthttp.RequestHandler {
	r := router.New()

	if handlers.Health != nil {
		r.GET("/health", handlers.Health.Check)
	}

	r.GET("/api/tasks", handlers.Task.GetTasks)
	r.POST("/api/tasks", handlers.Task.CreateTask)
	r.PUT("/api/tasks/{id}", handlers.Task.UpdateTask)
	r.DELETE("/api/tasks/{id}", handlers.Task.DeleteTask)

	var h fasthttp.RequestHandler = r.Handler
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}
