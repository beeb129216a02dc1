package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/todo/api/handler"
)

type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

type Handlers struct {
	Pages     *apiHandler.PageHandler
	WebAuth   *apiHandler.WebAuthHandler
	Dashboard *apiHandler.DashboardHandler

	Auth    *apiHandler.AuthHandler
	Profile *apiHandler.ProfileHandler
	Task    *apiHandler.TaskHandler
	Health  *apiHandler.HealthHandler
}

// Guards wrap routes that need an identity: Session/OptionalSession for pages,
// Token for the JSON API.
type Guards struct {
	Session         Middleware
	OptionalSession Middleware
	Token           Middleware
}

func New(handlers Handlers, guards Guards) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Pages
	r.GET("/", guards.OptionalSession(handlers.Pages.Index))
	r.GET("/about", guards.OptionalSession(handlers.Pages.About))
	r.POST("/change_background_color", guards.Session(handlers.Pages.ChangeBackgroundColor))

	r.GET("/auth/signup", guards.OptionalSession(handlers.WebAuth.SignupForm))
	r.POST("/auth/signup", guards.OptionalSession(handlers.WebAuth.Signup))
	r.GET("/auth/login", guards.OptionalSession(handlers.WebAuth.LoginForm))
	r.POST("/auth/login", guards.OptionalSession(handlers.WebAuth.Login))
	both(r, "/auth/logout", guards.Session(handlers.WebAuth.Logout))

	both(r, "/dashboard", guards.Session(handlers.Dashboard.Dashboard))
	both(r, "/dashboard/tasks", guards.Session(handlers.Dashboard.Tasks))
	r.POST("/dashboard/add", guards.Session(handlers.Dashboard.Add))
	both(r, "/dashboard/update/{id}", guards.Session(handlers.Dashboard.Update))
	both(r, "/dashboard/delete/{id}", guards.Session(handlers.Dashboard.Delete))

	// API
	r.POST("/api/v1/auth/token", handlers.Auth.Token)

	r.GET("/api/v1/profile", guards.Token(handlers.Profile.GetProfile))

	r.GET("/api/v1/tasks", guards.Token(handlers.Task.GetTasks))
	r.POST("/api/v1/tasks", guards.Token(handlers.Task.CreateTask))
	r.GET("/api/v1/tasks/{id}", guards.Token(handlers.Task.GetTask))
	r.POST("/api/v1/tasks/{id}/toggle", guards.Token(handlers.Task.ToggleTask))
	r.DELETE("/api/v1/tasks/{id}", guards.Token(handlers.Task.DeleteTask))

	return r
}

func both(r *router.Router, path string, handler fasthttp.RequestHandler) {
	r.GET(path, handler)
	r.POST(path, handler)
}
