package routes

import (
	"net/http"

	"evently/auth"
	"evently/categories"
	"evently/events"
	"evently/middleware"
	"evently/orders"
	"evently/ratelim"

	"github.com/julienschmidt/httprouter"
)

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/eventpic/*filepath", http.Dir("static/eventpic"))
}

func AddAuthRoutes(router *httprouter.Router, svc *auth.Service, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/register", rl.Limit(svc.Register))
	router.POST("/api/auth/login", rl.Limit(svc.Login))
}

func AddEventsRoutes(router *httprouter.Router, svc *events.Service) {
	router.POST("/api/events", middleware.Authenticate(svc.CreateEvent))
	router.GET("/api/events", svc.GetEvents)
	router.GET("/api/events/:eventid", svc.GetEvent)
	router.PUT("/api/events/:eventid", middleware.Authenticate(svc.UpdateEvent))
	router.DELETE("/api/events/:eventid", middleware.Authenticate(svc.DeleteEvent))
	router.POST("/api/events/:eventid/banner", middleware.Authenticate(svc.UploadBanner))
}

func AddCategoryRoutes(router *httprouter.Router, svc *categories.Service) {
	router.POST("/api/categories", middleware.Authenticate(svc.CreateCategory))
	router.GET("/api/categories", svc.GetCategories)
}

func AddOrderRoutes(router *httprouter.Router, svc *orders.Service, rl *ratelim.RateLimiter) {
	router.POST("/api/orders/checkout", rl.Limit(middleware.Authenticate(svc.Checkout)))
	router.POST("/api/orders/confirm", rl.Limit(middleware.Authenticate(svc.Confirm)))
	router.GET("/api/orders/event/:eventid", middleware.Authenticate(svc.GetOrdersByEvent))
	router.GET("/api/orders/user", middleware.Authenticate(svc.GetOrdersByUser))
	router.GET("/api/orders/ticket/:orderid", middleware.Authenticate(svc.PrintTicket))
}
