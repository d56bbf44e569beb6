package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"parking_facility/internal/api/handler"
	"parking_facility/internal/api/middleware"
	"parking_facility/internal/service"
)

func SetupRouter(
	as *service.AuthService,
	fs *service.FacilityService,
	authMw *middleware.AuthMiddleware,
	httpMetrics *middleware.HTTPMetrics,
	promRegistry *prometheus.Registry,
	wsManager *handler.WebSocketManager,
) *gin.Engine {
	r := gin.Default()
	r.Use(gin.Recovery())
	if httpMetrics != nil {
		r.Use(httpMetrics.Handler())
	}

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if promRegistry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})))
	}

	// Display boards connect here without auth.
	wsHandler := handler.NewWebSocketHandler(wsManager)
	r.GET("/ws", wsHandler.HandleWebSocket)

	authHandler := handler.NewAuthHandler(as)
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	v1 := r.Group("/api/v1")
	v1.Use(authMw.Authenticate())
	{
		ticketH := handler.NewTicketHandler(fs)
		ticketRoutes := v1.Group("/tickets")
		{
			ticketRoutes.POST("", ticketH.RequestTicket)
			ticketRoutes.GET("/:no", ticketH.GetTicket)
			ticketRoutes.POST("/:no/activate", ticketH.ActivateTicket)
			ticketRoutes.POST("/:no/pay", ticketH.PayTicket)
			ticketRoutes.POST("/:no/cancel", authMw.AuthorizeRole("admin"), ticketH.CancelTicket)
			ticketRoutes.POST("/:no/refund", authMw.AuthorizeRole("admin"), ticketH.RefundTicket)
		}
		v1.POST("/exit", ticketH.RequestExit)

		displayH := handler.NewDisplayHandler(fs)
		v1.GET("/spots", displayH.ListSpots)
		v1.GET("/floors/:name/spots", displayH.FloorSpots)
		v1.GET("/status", displayH.Status)

		adminH := handler.NewAdminHandler(fs)
		adminOnly := authMw.AuthorizeRole("admin")
		v1.POST("/floors", adminOnly, adminH.AddFloor)
		v1.POST("/floors/:name/spots", adminOnly, adminH.AddSpot)
		v1.POST("/entrances", adminOnly, adminH.AddEntrance)
		v1.POST("/exits", adminOnly, adminH.AddExit)
		v1.PUT("/rate", adminOnly, adminH.SetRate)
	}
	return r
}
