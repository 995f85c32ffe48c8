package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cesizen/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	authH *AuthHandler,
	profileH *ProfileHandler,
	diagnosticH *DiagnosticHandler,
	articleH *ArticleHandler,
	adminH *AdminHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	authRequired := JWTAuthMiddleware(jwtSvc)
	adminRequired := AdminOnlyMiddleware()

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.POST("/logout", authH.Logout)
	auth.POST("/refresh", authH.Refresh)
	auth.GET("/me", authRequired, authH.Me)

	profile := api.Group("/profile", authRequired)
	profile.GET("", profileH.GetProfile)
	profile.GET("/full", profileH.GetFullProfile)
	profile.PUT("", profileH.UpdateProfile)
	profile.PUT("/password", profileH.ChangePassword)

	holmesRahe := api.Group("/holmes-rahe")
	holmesRahe.GET("/events", diagnosticH.ListEvents)
	holmesRahe.GET("/events/categories", diagnosticH.ListEventsByCategory)
	holmesRahe.POST("/calculate", diagnosticH.Calculate)
	holmesRahe.POST("/submit", authRequired, diagnosticH.Submit)
	holmesRahe.GET("/results", authRequired, diagnosticH.History)
	holmesRahe.GET("/results/latest", authRequired, diagnosticH.Latest)

	holmesRaheAdmin := holmesRahe.Group("/admin", authRequired, adminRequired)
	holmesRaheAdmin.GET("/events", diagnosticH.AdminListEvents)
	holmesRaheAdmin.POST("/events", diagnosticH.AdminCreateEvent)
	holmesRaheAdmin.PUT("/events/:id", diagnosticH.AdminUpdateEvent)
	holmesRaheAdmin.DELETE("/events/:id", diagnosticH.AdminDeleteEvent)
	holmesRaheAdmin.GET("/stats", diagnosticH.AdminStats)

	articles := api.Group("/articles")
	articles.GET("/public", articleH.ListPublic)
	articles.GET("/public/featured", articleH.Featured)
	articles.GET("/public/:id", articleH.GetPublic)

	articlesAdmin := articles.Group("/admin", authRequired, adminRequired)
	articlesAdmin.GET("/stats", articleH.Stats)
	articlesAdmin.GET("", articleH.AdminList)
	articlesAdmin.GET("/:id", articleH.AdminGet)
	articlesAdmin.POST("", articleH.Create)
	articlesAdmin.PUT("/:id", articleH.Update)
	articlesAdmin.PATCH("/:id/toggle-publish", articleH.TogglePublish)
	articlesAdmin.DELETE("/:id", articleH.Delete)

	admin := api.Group("/admin", authRequired, adminRequired)
	admin.GET("/users/stats", adminH.UserStats)
	admin.GET("/users", adminH.ListUsers)
	admin.POST("/users", adminH.CreateUser)
	admin.PUT("/users/:id", adminH.UpdateUser)
	admin.PATCH("/users/:id/deactivate", adminH.DeactivateUser)
	admin.PATCH("/users/:id/activate", adminH.ActivateUser)
	admin.PATCH("/users/:id/reset-password", adminH.ResetUserPassword)
	admin.DELETE("/users/:id", adminH.DeleteUser)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
