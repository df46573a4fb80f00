package client

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"

	"github.com/prefsync/prefsync/internal/client/handlers"
	"github.com/prefsync/prefsync/internal/client/middleware"
	"github.com/prefsync/prefsync/internal/version"
)

//	@title						PrefSync Control Plane API
//	@version					0.1.0
//	@description				HTTP API for interfacing with the prefsync daemon
//	@BasePath					/
//	@securityDefinitions.apikey	APIToken
//	@in							header
//	@name						Authorization

type RouteConfig struct {
	Auth middleware.TokenAuthConfig
}

func SetupRoutes(client *Client, routeConfig *RouteConfig) http.Handler {
	r := gin.New()

	rateLimitStore := memory.NewStore()
	rateLimiter := limiter.New(rateLimitStore, limiter.Rate{
		Period: 1 * time.Second,
		Limit:  20,
	})

	statusH := handlers.NewStatusHandler(client.Engine(), client.Settings(), client.Config().EngineURL)
	syncH := handlers.NewSyncHandler(client.Engine(), client.SyncManager())
	commandsH := handlers.NewCommandsHandler(client.Commands())
	eventsH := handlers.NewEventsHandler(client.Hub())
	notificationsH := handlers.NewNotificationsHandler(client.Hub())
	editorsH := handlers.NewEditorsHandler(client.Editors())
	settingsH := handlers.NewSettingsHandler(client.Settings())
	activityH := handlers.NewActivityHandler(client.SyncManager().Journal())

	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS())
	r.Use(middleware.Gzip())
	r.Use(mgin.NewMiddleware(rateLimiter))

	r.GET("/", IndexHandler)

	// @Security APIToken
	v1 := r.Group("/v1")
	v1.Use(middleware.TokenAuth(routeConfig.Auth))
	{
		v1.GET("/status", statusH.Status)
		v1.GET("/events", eventsH.Events)
		v1.GET("/commands", commandsH.List)
		v1.POST("/commands/:id", commandsH.Run)
		v1.GET("/activity", activityH.Recent)

		v1Sync := v1.Group("/sync")
		{
			v1Sync.GET("/status", syncH.Status)
			v1Sync.POST("/now", syncH.TriggerSync)
		}

		v1Notifs := v1.Group("/notifications")
		{
			v1Notifs.GET("", notificationsH.List)
			v1Notifs.POST("/:id/dismiss", notificationsH.Dismiss)
			v1Notifs.POST("/:id/actions/:action", notificationsH.Invoke)
		}

		v1Editors := v1.Group("/editors")
		{
			v1Editors.GET("", editorsH.List)
			v1Editors.POST("", editorsH.Open)
			v1Editors.GET("/:id", editorsH.Get)
			v1Editors.PATCH("/:id", editorsH.Update)
			v1Editors.POST("/:id/save", editorsH.Save)
			v1Editors.DELETE("/:id", editorsH.Close)
		}

		v1Settings := v1.Group("/settings")
		{
			v1Settings.GET("", settingsH.Get)
			v1Settings.PATCH("", settingsH.Update)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "not found",
		})
	})

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error": "method not allowed",
		})
	})

	return r.Handler()
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}

func IndexHandler(c *gin.Context) {
	c.JSON(http.StatusOK, version.Detailed())
}
