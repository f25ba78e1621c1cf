package v1

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/citamed/api/internal/config"
	"github.com/citamed/api/internal/domain"
	"github.com/citamed/api/pkg/auth"
	"github.com/citamed/api/pkg/metrics"
)

type Handlers struct {
	Auth         *AuthHandler
	Admin        *AdminHandler
	Doctors      *DoctorHandler
	Patients     *PatientHandler
	Appointments *AppointmentHandler
}

func NewRouter(cfg *config.Config, db *gorm.DB, jwt *auth.JWTManager, collector *metrics.Collector, h Handlers) *gin.Engine {
	if cfg.App.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if collector != nil {
		router.Use(Observe(collector))
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.AllowedOrigins,
		AllowMethods: cfg.CORS.AllowedMethods,
		AllowHeaders: cfg.CORS.AllowedHeaders,
		MaxAge:       cfg.CORS.MaxAge,
	}))

	router.GET("/health", healthCheck(db))
	router.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	api := router.Group("/api")

	authGroup := api.Group("/auth", RateLimit(cfg.RateLimit))
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
	}

	authenticated := api.Group("", Authenticate(jwt))

	authenticated.GET("/users/me", h.Auth.Profile)

	admin := authenticated.Group("/admin")
	{
		adminOnly := RequireRoles(domain.RoleAdmin)

		admin.GET("/metrics", adminOnly, h.Admin.Metrics)
		admin.GET("/users", adminOnly, h.Admin.ListUsers)
		admin.GET("/users/role/:role", adminOnly, h.Admin.ListUsersByRole)
		admin.GET("/users/:id", h.Admin.GetUser)
		admin.PUT("/users/:id", h.Admin.UpdateUser)
		admin.PATCH("/users/:id/role", adminOnly, h.Admin.UpdateUserRole)
		admin.DELETE("/users/:id", adminOnly, h.Admin.DeleteUser)
	}

	doctors := authenticated.Group("/doctors")
	{
		doctors.POST("", RequireRoles(domain.RoleAdmin), h.Doctors.Create)
		doctors.GET("", h.Doctors.List)
		doctors.GET("/:id", h.Doctors.Get)
		doctors.PUT("/:id", RequireRoles(domain.RoleAdmin, domain.RoleDoctor), h.Doctors.Update)
		doctors.DELETE("/:id", RequireRoles(domain.RoleAdmin), h.Doctors.Delete)
		doctors.GET("/user/:userId", h.Doctors.GetByUser)
		doctors.GET("/specialty/:specialty", h.Doctors.ListBySpecialty)
	}

	patients := authenticated.Group("/patients")
	{
		staff := RequireRoles(domain.RoleAdmin, domain.RoleDoctor)

		patients.POST("", RequireRoles(domain.RoleAdmin), h.Patients.Create)
		patients.GET("", staff, h.Patients.Search)
		patients.GET("/:id", staff, h.Patients.Get)
		patients.PUT("/:id", h.Patients.Update)
		patients.DELETE("/:id", RequireRoles(domain.RoleAdmin), h.Patients.Delete)
		patients.GET("/user/:userId", h.Patients.GetByUser)
	}

	appointments := authenticated.Group("/appointments")
	{
		staff := RequireRoles(domain.RoleAdmin, domain.RoleDoctor)

		appointments.POST("", h.Appointments.Create)
		appointments.GET("", h.Appointments.List)
		appointments.GET("/range", staff, h.Appointments.ListByDateRange)
		appointments.GET("/available-slots/:doctorId", h.Appointments.AvailableSlots)
		appointments.GET("/status/:status", staff, h.Appointments.ListByStatus)
		appointments.GET("/patient/:patientId", h.Appointments.ListByPatient)
		appointments.GET("/doctor/:doctorId", staff, h.Appointments.ListByDoctor)
		appointments.GET("/:id", h.Appointments.Get)
		appointments.PUT("/:id", h.Appointments.Update)
		appointments.DELETE("/:id", h.Appointments.Delete)
		appointments.POST("/:id/reminder", staff, h.Appointments.SendReminder)
	}

	serveSPA(router, cfg.Server.PublicPath)

	return router
}

func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down"})
			return
		}
		if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	}
}

// serveSPA serves the frontend bundle. Unknown non-API paths fall back to
// index.html so client-side routing works on refresh.
func serveSPA(router *gin.Engine, publicPath string) {
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			respondError(c, http.StatusNotFound, "route not found")
			return
		}

		file := filepath.Join(publicPath, filepath.Clean(c.Request.URL.Path))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}
		c.File(filepath.Join(publicPath, "index.html"))
	})
}
