package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"metaconvert/internal/database"
	"metaconvert/internal/domain"
	"metaconvert/internal/domain/conversion"
	"metaconvert/internal/domain/notification"
	"metaconvert/internal/domain/reaper"
	"metaconvert/internal/domain/share"
	"metaconvert/internal/domain/storage"
	"metaconvert/internal/middleware"
	jwtsvc "metaconvert/internal/pkg/jwt"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is empty")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is empty")
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal(err)
	}

	if err := db.AutoMigrate(
		&domain.User{},
		&storage.Blob{},
		&conversion.Conversion{},
		&conversion.Upscale{},
		&share.SharedLink{},
		&share.DropLink{},
		&notification.Notification{},
	); err != nil {
		log.Fatal(err)
	}

	var external *storage.ExternalClient
	if base := os.Getenv("OBJECT_STORE_URL"); base != "" {
		external = storage.NewExternalClient(base)
	}
	store := storage.NewStore(db, external)

	j := jwtsvc.New(secret, 24*time.Hour)

	conversionService := conversion.NewService(conversion.NewRepository(db), store)
	conversionHandler := conversion.NewHandler(conversionService)

	reaperService := reaper.NewService(reaper.NewRepository(db), store)
	reaperHandler := reaper.NewHandler(reaperService)

	shareService := share.NewService(share.NewRepository(db))
	shareHandler := share.NewHandler(shareService, reaperService)

	hub := notification.NewHub()
	notificationService := notification.NewService(notification.NewRepository(db), hub)
	notificationHandler := notification.NewHandler(notificationService, hub)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// public + anonymous-friendly endpoints
		public := v1.Group("/")
		public.Use(middleware.OptionalAuth(j))

		// session required
		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))

		conversion.RegisterRoutes(public, protected, conversionHandler)
		share.RegisterRoutes(public, protected, shareHandler)
		reaper.RegisterRoutes(protected, reaperHandler)
		notification.RegisterRoutes(protected, notificationHandler)

		// worker callbacks
		internal := v1.Group("/internal")
		internal.Use(middleware.InternalTokenAuth())
		conversion.RegisterWorkerRoutes(internal, conversionHandler)

		// administrative console
		admin := v1.Group("/admin")
		admin.Use(middleware.Auth(j), middleware.AdminOnly())
		reaper.RegisterAdminRoutes(admin, reaperHandler)
		notification.RegisterAdminRoutes(admin, notificationHandler)
	}

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
