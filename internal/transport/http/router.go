package http

import (
	"log/slog"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/avdonin/foodreel/internal/es"
	"github.com/avdonin/foodreel/internal/handlers"
	authmw "github.com/avdonin/foodreel/internal/middleware/auth"
	loggingmw "github.com/avdonin/foodreel/internal/middleware/logging"
	"github.com/avdonin/foodreel/internal/models"
	"github.com/avdonin/foodreel/internal/mykafka"
	"github.com/avdonin/foodreel/internal/service"
	"github.com/avdonin/foodreel/internal/storage"
)

type Deps struct {
	DB       *gorm.DB
	Logger   *slog.Logger
	Tokens   *service.TokenService
	Cart     *service.CartService
	Producer *mykafka.Producer
	Uploads  *storage.FileStore
	ES       *elasticsearch.Client
}

func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(loggingmw.RequestLogger(d.Logger))

	authHandler := &handlers.AuthHandler{DB: d.DB, Tokens: d.Tokens, Producer: d.Producer, Uploads: d.Uploads}
	cartHandler := &handlers.CartHandler{Cart: d.Cart, Producer: d.Producer}
	productHandler := &handlers.ProductHandler{DB: d.DB, Cart: d.Cart, Producer: d.Producer, Uploads: d.Uploads, ES: d.ES}
	videoHandler := &handlers.VideoHandler{DB: d.DB, Uploads: d.Uploads}
	likeHandler := &handlers.LikeHandler{DB: d.DB}
	searchHandler := handlers.NewSearchHandler(d.ES, es.ProductIndex)

	requireLogin := authmw.RequireLogin(d.Tokens)
	requireOwner := authmw.RequireRole(d.Tokens, models.RoleOwner)

	e.Static("/uploads", d.Uploads.Dir)

	user := e.Group("/user")
	user.POST("/register", authHandler.Register(models.RoleUser))
	user.POST("/login", authHandler.Login(models.RoleUser))
	user.POST("/logout", authHandler.LogOut, requireLogin)
	user.POST("/refresh", authHandler.Refresh)
	user.GET("/profile", authHandler.Profile, requireLogin)
	user.PUT("/update", authHandler.UpdateProfile, requireLogin)

	owner := e.Group("/owner")
	owner.POST("/register", authHandler.Register(models.RoleOwner))
	owner.POST("/login", authHandler.Login(models.RoleOwner))
	owner.POST("/logout", authHandler.LogOut, requireOwner)
	owner.GET("/profile", authHandler.Profile, requireOwner)

	cart := e.Group("/cart", requireLogin)
	cart.GET("", cartHandler.GetCart)
	cart.POST("/add", cartHandler.AddToCart)
	cart.DELETE("/:productId", cartHandler.RemoveFromCart)

	product := e.Group("/product")
	product.GET("", productHandler.GetProducts)
	product.GET("/search", searchHandler.Handler)
	product.GET("/owner", productHandler.GetOwnerProducts, requireOwner)
	product.POST("/addproduct", productHandler.AddProduct, requireOwner)
	product.DELETE("/delete/:id", productHandler.DeleteProduct, requireOwner)

	videos := e.Group("/videos")
	videos.GET("/feed", videoHandler.GetFeed)
	videos.GET("/owner", videoHandler.GetOwnerVideos, requireOwner)
	videos.POST("/share", videoHandler.ShareVideo, requireOwner)
	videos.DELETE("/delete/:id", videoHandler.DeleteVideo, requireOwner)

	likes := e.Group("/likes", requireLogin)
	likes.POST("/toggle/:videoId", likeHandler.ToggleLike)

	return e
}
