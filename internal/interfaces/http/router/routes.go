package router

import (
	"fmt"
	"time"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/infrastructure/logger"
	"github.com/atelier/backend/internal/interfaces/command"
	"github.com/atelier/backend/internal/interfaces/http/dto"
	"github.com/atelier/backend/internal/interfaces/http/handler"
	"github.com/atelier/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

const loginPath = "/api/v1/auth/login"

// Options holds the HTTP surface settings
type Options struct {
	ServiceName    string
	TracingEnabled bool
	AuthEnabled    bool
	CORSOrigins    []string
	TrustedProxies []string
	MaxBodySize    int64
	CommandTimeout time.Duration
	InFlightTTL    time.Duration
	LoginPerMinute float64
	LoginBurst     int
}

// Authenticator validates tokens and signs the operator in and out
type Authenticator interface {
	middleware.TokenAuthenticator
	handler.OperatorAuthenticator
}

// Deps holds what the routes call into
type Deps struct {
	Logger        *zap.Logger
	Validator     *dto.Validator
	Services      command.Services
	Dispatcher    *command.Dispatcher
	Authenticator Authenticator
	InFlight      shared.InFlightStore
	Health        *handler.HealthHandler
}

// New builds the gin engine with the middleware chain, /health, the
// command boundary and the REST routes.
func New(opts Options, deps Deps) (*gin.Engine, error) {
	if deps.Validator == nil {
		deps.Validator = dto.NewValidator()
	}
	binding.Validator = deps.Validator

	engine := gin.New()
	if err := engine.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(opts.ServiceName, opts.TracingEnabled)...)
	engine.Use(logger.GinMiddleware(deps.Logger), logger.Recovery(deps.Logger))
	engine.Use(middleware.Secure())
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = opts.CORSOrigins
	engine.Use(middleware.CORS(cors))
	if opts.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(opts.MaxBodySize))
	}

	engine.GET("/health", deps.Health.Check)

	var apiMiddleware []gin.HandlerFunc
	if opts.AuthEnabled {
		apiMiddleware = append(apiMiddleware, middleware.Auth(deps.Authenticator, loginPath))
	}
	apiMiddleware = append(apiMiddleware, middleware.Timeout(opts.CommandTimeout))

	r := NewRouter(engine, WithMiddleware(apiMiddleware...))
	r.Register(
		authRoutes(opts, deps),
		commandRoutes(opts, deps),
		salesRoutes(deps),
		catalogRoutes(deps),
		partnerRoutes(deps),
		settingsRoutes(deps),
	)
	r.Setup()
	return engine, nil
}

func authRoutes(opts Options, deps Deps) *DomainGroup {
	h := handler.NewAuthHandler(deps.Authenticator, deps.Validator)
	g := NewDomainGroup("auth", "/auth")
	if opts.LoginPerMinute > 0 {
		g.POST("/login", middleware.NewLoginLimiter(opts.LoginPerMinute, opts.LoginBurst).Middleware(), h.Login)
	} else {
		g.POST("/login", h.Login)
	}
	g.POST("/logout", h.Logout)
	g.GET("/me", h.Me)
	return g
}

func commandRoutes(opts Options, deps Deps) *DomainGroup {
	h := handler.NewCommandHandler(deps.Dispatcher, deps.Validator)
	g := NewDomainGroup("commands", "/commands")
	g.GET("", h.Names)
	g.POST("/:name", middleware.Correlation(deps.InFlight, opts.InFlightTTL), h.Execute)
	return g
}

func salesRoutes(deps Deps) *DomainGroup {
	quotes := handler.NewQuoteHandler(deps.Services.Quotes, deps.Validator)
	invoices := handler.NewInvoiceHandler(deps.Services.Invoices, deps.Validator)

	g := NewDomainGroup("sales", "")
	g.Group("quotes", "/quotes").
		GET("", quotes.List).
		POST("", quotes.Create).
		GET("/:id", quotes.Get).
		PUT("/:id", quotes.Update).
		DELETE("/:id", quotes.Delete).
		POST("/:id/status", quotes.ChangeStatus).
		POST("/:id/promote", quotes.Promote)
	g.Group("invoices", "/invoices").
		GET("", invoices.List).
		POST("", invoices.Create).
		GET("/overdue", invoices.Overdue).
		POST("/sweep-overdue", invoices.SweepOverdue).
		GET("/:id", invoices.Get).
		DELETE("/:id", invoices.Delete).
		POST("/:id/status", invoices.ChangeStatus)
	return g
}

func catalogRoutes(deps Deps) *DomainGroup {
	s := deps.Services
	h := handler.NewCatalogHandler(s.Products, s.Categories, s.Attributes, s.Tags, deps.Validator)
	media := handler.NewMediaHandler(s.Sync, deps.Validator)

	g := NewDomainGroup("catalog", "")
	g.Group("products", "/products").
		GET("", h.ListProducts).
		POST("", h.CreateProduct).
		GET("/:id", h.GetProduct).
		GET("/:id/variations", h.ListVariations).
		PUT("/:id", h.UpdateProduct).
		DELETE("/:id", h.DeleteProduct)
	g.Group("categories", "/categories").
		GET("", h.ListCategories).
		POST("", h.CreateCategory).
		GET("/:id", h.GetCategory).
		PUT("/:id", h.UpdateCategory).
		DELETE("/:id", h.DeleteCategory)
	g.Group("attributes", "/attributes").
		GET("", h.ListAttributes).
		POST("", h.CreateAttribute).
		GET("/:id", h.GetAttribute).
		PUT("/:id", h.UpdateAttribute).
		DELETE("/:id", h.DeleteAttribute).
		GET("/:id/terms", h.ListTerms).
		POST("/:id/terms", h.CreateTerm)
	g.Group("terms", "/terms").
		PUT("/:id", h.UpdateTerm).
		DELETE("/:id", h.DeleteTerm)
	g.Group("tags", "/tags").
		GET("", h.ListTags).
		POST("", h.CreateTag).
		GET("/:id", h.GetTag).
		PUT("/:id", h.UpdateTag).
		DELETE("/:id", h.DeleteTag)
	g.POST("/media", media.Upload)
	return g
}

func partnerRoutes(deps Deps) *DomainGroup {
	h := handler.NewPartnerHandler(deps.Services.Clients, deps.Services.Employees, deps.Validator)

	g := NewDomainGroup("partner", "")
	g.Group("clients", "/clients").
		GET("", h.ListClients).
		POST("", h.CreateClient).
		POST("/delete-many", h.DeleteManyClients).
		GET("/:id", h.GetClient).
		PUT("/:id", h.UpdateClient).
		DELETE("/:id", h.DeleteClient)
	g.Group("employees", "/employees").
		GET("", h.ListEmployees).
		POST("", h.CreateEmployee).
		GET("/:id", h.GetEmployee).
		PUT("/:id", h.UpdateEmployee).
		DELETE("/:id", h.DeleteEmployee)
	return g
}

func settingsRoutes(deps Deps) *DomainGroup {
	h := handler.NewSettingsHandler(deps.Services.Settings, deps.Validator)
	return NewDomainGroup("settings", "/settings").
		GET("", h.Get).
		PUT("", h.Update)
}
