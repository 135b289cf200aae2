package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/locvowork/performpulse/internal/config"
	"github.com/locvowork/performpulse/internal/database"
	"github.com/locvowork/performpulse/internal/domain"
	"github.com/locvowork/performpulse/internal/handler"
	"github.com/locvowork/performpulse/internal/llm"
	"github.com/locvowork/performpulse/internal/logger"
	"github.com/locvowork/performpulse/internal/repository"
	"github.com/locvowork/performpulse/internal/service"
)

type App struct {
	Echo *echo.Echo

	Directory domain.Directory
	Bookmarks *service.BookmarkStore

	closeMu sync.Mutex
	closers []func() error
}

type handlers struct {
	employee   *handler.EmployeeHandler
	bookmark   *handler.BookmarkHandler
	browse     *handler.BrowseHandler
	suggestion *handler.SuggestionHandler
	dashboard  *handler.DashboardHandler
}

func NewApp() *App {
	return &App{
		Echo: echo.New(),
	}
}

// LoadConfig reads the environment and starts logging. It is shared by the
// server and the seeder.
func LoadConfig(ctx context.Context) error {
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}

	logger.InitLogging(config.DefaultEnvConfig.LOG_FILE_PATH, config.DefaultEnvConfig.LOG_LEVEL)
	logger.InfoLog(ctx, "Environment variables loaded successfully")
	return nil
}

func (a *App) Initialize(ctx context.Context) error {
	if err := LoadConfig(ctx); err != nil {
		return err
	}
	cfg := config.DefaultEnvConfig

	directory, err := a.newDirectory()
	if err != nil {
		return err
	}
	a.Directory = directory

	blobs, err := a.newBlobStore(ctx)
	if err != nil {
		return err
	}
	a.Bookmarks = service.NewBookmarkStore(blobs, cfg.BOOKMARK_KEY)
	a.Bookmarks.Load(ctx)

	prompt, err := llm.LoadPrompt(cfg.PROMPT_FILE)
	if err != nil {
		return err
	}
	generator, err := newGenerator(ctx)
	if err != nil {
		return err
	}

	departments := service.NewDepartmentIndex(directory)
	h := handlers{
		employee: handler.NewEmployeeHandler(directory, departments, cfg.PAGE_SIZE),
		bookmark: handler.NewBookmarkHandler(a.Bookmarks, directory),
		browse: handler.NewBrowseHandler(service.NewBrowseSessions(
			directory, cfg.PAGE_SIZE, cfg.SEARCH_DEBOUNCE, cfg.BROWSE_SESSION_TTL)),
		suggestion: handler.NewSuggestionHandler(service.NewSuggestionService(generator, prompt, directory)),
		dashboard:  handler.NewDashboardHandler(service.NewDashboardService(directory, departments, a.Bookmarks)),
	}

	a.RegisterMiddlewares()
	return a.RegisterRoutes(h)
}

// NewRemoteDirectory builds the HTTP directory client from config.
func NewRemoteDirectory() *repository.HTTPDirectory {
	cfg := config.DefaultEnvConfig
	return repository.NewHTTPDirectory(
		cfg.DIRECTORY_BASE_URL,
		cfg.DIRECTORY_TIMEOUT,
		repository.NewNormalizer(repository.ParseRatingMode(cfg.RATING_MODE)),
	)
}

// NewElasticClient connects to the employee mirror index.
func NewElasticClient() (*database.ElasticSearchClient, error) {
	cfg := config.DefaultEnvConfig
	return database.NewElasticSearchClient(cfg.ELASTIC_URL, cfg.ELASTIC_INDEX)
}

func (a *App) newDirectory() (domain.Directory, error) {
	cfg := config.DefaultEnvConfig
	switch strings.ToLower(cfg.DIRECTORY_BACKEND) {
	case "http", "":
		return NewRemoteDirectory(), nil
	case "elastic":
		es, err := NewElasticClient()
		if err != nil {
			return nil, err
		}
		normalizer := repository.NewNormalizer(repository.ParseRatingMode(cfg.RATING_MODE))
		return repository.NewElasticDirectory(es.Client(), es.Index(), normalizer), nil
	default:
		return nil, fmt.Errorf("unknown DIRECTORY_BACKEND %q", cfg.DIRECTORY_BACKEND)
	}
}

func (a *App) newBlobStore(ctx context.Context) (domain.BlobStore, error) {
	cfg := config.DefaultEnvConfig
	switch strings.ToLower(cfg.BOOKMARK_BACKEND) {
	case "file", "":
		return repository.NewFileBlobStore(cfg.BOOKMARK_FILE_DIR), nil

	case "redis":
		client, err := database.NewRedisClient(ctx, cfg.REDIS_ADDR, cfg.REDIS_PASSWORD)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		return repository.NewRedisBlobStore(client, cfg.REDIS_PREFIX), nil

	case "postgres":
		db, err := database.NewPostgresDB(ctx, database.Config{
			Host:            cfg.DB_HOST,
			Port:            cfg.DB_PORT,
			User:            cfg.DB_USER,
			Password:        cfg.DB_PASSWORD,
			DBName:          cfg.DB_NAME,
			SSLMode:         cfg.DB_SSL_MODE,
			MaxOpenConns:    cfg.DB_MAX_OPEN_CONNS,
			MaxIdleConns:    cfg.DB_MAX_IDLE_CONNS,
			ConnMaxLifetime: cfg.DB_CONN_MAX_LIFETIME,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		store := repository.NewPostgresBlobStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil

	case "datastore":
		dc, err := database.NewDatastoreClient(ctx, cfg.DATASTORE_PROJECT_ID)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, dc.Close)
		return dc, nil

	default:
		return nil, fmt.Errorf("unknown BOOKMARK_BACKEND %q", cfg.BOOKMARK_BACKEND)
	}
}

func newGenerator(ctx context.Context) (domain.TextGenerator, error) {
	cfg := config.DefaultEnvConfig
	switch strings.ToLower(cfg.LLM_PROVIDER) {
	case "gemini", "":
		return llm.NewGeminiGenerator(ctx, cfg.LLM_API_KEY, cfg.LLM_MODEL, cfg.LLM_BASE_URL)
	case "openai":
		return llm.NewOpenAIGenerator(cfg.LLM_API_KEY, cfg.LLM_MODEL, cfg.LLM_BASE_URL)
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLM_PROVIDER)
	}
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	a.Echo.Use(requestLogger)
	a.Echo.Use(middleware.Logger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
}

// requestLogger puts the request id on the context logger.
func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Response().Header().Get(echo.HeaderXRequestID)
		req := c.Request()
		ctx := logger.WithLogger(req.Context(), map[string]interface{}{"request_id": id})
		c.SetRequest(req.WithContext(ctx))
		return next(c)
	}
}

func (a *App) RegisterRoutes(h handlers) error {
	e := a.Echo

	e.GET("/employees", h.employee.ListHandler)
	e.GET("/employees/:id", h.employee.GetHandler)
	e.GET("/departments", h.employee.DepartmentsHandler)

	e.GET("/employees/:id/bookmark", h.bookmark.StatusHandler)
	e.PUT("/employees/:id/bookmark", h.bookmark.AddHandler)
	e.DELETE("/employees/:id/bookmark", h.bookmark.RemoveHandler)
	e.GET("/bookmarks", h.bookmark.ListHandler)
	e.GET("/bookmarks/export", h.bookmark.ExportHandler)

	browseGroup := e.Group("/browse")
	browseGroup.POST("", h.browse.CreateHandler)
	browseGroup.GET("/:id", h.browse.GetHandler)
	browseGroup.PUT("/:id/query", h.browse.QueryHandler)
	browseGroup.PUT("/:id/search", h.browse.SearchHandler)
	browseGroup.POST("/:id/more", h.browse.MoreHandler)
	browseGroup.DELETE("/:id", h.browse.DeleteHandler)

	rate, err := limiter.NewRateFromFormatted(config.DefaultEnvConfig.SUGGESTION_RATE_LIMIT)
	if err != nil {
		return fmt.Errorf("invalid SUGGESTION_RATE_LIMIT: %w", err)
	}
	limit := echo.WrapMiddleware(stdlib.NewMiddleware(limiter.New(memory.NewStore(), rate)).Handler)
	e.POST("/suggestions", h.suggestion.SuggestHandler, limit)
	e.POST("/employees/:id/suggestions", h.suggestion.SuggestForEmployeeHandler, limit)

	e.GET("/dashboard", h.dashboard.SummaryHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return nil
}

// Run serves until the server is shut down. Callers release backends with Close
// once Run has returned or Echo.Shutdown has completed.
func (a *App) Run() error {
	return a.Echo.Start(":" + config.DefaultEnvConfig.APP_PORT)
}

// Close releases backend connections. Later calls do nothing.
func (a *App) Close() {
	a.closeMu.Lock()
	defer a.closeMu.Unlock()

	for _, c := range a.closers {
		if err := c(); err != nil {
			logger.WarnLog(context.Background(), "Closing backend failed: %v", err)
		}
	}
	a.closers = nil
}
