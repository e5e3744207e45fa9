package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/locvowork/tablexcel/internal/config"
	"github.com/locvowork/tablexcel/internal/database"
	"github.com/locvowork/tablexcel/internal/handler"
	"github.com/locvowork/tablexcel/internal/logger"
	"github.com/locvowork/tablexcel/internal/metrics"
	"github.com/locvowork/tablexcel/internal/repository"
	"github.com/locvowork/tablexcel/internal/service"
	"github.com/locvowork/tablexcel/pkg/xlstyle"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type App struct {
	Echo     *echo.Echo
	DB       *sql.DB
	Reports  *service.ReportService
	Registry *prometheus.Registry
}

func NewApp() *App {
	return &App{
		Echo:     echo.New(),
		Registry: prometheus.NewRegistry(),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	// Load environment configuration
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}
	cfg := config.DefaultEnvConfig

	// Initialize logging
	logger.InitLogging(cfg.LOG_FILE_PATH, cfg.LOG_LEVEL)
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	// Initialize database connection
	dbConfig := database.Config{
		Host:            cfg.DB_HOST,
		Port:            cfg.DB_PORT,
		User:            cfg.DB_USER,
		Password:        cfg.DB_PASSWORD,
		DBName:          cfg.DB_NAME,
		SSLMode:         cfg.DB_SSL_MODE,
		MaxOpenConns:    cfg.DB_MAX_OPEN_CONNS,
		MaxIdleConns:    cfg.DB_MAX_IDLE_CONNS,
		ConnMaxLifetime: cfg.DB_CONN_MAX_LIFETIME,
	}

	db, err := database.NewPostgresDB(ctx, dbConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.DB = db

	catalog, err := LoadCatalog(cfg.REPORT_STYLE_CONFIG)
	if err != nil {
		return fmt.Errorf("failed to load style config: %w", err)
	}

	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	exportMetrics := metrics.NewExportMetrics(a.Registry)

	// Initialize dependencies
	empRepo := repository.NewEmployeeRepository(db)
	a.Reports = service.NewReportService(empRepo, catalog, exportMetrics, service.ReportOptions{
		FirstYear: cfg.REPORT_FIRST_YEAR,
		LastYear:  cfg.REPORT_LAST_YEAR,
		Workers:   cfg.REPORT_WORKERS,
	})
	reportHandler := handler.NewReportHandler(a.Reports, cfg.REPORT_OUTPUT_PATH, cfg.REPORT_FORCE_RECREATE)

	// Register Middlewares
	a.RegisterMiddlewares()

	// Register Routes
	a.RegisterRoutes(reportHandler)

	return nil
}

// LoadCatalog returns the styles of the YAML file at path, or the built-in
// styles when path is empty.
func LoadCatalog(path string) (*xlstyle.Catalog, error) {
	if path == "" {
		return xlstyle.DefaultCatalog(), nil
	}
	cfg, err := xlstyle.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return cfg.Catalog()
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(middleware.Logger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
}

func (a *App) RegisterRoutes(reportHandler *handler.ReportHandler) {
	reports := a.Echo.Group("/reports")
	reports.GET("/salaries", reportHandler.DownloadHandler)
	reports.POST("/salaries/export", reportHandler.ExportHandler)

	a.Echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})))
}

func (a *App) Run() error {
	defer a.DB.Close()
	return a.Echo.Start(":" + config.DefaultEnvConfig.APP_PORT)
}

// Close releases the database connection.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
