package api

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"scamshield/internal/config"
	"scamshield/internal/domain"
	"scamshield/internal/metrics"
)

//go:embed templates/*.html
var templateFS embed.FS

type Classifier interface {
	Classify(ctx context.Context, req domain.Request) (*domain.Result, error)
	ClassifyURL(ctx context.Context, url string) (*domain.Result, error)
	DetectFakeNews(ctx context.Context, text string) (*domain.Result, error)
	DetectScam(ctx context.Context, filename, text string) (*domain.Result, error)
}

type Server struct {
	echo       *echo.Echo
	classifier Classifier
	log        *zap.Logger
	templates  *template.Template
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

func NewServer(cl Classifier, log *zap.Logger, m *metrics.Metrics, cfg config.ServerConfig) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{validate: validator.New()}

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
				zap.Error(v.Error),
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))

	tmpl := template.Must(template.ParseFS(templateFS, "templates/*.html"))

	s := &Server{
		echo:       e,
		classifier: cl,
		log:        log,
		templates:  tmpl,
	}

	e.HTTPErrorHandler = s.handleError
	s.routes(m)

	return s
}

// handleError renders oversized form posts on the page like any other
// recoverable condition. Everything else, and the JSON API, keeps echo's
// default response.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge &&
		!strings.HasPrefix(c.Request().URL.Path, "/api/") {
		if rerr := s.render(c, PageData{Message: MsgTooLarge}); rerr == nil {
			return
		}
	}

	s.echo.DefaultHTTPErrorHandler(err, c)
}

func (s *Server) routes(m *metrics.Metrics) {
	s.echo.GET("/", s.index)
	s.echo.GET("/health", s.health)
	s.echo.GET("/metrics", echo.WrapHandler(m.Handler()))

	s.echo.POST("/predict", s.predictURL)
	s.echo.POST("/detect_fake_news", s.detectFakeNews)
	s.echo.POST("/scam/", s.detectScam)
	s.echo.POST("/scam", s.detectScam)

	s.echo.POST("/api/classify", s.classify)
}

func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
