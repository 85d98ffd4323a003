package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"greencare-be/internal/auth"
	"greencare-be/internal/config"
	"greencare-be/internal/db"
	"greencare-be/internal/imagehost"
	"greencare-be/internal/logger"
	"greencare-be/internal/metrics"
	"greencare-be/internal/middleware"
	"greencare-be/internal/order"
	"greencare-be/internal/plant"
	"greencare-be/internal/predict"
	"greencare-be/internal/product"
	"greencare-be/internal/user"
	"greencare-be/internal/watering"
	"greencare-be/internal/weather"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// routeRegistrar is implemented by every domain handler.
type routeRegistrar interface {
	RegisterRoutes(r chi.Router)
}

type routerDeps struct {
	Tokens     middleware.AccessTokenParser
	Limiter    *middleware.Limiter
	Metrics    *metrics.Registry
	CORSOrigin string
	APIs       []routeRegistrar
}

func setupRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(logger.RequestIDMiddleware)
	r.Use(chimw.Recoverer)
	r.Use(chimw.StripSlashes)
	r.Use(middleware.AccessLog)
	r.Use(middleware.Metrics(d.Metrics))
	r.Use(middleware.CORS(d.CORSOrigin))
	r.Use(middleware.Authenticate(d.Tokens))
	r.Use(d.Limiter.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		for _, h := range d.APIs {
			h.RegisterRoutes(api)
		}
	})
	return r
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	reg := metrics.NewRegistry()
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	policy := auth.NewPolicy()
	images := imagehost.NewCloudinary(imagehost.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
	})
	forecaster := weather.NewClient(weather.Config{
		BaseURL:  cfg.WeatherBaseURL,
		Timeout:  cfg.WeatherTimeout,
		CacheTTL: cfg.WeatherCacheTTL,
		Metrics:  reg,
	})
	home := weather.Location{Latitude: cfg.WeatherLatitude, Longitude: cfg.WeatherLongitude}

	userSvc := user.NewService(user.NewRepository(database), tokens)
	wateringSvc := watering.NewService(watering.NewRepository(database), forecaster, home, reg)
	plantSvc := plant.NewService(plant.NewRepository(database), wateringSvc, images)
	productSvc := product.NewService(product.NewRepository(database), images, policy)
	orderSvc := order.NewService(order.NewRepository(database), policy)

	apis := []routeRegistrar{
		user.NewHandler(userSvc),
		plant.NewHandler(plantSvc, policy),
		watering.NewHandler(wateringSvc, policy),
		order.NewHandler(orderSvc),
		product.NewHandler(productSvc),
	}

	if cfg.PredictEnabled() {
		classes, err := predict.LoadClasses(cfg.PredictClassesPath)
		if err != nil {
			logger.L().Fatal("failed to load classifier labels", zap.Error(err))
		}
		predictSvc := predict.NewService(predict.Deps{
			Repo:       predict.NewRepository(database),
			Classifier: predict.NewServingClassifier(cfg.PredictModelURL, classes, cfg.PredictTimeout),
			Recommender: predict.NewGroqRecommender(predict.GroqConfig{
				APIKey:  cfg.GroqAPIKey,
				BaseURL: cfg.GroqBaseURL,
				Model:   cfg.GroqModel,
				Timeout: cfg.LLMTimeout,
			}),
			Images:  images,
			Policy:  policy,
			Metrics: reg,
		})
		apis = append(apis, predict.NewHandler(predictSvc))
	} else {
		logger.L().Info("PREDICT_MODEL_URL not set, disease detection endpoints disabled")
	}

	limiter := middleware.NewLimiter(cfg.InternalSecret)
	srv := &http.Server{
		Addr: ":" + cfg.AppPort,
		Handler: setupRouter(routerDeps{
			Tokens:     tokens,
			Limiter:    limiter,
			Metrics:    reg,
			CORSOrigin: cfg.CORSOrigin,
			APIs:       apis,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		limiter.Run(gctx)
		return nil
	})
	g.Go(func() error {
		logger.L().Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.L().Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}
