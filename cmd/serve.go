package cmd

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/0xBoji/realty-payments/app/backend"
	"github.com/0xBoji/realty-payments/app/controller"
	"github.com/0xBoji/realty-payments/app/provider"
	"github.com/0xBoji/realty-payments/app/repository"
	"github.com/0xBoji/realty-payments/app/service"
	"github.com/0xBoji/realty-payments/app/types"
	"github.com/0xBoji/realty-payments/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Start the HTTP (Echo) server for checkout, gateway callbacks, and pending-payment lookups.",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, paymentService, cleanup := mustCreatePaymentService()
	defer cleanup()

	paymentController := controller.NewPaymentController(paymentService)
	e := setupHTTPServer(paymentController, cfg.App.APIKey)

	go func() {
		httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP shutdown error")
	}

	logrus.Info("Server stopped")
}

func setupHTTPServer(paymentController *controller.PaymentController, apiKey string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	e.GET("/health", paymentController.Health)

	// Gateway-facing endpoints cannot carry our API key: the browser redirect,
	// the IPN call, and the webhook are authenticated by signature instead.
	e.GET("/payments/vnpay/return", paymentController.HandleVNPayReturn)
	e.GET("/payments/vnpay/ipn", paymentController.HandleVNPayIPN)
	e.POST("/payments/vnpay/ipn", paymentController.HandleVNPayIPN)
	e.POST("/webhooks/stripe", paymentController.HandleStripeWebhook)
	e.GET("/payments/stripe/sessions/:id", paymentController.GetStripeSession)

	authed := e.Group("", requireAPIKey(apiKey))
	authed.POST("/checkout", paymentController.CreateCheckout)
	authed.GET("/payments/pending/:reference", paymentController.GetPendingPayment)
	authed.DELETE("/payments/pending/:reference", paymentController.CancelPendingPayment)

	return e
}

// requireAPIKey gates caller-facing endpoints. An empty configured key
// disables the check, which is only acceptable in sandbox setups.
func requireAPIKey(apiKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if apiKey == "" {
				return next(ctx)
			}
			provided := strings.TrimSpace(ctx.Request().Header.Get("X-API-Key"))
			if provided != apiKey {
				return ctx.JSON(http.StatusUnauthorized, &types.ErrorResponse{Error: "invalid api key"})
			}
			return next(ctx)
		}
	}
}

func mustCreatePaymentService() (*config.Config, *service.PaymentService, func()) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}
	if cfg.App.Sandbox {
		logrus.Warn("Running with sandbox gateway credentials")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		_ = redisClient.Close()
		logrus.WithError(err).Fatal("Failed to ping redis")
	}

	pendingStore := repository.NewPendingStore(redisClient, cfg.Payments.PendingTTL)
	backendClient := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.APIKey, cfg.Backend.HTTPTimeout)

	vnpayProvider := provider.NewVNPayProvider(provider.VNPayConfig{
		TmnCode:     cfg.VNPay.TmnCode,
		HashSecret:  cfg.VNPay.HashSecret,
		PayURL:      cfg.VNPay.PayURL,
		QueryURL:    cfg.VNPay.QueryURL,
		ReturnURL:   cfg.VNPay.ReturnURL,
		Locale:      cfg.VNPay.Locale,
		HTTPTimeout: cfg.VNPay.HTTPTimeout,
	})

	webhookVerifier := provider.NewHMACWebhookVerifier(cfg.Stripe.WebhookSecret, cfg.Stripe.SignatureToleranceSeconds)
	stripeProvider := provider.NewStripeProvider(provider.StripeConfig{
		SecretKey:   cfg.Stripe.SecretKey,
		SuccessURL:  cfg.Stripe.SuccessURL,
		CancelURL:   cfg.Stripe.CancelURL,
		VNDPerUSD:   cfg.Payments.VNDPerUSD,
		HTTPTimeout: cfg.Stripe.HTTPTimeout,
	}, webhookVerifier)

	paymentService := service.NewPaymentService(
		pendingStore,
		backendClient,
		vnpayProvider,
		stripeProvider,
		cfg.Payments,
		cfg.Jobs,
	)

	cleanup := func() {
		if err := redisClient.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close redis client")
		}
	}

	return cfg, paymentService, cleanup
}

func configureLogging(cfg *config.Config) error {
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.JSONFormatter{})
	return nil
}
