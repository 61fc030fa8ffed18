package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prasetyowira/qrstudio/api"
	"github.com/prasetyowira/qrstudio/config"
	"github.com/prasetyowira/qrstudio/constant"
	"github.com/prasetyowira/qrstudio/domain/studio"
	"github.com/prasetyowira/qrstudio/infrastructure/cache"
	"github.com/prasetyowira/qrstudio/infrastructure/db"
	appLogger "github.com/prasetyowira/qrstudio/infrastructure/logger"
	"github.com/prasetyowira/qrstudio/infrastructure/qrcode"
	"github.com/spf13/cobra"
)

var version = "v0.1.0"

func main() {
	root := &cobra.Command{
		Use:   "qrstudio",
		Short: "Local QR code studio",
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the studio UI on the loopback interface",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(config.LoadConfig())
		},
	})

	root.AddCommand(newGenerateCmd())

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("qrstudio %s\n", version)
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cfg config.Config) error {
	appLogger.Initialize(cfg.IsProduction())
	defer appLogger.Close()

	appLogger.Info(constant.MsgApplicationStarting, appLogger.LoggerInfo{
		ContextFunction: constant.CtxMain,
		Data: map[string]interface{}{
			constant.DataHost:        cfg.Host,
			constant.DataPort:        cfg.Port,
			constant.DataDBPath:      cfg.DatabaseURL,
			constant.DataEnvironment: cfg.LogLevel,
		},
	})

	repository, err := db.NewPreferenceRepository(cfg.DatabaseURL)
	if err != nil {
		appLogger.Error(constant.MsgFailedToInitDB, appLogger.LoggerInfo{
			ContextFunction: constant.CtxMain,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAppDBInit,
				Message: err.Error(),
				Type:    constant.ErrTypeApp,
			},
			Data: map[string]interface{}{
				constant.DataDBPath: cfg.DatabaseURL,
			},
		})
		return err
	}
	defer repository.Close()

	sessions := studio.NewSessions(
		cache.NewNamespaceLRU(cfg.SessionCacheSize),
		qrcode.NewGenerator(),
		repository,
		cfg.StorageKey,
	)

	handler := api.NewHandler(sessions)
	router := api.NewRouter(handler)
	router.SetupRoutes()

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info(constant.MsgServerStarting, appLogger.LoggerInfo{
			ContextFunction: constant.CtxMain,
			Data: map[string]interface{}{
				constant.DataHost: cfg.Host,
				constant.DataPort: cfg.Port,
			},
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		appLogger.Error(constant.MsgServerFailedToStart, appLogger.LoggerInfo{
			ContextFunction: constant.CtxMain,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAppServerStart,
				Message: err.Error(),
				Type:    constant.ErrTypeApp,
			},
			Data: map[string]interface{}{
				constant.DataPort: cfg.Port,
			},
		})
		return err
	case <-quit:
	}

	appLogger.Info(constant.MsgServerShuttingDown, appLogger.LoggerInfo{
		ContextFunction: constant.CtxMain,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error(constant.MsgServerShutdownError, appLogger.LoggerInfo{
			ContextFunction: constant.CtxMain,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAppServerShutdown,
				Message: err.Error(),
				Type:    constant.ErrTypeApp,
			},
		})
	}

	appLogger.Info(constant.MsgServerStopped, appLogger.LoggerInfo{
		ContextFunction: constant.CtxMain,
	})
	return nil
}
