package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/minebase/yggdrasil/internal/app/sessiond"
	"github.com/minebase/yggdrasil/internal/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	version string

	configPath  = "config.yml"
	workingDir  = "."
	environment = "prod"
	logEncoder  = "console"

	logger *zap.Logger

	mu  sync.Mutex
	svc *sessiond.Service

	rootCmd = &cobra.Command{
		Use:   "yggdrasil",
		Short: "Starts the session validation sidecar",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = newLogger(environment)
			if err != nil {
				return err
			}
			defer logger.Sync()

			if err := os.Chdir(workingDir); err != nil {
				return err
			}

			logger.Info("loading service from config",
				zap.String("config", configPath),
			)

			cfg, err := config.New(configPath, onConfigChange, logger)
			if err != nil {
				return err
			}
			defer cfg.Close()

			data, err := cfg.Read()
			if err != nil {
				return err
			}

			svcCfg, err := sessiond.NewConfig(data)
			if err != nil {
				return err
			}

			mu.Lock()
			svc, err = sessiond.NewService(svcCfg, logger)
			if err != nil {
				mu.Unlock()
				return err
			}
			go listenAndServe(svc)
			mu.Unlock()

			defer func() {
				mu.Lock()
				defer mu.Unlock()
				_ = svc.Close()
			}()

			sc := make(chan os.Signal, 1)
			signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
			<-sc
			return nil
		},
	}
)

func envString(name string, defVal string) string {
	envString := os.Getenv(name)
	if envString == "" {
		return defVal
	}

	return envString
}

func init() {
	envVarPrefix := "YGGDRASIL_"
	workingDir = envString(envVarPrefix+"WORKING_DIR", workingDir)
	rootCmd.PersistentFlags().StringVarP(&workingDir, "working-dir", "w", workingDir, "set the working directory")
	environment = envString(envVarPrefix+"ENVIRONMENT", environment)
	rootCmd.PersistentFlags().StringVarP(&environment, "environment", "e", environment, "set the deployment environment")
	logEncoder = envString(envVarPrefix+"LOG_ENCODER", logEncoder)
	rootCmd.PersistentFlags().StringVarP(&logEncoder, "log-encoder", "l", logEncoder, "set the log encoder")
	configPath = envString(envVarPrefix+"CONFIG", configPath)
	rootCmd.Flags().StringVarP(&configPath, "config", "c", configPath, "path of the config file")

	rootCmd.AddCommand(versionCmd)
}

func newLogger(env string) (*zap.Logger, error) {
	switch env {
	case "nop":
		return zap.NewNop(), nil
	case "dev":
		return zap.NewDevelopment()
	case "prod":
		cfg := zap.NewProductionConfig()
		cfg.Encoding = logEncoder
		if logEncoder == "console" {
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
		cfg.DisableCaller = true
		cfg.DisableStacktrace = true
		return cfg.Build()
	default:
		return nil, fmt.Errorf("unsupported environment %q", environment)
	}
}

func listenAndServe(s *sessiond.Service) {
	if err := s.ListenAndServe(); err != nil {
		logger.Error("api server failed",
			zap.Error(err),
		)
	}
}

func onConfigChange(data map[string]any) {
	mu.Lock()
	defer mu.Unlock()

	svcCfg, err := sessiond.NewConfig(data)
	if err != nil {
		logger.Error("failed to load service config",
			zap.Error(err),
		)
		return
	}

	newSvc, err := sessiond.NewService(svcCfg, logger)
	if err != nil {
		logger.Error("failed to reload service",
			zap.Error(err),
		)
		return
	}

	logger.Debug("reloading service")
	if svc != nil {
		_ = svc.Close()
	}
	svc = newSvc
	go listenAndServe(newSvc)
}

func Execute(v string) error {
	version = v
	return rootCmd.Execute()
}
