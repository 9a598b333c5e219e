package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"capstone/internal/pkg/config"
	"capstone/internal/pkg/logger"
)

// @title Capstone API
// @version 1.0
// @description 毕业设计团队、项目与选课管理 API 文档
// @description 提供学期班级、选课、团队、邀请、项目审批与续接等功能

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

const (
	appVersion = "1.0.0"
	appName    = "capstone"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:          appName,
	Short:        "Capstone team/project lifecycle service",
	SilenceUsage: true,
	Version:      appVersion,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径 (例如: --config=configs/config.yaml)")
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tokenCmd())
}

// loadConfig 加载配置并初始化日志
func loadConfig() (*config.Config, error) {
	// 优先级: 命令行参数 > 环境变量 > 默认路径
	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}

	if err := logger.Init(&cfg.Log); err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	logger.Info(fmt.Sprintf("Load config file: %s of %s", configPath, getConfigSource()),
		zap.String("version", appVersion))
	return cfg, nil
}

// getConfigPath 获取配置文件路径
func getConfigPath() string {
	if configFile != "" {
		return configFile
	}
	if envConfig := os.Getenv("CONFIG_FILE"); envConfig != "" {
		return envConfig
	}
	return "configs/config.yaml"
}

// getConfigSource 获取配置来源说明
func getConfigSource() string {
	if configFile != "" {
		return "命令行参数"
	}
	if os.Getenv("CONFIG_FILE") != "" {
		return "环境变量"
	}
	return "默认路径"
}
