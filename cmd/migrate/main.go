package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"result-generator/backend/config"
	"result-generator/backend/pkg/database"
	applogger "result-generator/backend/pkg/logger"
)

// 用法：
//
//	migrate            应用全部未执行的迁移
//	migrate -down 1    回滚最近 1 个迁移
func main() {
	configPath := flag.String("config", "", "配置文件路径（默认 config/config.yaml）")
	down := flag.Int("down", 0, "回滚的迁移步数，0 表示执行 up")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	defer sqlDB.Close()

	if *down > 0 {
		err = database.RollbackMigrations(sqlDB, *down, logger)
	} else {
		err = database.RunMigrations(sqlDB, logger)
	}
	if err != nil {
		logger.Fatal("迁移失败", zap.Error(err))
	}
}
