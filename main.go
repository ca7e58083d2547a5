// @title Exam Site 后端 API
// @version 1.0
// @description 在线考试：抽题、评分和成绩记录。

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"flag"
	"log"

	"exam_site_backend/internal/app"
	"exam_site_backend/internal/config"
	"exam_site_backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	// 命令行参数
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	importFile := flag.String("import", "", "导入试题文件 (.json/.yaml) 后退出")
	title := flag.String("title", "", "导入试卷的标题")
	source := flag.String("source", "", "导入试卷的来源")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if *migrateOnly {
		logger.Log.Info("数据库迁移完成，退出程序")
		application.Close(context.Background())
		return
	}

	if *importFile != "" {
		err := application.ImportExamFile(context.Background(), *importFile, *title, *source)
		application.Close(context.Background())
		if err != nil {
			logger.Log.Fatal("Failed to import exam", zap.String("file", *importFile), zap.Error(err))
		}
		return
	}

	application.Run()
}
