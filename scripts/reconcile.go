// 手动触发进度对账脚本
//
// 该功能已集成到主应用的后台定时任务中（每小时扫描最近活跃的用户）。
// 此脚本用于手动全量对账，例如历史数据导入后或发现计数漂移时。
//
// 用法: go run scripts/reconcile.go

package main

import (
	"lingua_learn_backend/internal/config"
	"lingua_learn_backend/internal/repository"
	"lingua_learn_backend/internal/service"
	"lingua_learn_backend/pkg/database"
	"lingua_learn_backend/pkg/logger"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库初始化失败: %v", err)
	}

	progressRepo := repository.NewProgressRepository(db)
	curriculumRepo := repository.NewCurriculumRepository(db)
	svc := service.NewProgressService(progressRepo, curriculumRepo, nil, nil)

	start := time.Now()
	log.Println("开始全量进度对账...")

	// 截止时间取一个足够早的点，覆盖所有历史记录
	scanned, fixed := svc.ReconcileRecent(time.Unix(0, 0))

	log.Printf("全量对账完成，扫描 %d 人，修复 %d 人，耗时 %s", scanned, fixed, time.Since(start))
}
