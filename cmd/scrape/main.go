package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/LJTian/NewsHub/internal/config"
	"github.com/LJTian/NewsHub/internal/pipeline"
	"github.com/LJTian/NewsHub/internal/scraper"
	"github.com/LJTian/NewsHub/internal/storage"
)

// 一次性执行采集流水线的命令行入口：适合手动触发或交给系统级定时任务
func main() {
	maxArticles := flag.Int("max-articles", pipeline.DefaultMaxArticles, "maximum number of articles per source")
	source := flag.String("source", scraper.SourceAll, "which source to scrape: aggregator, forum or all")
	dryRun := flag.Bool("dry-run", false, "show what would be scraped without saving")
	forceUpdate := flag.Bool("force-update", false, "update existing articles even if unchanged")
	testMode := flag.Bool("test", false, "process canned test articles instead of scraping")
	flag.Parse()

	switch *source {
	case scraper.SourceAggregator, scraper.SourceForum, scraper.SourceAll:
	default:
		fmt.Fprintf(os.Stderr, "unknown source %q (expected aggregator, forum or all)\n", *source)
		os.Exit(2)
	}

	// .env 存在时加载，便于本地开发；文件缺失不算错误
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warn: load .env: %v", err)
	}

	cfg := config.Load()

	store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("init store failed: %v", err)
	}

	runner := pipeline.NewRunner(store, scraper.New())
	opts := pipeline.Options{
		Source:      *source,
		MaxArticles: *maxArticles,
		DryRun:      *dryRun,
		ForceUpdate: *forceUpdate,
		TestMode:    *testMode,
	}

	if _, err := runner.Run(context.Background(), opts); err != nil {
		log.Fatalf("scrape failed: %v", err)
	}
}
