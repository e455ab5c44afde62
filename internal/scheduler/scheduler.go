package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/LJTian/NewsHub/internal/pipeline"
)

// Scheduler 按 cron 周期驱动采集流水线
type Scheduler struct {
	cron   *cron.Cron
	runner *pipeline.Runner
	opts   pipeline.Options
}

func New(spec string, runner *pipeline.Runner, opts pipeline.Options) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:   c,
		runner: runner,
		opts:   opts,
	}

	if _, err := c.AddFunc(spec, s.runOnce); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	// 延迟执行首轮采集，避免与服务启动初期的请求争抢资源
	const startupDelay = 15 * time.Second
	time.AfterFunc(startupDelay, func() {
		go s.runOnce()
	})
}

// RunOnce 对外暴露的单次执行入口，方便手动触发采集
func (s *Scheduler) RunOnce() {
	s.runOnce()
}

func (s *Scheduler) runOnce() {
	log.Println("start scrape job...")

	res, err := s.runner.Run(context.Background(), s.opts)
	if err != nil {
		// 运行锁被占用或容器缺失，记录后等下一轮
		log.Printf("scrape job error: %v", err)
		return
	}

	log.Printf("scrape job done, found=%d created=%d updated=%d skipped=%d failed=%d",
		res.Found, res.Created, res.Updated, res.Skipped, res.Failed)
}
