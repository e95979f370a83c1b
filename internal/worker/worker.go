package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"kvs-workload/internal/logger"
)

// Job はワーカーが実行するジョブを表す
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// PoolConfig はワーカープールの設定
type PoolConfig struct {
	NumWorkers  int // ワーカー数（0でCPU数）
	QueueFactor int // キューサイズ = NumWorkers * QueueFactor
}

// DefaultPoolConfig はデフォルト設定を返す
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		NumWorkers:  0, // CPU数
		QueueFactor: 4,
	}
}

// Pool はゴルーチンのプールを管理する
type Pool struct {
	numWorkers int
	jobs       chan Job
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	started    bool
	closed     atomic.Bool
	mu         sync.Mutex

	errMu     sync.Mutex
	errs      []error
	completed atomic.Int64
}

// NewPool は新しいワーカープールを作成する
// numWorkers が 0 以下の場合は CPU 数を使用
func NewPool(numWorkers int) *Pool {
	config := DefaultPoolConfig()
	config.NumWorkers = numWorkers
	return NewPoolWithConfig(config)
}

// NewPoolWithConfig は設定を指定してワーカープールを作成する
func NewPoolWithConfig(config PoolConfig) *Pool {
	numWorkers := config.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	queueFactor := config.QueueFactor
	if queueFactor <= 0 {
		queueFactor = 4
	}
	return &Pool{
		numWorkers: numWorkers,
		jobs:       make(chan Job, numWorkers*queueFactor),
	}
}

// Start はワーカープールを起動する
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.started = true

	for i := range p.numWorkers {
		p.wg.Add(1)
		go p.worker(i)
	}

	logger.Debug("worker", "WorkerPool started with %d workers", p.numWorkers)
}

// worker は個々のワーカーゴルーチン
// キューが閉じられるまでジョブを処理し、キャンセル後のジョブは実行せずエラーとして記録する
func (p *Pool) worker(_ int) {
	defer p.wg.Done()

	for job := range p.jobs {
		if err := p.ctx.Err(); err != nil {
			p.recordError(job.Name, err)
			continue
		}
		if err := job.Run(p.ctx); err != nil {
			p.recordError(job.Name, err)
		}
		p.completed.Add(1)
	}
}

func (p *Pool) recordError(name string, err error) {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	if name != "" {
		err = fmt.Errorf("%s: %w", name, err)
	}
	p.errs = append(p.errs, err)
}

// Submit はジョブをキューへ送信する。キューに空きがなければブロックする
// Wait後またはコンテキストのキャンセル後はfalseを返す
func (p *Pool) Submit(job Job) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started || p.closed.Load() {
		return false
	}

	select {
	case <-p.ctx.Done():
		return false
	case p.jobs <- job:
		return true
	}
}

// Wait はキューを閉じ、全ジョブの完了を待ってエラーをまとめて返す
func (p *Pool) Wait() error {
	p.mu.Lock()
	if !p.started || p.closed.Swap(true) {
		p.mu.Unlock()
		return nil
	}
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()

	logger.Debug("worker", "WorkerPool finished %d jobs", p.completed.Load())

	p.errMu.Lock()
	defer p.errMu.Unlock()
	return errors.Join(p.errs...)
}

// NumWorkers はワーカー数を返す
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Completed は正常終了または失敗したジョブ数を返す（キャンセルで未実行のものは除く）
func (p *Pool) Completed() int64 {
	return p.completed.Load()
}
