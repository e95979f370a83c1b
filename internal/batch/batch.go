// Package batch generates one or more workload files.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/spf13/afero"

	"kvs-workload/internal/config"
	"kvs-workload/internal/events"
	"kvs-workload/internal/logger"
	"kvs-workload/internal/metrics"
	"kvs-workload/internal/output"
	"kvs-workload/internal/worker"
	"kvs-workload/internal/workload"
)

// StdoutPath を出力先に指定すると標準出力へ書き出す
const StdoutPath = "-"

// Result は1ワークロードの生成結果
type Result struct {
	Name     string
	Path     string
	Seed     int64
	Snapshot metrics.Snapshot
	Err      error
}

// Runner はワークロードをファイルへ生成する
type Runner struct {
	FS       afero.Fs
	Stdout   io.Writer
	EventBus *events.Bus
	Workers  int // 並列数（0でCPU数）
}

// NewRunner はOSのファイルシステムを使うRunnerを作成する
func NewRunner() *Runner {
	return &Runner{
		FS:     afero.NewOsFs(),
		Stdout: os.Stdout,
	}
}

// Generate は1つのワークロードを生成する
// 出力は最初の行で開かれ、失敗しても途中までの内容は残る
func (r *Runner) Generate(ctx context.Context, np config.NamedParams) Result {
	result := Result{Name: np.Name, Path: np.Params.OutputPath}

	log := logger.For("batch").For(np.Name)
	opts := []workload.Option{workload.WithName(np.Name), workload.WithLogger(log)}
	if r.EventBus != nil {
		opts = append(opts, workload.WithEventBus(r.EventBus))
	}

	gen, err := workload.New(np.Params, opts...)
	if err != nil {
		result.Err = err
		return result
	}
	result.Seed = gen.Seed()
	log.Info("Using seed %d (output: %s)", result.Seed, result.Path)

	var sink interface {
		workload.Sink
		Close() error
	}
	if np.Params.OutputPath == StdoutPath {
		sink = output.NewWriterSink(r.Stdout)
	} else {
		sink = output.NewFileSink(r.FS, np.Params.OutputPath)
	}

	snap, runErr := gen.Run(ctx, sink)
	closeErr := sink.Close()

	result.Snapshot = snap
	result.Err = errors.Join(runErr, closeErr)
	if result.Err != nil {
		log.Error("Generation failed: %v", result.Err)
	}
	return result
}

// Run は全ワークロードをワーカープールで並列に生成する
// 失敗したワークロードがあっても他は最後まで生成し、エラーをまとめて返す
func (r *Runner) Run(ctx context.Context, workloads []config.NamedParams) ([]Result, error) {
	if len(workloads) == 0 {
		return nil, nil
	}
	for _, np := range workloads {
		if np.Params.OutputPath == StdoutPath && len(workloads) > 1 {
			return nil, fmt.Errorf("%w: %s: stdout output is only allowed for a single workload",
				config.ErrInvalidConfig, np.Name)
		}
	}

	results := make([]Result, len(workloads))
	done := make([]bool, len(workloads))
	var mu sync.Mutex

	pool := worker.NewPool(r.workers(len(workloads)))
	pool.Start(ctx)

	for i, np := range workloads {
		results[i] = Result{Name: np.Name, Path: np.Params.OutputPath}
		pool.Submit(worker.Job{
			Name: np.Name,
			Run: func(ctx context.Context) error {
				res := r.Generate(ctx, np)
				mu.Lock()
				results[i] = res
				done[i] = true
				mu.Unlock()
				return res.Err
			},
		})
	}

	err := pool.Wait()

	// キャンセルで実行されなかったワークロード
	if ctxErr := ctx.Err(); ctxErr != nil {
		for i := range results {
			if !done[i] {
				results[i].Err = ctxErr
			}
		}
		if err == nil {
			err = ctxErr
		}
	}
	return results, err
}

func (r *Runner) workers(jobs int) int {
	n := r.Workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return min(n, jobs)
}
