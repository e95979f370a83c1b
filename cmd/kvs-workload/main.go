// Package main is the entry point for kvs-workload.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"kvs-workload/internal/api"
	"kvs-workload/internal/batch"
	"kvs-workload/internal/config"
	"kvs-workload/internal/events"
	"kvs-workload/internal/logger"
)

var (
	version = "dev"
)

// options はコマンドライン引数
type options struct {
	output          string
	numKeys         int
	numOps          int
	percentageReads float64
	maxReadDistance int
	seed            int64
	valueStyle      string
	valueSize       int
	maxAttempts     int
	preset          string
	configFile      string
	workers         int
	listPresets     bool
	serve           bool
	addr            string
	logLevel        string
	showVersion     bool
}

func newFlagSet(opts *options, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("kvs-workload", flag.ContinueOnError)
	fs.SetOutput(stderr)

	defaults := config.DefaultParams()
	fs.StringVarP(&opts.output, "output", "o", defaults.OutputPath, "出力ファイル (\"-\" で標準出力, .zst で圧縮)")
	fs.IntVarP(&opts.numKeys, "num-keys", "k", defaults.NumKeys, "キー空間のサイズ")
	fs.IntVarP(&opts.numOps, "num-ops", "n", 0, "メインセクションの操作数 (デフォルト: 10 * num-keys)")
	fs.Float64Var(&opts.percentageReads, "percentage-reads", defaults.PercentageReads, "メインセクションの読み込み比率 (0.0〜1.0)")
	fs.IntVar(&opts.maxReadDistance, "max-read-distance", defaults.MaxReadDistance, "書き込みから読み込みまでの最大操作数")
	fs.Int64Var(&opts.seed, "seed", 0, "乱数シード (0でランダム)")
	fs.StringVar(&opts.valueStyle, "value-style", string(defaults.ValueStyle), "値の形式 (numeric, uuid, letters)")
	fs.IntVar(&opts.valueSize, "value-size", defaults.ValueSize, "letters形式の文字数")
	fs.IntVar(&opts.maxAttempts, "max-attempts", defaults.MaxAttempts, "1コマンドあたりの最大再抽選回数 (0で無制限)")
	fs.StringVar(&opts.preset, "preset", "", "プリセット名")
	fs.StringVarP(&opts.configFile, "config", "c", "", "バッチ設定ファイル (YAML/JSON)")
	fs.IntVar(&opts.workers, "workers", 0, "バッチ生成の並列数 (0でCPU数)")
	fs.BoolVar(&opts.listPresets, "list-presets", false, "利用可能なプリセットを表示")
	fs.BoolVar(&opts.serve, "serve", false, "ワークロード配信サーバーとして起動")
	fs.StringVar(&opts.addr, "addr", ":8080", "サーバーアドレス")
	fs.StringVar(&opts.logLevel, "log-level", "info", "ログレベル (debug, info, warn, error)")
	fs.BoolVar(&opts.showVersion, "version", false, "バージョンを表示")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `kvs-workload - Key-Value Benchmark Workload Generator

Usage:
  kvs-workload [options]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(stderr, `
Examples:
  # デフォルト設定で /tmp/rocksdb/workload に生成
  kvs-workload

  # 読み込み多めのワークロードを再現可能なシードで生成
  kvs-workload -k 500 --percentage-reads 0.9 --seed 42 -o workload.txt

  # プリセットを元に一部だけ上書き
  kvs-workload --preset short-lived -n 20000

  # 設定ファイルの全ワークロードを並列生成
  kvs-workload --config workloads.yaml --workers 4

  # WebSocket配信サーバーとして起動
  kvs-workload --serve --addr :3000
`)
	}

	return fs
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var opts options
	fs := newFlagSet(&opts, stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	level, err := logger.ParseLevel(opts.logLevel)
	if err != nil {
		logger.Error("", "設定エラー: %v", err)
		return 1
	}
	logger.Default.SetLevel(level)

	if opts.showVersion {
		fmt.Fprintf(stdout, "kvs-workload version %s\n", version)
		return 0
	}

	if opts.listPresets {
		printPresets(stdout)
		return 0
	}

	ctx, cancel := signalContext()
	defer cancel()

	if opts.serve {
		if err := api.NewServer(opts.addr).Start(ctx); err != nil {
			logger.Error("", "サーバーエラー: %v", err)
			return 1
		}
		return 0
	}

	workloads, err := buildWorkloads(fs, opts)
	if err != nil {
		logger.Error("", "設定エラー: %v", err)
		return 1
	}

	if err := generate(ctx, workloads, opts.workers, stdout, stderr); err != nil {
		logger.Error("", "生成エラー: %v", err)
		return 1
	}
	return 0
}

// signalContext はSIGINT/SIGTERMでキャンセルされるコンテキストを返す
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			logger.Warn("", "中断シグナルを受信、生成を中止します (出力は不完全です)")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// buildWorkloads は生成対象のワークロードを決める
// 設定ファイル > プリセット > デフォルト の順に基準を選び、明示されたフラグで上書きする
func buildWorkloads(fs *flag.FlagSet, opts options) ([]config.NamedParams, error) {
	if opts.configFile != "" {
		fileConfig, err := config.LoadFile(opts.configFile)
		if err != nil {
			return nil, fmt.Errorf("設定ファイル読み込みエラー: %w", err)
		}
		if err := fileConfig.Validate(); err != nil {
			return nil, fmt.Errorf("設定検証エラー: %w", err)
		}
		return fileConfig.ToParams()
	}

	params := config.DefaultParams()
	name := "workload"
	if opts.preset != "" {
		preset, ok := config.GetPreset(opts.preset)
		if !ok {
			return nil, fmt.Errorf("%w: 不明なプリセット: %s (利用可能: %v)",
				config.ErrInvalidConfig, opts.preset, config.ListPresets())
		}
		params = preset
		name = opts.preset
	}

	if fs.Changed("output") {
		params.OutputPath = opts.output
	}
	if fs.Changed("num-keys") {
		params.NumKeys = opts.numKeys
		if !fs.Changed("num-ops") {
			// プリセットの操作数ではなくキー数から導出し直す
			params.NumOps = 0
		}
	}
	if fs.Changed("num-ops") {
		// 0は「num-keysから導出」の意味になるため、明示指定では許さない
		if opts.numOps < 1 {
			return nil, fmt.Errorf("%w: num_ops must be positive, got %d", config.ErrInvalidConfig, opts.numOps)
		}
		params.NumOps = opts.numOps
	}
	if fs.Changed("percentage-reads") {
		params.PercentageReads = opts.percentageReads
	}
	if fs.Changed("max-read-distance") {
		params.MaxReadDistance = opts.maxReadDistance
	}
	if fs.Changed("seed") {
		params.Seed = opts.seed
	}
	if fs.Changed("value-style") {
		style, err := config.ParseValueStyle(opts.valueStyle)
		if err != nil {
			return nil, err
		}
		params.ValueStyle = style
	}
	if fs.Changed("value-size") {
		params.ValueSize = opts.valueSize
	}
	if fs.Changed("max-attempts") {
		params.MaxAttempts = opts.maxAttempts
	}

	params = params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return []config.NamedParams{{Name: name, Params: params}}, nil
}

// generate はワークロードを生成してレポートを出力する
func generate(ctx context.Context, workloads []config.NamedParams, workers int, stdout, stderr io.Writer) error {
	bus := events.NewBus()
	defer bus.Close()
	go logProgress(bus.Subscribe(events.EventProgress))

	runner := batch.NewRunner()
	runner.Stdout = stdout
	runner.EventBus = bus
	runner.Workers = workers

	results, err := runner.Run(ctx, workloads)

	// ワークロードを標準出力に流している場合があるため、レポートはstderrへ
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		fmt.Fprintln(stderr, res.Snapshot.Report(res.Name))
		fmt.Fprintf(stderr, "  Seed: %d  Output: %s\n", res.Seed, res.Path)
	}

	return err
}

func logProgress(ch <-chan events.Event) {
	log := logger.For("progress")
	for e := range ch {
		log.For(e.Workload).Info("Progress: %d/%d ops (%.1f%% reads)",
			e.Data.Ops, e.Data.TotalOps, e.Data.ReadRatio*100)
	}
}

// printPresets は利用可能なプリセットを表示する
func printPresets(w io.Writer) {
	fmt.Fprintln(w, "利用可能なプリセット:")
	fmt.Fprintln(w)

	for _, name := range config.ListPresets() {
		fmt.Fprintf(w, "  %-12s %s\n", name, config.PresetDescription(name))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "使用例: kvs-workload --preset read-heavy")
}
