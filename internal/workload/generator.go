package workload

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"kvs-workload/internal/config"
	"kvs-workload/internal/events"
	"kvs-workload/internal/logger"
	"kvs-workload/internal/metrics"
)

// ErrInfeasible はMaxAttempts回の再抽選で実行可能なコマンドが見つからなかったことを表す
var ErrInfeasible = errors.New("generation infeasible")

// correctionAttempts は補正読み込み1件あたりのキー抽選回数
const correctionAttempts = 5

// mainPool はメインループの抽選プール
var mainPool = AllKinds

// Sink は生成された行を1行ずつ受け取る
type Sink interface {
	WriteLine(line string) error
}

// Section は行が属するセクション
type Section int

const (
	SectionPreamble Section = iota
	SectionMain
)

// Step は出力された1コマンドの記録
type Step struct {
	Section Section
	Index   int // メインセクション内の0始まりの位置（プリアンブルでは書き込み順）
	Command Command

	// Injected は比率補正で追加された読み込み
	Injected bool
	// Fallback は距離制約を満たすキーが見つからず最終書き込みキーを読んだもの
	Fallback bool
}

// Option はGeneratorの設定関数
type Option func(*Generator)

// WithSeed は乱数シードを指定する
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
		g.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand は乱数生成器を直接指定する
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) {
		g.rng = rng
	}
}

// WithEventBus はイベントバスを設定する
func WithEventBus(bus *events.Bus) Option {
	return func(g *Generator) {
		g.eventBus = bus
	}
}

// WithMetrics はメトリクスの記録先を設定する
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Generator) {
		g.metrics = m
	}
}

// WithTrace は出力されたコマンドごとに呼ばれる関数を設定する
func WithTrace(fn func(Step)) Option {
	return func(g *Generator) {
		g.trace = fn
	}
}

// WithName はログとイベントに使うワークロード名を設定する
func WithName(name string) Option {
	return func(g *Generator) {
		g.name = name
	}
}

// WithLogger はログ出力先を設定する
// 省略時はワークロード名をコンポーネントとしたデフォルトロガーを使う
func WithLogger(log *logger.Scoped) Option {
	return func(g *Generator) {
		g.log = log
	}
}

// Generator はワークロード生成器
// 1回のRunは単一ゴルーチンで逐次実行される
type Generator struct {
	params   config.Params
	name     string
	seed     int64
	rng      *rand.Rand
	values   valueSource
	probs    []float64
	eventBus *events.Bus
	metrics  *metrics.Metrics
	trace    func(Step)
	log      *logger.Scoped
}

// New は新しいGeneratorを作成する
// params.Seedが0でWithSeed/WithRandもない場合は時刻からシードを決める
func New(params config.Params, opts ...Option) (*Generator, error) {
	params = params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	g := &Generator{
		params:  params,
		name:    "workload",
		metrics: metrics.New(),
	}
	if params.Seed != 0 {
		WithSeed(params.Seed)(g)
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		WithSeed(time.Now().UnixNano())(g)
	}
	if g.log == nil {
		g.log = logger.For(g.name)
	}

	g.values = newValueSource(g.rng, params.ValueStyle, params.ValueSize)
	g.probs = ProbabilityVector(mainPool, Distribution{KindRead: params.PercentageReads})

	return g, nil
}

// Seed は使用中のシードを返す（WithRandの場合は0）
func (g *Generator) Seed() int64 {
	return g.seed
}

// Params は正規化済みのパラメータを返す
func (g *Generator) Params() config.Params {
	return g.params
}

// Metrics はメトリクスを返す
func (g *Generator) Metrics() *metrics.Metrics {
	return g.metrics
}

// state は1回の生成で変化する状態
type state struct {
	keys        *keyState
	ops         int
	reads       int
	lastWritten string
}

// Run はワークロードを生成してsinkへ書き出す
// sinkのエラーは即座に返し、途中までの出力は巻き戻さない
func (g *Generator) Run(ctx context.Context, sink Sink) (metrics.Snapshot, error) {
	g.metrics.Start()
	defer g.metrics.Finish()

	g.log.Info("Generating a workload with %d keys and %d operations",
		g.params.NumKeys, g.params.NumOps)
	if g.seed != 0 {
		g.log.Debug("Using seed %d", g.seed)
	}
	g.publish(events.NewStartedEvent(g.name, g.params.NumKeys, g.params.NumOps))

	err := g.run(ctx, sink)
	if err != nil {
		g.publish(events.NewFailedEvent(g.name, err))
		return g.metrics.Snapshot(), err
	}

	snap := g.metrics.Snapshot()
	g.publish(events.NewCompletedEvent(g.name, int(snap.TotalOps), int(snap.Reads)))
	g.log.Info("Final distribution of commands: %.2f%% reads (%d fallback)",
		snap.ReadRatio*100, snap.FallbackReads)

	return snap, nil
}

func (g *Generator) run(ctx context.Context, sink Sink) error {
	if err := sink.WriteLine(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	st, err := g.seedPreamble(sink)
	if err != nil {
		return err
	}
	if err := sink.WriteLine(PreambleEnd); err != nil {
		return fmt.Errorf("failed to write preamble end: %w", err)
	}
	g.publish(events.NewPreambleDoneEvent(g.name, st.keys.len()))
	g.log.Debug("Preamble seeded %d keys", st.keys.len())

	for st.ops < g.params.NumOps {
		if err := ctx.Err(); err != nil {
			return err
		}

		cmd, err := g.synthesize(st)
		if err != nil {
			return err
		}
		if err := g.emit(sink, Step{Section: SectionMain, Index: st.ops, Command: cmd}); err != nil {
			return err
		}
		st.ops++
		g.reportProgress(st.ops, st.reads)

		if err := g.correct(st, sink); err != nil {
			return err
		}
	}

	return nil
}

// seedPreamble はNumKeys/2個の異なるキーへ書き込む
func (g *Generator) seedPreamble(sink Sink) (*state, error) {
	n := g.params.NumKeys / 2
	st := &state{keys: newKeyState(g.params.NumKeys)}

	for i := range n {
		key := g.randomKey()
		for st.keys.exists(key) {
			key = g.randomKey()
		}

		cmd := Write{K: key, Value: g.values.next()}
		if err := g.emit(sink, Step{Section: SectionPreamble, Index: i, Command: cmd}); err != nil {
			return nil, err
		}
		st.keys.put(key, 0)
		st.lastWritten = key
		g.metrics.RecordPreambleWrite()
	}

	return st, nil
}

// synthesize は実行可能なコマンドが出るまで種類とキーを抽選する
func (g *Generator) synthesize(st *state) (Command, error) {
	nextOp := st.ops + 1

	for attempt := 0; ; attempt++ {
		if g.params.MaxAttempts > 0 && attempt >= g.params.MaxAttempts {
			return nil, fmt.Errorf("%w: no feasible command after %d attempts at op %d (%d live keys)",
				ErrInfeasible, attempt, st.ops, st.keys.len())
		}

		kind := SampleKind(g.rng, mainPool, g.probs)
		key := g.randomKey()

		switch kind {
		case KindWrite:
			st.keys.put(key, nextOp)
			st.lastWritten = key
			g.metrics.RecordWrite()
			return Write{K: key, Value: g.values.next()}, nil
		case KindDelete:
			if st.keys.remove(key) {
				g.metrics.RecordDelete()
				return Delete{K: key}, nil
			}
		case KindRead:
			if st.keys.canRead(key, nextOp, g.params.MaxReadDistance) {
				st.reads++
				g.metrics.RecordRead()
				return Read{K: key}, nil
			}
		}

		g.metrics.RecordResample()
	}
}

// correct は読み込み比率が目標に達するまで読み込みを追加する
func (g *Generator) correct(st *state, sink Sink) error {
	target := g.params.PercentageReads

	for st.ops < g.params.NumOps && float64(st.reads)/float64(st.ops) <= target {
		key, fallback, ok := g.pickReadKey(st)
		if !ok {
			// 読めるキーが1つもない。次のメインコマンドに任せる
			g.log.Debug("No live key to read at op %d, skipping correction", st.ops)
			g.metrics.RecordSkippedCorrection()
			return nil
		}

		step := Step{Section: SectionMain, Index: st.ops, Command: Read{K: key}, Injected: true, Fallback: fallback}
		if err := g.emit(sink, step); err != nil {
			return err
		}
		st.ops++
		st.reads++
		g.metrics.RecordInjectedRead(fallback)
		g.reportProgress(st.ops, st.reads)
	}

	return nil
}

// pickReadKey は距離制約を満たすキーを最大correctionAttempts回抽選する
// 見つからなければ最終書き込みキー（削除済みなら最も新しい既存キー）を返す
func (g *Generator) pickReadKey(st *state) (key string, fallback bool, ok bool) {
	nextOp := st.ops + 1
	for range correctionAttempts {
		key := g.randomKey()
		if st.keys.canRead(key, nextOp, g.params.MaxReadDistance) {
			return key, false, true
		}
	}

	if st.keys.exists(st.lastWritten) {
		return st.lastWritten, true, true
	}
	key, ok = st.keys.latest()
	return key, true, ok
}

func (g *Generator) randomKey() string {
	return KeyName(g.rng.Intn(g.params.NumKeys))
}

func (g *Generator) emit(sink Sink, step Step) error {
	if err := sink.WriteLine(step.Command.String()); err != nil {
		return fmt.Errorf("failed to write command: %w", err)
	}
	if g.trace != nil {
		g.trace(step)
	}
	return nil
}

func (g *Generator) reportProgress(ops, reads int) {
	if ops%g.params.ProgressInterval != 0 || ops == g.params.NumOps {
		return
	}
	g.publish(events.NewProgressEvent(g.name, ops, g.params.NumOps, reads))
	g.log.Debug("Progress: %d/%d ops", ops, g.params.NumOps)
}

func (g *Generator) publish(event events.Event) {
	if g.eventBus != nil {
		g.eventBus.Publish(event)
	}
}
