package metrics

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics はワークロード生成の統計を収集する
// 生成は単一ゴルーチンで行うが、Snapshotは進捗表示やAPIから並行に呼ばれる
type Metrics struct {
	preambleWrites atomic.Uint64
	writes         atomic.Uint64
	reads          atomic.Uint64
	deletes        atomic.Uint64
	injectedReads  atomic.Uint64
	fallbackReads  atomic.Uint64
	resamples      atomic.Uint64
	skipped        atomic.Uint64

	mu        sync.RWMutex
	startTime time.Time
	endTime   time.Time
}

// New は新しいメトリクスを作成する
func New() *Metrics {
	return &Metrics{
		startTime: time.Now(),
	}
}

// Start は計測開始時刻をリセットする
func (m *Metrics) Start() {
	m.mu.Lock()
	m.startTime = time.Now()
	m.endTime = time.Time{}
	m.mu.Unlock()
}

// Finish は計測終了時刻を記録する
func (m *Metrics) Finish() {
	m.mu.Lock()
	m.endTime = time.Now()
	m.mu.Unlock()
}

// RecordPreambleWrite はプリアンブルの書き込みを記録する
func (m *Metrics) RecordPreambleWrite() {
	m.preambleWrites.Add(1)
}

// RecordWrite はメインセクションの書き込みを記録する
func (m *Metrics) RecordWrite() {
	m.writes.Add(1)
}

// RecordDelete は削除を記録する
func (m *Metrics) RecordDelete() {
	m.deletes.Add(1)
}

// RecordRead は抽選で選ばれた読み込みを記録する
func (m *Metrics) RecordRead() {
	m.reads.Add(1)
}

// RecordInjectedRead は比率補正で追加した読み込みを記録する
// fallbackは最終書き込みキーへの代替読み込みかどうか
func (m *Metrics) RecordInjectedRead(fallback bool) {
	m.reads.Add(1)
	m.injectedReads.Add(1)
	if fallback {
		m.fallbackReads.Add(1)
	}
}

// RecordResample は実行不可能なコマンドの再抽選を記録する
func (m *Metrics) RecordResample() {
	m.resamples.Add(1)
}

// RecordSkippedCorrection は生存キーがなく補正を見送ったことを記録する
func (m *Metrics) RecordSkippedCorrection() {
	m.skipped.Add(1)
}

// Snapshot はメトリクスのスナップショット
type Snapshot struct {
	PreambleWrites uint64        `json:"preamble_writes"`
	Writes         uint64        `json:"writes"`
	Reads          uint64        `json:"reads"`
	Deletes        uint64        `json:"deletes"`
	InjectedReads  uint64        `json:"injected_reads"`
	FallbackReads  uint64        `json:"fallback_reads"`
	Resamples      uint64        `json:"resamples"`
	Skipped        uint64        `json:"skipped_corrections"`
	TotalOps       uint64        `json:"total_ops"`
	ReadRatio      float64       `json:"read_ratio"`
	Duration       time.Duration `json:"duration"`
}

// Snapshot は現在のメトリクスのスナップショットを返す
func (m *Metrics) Snapshot() Snapshot {
	s := Snapshot{
		PreambleWrites: m.preambleWrites.Load(),
		Writes:         m.writes.Load(),
		Reads:          m.reads.Load(),
		Deletes:        m.deletes.Load(),
		InjectedReads:  m.injectedReads.Load(),
		FallbackReads:  m.fallbackReads.Load(),
		Resamples:      m.resamples.Load(),
		Skipped:        m.skipped.Load(),
	}
	s.TotalOps = s.Writes + s.Reads + s.Deletes
	if s.TotalOps > 0 {
		s.ReadRatio = float64(s.Reads) / float64(s.TotalOps)
	}

	m.mu.RLock()
	end := m.endTime
	if end.IsZero() {
		end = time.Now()
	}
	s.Duration = end.Sub(m.startTime)
	m.mu.RUnlock()

	return s
}

// Report は結果をフォーマットして返す
func (s Snapshot) Report(name string) string {
	return fmt.Sprintf(`
================================================================================
                         WORKLOAD REPORT: %s
================================================================================

PREAMBLE
--------
  Writes:           %d

MAIN SECTION
------------
  Total Ops:        %d
  Writes:           %d
  Reads:            %d
  Deletes:          %d
  Read Ratio:       %.2f%%

READ CORRECTION
---------------
  Injected Reads:   %d
  Fallback Reads:   %d
  Resamples:        %d
  Skipped:          %d

  Duration:         %v
================================================================================`,
		name,
		s.PreambleWrites,
		s.TotalOps,
		s.Writes,
		s.Reads,
		s.Deletes,
		s.ReadRatio*100,
		s.InjectedReads,
		s.FallbackReads,
		s.Resamples,
		s.Skipped,
		s.Duration.Round(time.Microsecond),
	)
}
