package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrInvalidConfig は設定エラーを表す
var ErrInvalidConfig = errors.New("invalid configuration")

// ValueStyle は生成する値の形式
type ValueStyle string

const (
	// ValueNumeric は "value<0..1e9>" 形式
	ValueNumeric ValueStyle = "numeric"
	// ValueUUID はUUID文字列
	ValueUUID ValueStyle = "uuid"
	// ValueLetters はValueSize文字の英字列
	ValueLetters ValueStyle = "letters"
)

// ParseValueStyle は文字列から値形式を解析する
func ParseValueStyle(s string) (ValueStyle, error) {
	switch ValueStyle(strings.ToLower(s)) {
	case ValueNumeric, "":
		return ValueNumeric, nil
	case ValueUUID:
		return ValueUUID, nil
	case ValueLetters:
		return ValueLetters, nil
	default:
		return "", fmt.Errorf("%w: unknown value style: %s", ErrInvalidConfig, s)
	}
}

const (
	DefaultNumKeys         = 1000
	DefaultOpsPerKey       = 10
	DefaultPercentageReads = 0.5
	DefaultMaxReadDistance = 64
	DefaultValueSize       = 16
	DefaultMaxAttempts     = 1 << 20
)

// DefaultOutputPath はデフォルトの出力先
var DefaultOutputPath = filepath.Join("/tmp", "rocksdb", "workload")

// Params はワークロード生成のパラメータ
type Params struct {
	OutputPath      string     // 出力ファイル
	NumKeys         int        // キー空間のサイズ
	NumOps          int        // メインセクションの操作数（0で10*NumKeys）
	PercentageReads float64    // 目標読み込み比率（0.0〜1.0）
	MaxReadDistance int        // 書き込みから読み込みまでの最大操作数
	Seed            int64      // 乱数シード（0でランダム）
	ValueStyle      ValueStyle // 値の形式
	ValueSize       int        // letters形式の文字数
	MaxAttempts     int        // 1コマンドあたりの最大再抽選回数（0で無制限）

	// ProgressInterval は進捗イベントの間隔（0でNumOpsの10%ごと）
	ProgressInterval int
}

// DefaultParams はデフォルトのパラメータを返す
func DefaultParams() Params {
	return Params{
		OutputPath:      DefaultOutputPath,
		NumKeys:         DefaultNumKeys,
		PercentageReads: DefaultPercentageReads,
		MaxReadDistance: DefaultMaxReadDistance,
		ValueStyle:      ValueNumeric,
		ValueSize:       DefaultValueSize,
		MaxAttempts:     DefaultMaxAttempts,
	}
}

// Normalize は未指定の派生値を埋めたコピーを返す
func (p Params) Normalize() Params {
	if p.NumOps == 0 {
		p.NumOps = DefaultOpsPerKey * p.NumKeys
	}
	if p.ValueStyle == "" {
		p.ValueStyle = ValueNumeric
	}
	if p.ValueSize == 0 {
		p.ValueSize = DefaultValueSize
	}
	if p.OutputPath == "" {
		p.OutputPath = DefaultOutputPath
	}
	if p.ProgressInterval == 0 {
		p.ProgressInterval = max(p.NumOps/10, 1)
	}
	return p
}

// Validate はパラメータを検証する
func (p Params) Validate() error {
	if p.NumKeys < 2 {
		return fmt.Errorf("%w: num_keys must be at least 2, got %d", ErrInvalidConfig, p.NumKeys)
	}
	if p.NumOps < 1 {
		return fmt.Errorf("%w: num_ops must be positive, got %d", ErrInvalidConfig, p.NumOps)
	}
	// NaNは比較が常に偽になるため範囲内であることを肯定形で確認する
	if !(p.PercentageReads >= 0 && p.PercentageReads <= 1) {
		return fmt.Errorf("%w: percentage_reads must be between 0 and 1, got %v", ErrInvalidConfig, p.PercentageReads)
	}
	if p.MaxReadDistance < 1 {
		return fmt.Errorf("%w: max_read_distance must be positive, got %d", ErrInvalidConfig, p.MaxReadDistance)
	}
	if _, err := ParseValueStyle(string(p.ValueStyle)); err != nil {
		return err
	}
	if p.ValueStyle == ValueLetters && p.ValueSize < 1 {
		return fmt.Errorf("%w: value_size must be positive, got %d", ErrInvalidConfig, p.ValueSize)
	}
	if p.MaxAttempts < 0 {
		return fmt.Errorf("%w: max_attempts must be non-negative", ErrInvalidConfig)
	}
	if p.ProgressInterval < 0 {
		return fmt.Errorf("%w: progress_interval must be non-negative", ErrInvalidConfig)
	}
	return nil
}
