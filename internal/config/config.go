package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileConfig は設定ファイルの構造
type FileConfig struct {
	Defaults  WorkloadConfig   `yaml:"defaults" json:"defaults"`
	Workloads []WorkloadConfig `yaml:"workloads" json:"workloads"`
}

// WorkloadConfig は1つのワークロードの設定
// ゼロ値の項目はプリセットまたはdefaultsの値を引き継ぐ
type WorkloadConfig struct {
	Name            string   `yaml:"name" json:"name"`
	Preset          string   `yaml:"preset" json:"preset"`
	Output          string   `yaml:"output" json:"output"`
	NumKeys         int      `yaml:"num_keys" json:"num_keys"`
	NumOps          int      `yaml:"num_ops" json:"num_ops"`
	PercentageReads *float64 `yaml:"percentage_reads" json:"percentage_reads"`
	MaxReadDistance int      `yaml:"max_read_distance" json:"max_read_distance"`
	Seed            int64    `yaml:"seed" json:"seed"`
	ValueStyle      string   `yaml:"value_style" json:"value_style"`
	ValueSize       int      `yaml:"value_size" json:"value_size"`
	MaxAttempts     *int     `yaml:"max_attempts" json:"max_attempts"`
}

// NamedParams は名前付きのパラメータ
type NamedParams struct {
	Name   string
	Params Params
}

// LoadFile は設定ファイルを読み込む
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config FileConfig
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}

	return &config, nil
}

// Validate は設定ファイルの構造を検証する
// 値の範囲チェックはParams.Validateで行う
func (f *FileConfig) Validate() error {
	if len(f.Workloads) == 0 {
		return fmt.Errorf("%w: no workloads defined", ErrInvalidConfig)
	}

	if err := f.Defaults.validate("defaults"); err != nil {
		return err
	}

	names := make(map[string]bool)
	for i, w := range f.Workloads {
		name := w.displayName(i)
		if names[name] {
			return fmt.Errorf("%w: duplicate workload name: %s", ErrInvalidConfig, name)
		}
		names[name] = true

		if err := w.validate(name); err != nil {
			return err
		}
	}

	return nil
}

func (w WorkloadConfig) validate(name string) error {
	if w.NumKeys < 0 {
		return fmt.Errorf("%w: %s: num_keys must be non-negative", ErrInvalidConfig, name)
	}
	if w.NumOps < 0 {
		return fmt.Errorf("%w: %s: num_ops must be non-negative", ErrInvalidConfig, name)
	}
	if w.MaxReadDistance < 0 {
		return fmt.Errorf("%w: %s: max_read_distance must be non-negative", ErrInvalidConfig, name)
	}
	if w.PercentageReads != nil && !(*w.PercentageReads >= 0 && *w.PercentageReads <= 1) {
		return fmt.Errorf("%w: %s: percentage_reads must be between 0 and 1", ErrInvalidConfig, name)
	}
	if w.Preset != "" {
		if _, ok := GetPreset(w.Preset); !ok {
			return fmt.Errorf("%w: %s: unknown preset: %s", ErrInvalidConfig, name, w.Preset)
		}
	}
	return nil
}

func (w WorkloadConfig) displayName(index int) string {
	if w.Name != "" {
		return w.Name
	}
	return fmt.Sprintf("workload-%d", index)
}

// ToParams はFileConfigを名前付きParamsのリストに変換する
func (f *FileConfig) ToParams() ([]NamedParams, error) {
	result := make([]NamedParams, 0, len(f.Workloads))
	outputs := make(map[string]string)

	for i, w := range f.Workloads {
		name := w.displayName(i)

		base := DefaultParams()
		presetName := w.Preset
		if presetName == "" {
			presetName = f.Defaults.Preset
		}
		if presetName != "" {
			p, ok := GetPreset(presetName)
			if !ok {
				return nil, fmt.Errorf("%w: %s: unknown preset: %s", ErrInvalidConfig, name, presetName)
			}
			base = p
		}
		// プリセットの出力先は共有されるため、名前から導出する
		base.OutputPath = filepath.Join(filepath.Dir(DefaultOutputPath), name)

		params, err := f.Defaults.apply(base)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		params, err = w.apply(params)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		params = params.Normalize()
		if err := params.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		if other, ok := outputs[params.OutputPath]; ok {
			return nil, fmt.Errorf("%w: workloads %s and %s share output %s",
				ErrInvalidConfig, other, name, params.OutputPath)
		}
		outputs[params.OutputPath] = name

		result = append(result, NamedParams{Name: name, Params: params})
	}

	return result, nil
}

// apply はゼロ値以外の項目でparamsを上書きする
func (w WorkloadConfig) apply(p Params) (Params, error) {
	if w.Output != "" {
		p.OutputPath = w.Output
	}
	if w.NumKeys > 0 {
		p.NumKeys = w.NumKeys
	}
	if w.NumOps > 0 {
		p.NumOps = w.NumOps
	}
	if w.PercentageReads != nil {
		p.PercentageReads = *w.PercentageReads
	}
	if w.MaxReadDistance > 0 {
		p.MaxReadDistance = w.MaxReadDistance
	}
	if w.Seed != 0 {
		p.Seed = w.Seed
	}
	if w.ValueStyle != "" {
		style, err := ParseValueStyle(w.ValueStyle)
		if err != nil {
			return p, err
		}
		p.ValueStyle = style
	}
	if w.ValueSize > 0 {
		p.ValueSize = w.ValueSize
	}
	if w.MaxAttempts != nil {
		p.MaxAttempts = *w.MaxAttempts
	}
	return p, nil
}

// ToParams は単独のWorkloadConfigをParamsへ解決する
// プリセット、上書き、正規化、検証の順に適用する
func (w WorkloadConfig) ToParams() (Params, error) {
	if err := w.validate(w.displayName(0)); err != nil {
		return Params{}, err
	}

	base := DefaultParams()
	if w.Preset != "" {
		base, _ = GetPreset(w.Preset)
	}

	params, err := w.apply(base)
	if err != nil {
		return Params{}, err
	}
	params = params.Normalize()
	if err := params.Validate(); err != nil {
		return Params{}, err
	}
	return params, nil
}
