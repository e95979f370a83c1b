package config

import "sort"

// BalancedPreset は読み書き半々のワークロード
func BalancedPreset() Params {
	return DefaultParams()
}

// ReadHeavyPreset は読み込み90%のワークロード
func ReadHeavyPreset() Params {
	p := DefaultParams()
	p.PercentageReads = 0.9
	return p
}

// WriteHeavyPreset は読み込み10%のワークロード
// 残りは書き込みと削除で等分される
func WriteHeavyPreset() Params {
	p := DefaultParams()
	p.PercentageReads = 0.1
	return p
}

// ShortLivedPreset は書き込み直後のキーだけを読むワークロード
func ShortLivedPreset() Params {
	p := DefaultParams()
	p.MaxReadDistance = 8
	return p
}

// TinyPreset は動作確認用の小さなワークロード
func TinyPreset() Params {
	p := DefaultParams()
	p.NumKeys = 10
	p.NumOps = 50
	return p
}

var presets = map[string]func() Params{
	"balanced":    BalancedPreset,
	"read-heavy":  ReadHeavyPreset,
	"write-heavy": WriteHeavyPreset,
	"short-lived": ShortLivedPreset,
	"tiny":        TinyPreset,
}

var presetDescriptions = map[string]string{
	"balanced":    "50% reads, writes and deletes split the rest",
	"read-heavy":  "90% reads",
	"write-heavy": "10% reads",
	"short-lived": "reads only within 8 ops of the last write",
	"tiny":        "10 keys, 50 ops (smoke test)",
}

// GetPreset は名前からプリセットを取得する
func GetPreset(name string) (Params, bool) {
	fn, ok := presets[name]
	if !ok {
		return Params{}, false
	}
	return fn(), true
}

// ListPresets は利用可能なプリセット名を返す
func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetDescription はプリセットの説明を返す
func PresetDescription(name string) string {
	return presetDescriptions[name]
}
