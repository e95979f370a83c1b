package config

import (
	"errors"
	"math"
	"testing"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams().Normalize()

	if p.NumKeys != 1000 {
		t.Errorf("expected 1000 keys, got %d", p.NumKeys)
	}
	if p.NumOps != 10000 {
		t.Errorf("expected 10000 ops, got %d", p.NumOps)
	}
	if p.PercentageReads != 0.5 {
		t.Errorf("expected 0.5 reads, got %f", p.PercentageReads)
	}
	if p.MaxReadDistance != 64 {
		t.Errorf("expected max read distance 64, got %d", p.MaxReadDistance)
	}
	if p.OutputPath != "/tmp/rocksdb/workload" {
		t.Errorf("unexpected default output: %s", p.OutputPath)
	}
	if p.ProgressInterval != 1000 {
		t.Errorf("expected progress interval 1000, got %d", p.ProgressInterval)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("default params should be valid: %v", err)
	}
}

func TestNormalizeKeepsExplicitOps(t *testing.T) {
	p := DefaultParams()
	p.NumOps = 7
	p = p.Normalize()

	if p.NumOps != 7 {
		t.Errorf("expected explicit num_ops 7, got %d", p.NumOps)
	}
	if p.ProgressInterval != 1 {
		t.Errorf("expected progress interval 1, got %d", p.ProgressInterval)
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Params)
	}{
		{"zero keys", func(p *Params) { p.NumKeys = 0 }},
		{"one key", func(p *Params) { p.NumKeys = 1 }},
		{"negative ops", func(p *Params) { p.NumOps = -1 }},
		{"reads below zero", func(p *Params) { p.PercentageReads = -0.1 }},
		{"reads above one", func(p *Params) { p.PercentageReads = 1.1 }},
		{"reads NaN", func(p *Params) { p.PercentageReads = math.NaN() }},
		{"reads infinite", func(p *Params) { p.PercentageReads = math.Inf(1) }},
		{"zero distance", func(p *Params) { p.MaxReadDistance = 0 }},
		{"unknown style", func(p *Params) { p.ValueStyle = "binary" }},
		{"letters without size", func(p *Params) { p.ValueStyle = ValueLetters; p.ValueSize = -1 }},
		{"negative attempts", func(p *Params) { p.MaxAttempts = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams().Normalize()
			tt.modify(&p)
			err := p.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestParseValueStyle(t *testing.T) {
	tests := []struct {
		input   string
		want    ValueStyle
		wantErr bool
	}{
		{"", ValueNumeric, false},
		{"numeric", ValueNumeric, false},
		{"UUID", ValueUUID, false},
		{"letters", ValueLetters, false},
		{"bytes", "", true},
	}

	for _, tt := range tests {
		got, err := ParseValueStyle(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseValueStyle(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseValueStyle(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != 5 {
		t.Fatalf("expected 5 presets, got %d", len(names))
	}

	for _, name := range names {
		p, ok := GetPreset(name)
		if !ok {
			t.Errorf("preset %s not found", name)
			continue
		}
		if err := p.Normalize().Validate(); err != nil {
			t.Errorf("preset %s is invalid: %v", name, err)
		}
		if PresetDescription(name) == "" {
			t.Errorf("preset %s has no description", name)
		}
	}

	if _, ok := GetPreset("unknown"); ok {
		t.Error("expected unknown preset to be missing")
	}

	p, _ := GetPreset("read-heavy")
	if p.PercentageReads != 0.9 {
		t.Errorf("expected read-heavy to use 0.9 reads, got %f", p.PercentageReads)
	}
}
