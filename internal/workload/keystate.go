package workload

import (
	"fmt"
	"strconv"
)

const keyPrefix = "key"

// KeyName はインデックスからキー名を作る
func KeyName(i int) string {
	return keyPrefix + strconv.Itoa(i)
}

// KeyIndex はキー名からインデックスを取り出す
func KeyIndex(key string) (int, bool) {
	if len(key) <= len(keyPrefix) || key[:len(keyPrefix)] != keyPrefix {
		return 0, false
	}
	digits := key[len(keyPrefix):]
	// "key01" のような非正規形は生成されない
	if len(digits) > 1 && digits[0] == '0' {
		return 0, false
	}
	i, err := strconv.Atoi(digits)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// keyState は存在するキーと最終書き込み位置を追跡する
// positionsとreadableは常に同じキー集合を持つ
type keyState struct {
	positions map[string]int
	readable  map[string]struct{}
}

func newKeyState(capacity int) *keyState {
	return &keyState{
		positions: make(map[string]int, capacity),
		readable:  make(map[string]struct{}, capacity),
	}
}

// put はキーの書き込みを記録する（既存キーは位置を上書き）
func (s *keyState) put(key string, position int) {
	s.positions[key] = position
	s.readable[key] = struct{}{}
}

// remove はキーが存在すれば削除してtrueを返す
func (s *keyState) remove(key string) bool {
	if _, ok := s.positions[key]; !ok {
		return false
	}
	delete(s.positions, key)
	delete(s.readable, key)
	return true
}

func (s *keyState) exists(key string) bool {
	_, ok := s.positions[key]
	return ok
}

// canRead はnextOp番目の操作としてkeyを読めるかを返す
// 最終書き込み位置 + maxDistance >= nextOp の範囲だけ読み込みを許す
func (s *keyState) canRead(key string, nextOp, maxDistance int) bool {
	if _, ok := s.readable[key]; !ok {
		return false
	}
	return s.positions[key]+maxDistance >= nextOp
}

// latest は最も新しく書き込まれた既存キーを返す
// 同じ位置のキーはインデックスの小さい方を優先する
func (s *keyState) latest() (string, bool) {
	best, bestPos, bestIdx := "", -1, 0
	for key, pos := range s.positions {
		idx, _ := KeyIndex(key)
		if pos > bestPos || (pos == bestPos && idx < bestIdx) {
			best, bestPos, bestIdx = key, pos, idx
		}
	}
	return best, bestPos >= 0
}

func (s *keyState) len() int {
	return len(s.positions)
}

// check は2つの集合が一致していることを確認する
func (s *keyState) check() error {
	if len(s.positions) != len(s.readable) {
		return fmt.Errorf("key state diverged: %d written, %d readable", len(s.positions), len(s.readable))
	}
	for key := range s.positions {
		if _, ok := s.readable[key]; !ok {
			return fmt.Errorf("key state diverged: %s written but not readable", key)
		}
	}
	return nil
}
