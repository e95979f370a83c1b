package workload

import "math/rand"

// Distribution はKindごとの確率の部分指定
type Distribution map[Kind]float64

// UniformKind はプールから等確率でKindを選ぶ
func UniformKind(rng *rand.Rand, pool []Kind) Kind {
	return pool[rng.Intn(len(pool))]
}

// ProbabilityVector はプール順の確率ベクトルを作る
// 指定のないKindには残りの確率 (1 - 指定合計) を等分する。
// 前提条件: 指定された確率の合計は1以下であること（ここでは検証しない）
func ProbabilityVector(pool []Kind, dist Distribution) []float64 {
	specified := 0.0
	unspecified := 0
	for _, k := range pool {
		if p, ok := dist[k]; ok {
			specified += p
		} else {
			unspecified++
		}
	}

	rest := 0.0
	if unspecified > 0 {
		rest = (1.0 - specified) / float64(unspecified)
	}

	probs := make([]float64, len(pool))
	for i, k := range pool {
		if p, ok := dist[k]; ok {
			probs[i] = p
		} else {
			probs[i] = rest
		}
	}
	return probs
}

// SampleKind は確率ベクトルに従ってKindを選ぶ
// 合計が1でない場合は合計で正規化して扱う
func SampleKind(rng *rand.Rand, pool []Kind, probs []float64) Kind {
	total := 0.0
	for _, p := range probs {
		total += p
	}
	if total <= 0 {
		return UniformKind(rng, pool)
	}

	r := rng.Float64() * total
	acc := 0.0
	last := 0
	for i, p := range probs {
		if p <= 0 {
			continue
		}
		acc += p
		last = i
		if r < acc {
			return pool[i]
		}
	}
	// 浮動小数点の丸めで末尾に落ちた場合
	return pool[last]
}

// WeightedKind はdistに従ってKindを選ぶ
func WeightedKind(rng *rand.Rand, pool []Kind, dist Distribution) Kind {
	return SampleKind(rng, pool, ProbabilityVector(pool, dist))
}
