package workload

import (
	"math/rand"
	"strconv"

	"github.com/brianvoe/gofakeit/v6"

	"kvs-workload/internal/config"
)

const maxNumericValue = 1_000_000_000

// valueSource はWRITEの値を生成する
type valueSource interface {
	next() string
}

type numericValues struct {
	rng *rand.Rand
}

func (v numericValues) next() string {
	return "value" + strconv.Itoa(v.rng.Intn(maxNumericValue+1))
}

type uuidValues struct {
	faker *gofakeit.Faker
}

func (v uuidValues) next() string {
	return v.faker.UUID()
}

type letterValues struct {
	faker *gofakeit.Faker
	size  uint
}

func (v letterValues) next() string {
	return v.faker.LetterN(v.size)
}

// newValueSource は値形式に応じた生成器を作る
// fakerのシードは生成器の乱数から取るため、同じシードなら同じ値列になる
func newValueSource(rng *rand.Rand, style config.ValueStyle, size int) valueSource {
	switch style {
	case config.ValueUUID:
		return uuidValues{faker: gofakeit.New(rng.Int63() | 1)}
	case config.ValueLetters:
		return letterValues{faker: gofakeit.New(rng.Int63() | 1), size: uint(size)}
	default:
		return numericValues{rng: rng}
	}
}
