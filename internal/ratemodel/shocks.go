package ratemodel

import (
	crand "crypto/rand"
	"encoding/binary"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// drawShocks fills an [nPaths, nSteps] matrix with standard normals, row by row,
// from a single stream seeded once.
func drawShocks(seed int64, nPaths, nSteps int) *mat.Dense {
	rnd := rand.New(rand.NewSource(uint64(seed)))
	data := make([]float64, nPaths*nSteps)
	for i := range data {
		data[i] = rnd.NormFloat64()
	}
	return mat.NewDense(nPaths, nSteps, data)
}

func resolveSeed(seed *int64) int64 {
	if seed != nil {
		return *seed
	}
	return freshSeed()
}

// freshSeed draws a seed from crypto/rand, falling back to the clock.
func freshSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]) >> 1)
}
