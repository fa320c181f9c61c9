package ratemodel

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"sync"

	"shortrate-sim/internal/model"
)

// DriftCache memoizes drift curves so that repeated runs over the same observed
// curve (seed sweeps, scenario batches) derive theta once.
//
// A nil *DriftCache is valid and simply computes every request.
type DriftCache struct {
	mu     sync.RWMutex
	store  map[string]*DriftCurve
	hits   int
	misses int
}

func NewDriftCache() *DriftCache {
	return &DriftCache{store: make(map[string]*DriftCurve)}
}

// Get returns the drift curve for (model, curve, kappa, sigma), building it on a miss.
func (c *DriftCache) Get(name model.Name, curve model.ObservedCurve, kappa, sigma float64) (*DriftCurve, error) {
	if c == nil {
		return NewDriftCurve(curve, kappa, sigma)
	}

	key := DriftKey(name, curve, kappa, sigma)
	c.mu.RLock()
	dc, ok := c.store[key]
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return dc, nil
	}

	dc, err := NewDriftCurve(curve, kappa, sigma)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.store[key] = dc
	c.misses++
	c.mu.Unlock()
	return dc, nil
}

// Stats reports cache hits and misses so far.
func (c *DriftCache) Stats() (hits, misses int) {
	if c == nil {
		return 0, 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// Len returns the number of cached curves.
func (c *DriftCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// DriftKey hashes the exact bit patterns of every input, so two curves share an
// entry only if they are numerically identical.
func DriftKey(name model.Name, curve model.ObservedCurve, kappa, sigma float64) string {
	h := sha256.New()
	h.Write([]byte(name))
	var buf [8]byte
	put := func(x float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(x))
		h.Write(buf[:])
	}
	put(kappa)
	put(sigma)
	for i := range curve.Maturities {
		put(curve.Maturities[i])
		if i < len(curve.ZeroRates) {
			put(curve.ZeroRates[i])
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
