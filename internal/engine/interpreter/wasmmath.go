package interpreter

import "math"

// wasmF32Min/Max/F64Min/Max implement the Wasm float min/max rules (spec
// core 1.0 §4.3.9): NaN is contagious (propagated, quieted), and among two
// zeros of different sign min picks -0 and max picks +0 — stricter than
// math.Min/Max, which don't distinguish signed zeros consistently across
// platforms.

func wasmF32Min(a, b float32) float32 {
	if math.IsNaN(float64(a)) || math.IsNaN(float64(b)) {
		return float32(math.NaN())
	}
	if a == 0 && b == 0 {
		if math.Signbit(float64(a)) || math.Signbit(float64(b)) {
			return float32(math.Copysign(0, -1))
		}
		return 0
	}
	if a < b {
		return a
	}
	return b
}

func wasmF32Max(a, b float32) float32 {
	if math.IsNaN(float64(a)) || math.IsNaN(float64(b)) {
		return float32(math.NaN())
	}
	if a == 0 && b == 0 {
		if !math.Signbit(float64(a)) || !math.Signbit(float64(b)) {
			return 0
		}
		return float32(math.Copysign(0, -1))
	}
	if a > b {
		return a
	}
	return b
}

func wasmF64Min(a, b float64) float64 {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.NaN()
	}
	if a == 0 && b == 0 {
		if math.Signbit(a) || math.Signbit(b) {
			return math.Copysign(0, -1)
		}
		return 0
	}
	if a < b {
		return a
	}
	return b
}

func wasmF64Max(a, b float64) float64 {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.NaN()
	}
	if a == 0 && b == 0 {
		if !math.Signbit(a) || !math.Signbit(b) {
			return 0
		}
		return math.Copysign(0, -1)
	}
	if a > b {
		return a
	}
	return b
}

// wasmNearest rounds to the nearest integral value, ties to even (the
// `nearest` opcode family; math.RoundToEven already implements this but is
// named here for the per-width call sites).
func wasmNearestF32(a float32) float32 { return float32(math.RoundToEven(float64(a))) }
func wasmNearestF64(a float64) float64 { return math.RoundToEven(a) }
