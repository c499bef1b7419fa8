package biquad

import (
	"sync"

	"github.com/cwbudde/algo-vecmath/cpu"
)

// blockKernel filters buf in place from delay state (z0, z1) and returns the
// final state.
type blockKernel func(c Coefficients, z0, z1 float64, buf []float64) (float64, float64)

var (
	kernelOnce sync.Once
	kernel     blockKernel
	kernelName string
)

func activeKernel() blockKernel {
	kernelOnce.Do(func() {
		kernelName, kernel = selectKernel(cpu.DetectFeatures())
	})
	return kernel
}

// KernelName reports which block kernel ProcessBlock dispatches to.
func KernelName() string {
	activeKernel()
	return kernelName
}

// selectKernel picks the widest unroll the CPU class benefits from. Wide
// SIMD cores keep four dependent sample chains in flight comfortably.
func selectKernel(f cpu.Features) (string, blockKernel) {
	switch {
	case f.ForceGeneric:
		return "scalar", processScalar
	case f.HasAVX2 || f.HasNEON:
		return "unrolled4", processUnrolled4
	default:
		return "unrolled2", processUnrolled2
	}
}

// df2t steps one sample. It is small enough to inline into the kernels.
func df2t(c *Coefficients, x float64, z0, z1 *float64) float64 {
	y := c.B0*x + *z0
	*z0 = c.B1*x - c.A1*y + *z1
	*z1 = c.B2*x - c.A2*y
	return y
}

func processScalar(c Coefficients, z0, z1 float64, buf []float64) (float64, float64) {
	for i, x := range buf {
		buf[i] = df2t(&c, x, &z0, &z1)
	}
	return z0, z1
}

// The unrolled kernels load a group of inputs before storing any output so
// the loads are independent of the feedback chain.
func processUnrolled2(c Coefficients, z0, z1 float64, buf []float64) (float64, float64) {
	n := len(buf) &^ 1
	for i := 0; i < n; i += 2 {
		x0, x1 := buf[i], buf[i+1]
		buf[i] = df2t(&c, x0, &z0, &z1)
		buf[i+1] = df2t(&c, x1, &z0, &z1)
	}
	return processScalar(c, z0, z1, buf[n:])
}

func processUnrolled4(c Coefficients, z0, z1 float64, buf []float64) (float64, float64) {
	n := len(buf) &^ 3
	for i := 0; i < n; i += 4 {
		x0, x1, x2, x3 := buf[i], buf[i+1], buf[i+2], buf[i+3]
		buf[i] = df2t(&c, x0, &z0, &z1)
		buf[i+1] = df2t(&c, x1, &z0, &z1)
		buf[i+2] = df2t(&c, x2, &z0, &z1)
		buf[i+3] = df2t(&c, x3, &z0, &z1)
	}
	return processScalar(c, z0, z1, buf[n:])
}
