package host_test

import (
	"fmt"

	"github.com/cwbudde/valvesat/host"
)

func ExampleNewParameters() {
	ps := host.NewParameters()
	ps.Drive.Set(32.5)

	for _, p := range ps.All() {
		fmt.Printf("%-12s %s\n", p.Name, p.Format())
	}
	// Output:
	// Input Trim   0.0 dB
	// Drive        32.5 dB
	// Bias         0.00
	// Sag          0.15
	// Output Trim  0.0 dB
	// Mix          100.0 %
	// Mode         triode
}

func ExampleProcessor_Prepare() {
	p, err := host.NewProcessor(host.WithLatencyListener(host.LatencyListenerFunc(func(n int) {
		fmt.Println("report latency", n)
	})))
	if err != nil {
		panic(err)
	}

	if err := p.Prepare(44100, 512, 2, 2); err != nil {
		panic(err)
	}
	// Output:
	// report latency 4
}
