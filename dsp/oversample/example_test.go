package oversample_test

import (
	"fmt"

	"github.com/cwbudde/valvesat/dsp/oversample"
)

func ExampleOversampler() {
	os, err := oversample.New(2, 1, 4)
	if err != nil {
		panic(err)
	}

	in := [][]float64{{0, 0, 0, 0}}
	hi, _ := os.ProcessUp(in)
	fmt.Println(os.Factor(), len(hi[0]))

	_ = os.ProcessDown(in)
	fmt.Printf("latency %.2f samples\n", os.Latency())
	// Output:
	// 4 16
	// latency 3.37 samples
}
