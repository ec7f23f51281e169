package pass_test

import (
	"fmt"

	"github.com/mohualzy/VoiceIce/dsp/filter/design/pass"
)

func ExampleButterworthLP() {
	sections := pass.ButterworthLP(1200, 4, 44100)

	fmt.Printf("sections=%d\n", len(sections))
	fmt.Printf("DC gain: %.3f\n", sections[0].DCGain()*sections[1].DCGain())
	// Output:
	// sections=2
	// DC gain: 1.000
}
