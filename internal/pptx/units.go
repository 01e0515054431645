package pptx

// EMU is an English Metric Unit, the length unit of DrawingML.
type EMU int64

// Length units.
const (
	Point      EMU = 12700
	Centimeter EMU = 360000
	Inch       EMU = 914400
)

// A4 portrait slide size (21cm x 29.7cm).
const (
	A4Width  EMU = 21 * Centimeter
	A4Height EMU = 297 * Centimeter / 10
)

// Inches converts a length in inches.
func Inches(v float64) EMU { return EMU(v * float64(Inch)) }
