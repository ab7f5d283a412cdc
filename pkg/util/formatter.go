package util

import (
	"fmt"
	"math"
)

// FormatValueFactor renders a value with an SI prefix and unit, picking the
// factor that keeps the mantissa readable.
func FormatValueFactor(value float64, unit string) string {
	absValue := math.Abs(value)
	switch {
	case absValue >= 1:
		return fmt.Sprintf("%.3f %s", value, unit)
	case absValue >= 1e-3:
		return fmt.Sprintf("%.3f m%s", value*1e3, unit)
	case absValue >= 1e-6:
		return fmt.Sprintf("%.3f u%s", value*1e6, unit)
	case absValue >= 1e-9:
		return fmt.Sprintf("%.3f n%s", value*1e9, unit)
	case absValue >= 1e-12:
		return fmt.Sprintf("%.3f p%s", value*1e12, unit)
	default:
		return fmt.Sprintf("%.3e %s", value, unit)
	}
}

// FormatEnergy renders a subband energy already expressed in meV.
func FormatEnergy(meV float64) string {
	return fmt.Sprintf("%10.4f meV", meV)
}

// FormatSheetDensity renders an areal density in m^-2.
func FormatSheetDensity(n float64) string {
	if n == 0 {
		return "       0 m^-2"
	}
	return fmt.Sprintf("%8.3e m^-2", n)
}

// FormatFrequency renders a real frequency given in THz.
func FormatFrequency(thz float64) string {
	return fmt.Sprintf("%8.3f THz", thz)
}
