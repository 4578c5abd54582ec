package prices

import (
	"fmt"
	"math"
	"strconv"
)

// NoData marks a slot without a price. It maps to a neutral colour.
const NoData = -9999.0

const noDataColor = "#fff"

type RGB struct {
	R, G, B int
}

func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

type colorStop struct {
	pct   float64
	color RGB
}

var colorStops = []colorStop{
	{pct: 0.0, color: RGB{0x00, 0x88, 0x00}},
	{pct: 0.5, color: RGB{0xAA, 0xAA, 0x00}},
	{pct: 1.0, color: RGB{0xAA, 0x00, 0x00}},
}

// Color positions value between min and max on a green, amber, red scale.
func Color(value, min, max float64) string {
	if value == NoData {
		return noDataColor
	}

	pct := 0.0
	if max-min != 0 {
		pct = (value - min) / (max - min)
	}
	// (0.15-0.1)/(0.2-0.1) is just below 0.5 in floating point
	pct = math.Round(pct*1e9) / 1e9

	i := 1
	for ; i < len(colorStops)-1; i++ {
		if pct < colorStops[i].pct {
			break
		}
	}

	lower := colorStops[i-1]
	upper := colorStops[i]
	rangePct := (pct - lower.pct) / (upper.pct - lower.pct)
	pctLower := 1 - rangePct
	pctUpper := rangePct

	channel := func(l, u int) int {
		return int(math.Floor(float64(l)*pctLower + float64(u)*pctUpper))
	}

	return RGB{
		R: channel(lower.color.R, upper.color.R),
		G: channel(lower.color.G, upper.color.G),
		B: channel(lower.color.B, upper.color.B),
	}.String()
}

// LegendColors returns the cheapest and the most expensive colour.
func LegendColors() (good RGB, bad RGB) {
	return colorStops[0].color, colorStops[len(colorStops)-1].color
}

// Format renders four decimals where the last two are wrapped for dimming,
// e.g. 0.12<span class="extra-decimals">34</span>.
func Format(number float64) string {
	num := strconv.FormatFloat(number, 'f', 4, 64)
	return num[:len(num)-2] + `<span class="extra-decimals">` + num[len(num)-2:] + `</span>`
}

// ThresholdColor paints value with the good colour below threshold (€/kWh)
// and the bad colour at or above it.
func ThresholdColor(value, threshold float64) string {
	if value == NoData {
		return noDataColor
	}
	good, bad := LegendColors()
	if value < threshold {
		return good.String()
	}
	return bad.String()
}
