package portfolio

// ThamesPoint is one survey location on the river with its bank elevation
// in metres.
type ThamesPoint struct {
	Lat       float64
	Lon       float64
	Elevation float64
}

// ThamesPoints are the forty gauge sites along the Thames, ordered upstream
// (Richmond) to downstream (the estuary). Elevations fall monotonically
// toward the sea.
var ThamesPoints = []ThamesPoint{
	{51.4573, -0.3073, 11.13}, {51.4600, -0.2950, 10.86},
	{51.4630, -0.2800, 10.44}, {51.4660, -0.2650, 10.01},
	{51.4690, -0.2500, 9.91}, {51.4720, -0.2350, 9.04},
	{51.4883, -0.2303, 8.01}, {51.4750, -0.2214, 7.91},
	{51.46694, -0.21306, 7.81}, {51.4700, -0.1980, 7.71},
	{51.4730, -0.1850, 7.61}, {51.479134, -0.156838, 7.51},
	{51.4820, -0.1450, 7.41}, {51.4850, -0.1350, 7.31},
	{51.4900, -0.1250, 7.21}, {51.5005, -0.1198, 7.11},
	{51.5030, -0.1100, 7.01}, {51.5052, -0.1168, 6.91},
	{51.5070, -0.1050, 6.81}, {51.5097, -0.1044, 6.71},
	{51.5100, -0.0950, 6.61}, {51.5079, -0.0878, 6.51},
	{51.505554, -0.075278, 6.41}, {51.5030, -0.0650, 6.31},
	{51.5000, -0.0500, 6.21}, {51.4970, -0.0350, 6.11},
	{51.4940, -0.0200, 6.01}, {51.4910, -0.0050, 5.91},
	{51.4880, 0.0100, 5.81}, {51.477928, -0.001545, 5.71},
	{51.4750, 0.0150, 5.61}, {51.4720, 0.0300, 5.51},
	{51.4977, 0.0367, 5.41}, {51.4765, 0.0539, 5.31},
	{51.4700, 0.0800, 5.21}, {51.4650, 0.1200, 5.11},
	{51.4600, 0.1600, 5.01}, {51.4550, 0.2000, 4.91},
	{51.4466, 0.2142, 4.81}, {51.4400, 0.3000, 4.00},
}

// LondonAreas are riverside area names used for gauge and property naming,
// ordered roughly west to east.
var LondonAreas = []string{
	"Chelsea", "Kensington", "Westminster", "Camden", "Islington",
	"Hackney", "Tower Hamlets", "Southwark", "Lambeth", "Wandsworth",
	"Greenwich", "Lewisham", "Hammersmith", "Fulham", "Richmond",
	"Newham", "Barking", "Dagenham", "Havering", "Bexley",
	"Tilbury", "Thurrock", "Grays", "Purfleet", "Dartford",
	"Erith", "Belvedere", "Thamesmead", "Abbey Wood", "Woolwich",
}

// areaValueFactors scale property valuations by area desirability. Areas
// absent from the table carry no premium.
var areaValueFactors = map[string]float64{
	"Chelsea": 2.0, "Kensington": 1.9, "Westminster": 1.8,
	"Camden": 1.5, "Islington": 1.4, "Hackney": 1.2,
	"Tower Hamlets": 1.3, "Southwark": 1.2, "Lambeth": 1.1,
	"Wandsworth": 1.4, "Greenwich": 1.3, "Lewisham": 1.1,
	"Hammersmith": 1.5, "Fulham": 1.4, "Richmond": 1.6,
	"Newham": 1.0, "Barking": 0.9, "Dagenham": 0.8,
	"Havering": 0.9, "Bexley": 0.9, "Tilbury": 0.7,
	"Thurrock": 0.8, "Grays": 0.7, "Purfleet": 0.8,
	"Dartford": 0.9, "Erith": 0.8, "Belvedere": 0.8,
	"Thamesmead": 0.9, "Abbey Wood": 0.9, "Woolwich": 1.0,
}

// areaFactor returns the valuation multiplier for an area.
func areaFactor(area string) float64 {
	if f, ok := areaValueFactors[area]; ok {
		return f
	}
	return 1.0
}
