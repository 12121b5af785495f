package portfolio

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/synthrisk/perilgen/pkg/core"
)

// Property types and their baseline prices per square metre. London pricing;
// the area factor scales these up or down.
var propertyTypes = []struct {
	name        string
	pricePerSqm float64
}{
	{"Detached", 11500},
	{"Semi-detached", 9250},
	{"Mid-terrace", 8000},
	{"End-terrace", 8200},
	{"Bungalow", 9000},
	{"Flat", 7750},
}

// Valuations are clamped to plausible London bounds.
var (
	minPropertyValue = decimal.NewFromInt(150000)
	maxPropertyValue = decimal.NewFromInt(5000000)
)

// GenerateProperties returns count residential properties sited near the
// Thames points, cycling through areas and property types. Valuations are
// floor area times the type's base price, scaled by the area factor.
func GenerateProperties(count int) []core.Property {
	properties := make([]core.Property, 0, count)
	for i := 0; i < count; i++ {
		properties = append(properties, newProperty(i))
	}
	return properties
}

func newProperty(index int) core.Property {
	point := ThamesPoints[index%len(ThamesPoints)]
	area := LondonAreas[index%len(LondonAreas)]
	kind := propertyTypes[index%len(propertyTypes)]
	floorArea := 55.0 + float64(index%10)*15.0

	return core.Property{
		PropertyID:    newID("PROP"),
		Address:       fmt.Sprintf("%d %s Road", 1+index, area),
		Area:          area,
		PostCode:      postcode(index),
		Latitude:      point.Lat + 0.002*float64(1+index%5),
		Longitude:     point.Lon,
		Elevation:     point.Elevation + 2.0 + 0.5*float64(index%4),
		PropertyType:  kind.name,
		FloorAreaSqm:  floorArea,
		PropertyValue: valuation(floorArea, kind.pricePerSqm, areaFactor(area)),
	}
}

func valuation(floorArea, pricePerSqm, factor float64) decimal.Decimal {
	value := decimal.NewFromFloat(floorArea).
		Mul(decimal.NewFromFloat(pricePerSqm)).
		Mul(decimal.NewFromFloat(factor)).
		Round(2)
	if value.LessThan(minPropertyValue) {
		return minPropertyValue
	}
	if value.GreaterThan(maxPropertyValue) {
		return maxPropertyValue
	}
	return value
}

// postcode builds a deterministic UK-style postcode.
func postcode(index int) string {
	district := 1 + index%28
	sector := 1 + index%9
	unit := string([]byte{'A' + byte(index%26), 'A' + byte((index*7)%26)})
	return fmt.Sprintf("SW%d %d%s", district, sector, unit)
}
