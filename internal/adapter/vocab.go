package adapter

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Canonical drivetrain keys.
const (
	driveFour  = "4WD"
	driveAll   = "AWD"
	driveFront = "FWD"
	driveRear  = "RWD"
	driveTwo   = "2WD"
)

var drivetrainSynonyms = map[string]string{
	"4wd":                 driveFour,
	"4 wd":                driveFour,
	"4x4":                 driveFour,
	"four wheel drive":    driveFour,
	"four by four":        driveFour,
	"awd4wd":              driveFour,
	"4wd/awd":             driveFour,
	"awd":                 driveAll,
	"all wheel drive":     driveAll,
	"fwd":                 driveFront,
	"front wheel drive":   driveFront,
	"2wd front":           driveFront,
	"2 wheel drive front": driveFront,
	"rwd":                 driveRear,
	"rear wheel drive":    driveRear,
	"2wd rear":            driveRear,
	"2 wheel drive rear":  driveRear,
	"2wd":                 driveTwo,
	"2 wd":                driveTwo,
	"4x2":                 driveTwo,
	"two wheel drive":     driveTwo,
	"2 wheel drive":       driveTwo,
	"four by two":         driveTwo,
}

// Canonical fuel keys.
const (
	fuelGas      = "gasoline"
	fuelDiesel   = "diesel"
	fuelElectric = "electric"
	fuelHybrid   = "hybrid"
	fuelPlugIn   = "plug-in hybrid"
	fuelFlex     = "flex fuel"
)

var fuelSynonyms = map[string]string{
	"gas":               fuelGas,
	"gasoline":          fuelGas,
	"petrol":            fuelGas,
	"diesel":            fuelDiesel,
	"electric":          fuelElectric,
	"ev":                fuelElectric,
	"hybrid":            fuelHybrid,
	"plug in hybrid":    fuelPlugIn,
	"plug-in hybrid":    fuelPlugIn,
	"phev":              fuelPlugIn,
	"flex fuel":         fuelFlex,
	"flex fuel vehicle": fuelFlex,
	"flex-fuel":         fuelFlex,
	"e85":               fuelFlex,
}

var transmissionSynonyms = map[string]string{
	"automatic": "automatic",
	"auto":      "automatic",
	"at":        "automatic",
	"manual":    "manual",
	"stick":     "manual",
	"mt":        "manual",
}

// Per-retailer spellings keyed by canonical value.
var (
	carGurusDrivetrain = map[string]string{
		driveFour:  "FOUR_WHEEL_DRIVE",
		driveAll:   "ALL_WHEEL_DRIVE",
		driveFront: "FRONT_WHEEL_DRIVE",
		driveRear:  "REAR_WHEEL_DRIVE",
		driveTwo:   "FOUR_BY_TWO",
	}
	carGurusFuel = map[string]string{
		fuelGas:      "GASOLINE",
		fuelDiesel:   "DIESEL",
		fuelElectric: "ELECTRIC",
		fuelHybrid:   "HYBRID",
		fuelPlugIn:   "PLUG_IN_HYBRID",
		fuelFlex:     "FLEX_FUEL_VEHICLE",
	}

	titledDrivetrain = map[string]string{
		driveFour:  "Four Wheel Drive",
		driveAll:   "All Wheel Drive",
		driveFront: "Front Wheel Drive",
		driveRear:  "Rear Wheel Drive",
		driveTwo:   "Two Wheel Drive",
	}
	titledFuel = map[string]string{
		fuelGas:      "Gasoline",
		fuelDiesel:   "Diesel",
		fuelElectric: "Electric",
		fuelHybrid:   "Hybrid",
		fuelPlugIn:   "Plug-In Hybrid",
		fuelFlex:     "Flex Fuel",
	}
	carMaxFuel = map[string]string{
		fuelGas:      "Gas",
		fuelDiesel:   "Diesel",
		fuelElectric: "Electric",
		fuelHybrid:   "Hybrid",
		fuelPlugIn:   "Plug-In Hybrid",
		fuelFlex:     "Flex Fuel",
	}

	autoTraderDriveGroup = map[string]string{
		driveFour:  "AWD4WD",
		driveAll:   "AWD4WD",
		driveFront: "FWD",
		driveRear:  "RWD",
	}
)

func vocabKey(v string) string {
	k := strings.ToLower(strings.TrimSpace(v))
	k = strings.NewReplacer("_", " ", "-wheel", " wheel", "–", " ").Replace(k)
	k = strings.ReplaceAll(k, " - ", " ")
	return strings.Join(strings.Fields(k), " ")
}

func canonicalDrivetrain(v string) (string, bool) {
	c, ok := drivetrainSynonyms[vocabKey(v)]
	return c, ok
}

func canonicalFuel(v string) (string, bool) {
	c, ok := fuelSynonyms[vocabKey(v)]
	return c, ok
}

func canonicalTransmission(v string) (string, bool) {
	c, ok := transmissionSynonyms[vocabKey(v)]
	return c, ok
}

// translate maps v through table via its canonical key. Unknown values fall
// back to the retailer's casing convention.
func translate(v string, canon func(string) (string, bool), table map[string]string, fallback func(string) string) string {
	if strings.TrimSpace(v) == "" {
		return ""
	}
	if c, ok := canon(v); ok {
		if out, ok := table[c]; ok {
			return out
		}
	}
	return fallback(v)
}

// upperSnake renders "Four Wheel Drive" as FOUR_WHEEL_DRIVE.
func upperSnake(v string) string {
	fields := strings.FieldsFunc(strings.ToUpper(v), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	})
	return strings.Join(fields, "_")
}

// titleWords renders FOUR_WHEEL_DRIVE as "Four Wheel Drive".
func titleWords(v string) string {
	words := strings.Fields(strings.ReplaceAll(v, "_", " "))
	return cases.Title(language.English).String(strings.Join(words, " "))
}

func verbatim(v string) string {
	return strings.TrimSpace(v)
}

func dropUnknown(string) string {
	return ""
}

var (
	carGurusTransmission = map[string]string{"automatic": "AUTOMATIC", "manual": "MANUAL"}
	titledTransmission   = map[string]string{"automatic": "Automatic", "manual": "Manual"}
)
