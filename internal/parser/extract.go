package parser

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"sjsage522/carsearch/internal/query"
)

var (
	withinMilesOfZip = regexp.MustCompile(`within\s+(\d+)\s+miles?\s+of\s+(\d{5})\b`)
	nearZip          = regexp.MustCompile(`(?:near|around|zip|of)\s+(\d{5})\b`)
	anyZip           = regexp.MustCompile(`\b(\d{5})\b`)
	yearToken        = regexp.MustCompile(`\b(20\d{2})\b`)
	underPrice       = regexp.MustCompile(`under\s*\$?\s*(\d[\d,]*)(k\b)?`)
)

var colors = []string{
	"black", "white", "gray", "silver", "blue",
	"red", "green", "brown", "beige", "gold",
}

var drivetrainRules = []struct {
	value    string
	keywords []string
}{
	{"Four Wheel Drive", []string{"4wd", "4 wd", "four wheel drive", "4x4"}},
	{"All Wheel Drive", []string{"awd", "all wheel drive"}},
	{"Two Wheel Drive", []string{"2wd", "2 wd", "4x2"}},
}

var makes = []struct {
	keyword string
	name    string
}{
	{"gmc", "GMC"},
	{"ford", "Ford"},
	{"chevrolet", "Chevrolet"},
	{"chevy", "Chevrolet"},
	{"toyota", "Toyota"},
	{"honda", "Honda"},
	{"jeep", "Jeep"},
	{"ram", "Ram"},
}

// Ordered by brand, longer names ahead of their prefixes.
var trims = []string{
	// GMC
	"Denali Ultimate", "Denali", "AT4", "SLE", "SLT", "Pro", "Elevation",
	// Ford
	"Platinum", "King Ranch", "Lariat", "Limited", "XLT", "XL", "Tremor", "Raptor",
	// Chevrolet
	"High Country", "LTZ", "LT", "Custom", "WT", "Trail Boss", "Z71",
	// Ram
	"Longhorn", "Laramie", "Big Horn", "Rebel", "Tradesman", "TRX",
}

// Extract pulls a structured query out of free text with fixed keyword and
// regex rules. Only values present in the text are set; location defaults
// are left to the adapters.
func Extract(text string) query.Structured {
	lower := strings.ToLower(text)
	var q query.Structured

	priceText := lower
	if m := underPrice.FindStringSubmatchIndex(lower); m != nil {
		digits := strings.ReplaceAll(lower[m[2]:m[3]], ",", "")
		if n, err := strconv.Atoi(digits); err == nil {
			if m[4] >= 0 {
				n *= 1000
			}
			q.MaxPrice = query.Int(n)
		}
		// keep the price out of the standalone zip search
		priceText = lower[:m[0]] + strings.Repeat(" ", m[1]-m[0]) + lower[m[1]:]
	}

	q.Location = extractLocation(priceText)
	extractYears(lower, &q)

	for _, c := range colors {
		if containsNoun(lower, c) {
			q.ExteriorColor = strings.ToUpper(c[:1]) + c[1:]
			break
		}
	}

	for _, rule := range drivetrainRules {
		if containsAny(lower, rule.keywords) {
			q.Drivetrain = rule.value
			break
		}
	}

	seen := make(map[string]bool)
	for _, mk := range makes {
		if containsNoun(lower, mk.keyword) && !seen[mk.name] {
			seen[mk.name] = true
			q.Makes = append(q.Makes, mk.name)
		}
	}

	for _, t := range trims {
		if containsWord(lower, strings.ToLower(t)) {
			q.Trims = []string{t}
			break
		}
	}

	if model := extractModel(lower); model != "" {
		q.Models = []string{model}
	}

	return q
}

func extractLocation(lower string) *query.Location {
	if m := withinMilesOfZip.FindStringSubmatch(lower); m != nil {
		radius, _ := strconv.Atoi(m[1])
		return &query.Location{Zip: m[2], Radius: radius}
	}
	if m := nearZip.FindStringSubmatch(lower); m != nil {
		return &query.Location{Zip: m[1]}
	}
	if m := anyZip.FindStringSubmatch(lower); m != nil {
		return &query.Location{Zip: m[1]}
	}
	return nil
}

func extractYears(lower string, q *query.Structured) {
	found := make(map[int]bool)
	var years []int
	for _, m := range yearToken.FindAllStringSubmatch(lower, -1) {
		y, _ := strconv.Atoi(m[1])
		if !found[y] {
			found[y] = true
			years = append(years, y)
		}
	}
	if len(years) == 0 {
		return
	}
	sort.Ints(years)
	q.YearMin = query.Int(years[0])
	q.YearMax = query.Int(years[len(years)-1])
}

func extractModel(lower string) string {
	switch {
	case strings.Contains(lower, "sierra"):
		if strings.Contains(lower, "3500") || strings.Contains(lower, "hd") {
			return "Sierra 3500HD"
		}
		return "Sierra"
	case strings.Contains(lower, "silverado"):
		return "Silverado"
	case strings.Contains(lower, "f-150"), strings.Contains(lower, "f150"):
		return "F-150"
	}
	return ""
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if containsWord(s, k) {
			return true
		}
	}
	return false
}

// containsWord matches needle on word boundaries so "red" does not hit "reduced".
func containsWord(s, needle string) bool {
	return matchWord(s, needle, false)
}

// containsNoun is containsWord that also accepts "fords" and "ford's".
func containsNoun(s, needle string) bool {
	return matchWord(s, needle, true)
}

func matchWord(s, needle string, plural bool) bool {
	for start := 0; ; {
		i := strings.Index(s[start:], needle)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(needle)
		if plural {
			switch {
			case strings.HasPrefix(s[end:], "'s"):
				end += 2
			case strings.HasPrefix(s[end:], "s"):
				end++
			}
		}
		if (i == 0 || !isWordByte(s[i-1])) && (end == len(s) || !isWordByte(s[end])) {
			return true
		}
		start = i + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}
