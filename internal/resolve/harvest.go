package resolve

import (
	"regexp"
	"strconv"
	"time"

	"consumo_wpp_backend/internal/catalog"
)

var yearPairRe = regexp.MustCompile(`(\d{2,4})\s*/\s*(\d{2,4})`)
var singleYearRe = regexp.MustCompile(`\d{2,4}`)

// HarvestService resolves the crop season. Matching is exact on the
// year pair, never fuzzy: "24/25" and "23/24" differ by one character
// but are different seasons.
type HarvestService struct{}

func NewHarvestService() *HarvestService {
	return &HarvestService{}
}

// Resolve picks the harvest. Without a mention, the entry whose date
// range contains today wins. With a mention, the year pair is parsed
// and matched exactly against (start year, end year).
func (s *HarvestService) Resolve(mentioned string, harvests []catalog.Harvest, today time.Time) *catalog.Harvest {
	if mentioned == "" {
		for i, h := range harvests {
			if !today.Before(h.StartDate) && !today.After(h.EndDate) {
				return &harvests[i]
			}
		}
		return nil
	}

	start, end, ok := parseYearPair(mentioned)
	if !ok {
		return nil
	}
	for i, h := range harvests {
		if h.StartYear == start && h.EndYear == end {
			return &harvests[i]
		}
	}
	return nil
}

// parseYearPair extracts "24/25"-style pairs or a lone year. Two-digit
// years are taken as 20xx; the pair is sorted ascending.
func parseYearPair(text string) (int, int, bool) {
	if m := yearPairRe.FindStringSubmatch(text); m != nil {
		start := expandYear(m[1])
		end := expandYear(m[2])
		if start > end {
			start, end = end, start
		}
		return start, end, true
	}
	if m := singleYearRe.FindString(text); m != "" {
		year := expandYear(m)
		return year, year, true
	}
	return 0, 0, false
}

func expandYear(s string) int {
	n, _ := strconv.Atoi(s)
	if len(s) <= 2 {
		n += 2000
	}
	return n
}
