package pipeline

import (
	"slices"

	"github.com/tigerroll/daioe-scb/internal/domain/model"
)

// isMilitary reports whether code belongs to the armed forces major group.
func isMilitary(code string) bool {
	return len(code) > 0 && code[0] == '0'
}

// join attaches the employment count of the same (code, year) to each indicator row.
// The result is sorted by (code, year).
func join(ind []model.IndicatorRow, counts map[key]float64, joinType JoinType, dropMilitary bool) []model.JoinedRow {
	out := make([]model.JoinedRow, 0, len(ind))
	for _, r := range ind {
		count, ok := counts[key{r.Code, r.Year}]
		if !ok && joinType == JoinInner {
			continue
		}
		if dropMilitary && isMilitary(r.Code) {
			continue
		}
		jr := model.JoinedRow{Code: r.Code, Year: r.Year, Values: r.Values}
		if ok {
			jr.Count = model.Float(count)
		}
		out = append(out, jr)
	}
	slices.SortStableFunc(out, func(a, b model.JoinedRow) int {
		return compareKey(key{a.Code, a.Year}, key{b.Code, b.Year})
	})
	return out
}

// expandLevels fans every joined row out to each level its code is long enough for.
func expandLevels(rows []model.JoinedRow) map[model.Level][]model.LeveledRow {
	out := make(map[model.Level][]model.LeveledRow, len(model.Levels))
	for _, r := range rows {
		for _, l := range model.Levels {
			code, ok := l.Truncate(r.Code)
			if !ok {
				continue
			}
			out[l] = append(out[l], model.LeveledRow{
				Level:    l,
				SSYKCode: code,
				Year:     r.Year,
				Values:   r.Values,
				Count:    r.Count,
			})
		}
	}
	return out
}
