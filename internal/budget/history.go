package budget

import (
	"slices"
	"sort"
	"time"

	"github.com/theirongolddev/mobius/internal/model"
)

// UpsertRecord returns records with rec in place of any record for the
// same month, sorted ascending by period. The input is not modified.
func UpsertRecord(records []model.MonthlyRecord, rec model.MonthlyRecord) []model.MonthlyRecord {
	out := make([]model.MonthlyRecord, 0, len(records)+1)
	for _, r := range records {
		if r.Key() == rec.Key() {
			continue
		}
		out = append(out, r)
	}
	out = append(out, rec)
	SortRecords(out)
	return out
}

// SortRecords orders records ascending by year, then month.
func SortRecords(records []model.MonthlyRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Before(records[j])
	})
}

// Summarize aggregates the archived months. Best and worst months are
// picked among records with a positive or negative balance respectively;
// ties go to the earliest month.
func Summarize(records []model.MonthlyRecord, now time.Time) model.HistoricalData {
	records = slices.Clone(records)
	h := model.HistoricalData{
		MonthlyRecords: records,
		LastUpdated:    now,
	}
	if len(records) == 0 {
		return h
	}

	var sum float64
	for i := range records {
		r := records[i]
		sum += r.TotalRemaining

		switch {
		case r.TotalRemaining > 0:
			h.TotalSavedAllTime += r.TotalRemaining
			if h.BestSavingMonth == nil || r.TotalRemaining > h.BestSavingMonth.TotalRemaining {
				h.BestSavingMonth = &records[i]
			}
		case r.TotalRemaining < 0:
			h.TotalOverspentAllTime += -r.TotalRemaining
			if h.WorstOverspentMonth == nil || r.TotalRemaining < h.WorstOverspentMonth.TotalRemaining {
				h.WorstOverspentMonth = &records[i]
			}
		}
	}
	h.AverageMonthlyBalance = sum / float64(len(records))
	return h
}

// FindRecord returns the record archived for year/month.
func FindRecord(records []model.MonthlyRecord, year, month int) (model.MonthlyRecord, bool) {
	key := model.PeriodKey(year, month)
	for _, r := range records {
		if r.Key() == key {
			return r, true
		}
	}
	return model.MonthlyRecord{}, false
}
