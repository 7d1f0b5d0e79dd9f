package pipeline

import (
	"database/sql"

	"github.com/leapstack-labs/countyjoin/internal/dataset"
)

// Derive sets the population share fields of every row. It must run before Fill:
// a share is missing when either count is missing or the population is zero.
func Derive(rows []dataset.MergedRow) {
	for i := range rows {
		r := &rows[i]
		r.WhitePct = share(r.WhitePop, r.Population)
		r.BlackPct = share(r.BlackPop, r.Population)
		r.HispanicPct = share(r.HispanicPop, r.Population)
	}
}

func share(part, whole sql.NullFloat64) sql.NullFloat64 {
	if !part.Valid || !whole.Valid || whole.Float64 == 0 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: part.Float64 / whole.Float64, Valid: true}
}

// Fill converts merged rows to output records, replacing every missing value with 0.
func Fill(rows []dataset.MergedRow) []dataset.Record {
	records := make([]dataset.Record, len(rows))
	for i, r := range rows {
		records[i] = dataset.Record{
			FIPS:                 r.FIPS,
			State:                r.State,
			County:               r.County,
			VotesGOP:             orZero(r.VotesGOP),
			VotesDem:             orZero(r.VotesDem),
			TotalVotes:           orZero(r.TotalVotes),
			Diff:                 orZero(r.Diff),
			PerGOP:               orZero(r.PerGOP),
			PerDem:               orZero(r.PerDem),
			PerPointDiff:         orZero(r.PerPointDiff),
			Population:           orZero(r.Population),
			WhitePop:             orZero(r.WhitePop),
			BlackPop:             orZero(r.BlackPop),
			HispanicPop:          orZero(r.HispanicPop),
			BachelorsDegreeCount: orZero(r.BachelorsDegreeCount),
			BachelorsDegreePct:   orZero(r.BachelorsDegreePct),
			MedianIncome:         orZero(r.MedianIncome),
			UnemploymentRate:     orZero(r.UnemploymentRate),
			WhitePct:             orZero(r.WhitePct),
			BlackPct:             orZero(r.BlackPct),
			HispanicPct:          orZero(r.HispanicPct),
		}
	}
	return records
}

func orZero(v sql.NullFloat64) float64 {
	if !v.Valid {
		return 0
	}
	return v.Float64
}
