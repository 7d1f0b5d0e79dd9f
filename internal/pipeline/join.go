package pipeline

import "github.com/leapstack-labs/countyjoin/internal/dataset"

// normalizeKeys pads every identifier of the three tables in place.
func normalizeKeys(elections []dataset.ElectionRow, demos []dataset.DemographicsRow, edus []dataset.EducationRow) {
	for i := range elections {
		elections[i].FIPS = dataset.NormalizeFIPS(elections[i].FIPS)
	}
	for i := range demos {
		demos[i].FIPS = dataset.NormalizeFIPS(demos[i].FIPS)
	}
	for i := range edus {
		edus[i].FIPS = dataset.NormalizeFIPS(edus[i].FIPS)
	}
}

// Join left-outer joins election rows to demographics rows on FIPS, then joins
// education rows on the matched demographics FIPS. An election row without a
// demographics match therefore has no education fields either. The result has
// one row per election row, in election order. When a right-hand table repeats
// an identifier, its first row is used.
func Join(elections []dataset.ElectionRow, demos []dataset.DemographicsRow, edus []dataset.EducationRow) []dataset.MergedRow {
	demoByFIPS := make(map[string]*dataset.DemographicsRow, len(demos))
	for i := range demos {
		if _, dup := demoByFIPS[demos[i].FIPS]; !dup {
			demoByFIPS[demos[i].FIPS] = &demos[i]
		}
	}
	eduByFIPS := make(map[string]*dataset.EducationRow, len(edus))
	for i := range edus {
		if _, dup := eduByFIPS[edus[i].FIPS]; !dup {
			eduByFIPS[edus[i].FIPS] = &edus[i]
		}
	}

	merged := make([]dataset.MergedRow, len(elections))
	for i, e := range elections {
		m := &merged[i]
		m.FIPS = e.FIPS
		m.State = e.StateName
		m.County = e.CountyName
		m.VotesGOP = e.VotesGOP
		m.VotesDem = e.VotesDem
		m.TotalVotes = e.TotalVotes
		m.Diff = e.Diff
		m.PerGOP = e.PerGOP
		m.PerDem = e.PerDem
		m.PerPointDiff = e.PerPointDiff

		d, ok := demoByFIPS[e.FIPS]
		if !ok {
			continue
		}
		m.HasDemographics = true
		m.Population = d.TotalPop
		m.WhitePop = d.White
		m.BlackPop = d.Black
		m.HispanicPop = d.Hispanic

		if u, ok := eduByFIPS[d.FIPS]; ok {
			m.HasEducation = true
			m.BachelorsDegreeCount = u.BachelorsCount
			m.BachelorsDegreePct = u.BachelorsPct
			m.MedianIncome = u.MedianIncome
			m.UnemploymentRate = u.UnemploymentRate
		}
	}
	return merged
}
