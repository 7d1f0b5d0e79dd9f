package dataset

// LoadElection reads the election table. Identifiers are returned as read.
func LoadElection(path string) ([]ElectionRow, error) {
	t, err := readCSV(TableElection, path)
	if err != nil {
		return nil, err
	}
	if err := RequireColumns(TableElection, path, t.header, ElectionColumns); err != nil {
		return nil, err
	}

	rows := make([]ElectionRow, len(t.records))
	for i := range t.records {
		row := &rows[i]
		row.FIPS = t.text(i, ColCountyFIPS)
		row.StateName = t.text(i, ColStateName)
		row.CountyName = t.text(i, ColCountyName)
		if err := t.numbers(i, ElectionColumns[3:],
			&row.VotesGOP, &row.VotesDem, &row.TotalVotes, &row.Diff,
			&row.PerGOP, &row.PerDem, &row.PerPointDiff,
		); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// LoadDemographics reads the demographics table and reports which white
// population column it was read from.
func LoadDemographics(path string) ([]DemographicsRow, DemographicsSchema, error) {
	t, err := readCSV(TableDemographics, path)
	if err != nil {
		return nil, DemographicsSchema{}, err
	}
	schema, err := ResolveDemographics(path, t.header)
	if err != nil {
		return nil, DemographicsSchema{}, err
	}

	rows := make([]DemographicsRow, len(t.records))
	for i := range t.records {
		row := &rows[i]
		row.FIPS = t.text(i, ColFIPS)
		if err := t.numbers(i, schema.Columns()[1:],
			&row.TotalPop, &row.White, &row.Black, &row.Hispanic,
		); err != nil {
			return nil, DemographicsSchema{}, err
		}
	}
	return rows, schema, nil
}

// LoadEducation reads the education and income table.
func LoadEducation(path string) ([]EducationRow, error) {
	t, err := readCSV(TableEducation, path)
	if err != nil {
		return nil, err
	}
	if err := RequireColumns(TableEducation, path, t.header, EducationColumns); err != nil {
		return nil, err
	}

	rows := make([]EducationRow, len(t.records))
	for i := range t.records {
		row := &rows[i]
		row.FIPS = t.text(i, ColFIPS)
		if err := t.numbers(i, EducationColumns[1:],
			&row.BachelorsCount, &row.BachelorsPct, &row.MedianIncome, &row.UnemploymentRate,
		); err != nil {
			return nil, err
		}
	}
	return rows, nil
}
