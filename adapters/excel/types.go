package excel

import "dataportal/domain/dataset"

// RawData is a sheet of cell text: a header row plus data rows padded to the
// header width
type RawData struct {
	Format  dataset.Format
	Sheet   string // Excel only: the sheet the rows came from
	Headers []string
	Rows    [][]string
}

// Column returns every value of column i, top to bottom
func (d *RawData) Column(i int) []string {
	values := make([]string, len(d.Rows))
	for r, row := range d.Rows {
		values[r] = row[i]
	}
	return values
}
