package excel

import (
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// readCellValues returns the sheet's cells the way a dataframe reader sees
// them: numbers as their stored value whatever the number format, date-styled
// numbers as timestamps, and booleans as TRUE/FALSE
func readCellValues(f *excelize.File, sheet string) ([][]string, error) {
	formatted, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	for r, row := range rows {
		for c, raw := range row {
			shown := cellAt(formatted, r, c)
			if raw == shown {
				continue
			}
			if isBoolText(shown) && (raw == "1" || raw == "0") {
				row[c] = shown
				continue
			}
			serial, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			if ok, err := isDateStyled(f, sheet, r, c); err != nil {
				return nil, err
			} else if ok {
				row[c] = formatSerial(serial, date1904, raw)
			}
		}
	}
	return rows, nil
}

func cellAt(rows [][]string, r, c int) string {
	if r < len(rows) && c < len(rows[r]) {
		return rows[r][c]
	}
	return ""
}

func isBoolText(s string) bool {
	return s == "TRUE" || s == "FALSE"
}

func isDateStyled(f *excelize.File, sheet string, r, c int) (bool, error) {
	ref, err := excelize.CoordinatesToCellName(c+1, r+1)
	if err != nil {
		return false, err
	}
	idx, err := f.GetCellStyle(sheet, ref)
	if err != nil || idx == 0 {
		return false, err
	}
	style, err := f.GetStyle(idx)
	if err != nil {
		return false, err
	}
	if style.CustomNumFmt != nil {
		return isDateFormatCode(*style.CustomNumFmt), nil
	}
	return isBuiltInDateFormat(style.NumFmt), nil
}

// isBuiltInDateFormat reports the built-in number format ids that render dates or times
func isBuiltInDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 27 && id <= 36, id >= 50 && id <= 58: // CJK date formats
		return true
	case id >= 45 && id <= 47:
		return true
	}
	return false
}

// isDateFormatCode looks for date or time tokens in a custom format code,
// ignoring quoted literals, escapes and bracketed colors or locales
func isDateFormatCode(code string) bool {
	code = strings.ToLower(code)
	if i := strings.Index(code, ";"); i >= 0 {
		code = code[:i]
	}
	var b strings.Builder
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case inQuote:
			inQuote = ch != '"'
		case inBracket:
			if ch == ']' {
				inBracket = false
			} else if ch == 'h' || ch == 's' {
				b.WriteByte(ch) // elapsed time such as [h]
			}
		case ch == '"':
			inQuote = true
		case ch == '[':
			inBracket = true
		case ch == '\\' || ch == '_' || ch == '*':
			i++
		default:
			b.WriteByte(ch)
		}
	}
	return strings.ContainsAny(b.String(), "ydhs")
}

// formatSerial renders an Excel serial date as a timestamp string, dropping
// the clock when it is midnight
func formatSerial(serial float64, date1904 bool, raw string) string {
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return raw
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}
