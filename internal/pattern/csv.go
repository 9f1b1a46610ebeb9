package pattern

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/banshee-data/xrd.report/internal/xrd"
)

// WriteCSV writes the pattern as "2theta,intensity,hkl" rows. The hkl column
// lists each contributing family as a tuple, e.g. "[(1, 1, 1), (2, 0, 0)]".
func WriteCSV(w io.Writer, p *Pattern) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"2theta", "intensity", "hkl"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i := 0; i < p.Len(); i++ {
		row := []string{
			formatFloat(p.X[i]),
			formatFloat(p.Y[i]),
			formatFamilies(p.HKLs[i]),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFamiliesCSV writes one "h,k,l,multiplicity" row per family.
func WriteFamiliesCSV(w io.Writer, families []xrd.Family) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"h", "k", "l", "multiplicity"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, f := range families {
		row := []string{
			strconv.Itoa(f.HKL[0]),
			strconv.Itoa(f.HKL[1]),
			strconv.Itoa(f.HKL[2]),
			strconv.Itoa(f.Multiplicity),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFamilies(fs []xrd.Family) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = fmt.Sprintf("(%d, %d, %d)", f.HKL[0], f.HKL[1], f.HKL[2])
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
