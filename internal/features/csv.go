package features

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

var csvHeader = []string{
	"site", "eco", "opening", "opening_san", "opening_uci",
	"plies", "total_plies", "white_elo", "black_elo",
	"tc_base", "tc_inc", "termination", "result",
}

// CSVWriter streams feature rows as CSV, one row per sampled game, in the
// shape the regression stage ingests.
type CSVWriter struct {
	w      *csv.Writer
	headed bool
}

func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

func (c *CSVWriter) Write(row *Row) error {
	if !c.headed {
		if err := c.w.Write(csvHeader); err != nil {
			return err
		}
		c.headed = true
	}
	return c.w.Write([]string{
		row.Site,
		row.ECO,
		row.Opening,
		strings.Join(row.OpeningSAN, " "),
		strings.Join(row.OpeningUCI, " "),
		strconv.Itoa(row.Plies),
		strconv.Itoa(row.TotalPlies),
		intOrBlank(row.WhiteElo),
		intOrBlank(row.BlackElo),
		strconv.Itoa(row.TimeControlBase),
		strconv.Itoa(row.TimeControlInc),
		string(row.Termination),
		row.Result,
	})
}

func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

func intOrBlank(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
