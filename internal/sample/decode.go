package sample

import (
	"fmt"
	"math"

	"github.com/mbeaumont/elostream/internal/domain"
	"github.com/mbeaumont/elostream/internal/hubfast"
)

// decodeRow validates one raw row into an immutable GameRecord. Every
// violation comes back as *domain.RecordSchemaError so the iterator can
// apply the configured skip policy.
func decodeRow(shard string, row hubfast.Row) (*domain.GameRecord, error) {
	d := rowDecoder{shard: shard, row: row}

	rec := &domain.GameRecord{
		Event:           d.reqString("Event"),
		Site:            d.reqString("Site"),
		White:           d.reqString("White"),
		Black:           d.reqString("Black"),
		Result:          d.reqString("Result"),
		UTCDate:         d.reqString("UTCDate"),
		UTCTime:         d.reqString("UTCTime"),
		WhiteElo:        d.optInt("WhiteElo"),
		BlackElo:        d.optInt("BlackElo"),
		WhiteRatingDiff: d.optInt("WhiteRatingDiff"),
		BlackRatingDiff: d.optInt("BlackRatingDiff"),
		ECO:             d.optString("ECO"),
		Opening:         d.optString("Opening"),
	}

	if s := d.reqString("Termination"); s != nil {
		rec.Termination = domain.ParseTermination(*s)
	}
	if s := d.reqString("TimeControl"); s != nil {
		tc, err := domain.ParseTimeControl(*s)
		if err != nil {
			d.setErr("TimeControl", err.Error())
		}
		rec.TimeControl = tc
	}
	if s := d.reqString("movetext"); s != nil {
		rec.Movetext = *s
		if *s == "" {
			d.setErr("movetext", "empty")
		}
	}
	if rec.Result != nil && !domain.IsResultToken(*rec.Result) {
		d.setErr("Result", fmt.Sprintf("not a result token: %q", *rec.Result))
	}

	if d.err != nil {
		return nil, d.err
	}
	return rec, nil
}

type rowDecoder struct {
	shard string
	row   hubfast.Row
	err   *domain.RecordSchemaError
}

func (d *rowDecoder) setErr(field, reason string) {
	if d.err == nil {
		d.err = &domain.RecordSchemaError{Shard: d.shard, Row: d.row.Idx, Field: field, Reason: reason}
	}
}

func (d *rowDecoder) reqString(name string) *string {
	v, ok := d.row.Fields[name]
	if !ok || v == nil {
		d.setErr(name, "missing required field")
		return nil
	}
	s, ok := v.(string)
	if !ok {
		d.setErr(name, fmt.Sprintf("expected string, got %T", v))
		return nil
	}
	return &s
}

func (d *rowDecoder) optString(name string) *string {
	v, ok := d.row.Fields[name]
	if !ok || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		d.setErr(name, fmt.Sprintf("expected string, got %T", v))
		return nil
	}
	return &s
}

func (d *rowDecoder) optInt(name string) *int {
	v, ok := d.row.Fields[name]
	if !ok || v == nil {
		return nil
	}
	switch n := v.(type) {
	case float64: // JSON numbers decode as float64
		if n != math.Trunc(n) {
			d.setErr(name, fmt.Sprintf("expected integer, got %v", n))
			return nil
		}
		i := int(n)
		return &i
	case int:
		i := n
		return &i
	default:
		d.setErr(name, fmt.Sprintf("expected integer, got %T", v))
		return nil
	}
}
