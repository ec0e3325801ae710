// Package features turns sampled game records into flat rows for the
// Elo-regression stage downstream: the opening plies in SAN and UCI, the
// rating targets, and a few auxiliary predictors. No modeling happens
// here.
package features

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	nchess "github.com/corentings/chess/v2"

	"github.com/mbeaumont/elostream/internal/domain"
)

// ErrNoMoves marks a record whose movetext is a bare result token, e.g. an
// abandoned game. Such records carry no opening signal and are dropped.
var ErrNoMoves = errors.New("features: record has no moves")

// Row is one engineered feature row.
type Row struct {
	Site    string
	ECO     string
	Opening string

	// OpeningSAN/OpeningUCI are the first plies of the game, capped by
	// the extractor's maxPly, validated by replaying them on a board.
	OpeningSAN []string
	OpeningUCI []string

	// Plies is len(OpeningSAN); TotalPlies counts the whole game.
	Plies      int
	TotalPlies int

	WhiteElo *int
	BlackElo *int

	TimeControlBase int
	TimeControlInc  int
	Termination     domain.Termination
	Result          string
}

// Extract replays the first maxPly half-moves of rec and builds its
// feature row. Invalid SAN is an error, never a silent truncation.
func Extract(rec *domain.GameRecord, maxPly int) (*Row, error) {
	if rec == nil {
		return nil, fmt.Errorf("features: nil record")
	}
	if maxPly <= 0 {
		return nil, fmt.Errorf("features: maxPly must be positive, got %d", maxPly)
	}
	if !rec.HasMoves() {
		return nil, ErrNoMoves
	}

	tokens := sanTokens(rec.Movetext)
	if len(tokens) == 0 {
		return nil, ErrNoMoves
	}

	row := &Row{
		TotalPlies:      len(tokens),
		WhiteElo:        rec.WhiteElo,
		BlackElo:        rec.BlackElo,
		TimeControlBase: rec.TimeControl.BaseSec,
		TimeControlInc:  rec.TimeControl.IncSec,
		Termination:     rec.Termination,
	}
	if rec.Site != nil {
		row.Site = *rec.Site
	}
	if rec.ECO != nil {
		row.ECO = *rec.ECO
	}
	if rec.Opening != nil {
		row.Opening = *rec.Opening
	}
	if rec.Result != nil {
		row.Result = *rec.Result
	}

	game := nchess.NewGame()
	n := maxPly
	if n > len(tokens) {
		n = len(tokens)
	}
	for i := 0; i < n; i++ {
		pos := game.Position()
		if err := game.PushNotationMove(tokens[i], nchess.AlgebraicNotation{}, nil); err != nil {
			return nil, fmt.Errorf("features: ply %d %q: %w", i+1, tokens[i], err)
		}
		mv := lastMove(game)
		if mv == nil {
			return nil, fmt.Errorf("features: ply %d %q: move not recorded", i+1, tokens[i])
		}
		row.OpeningSAN = append(row.OpeningSAN, tokens[i])
		row.OpeningUCI = append(row.OpeningUCI, nchess.UCINotation{}.Encode(pos, mv))
	}
	row.Plies = len(row.OpeningSAN)
	return row, nil
}

// sanTokens strips move numbers and the trailing result token out of
// numbered movetext, leaving bare SAN half-moves.
func sanTokens(movetext string) []string {
	fields := strings.FieldsFunc(movetext, func(r rune) bool {
		return r == ' ' || r == '.'
	})
	var out []string
	for _, tk := range fields {
		if domain.IsResultToken(tk) {
			break
		}
		if _, err := strconv.Atoi(tk); err == nil {
			continue // move number
		}
		out = append(out, tk)
	}
	return out
}

func lastMove(game *nchess.Game) *nchess.Move {
	moves := game.Moves()
	if len(moves) == 0 {
		return nil
	}
	return moves[len(moves)-1]
}
