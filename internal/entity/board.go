package entity

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/trainboard/othello-backend/internal/apperror"
)

const (
	BoardSize = 8

	ColorBlack = "black"
	ColorWhite = "white"

	EmptyCell = ""
)

var (
	ErrInvalidCell = errors.New("invalid cell index")

	// the 8 compass directions a capture run can follow.
	directions = [8][2]int{
		{-1, -1}, {-1, 0}, {-1, 1},
		{0, -1}, {0, 1},
		{1, -1}, {1, 0}, {1, 1},
	}
)

// Board is the 8x8 grid; each cell holds ColorBlack, ColorWhite or EmptyCell.
type Board [BoardSize][BoardSize]string

// NewBoard returns a board with the standard opening layout: the four center
// cells occupied, everything else empty.
func NewBoard() Board {
	var board Board
	board[3][3] = ColorWhite
	board[3][4] = ColorBlack
	board[4][3] = ColorBlack
	board[4][4] = ColorWhite

	return board
}

// Opponent returns the other player's color.
func Opponent(color string) string {
	if color == ColorBlack {
		return ColorWhite
	}

	return ColorBlack
}

// LegalCaptures returns every opposing disk that placing color at (r, c) would
// flip. For each direction it walks outward over opposing disks and keeps the
// run only when it ends on one of the mover's own disks in bounds.
func (that *Board) LegalCaptures(r, c int, color string) [][2]int {
	opponent := Opponent(color)

	var flipped [][2]int

	for _, dir := range directions {
		var run [][2]int

		cr, cc := r+dir[0], c+dir[1]
		for inBounds(cr, cc) && that[cr][cc] == opponent {
			run = append(run, [2]int{cr, cc})
			cr += dir[0]
			cc += dir[1]
		}

		if len(run) > 0 && inBounds(cr, cc) && that[cr][cc] == color {
			flipped = append(flipped, run...)
		}
	}

	return flipped
}

// ApplyMove places color at (r, c) and flips every captured disk. A move onto
// an occupied cell or a move that captures nothing is rejected and leaves the
// board unchanged.
func (that *Board) ApplyMove(r, c int, color string) ([][2]int, error) {
	if !inBounds(r, c) {
		return nil, fmt.Errorf("%w: (%d, %d)", ErrInvalidCell, r, c)
	}

	if that[r][c] != EmptyCell {
		return nil, apperror.ErrCellOccupied
	}

	flipped := that.LegalCaptures(r, c, color)
	if len(flipped) == 0 {
		return nil, apperror.ErrNoCaptures
	}

	that[r][c] = color
	for _, cell := range flipped {
		that[cell[0]][cell[1]] = color
	}

	return flipped, nil
}

// MarshalJSON encodes empty cells as null, matching the wire format the
// browser client expects.
func (that Board) MarshalJSON() ([]byte, error) {
	grid := [BoardSize][BoardSize]*string{}
	for r := range that {
		for c := range that[r] {
			if that[r][c] != EmptyCell {
				cell := that[r][c]
				grid[r][c] = &cell
			}
		}
	}

	data, err := json.Marshal(grid)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal board: %w", err)
	}

	return data, nil
}

// UnmarshalJSON is the inverse of MarshalJSON; null cells become EmptyCell.
func (that *Board) UnmarshalJSON(data []byte) error {
	var grid [BoardSize][BoardSize]*string
	if err := json.Unmarshal(data, &grid); err != nil {
		return fmt.Errorf("failed to unmarshal board: %w", err)
	}

	for r := range grid {
		for c := range grid[r] {
			if grid[r][c] != nil {
				that[r][c] = *grid[r][c]
			} else {
				that[r][c] = EmptyCell
			}
		}
	}

	return nil
}

func inBounds(r, c int) bool {
	return r >= 0 && r < BoardSize && c >= 0 && c < BoardSize
}
