package main

import (
	"sync"
	"time"

	"github.com/barkimedes/go-deepcopy"
)

// Cell is the displayed state of a zone.
type Cell struct {
	Zone   int
	Row    int
	Column int
	Color  Color
	Border float64
	Line   bool
}

type BoardMessage struct {
	Time time.Time
	Text string
}

type BoardState struct {
	Cells    []Cell
	Messages []BoardMessage
}

// Board is a View keeping the zone grid and the last printed messages.
type Board struct {
	mx          sync.RWMutex
	columns     int
	maxMessages int
	state       BoardState
}

const DefaultBoardMessages = 100

// GridPosition returns the row and column of a zone on a grid of the
// given width. Zones are numbered from 1, row by row.
func GridPosition(zone, columns int) (int, int) {
	return (zone - 1) / columns, (zone - 1) % columns
}

func NewBoard(zones, columns, maxMessages int) *Board {
	b := &Board{
		columns:     columns,
		maxMessages: maxMessages,
		state: BoardState{
			Cells: make([]Cell, zones),
		},
	}
	for i := range b.state.Cells {
		row, column := GridPosition(i+1, columns)
		b.state.Cells[i] = Cell{Zone: i + 1, Row: row, Column: column, Color: Black}
	}
	return b
}

func (b *Board) cell(zone int) *Cell {
	if zone < 1 || zone > len(b.state.Cells) {
		return nil
	}
	return &b.state.Cells[zone-1]
}

func (b *Board) Print(message string) {
	b.mx.Lock()
	defer b.mx.Unlock()
	b.state.Messages = append(b.state.Messages, BoardMessage{Time: time.Now(), Text: message})
	if len(b.state.Messages) > b.maxMessages {
		b.state.Messages = b.state.Messages[len(b.state.Messages)-b.maxMessages:]
	}
}

func (b *Board) ChangeZoneColor(zone int, color Color) {
	b.mx.Lock()
	defer b.mx.Unlock()
	if c := b.cell(zone); c != nil {
		c.Color = color
	}
}

func (b *Board) ChangeZoneBorder(zone int, width float64) {
	b.mx.Lock()
	defer b.mx.Unlock()
	if c := b.cell(zone); c != nil {
		c.Border = width
	}
}

func (b *Board) ShowLineMarker(zone int) {
	b.mx.Lock()
	defer b.mx.Unlock()
	if c := b.cell(zone); c != nil {
		c.Line = true
	}
}

func (b *Board) HideLineMarker(zone int) {
	b.mx.Lock()
	defer b.mx.Unlock()
	if c := b.cell(zone); c != nil {
		c.Line = false
	}
}

// Snapshot returns a copy of the board.
func (b *Board) Snapshot() BoardState {
	b.mx.RLock()
	defer b.mx.RUnlock()
	// deepcopy skips unexported fields, and time.Time only has those.
	return BoardState{
		Cells:    deepcopy.MustAnything(b.state.Cells).([]Cell),
		Messages: append([]BoardMessage(nil), b.state.Messages...),
	}
}
