package world

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/automoto/mapc/mapbin"
)

// Placement is a room's index in the room list and its world grid cell.
type Placement struct {
	Index int `json:"index"`
	X     int `json:"x"`
	Y     int `json:"y"`
}

// Placements is the JSON document the world processor writes and the room
// compiler reads. It is read-only once loaded and safe to share between
// concurrent compiles.
type Placements struct {
	Rooms map[string]Placement `json:"rooms"`
	List  []string             `json:"list"`
}

// Cell returns the grid cell of the named room.
func (p *Placements) Cell(room string) (mapbin.GridCell, error) {
	pl, ok := p.Rooms[room]
	if !ok {
		return mapbin.GridCell{}, fmt.Errorf("%w: could not find '%s' in world placements", mapbin.ErrLookup, room)
	}
	return mapbin.GridCell{X: pl.X, Y: pl.Y}, nil
}

// ReadPlacements decodes a placement document.
func ReadPlacements(r io.Reader) (*Placements, error) {
	var p Placements
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: decode placements: %v", mapbin.ErrFormat, err)
	}
	if p.Rooms == nil {
		return nil, fmt.Errorf("%w: placements have no \"rooms\" table", mapbin.ErrFormat)
	}
	return &p, nil
}

// WriteJSON writes the placement document, indented with two spaces.
func (l *Layout) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(l.Placements)
}

// WriteMatrix writes the room matrix: u16 width, u16 height, then one byte
// per cell.
func (l *Layout) WriteMatrix(w io.Writer) error {
	var hdr [4]byte
	binary.LittleEndian.PutUint16(hdr[0:], uint16(l.MatrixWidth))
	binary.LittleEndian.PutUint16(hdr[2:], uint16(l.MatrixHeight))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(l.Matrix)
	return err
}

// ReadRoomList reads one room name per line. Lines starting with '#' and
// blank lines are skipped.
func ReadRoomList(r io.Reader) ([]string, error) {
	var rooms []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		if name := strings.TrimSpace(line); name != "" {
			rooms = append(rooms, name)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read room list: %w", err)
	}
	return rooms, nil
}
