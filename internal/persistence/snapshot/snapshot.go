// Package snapshot encodes one account's farm as a zstd-compressed gob blob
// with a one-line JSON header in front, so a snapshot's identity is readable
// with zstdcat without decoding the body.
package snapshot

import (
	"bufio"
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"farmgrid.app/internal/sim/world"
)

type Header struct {
	Version   int    `json:"version"`
	AccountID string `json:"account_id"`
	Day       int    `json:"day"`
}

type FarmV1 struct {
	Header Header

	Seed int64
	Cols int
	Rows int

	// CatalogDigest pins the item set the farm was saved under; a mismatch
	// on load is logged but not fatal.
	CatalogDigest string

	Cells     []CellV1
	Stats     StatsV1
	Inventory map[string]int
}

type CellV1 struct {
	Terrain     uint8
	Status      string
	SeedID      string
	DaysGrowing int
	Watered     bool
	Variant     uint8
}

type StatsV1 struct {
	Coins     int
	Energy    int
	MaxEnergy int
	Day       int
	Exp       int
}

// Capture freezes a world into its persisted form.
func Capture(accountID string, seed int64, w *world.World, catalogDigest string) FarmV1 {
	snap := FarmV1{
		Header:        Header{Version: 1, AccountID: accountID, Day: w.Stats.Day},
		Seed:          seed,
		Cols:          w.Grid.Cols,
		Rows:          w.Grid.Rows,
		CatalogDigest: catalogDigest,
		Cells:         make([]CellV1, len(w.Grid.Cells)),
		Stats: StatsV1{
			Coins:     w.Stats.Coins,
			Energy:    w.Stats.Energy,
			MaxEnergy: w.Stats.MaxEnergy,
			Day:       w.Stats.Day,
			Exp:       w.Stats.Exp,
		},
		Inventory: map[string]int{},
	}
	for i, c := range w.Grid.Cells {
		snap.Cells[i] = CellV1{
			Terrain:     uint8(c.Terrain),
			Status:      string(c.Status),
			SeedID:      c.SeedID,
			DaysGrowing: c.DaysGrowing,
			Watered:     c.Watered,
			Variant:     c.Variant,
		}
	}
	for id, n := range w.Inv {
		snap.Inventory[id] = n
	}
	return snap
}

// Grid rebuilds the grid portion of the snapshot.
func (s FarmV1) Grid() (*world.Grid, error) {
	if s.Cols <= 0 || s.Rows <= 0 || len(s.Cells) != s.Cols*s.Rows {
		return nil, fmt.Errorf("snapshot grid %dx%d with %d cells", s.Cols, s.Rows, len(s.Cells))
	}
	g := world.NewGrid(s.Cols, s.Rows)
	for i, c := range s.Cells {
		g.Cells[i] = world.Cell{
			Terrain:     world.Terrain(c.Terrain),
			Status:      world.CropStatus(c.Status),
			SeedID:      c.SeedID,
			DaysGrowing: c.DaysGrowing,
			Watered:     c.Watered,
			Variant:     c.Variant,
		}
	}
	return g, nil
}

func (s FarmV1) WorldStats() world.Stats {
	return world.Stats{
		Coins:     s.Stats.Coins,
		Energy:    s.Stats.Energy,
		MaxEnergy: s.Stats.MaxEnergy,
		Day:       s.Stats.Day,
		Exp:       s.Stats.Exp,
	}
}

func Marshal(snap FarmV1) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func Unmarshal(b []byte) (FarmV1, error) {
	return decode(bytes.NewReader(b))
}

func WriteFile(path string, snap FarmV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	return encode(f, snap)
}

func ReadFile(path string) (FarmV1, error) {
	f, err := os.Open(path)
	if err != nil {
		return FarmV1{}, err
	}
	defer f.Close()
	return decode(f)
}

func encode(w io.Writer, snap FarmV1) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		_ = enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		_ = enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		_ = enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	// A swallowed flush or close error here would let WriteFile report
	// success on a truncated blob.
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

func decode(r io.Reader) (FarmV1, error) {
	var snap FarmV1
	dec, err := zstd.NewReader(r)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// Header line is advisory; gob carries it too.
	_, _ = br.ReadBytes('\n')

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}
