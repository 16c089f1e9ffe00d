// Package fitsfile reads multi-extension FITS files into float64 arrays and
// writes them back.
//
// Every image HDU becomes an [HDU] whose Data is a 2-D [echelle.Array]:
// NAXIS1 is the column count and all remaining axes are folded into rows.
// Integer data are scaled with BSCALE and BZERO. Table HDUs are not
// supported and are reported in [File.Skipped].
package fitsfile

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/astrogo/fitsio"

	"github.com/cwbudde/algo-echelle/spectra/echelle"
)

// ErrUnsupportedBitpix indicates an image with an unknown BITPIX.
var ErrUnsupportedBitpix = errors.New("fitsfile: unsupported BITPIX")

// HDU is one image header/data unit.
type HDU struct {
	// Name is the EXTNAME, or "HDU<i>" when the unit has none.
	Name   string
	Header Header
	Data   echelle.Array
}

// File is the content of a FITS file.
type File struct {
	Path string
	HDUs []HDU
	// Skipped lists the names of non-image HDUs that were not read.
	Skipped []string
	// Renamed lists the placeholder names given to HDUs whose EXTNAME
	// repeats an earlier one.
	Renamed []string
}

// Names returns the HDU names in file order.
func (f *File) Names() []string {
	out := make([]string, len(f.HDUs))
	for i, h := range f.HDUs {
		out[i] = h.Name
	}
	return out
}

// Lookup returns the HDU called name. An empty name selects the primary HDU.
func (f *File) Lookup(name string) (*HDU, bool) {
	if len(f.HDUs) == 0 {
		return nil, false
	}
	if name == "" {
		return &f.HDUs[0], true
	}
	for i := range f.HDUs {
		if f.HDUs[i].Name == name {
			return &f.HDUs[i], true
		}
	}
	return nil, false
}

// Placeholder returns the positional name of the i-th HDU.
func Placeholder(i int) string {
	return "HDU" + strconv.Itoa(i)
}

// Read loads every HDU of the file at path. The file is closed before Read
// returns.
func Read(path string) (*File, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fitsfile: %w", err)
	}
	defer r.Close()

	f, err := fitsio.Open(r)
	if err != nil {
		return nil, fmt.Errorf("fitsfile: %s: %w", path, err)
	}
	defer f.Close()

	out := &File{Path: path}
	seen := make(map[string]bool)
	for i, hdu := range f.HDUs() {
		hdr := convertHeader(hdu.Header())
		name, ok := hdr.String("EXTNAME")
		switch {
		case !ok || name == "":
			name = Placeholder(i)
		case seen[name]:
			name = Placeholder(i)
			out.Renamed = append(out.Renamed, name)
		}
		seen[name] = true

		img, ok := hdu.(fitsio.Image)
		if !ok {
			out.Skipped = append(out.Skipped, name)
			continue
		}
		data, err := readImage(img, &hdr)
		if err != nil {
			return nil, fmt.Errorf("fitsfile: %s: HDU %d (%s): %w", path, i, name, err)
		}
		out.HDUs = append(out.HDUs, HDU{Name: name, Header: hdr, Data: data})
	}
	return out, nil
}

func convertHeader(h *fitsio.Header) Header {
	keys := h.Keys()
	out := Header{Cards: make([]Card, 0, len(keys))}
	for i := range keys {
		c := h.Card(i)
		if commentary(c.Name) {
			text, _ := c.Value.(string)
			if text == "" {
				text = c.Comment
			}
			out.Cards = append(out.Cards, Card{Key: c.Name, Value: strings.TrimSpace(text)})
			continue
		}
		out.Cards = append(out.Cards, Card{Key: c.Name, Value: c.Value, Comment: c.Comment})
	}
	return out
}

func readImage(img fitsio.Image, hdr *Header) (echelle.Array, error) {
	axes := img.Header().Axes()
	if len(axes) == 0 {
		return echelle.Array{}, nil
	}
	cols := axes[0]
	rows := 1
	for _, n := range axes[1:] {
		rows *= n
	}
	if cols*rows == 0 {
		return echelle.Array{}, nil
	}

	values, err := readValues(img)
	if err != nil {
		return echelle.Array{}, err
	}
	if len(values) != cols*rows {
		return echelle.Array{}, fmt.Errorf("%d values for %dx%d image: %w", len(values), rows, cols, echelle.ErrShapeMismatch)
	}

	scale, ok := hdr.Float("BSCALE")
	if !ok {
		scale = 1
	}
	zero, _ := hdr.Float("BZERO")
	if scale != 1 || zero != 0 {
		for i, v := range values {
			values[i] = v*scale + zero
		}
	}
	return echelle.Array{Rows: rows, Cols: cols, Data: values}, nil
}

func readValues(img fitsio.Image) ([]float64, error) {
	switch bitpix := img.Header().Bitpix(); bitpix {
	case 8:
		var raw []byte
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		return widen(raw), nil
	case 16:
		var raw []int16
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		return widen(raw), nil
	case 32:
		var raw []int32
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		return widen(raw), nil
	case 64:
		var raw []int64
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		return widen(raw), nil
	case -32:
		var raw []float32
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		return widen(raw), nil
	case -64:
		var raw []float64
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitpix, bitpix)
	}
}

func widen[T byte | int16 | int32 | int64 | float32](raw []T) []float64 {
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = float64(v)
	}
	return out
}

// Write stores hdus at path as float64 images. The first HDU becomes the
// primary unit. Structural keywords are regenerated, EXTNAME is written for
// every HDU whose name is not a positional placeholder, and the file is
// written to a temporary sibling and renamed into place, so path is never
// left half-written.
func Write(path string, hdus []HDU) (err error) {
	if len(hdus) == 0 {
		return fmt.Errorf("fitsfile: %s: no HDUs to write", path)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("fitsfile: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	f, err := fitsio.Create(tmp)
	if err != nil {
		return fmt.Errorf("fitsfile: %s: %w", path, err)
	}
	for i, h := range hdus {
		if err := writeHDU(f, i, h); err != nil {
			f.Close()
			return fmt.Errorf("fitsfile: %s: HDU %d (%s): %w", path, i, h.Name, err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("fitsfile: %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("fitsfile: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("fitsfile: %w", err)
	}
	return nil
}

func writeHDU(f *fitsio.File, i int, h HDU) error {
	var axes []int
	if !h.Data.Empty() {
		axes = []int{h.Data.Cols, h.Data.Rows}
	}
	img := fitsio.NewImage(-64, axes)
	defer img.Close()

	var cards []fitsio.Card
	if h.Name != "" && h.Name != Placeholder(i) {
		cards = append(cards, fitsio.Card{Name: "EXTNAME", Value: h.Name})
	}
	seen := make(map[string]bool)
	for _, c := range h.Header.Cards {
		if structural(c.Key) {
			continue
		}
		if commentary(c.Key) {
			text, _ := c.Value.(string)
			cards = append(cards, fitsio.Card{Name: c.Key, Comment: text})
			continue
		}
		if seen[c.Key] {
			continue
		}
		seen[c.Key] = true
		cards = append(cards, fitsio.Card{Name: c.Key, Value: sanitize(c.Value), Comment: c.Comment})
	}
	if err := img.Header().Append(cards...); err != nil {
		return err
	}

	if len(axes) > 0 {
		data := h.Data.Data
		if err := img.Write(&data); err != nil {
			return err
		}
	}
	return f.Write(img)
}

// sanitize replaces values FITS cannot represent in a header.
func sanitize(v any) any {
	if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return v
}
