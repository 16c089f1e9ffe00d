// Package profile describes how the extensions of an instrument's files map
// onto spectral channels, and how a combination run treats them.
package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-echelle/spectra/barycorr"
	"github.com/cwbudde/algo-echelle/spectra/combine"
	"github.com/cwbudde/algo-echelle/spectra/echelle"
)

var (
	// ErrUnknownProfile indicates a built-in profile name that does not exist.
	ErrUnknownProfile = errors.New("profile: unknown profile")
	// ErrUnknownFormat indicates a profile file with an unsupported extension.
	ErrUnknownFormat = errors.New("profile: unknown file format")
	// ErrInvalid indicates a profile that fails validation.
	ErrInvalid = errors.New("profile: invalid")
)

// MissingPolicy decides what happens when a later file lacks an extension
// present in the first file.
type MissingPolicy string

const (
	// MissingPlaceholder substitutes a NaN array of the first file's shape.
	MissingPlaceholder MissingPolicy = "placeholder"
	// MissingFail aborts the run.
	MissingFail MissingPolicy = "fail"
)

// Channel names the extensions of one fiber. References are extension
// names or "#<index>" positions in the first input file. Variance and
// Wavelength are optional; a channel is aligned only when it has both.
type Channel struct {
	Name       string `yaml:"name" toml:"name" validate:"required"`
	Flux       string `yaml:"flux" toml:"flux" validate:"required"`
	Variance   string `yaml:"variance,omitempty" toml:"variance,omitempty" validate:"required_with=Wavelength"`
	Wavelength string `yaml:"wavelength,omitempty" toml:"wavelength,omitempty"`
}

// Barycentric configures the per-order redshift correction of wavelengths.
type Barycentric struct {
	Keyword    string `yaml:"keyword" toml:"keyword" validate:"required,contains=%"`
	FirstOrder int    `yaml:"first_order" toml:"first_order" validate:"gte=0"`
	Step       int    `yaml:"step" toml:"step" validate:"ne=0"`
	// Header is the extension whose header holds the factors. Empty means
	// the primary HDU.
	Header string `yaml:"header,omitempty" toml:"header,omitempty"`
}

// Scheme converts b to the keyword scheme used by barycorr.
func (b Barycentric) Scheme() barycorr.Scheme {
	return barycorr.Scheme{Keyword: b.Keyword, FirstOrder: b.FirstOrder, Step: b.Step}
}

// Profile is a complete combination recipe.
type Profile struct {
	Name        string        `yaml:"name" toml:"name" validate:"required"`
	Align       bool          `yaml:"align" toml:"align"`
	Floor       float64       `yaml:"floor" toml:"floor"`
	Missing     MissingPolicy `yaml:"missing" toml:"missing" validate:"oneof=placeholder fail"`
	Channels    []Channel     `yaml:"channels" toml:"channels" validate:"required,dive"`
	Average     []string      `yaml:"average,omitempty" toml:"average,omitempty" validate:"dive,required"`
	Barycentric *Barycentric  `yaml:"barycentric,omitempty" toml:"barycentric,omitempty"`
}

// Default returns the settings every loaded profile starts from.
func Default() *Profile {
	return &Profile{
		Name:    "generic",
		Floor:   echelle.DefaultWavelengthFloor,
		Missing: MissingPlaceholder,
	}
}

// Validate checks the struct tags of p.
func (p *Profile) Validate() error {
	validate := validator.New()
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalid, p.Name, err)
	}
	return nil
}

// Load reads a profile from a .yaml, .yml or .toml file. Fields absent from
// the file keep their Default values.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("profile: failed to read %s: %w", path, err)
	}

	p := Default()
	p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, p)
	case ".toml":
		err = toml.Unmarshal(data, p)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("profile: failed to parse %s: %w", path, err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Save writes p to path, choosing the encoding from the file extension.
func (p *Profile) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(p)
	case ".toml":
		data, err = toml.Marshal(p)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return fmt.Errorf("profile: failed to marshal %q: %w", p.Name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("profile: failed to write %s: %w", path, err)
	}
	return nil
}

// Builtin returns a copy of the named built-in profile. Names are matched
// case-insensitively.
func Builtin(name string) (*Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "generic":
		return Generic(), nil
	case "neid":
		return NEID(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
}

// Generic combines the primary HDU only, without variance or alignment.
func Generic() *Profile {
	p := Default()
	p.Channels = []Channel{{Name: "primary", Flux: "#0"}}
	return p
}

// NEID is the profile for NEID L2 spectra: three fibers whose flux,
// variance and wavelength extensions sit at positions 1-3, 4-6 and 7-9, and
// the blaze extensions averaged without variance.
func NEID() *Profile {
	p := Default()
	p.Name = "NEID"
	p.Align = true
	p.Channels = []Channel{
		{Name: "sci", Flux: "#1", Variance: "#4", Wavelength: "#7"},
		{Name: "sky", Flux: "#2", Variance: "#5", Wavelength: "#8"},
		{Name: "cal", Flux: "#3", Variance: "#6", Wavelength: "#9"},
	}
	p.Average = []string{"#10", "#12"}
	p.Barycentric = &Barycentric{
		Keyword:    barycorr.NEID.Keyword,
		FirstOrder: barycorr.NEID.FirstOrder,
		Step:       barycorr.NEID.Step,
	}
	return p
}

// FromExtensions replaces the channels of p with one channel per flux
// reference. variance and wavelength may be empty or match flux in length.
func (p *Profile) FromExtensions(flux, variance, wavelength []string) error {
	if len(flux) == 0 {
		return fmt.Errorf("%w: no flux extensions", ErrInvalid)
	}
	if len(variance) != 0 && len(variance) != len(flux) {
		return fmt.Errorf("%w: %d variance extensions for %d flux extensions", ErrInvalid, len(variance), len(flux))
	}
	if len(wavelength) != 0 && len(wavelength) != len(flux) {
		return fmt.Errorf("%w: %d wavelength extensions for %d flux extensions", ErrInvalid, len(wavelength), len(flux))
	}

	p.Channels = p.Channels[:0]
	for i, f := range flux {
		ch := Channel{Name: "ch" + strconv.Itoa(i), Flux: f}
		if len(variance) > 0 {
			ch.Variance = variance[i]
		}
		if len(wavelength) > 0 {
			ch.Wavelength = wavelength[i]
		}
		p.Channels = append(p.Channels, ch)
	}
	return p.Validate()
}

// Resolved is a profile bound to the extension names of a concrete file.
type Resolved struct {
	// Aligned lists the channels that carry variance and wavelength.
	Aligned []echelle.Channel
	Plan    combine.Plan
	// Wavelengths lists every wavelength extension, in channel order.
	Wavelengths []string
}

// Resolve binds the references of p to names, the extension names of the
// first input file in order.
func (p *Profile) Resolve(names []string) (Resolved, error) {
	var r Resolved
	lookup := func(ref string) (string, error) {
		return resolveRef(ref, names)
	}

	for _, ch := range p.Channels {
		flux, err := lookup(ch.Flux)
		if err != nil {
			return Resolved{}, fmt.Errorf("profile: channel %q flux: %w", ch.Name, err)
		}
		pair := combine.Pair{Flux: flux}
		if ch.Variance != "" {
			if pair.Variance, err = lookup(ch.Variance); err != nil {
				return Resolved{}, fmt.Errorf("profile: channel %q variance: %w", ch.Name, err)
			}
		}
		r.Plan.Pairs = append(r.Plan.Pairs, pair)

		if ch.Wavelength == "" {
			continue
		}
		wave, err := lookup(ch.Wavelength)
		if err != nil {
			return Resolved{}, fmt.Errorf("profile: channel %q wavelength: %w", ch.Name, err)
		}
		r.Wavelengths = append(r.Wavelengths, wave)
		r.Aligned = append(r.Aligned, echelle.Channel{
			Name:       ch.Name,
			Flux:       pair.Flux,
			Variance:   pair.Variance,
			Wavelength: wave,
		})
	}

	for _, ref := range p.Average {
		name, err := lookup(ref)
		if err != nil {
			return Resolved{}, fmt.Errorf("profile: average: %w", err)
		}
		r.Plan.Average = append(r.Plan.Average, name)
	}

	if _, err := r.Plan.Roles(); err != nil {
		return Resolved{}, fmt.Errorf("profile: %q: %w", p.Name, err)
	}
	return r, nil
}

// ResolveHeader returns the extension name holding the barycentric
// factors, or "" for the primary HDU.
func (b Barycentric) ResolveHeader(names []string) (string, error) {
	if b.Header == "" {
		return "", nil
	}
	return resolveRef(b.Header, names)
}

func resolveRef(ref string, names []string) (string, error) {
	if idx, ok := strings.CutPrefix(ref, "#"); ok {
		i, err := strconv.Atoi(idx)
		if err != nil {
			return "", fmt.Errorf("reference %q: %w", ref, err)
		}
		if i < 0 || i >= len(names) {
			return "", fmt.Errorf("reference %q: file has %d extensions: %w", ref, len(names), echelle.ErrMissingExtension)
		}
		return names[i], nil
	}
	for _, n := range names {
		if n == ref {
			return ref, nil
		}
	}
	return "", fmt.Errorf("extension %q: %w", ref, echelle.ErrMissingExtension)
}
