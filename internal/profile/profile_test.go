package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-echelle/spectra/combine"
	"github.com/cwbudde/algo-echelle/spectra/echelle"
)

var neidNames = []string{
	"PRIMARY",
	"SCIFLUX", "SKYFLUX", "CALFLUX",
	"SCIVAR", "SKYVAR", "CALVAR",
	"SCIWAVE", "SKYWAVE", "CALWAVE",
	"SCIBLAZE", "SKYBLAZE", "CALBLAZE", "TELLURIC",
}

func TestBuiltin(t *testing.T) {
	for _, name := range []string{"", "generic", "NEID", "neid"} {
		p, err := Builtin(name)
		require.NoError(t, err, name)
		require.NoError(t, p.Validate(), name)
	}

	_, err := Builtin("harps")
	assert.ErrorIs(t, err, ErrUnknownProfile)
}

func TestNEIDResolve(t *testing.T) {
	r, err := NEID().Resolve(neidNames)
	require.NoError(t, err)

	require.Len(t, r.Aligned, 3)
	assert.Equal(t, echelle.Channel{Name: "sci", Flux: "SCIFLUX", Variance: "SCIVAR", Wavelength: "SCIWAVE"}, r.Aligned[0])
	assert.Equal(t, []string{"SCIWAVE", "SKYWAVE", "CALWAVE"}, r.Wavelengths)
	assert.Equal(t, []string{"SCIBLAZE", "CALBLAZE"}, r.Plan.Average)
	assert.Equal(t, combine.Pair{Flux: "CALFLUX", Variance: "CALVAR"}, r.Plan.Pairs[2])
}

func TestGenericResolve(t *testing.T) {
	r, err := Generic().Resolve([]string{"HDU0", "EXTRA"})
	require.NoError(t, err)

	assert.Empty(t, r.Aligned)
	assert.Equal(t, []combine.Pair{{Flux: "HDU0"}}, r.Plan.Pairs)
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name     string
		channels []Channel
		average  []string
		target   error
	}{
		{
			name:     "index out of range",
			channels: []Channel{{Name: "sci", Flux: "#20"}},
			target:   echelle.ErrMissingExtension,
		},
		{
			name:     "unknown name",
			channels: []Channel{{Name: "sci", Flux: "NOPE"}},
			target:   echelle.ErrMissingExtension,
		},
		{
			name:     "duplicate role",
			channels: []Channel{{Name: "sci", Flux: "SCIFLUX", Variance: "SCIVAR"}},
			average:  []string{"#4"},
			target:   combine.ErrDuplicateRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Default()
			p.Channels = tt.channels
			p.Average = tt.average
			_, err := p.Resolve(neidNames)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestValidate(t *testing.T) {
	p := Generic()
	p.Missing = "ignore"
	assert.ErrorIs(t, p.Validate(), ErrInvalid)

	p = Generic()
	p.Channels = []Channel{{Name: "sci", Flux: "#1", Wavelength: "#7"}}
	assert.ErrorIs(t, p.Validate(), ErrInvalid, "wavelength without variance")

	p = NEID()
	p.Barycentric.Step = 0
	assert.ErrorIs(t, p.Validate(), ErrInvalid)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, ext := range []string{".yaml", ".toml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "neid"+ext)
			want := NEID()
			want.Floor = 3500
			want.Missing = MissingFail

			require.NoError(t, want.Save(path))
			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harps.yml")
	doc := "align: true\nchannels:\n  - {name: sci, flux: FLUX, variance: VAR, wavelength: WAVE}\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "harps", p.Name)
	assert.Equal(t, echelle.DefaultWavelengthFloor, p.Floor)
	assert.Equal(t, MissingPlaceholder, p.Missing)
	assert.True(t, p.Align)
	assert.Nil(t, p.Barycentric)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "absent.yaml"))
	assert.Error(t, err)

	ini := filepath.Join(dir, "p.ini")
	require.NoError(t, os.WriteFile(ini, []byte("x=1"), 0o644))
	_, err = Load(ini)
	assert.ErrorIs(t, err, ErrUnknownFormat)

	bad := filepath.Join(dir, "p.toml")
	require.NoError(t, os.WriteFile(bad, []byte("missing = \"maybe\"\n[[channels]]\nname = \"a\"\nflux = \"#0\"\n"), 0o644))
	_, err = Load(bad)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestFromExtensions(t *testing.T) {
	p := Generic()
	require.NoError(t, p.FromExtensions([]string{"#1", "#2"}, []string{"#4", "#5"}, []string{"#7", "#8"}))
	require.Len(t, p.Channels, 2)
	assert.Equal(t, Channel{Name: "ch1", Flux: "#2", Variance: "#5", Wavelength: "#8"}, p.Channels[1])

	assert.ErrorIs(t, p.FromExtensions([]string{"#1"}, []string{"#4", "#5"}, nil), ErrInvalid)
	assert.ErrorIs(t, p.FromExtensions(nil, nil, nil), ErrInvalid)
}

func TestBarycentricHeader(t *testing.T) {
	b := NEID().Barycentric
	name, err := b.ResolveHeader(neidNames)
	require.NoError(t, err)
	assert.Empty(t, name)

	b.Header = "#0"
	name, err = b.ResolveHeader(neidNames)
	require.NoError(t, err)
	assert.Equal(t, "PRIMARY", name)
}
