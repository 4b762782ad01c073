package domain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWeights_EmptyPathIsDefault(t *testing.T) {
	w, err := LoadWeights("")
	require.NoError(t, err)
	assert.Equal(t, DefaultWeights(), w)
}

func TestLoadWeights_File(t *testing.T) {
	p := filepath.Join(t.TempDir(), "weights.yaml")
	require.NoError(t, os.WriteFile(p, []byte("weights:\n  manager: 0.8\n  staff: 0.4\n"), 0o600))

	w, err := LoadWeights(p)
	require.NoError(t, err)
	assert.Equal(t, 1.0, w.For(RoleSuperadmin), "unlisted roles keep defaults")
	assert.Equal(t, 0.8, w.For(RoleManager))
	assert.Equal(t, 0.4, w.For(RoleStaff))
}

func TestLoadWeights_MissingFile(t *testing.T) {
	_, err := LoadWeights(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParseWeights_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown role":  "weights:\n  intern: 0.1\n",
		"unknown field": "weight:\n  staff: 0.5\n",
		"negative":      "weights:\n  staff: -1\n",
		"not yaml":      "weights: [\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseWeights([]byte(in))
			assert.Error(t, err)
		})
	}
}

func TestParseWeights_EmptyDocument(t *testing.T) {
	w, err := ParseWeights(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultWeights(), w)
}

func TestWeightsFor_FallsBackToStaff(t *testing.T) {
	w := Weights{RoleStaff: 0.3}
	assert.Equal(t, 0.3, w.For(RoleManager))
	assert.Equal(t, 0.3, w.For(Role("ghost")))
}

func TestWeightsValidate(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())
	assert.Error(t, Weights{RoleManager: 0.7}.Validate())
	assert.Error(t, Weights{RoleStaff: 0.5, Role("x"): 1}.Validate())
}
