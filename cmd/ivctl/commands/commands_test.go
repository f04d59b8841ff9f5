package commands

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandCollectedData(t *testing.T) {
	tests := map[string]struct {
		files   map[string]string
		file    string
		specs   []string
		expData map[string]any
		expErr  bool
	}{
		"Only inline specs should be used without data file": {
			specs:   []string{"panels=3"},
			expData: map[string]any{"panels": 3},
		},
		"Inline specs should override the data file": {
			files:   map[string]string{"/work/data.yaml": "panels: 2\nfilm: gloss\n"},
			file:    "/work/data.yaml",
			specs:   []string{"panels=5"},
			expData: map[string]any{"panels": 5, "film": "gloss"},
		},
		"A missing data file should fail": {
			file:   "/work/missing.yaml",
			expErr: true,
		},
		"An invalid inline spec should fail": {
			specs:  []string{"=3"},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			memFS := afero.NewMemMapFs()
			for path, content := range test.files {
				require.NoError(t, afero.WriteFile(memFS, path, []byte(content), 0o644))
			}
			root := &RootCommand{FS: memFS}

			data, err := root.collectedData(test.file, test.specs)

			if test.expErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expData, data)
		})
	}
}
