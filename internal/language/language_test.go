package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		lang    string
		want    string
		wantErr bool
	}{
		{name: "underscore name", lang: "hindi", want: "hi"},
		{name: "regional variant", lang: "english_us", want: "en"},
		{name: "iso code passthrough", lang: "fr", want: "fr"},
		{name: "mixed case name", lang: "Spanish_Mexico", want: "es"},
		{name: "auto passthrough", lang: "auto", want: "auto"},
		{name: "chinese simplified", lang: "chinese_simplified", want: "zh-CN"},
		{name: "unknown language", lang: "klingon", wantErr: true},
		{name: "empty string", lang: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.lang)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		langs     []string
		wantErr   bool
		errString string
	}{
		{name: "single valid", langs: []string{"hindi"}},
		{name: "multiple valid", langs: []string{"hindi", "spanish_mexico", "japanese"}},
		{name: "unsupported", langs: []string{"hindi", "klingon"}, wantErr: true, errString: "not supported"},
		{name: "duplicate name", langs: []string{"hindi", "hindi"}, wantErr: true, errString: "duplicate"},
		{name: "duplicate via alias", langs: []string{"spanish_mexico", "spanish_chile"}, wantErr: true, errString: "duplicate"},
		{name: "auto as target", langs: []string{"auto"}, wantErr: true, errString: "not a valid target"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.langs)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestRegionsCoverCodeTable(t *testing.T) {
	flat := Supported()

	// Every language listed in a region must resolve through the code table.
	for region, langs := range Regions() {
		for label, name := range langs {
			_, ok := flat[name]
			assert.True(t, ok, "region %s label %s references unknown language %s", region, label, name)
		}
	}
}

func TestNamesSorted(t *testing.T) {
	names := Names()
	require.NotEmpty(t, names)
	for i := 1; i < len(names); i++ {
		assert.LessOrEqual(t, names[i-1], names[i])
	}
}
