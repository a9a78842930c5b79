package i18n

import (
	"encoding/json"
	"sort"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keys(t *testing.T, file string) []string {
	t.Helper()
	data, err := embedded.ReadFile("locales/" + file)
	require.NoError(t, err)
	var m map[string]string
	require.NoError(t, json.Unmarshal(data, &m))
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestLocalesDefineTheSameMessages(t *testing.T) {
	assert.Equal(t, keys(t, "active.en.json"), keys(t, "active.id.json"))
}

func TestInitReportsBrokenLocale(t *testing.T) {
	t.Cleanup(func() { require.NoError(t, Init()) })
	fsys := fstest.MapFS{
		"locales/active.en.json": {Data: []byte(`{"CartEmpty": "your cart is empty"}`)},
		"locales/active.id.json": {Data: []byte(`{"CartEmpty": "keranjang`)},
	}

	err := initFrom(fsys, "locales")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "active.id.json")
	assert.Equal(t, "your cart is empty", Localize("en", "CartEmpty", "x", nil))
}

func TestLocalize(t *testing.T) {
	require.NoError(t, Init())

	tests := []struct {
		name, lang, id, def string
		data                map[string]interface{}
		want                string
	}{
		{"english default", "", "ProductNotFound", "x", nil, "product not found"},
		{"indonesian", "id-ID,id;q=0.9", "ProductNotFound", "x", nil, "produk tidak ditemukan"},
		{"template data", "en", "InsufficientStock", "x", map[string]interface{}{"Available": 2}, "only 2 left in stock"},
		{"unsupported language falls back", "fr", "CartEmpty", "x", nil, "your cart is empty"},
		{"unknown id renders default", "en", "Nope", "hello {{.Name}}", map[string]interface{}{"Name": "Ana"}, "hello Ana"},
		{"empty id", "en", "", "raw", nil, "raw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Localize(tt.lang, tt.id, tt.def, tt.data))
		})
	}
}
