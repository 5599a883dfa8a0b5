package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArabic(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only spaces", "   \t ", ""},
		{"hamza above", "أحمد", "احمد"},
		{"hamza below", "إبراهيم", "ابراهيم"},
		{"madda", "آمنة", "امنه"},
		{"alef maksura", "مصطفى", "مصطفي"},
		{"teh marbuta", "فاطمة", "فاطمه"},
		{"harakat", "مُحَمَّد", "محمد"},
		{"tatweel", "محـــمد", "محمد"},
		{"directional marks", "\u200Fعلي\u200E", "علي"},
		{"whitespace runs", "  محمد \t  علي  ", "محمد علي"},
		{"latin passthrough", "John  Smith", "John Smith"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Arabic(tt.in))
		})
	}
}

func TestArabic_Idempotent(t *testing.T) {
	in := " أَحْمَد   إبراهيم مصطفى "
	once := Arabic(in)
	assert.Equal(t, once, Arabic(once))
}

func TestFold_LowercasesLatin(t *testing.T) {
	assert.Equal(t, "emp احمد", Fold("EMP أحمد"))
}
