package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"ascii", "Ali Veli", "ali veli"},
		{"turkish letters", "ĞÜŞİÖÇ ğüşıöç", "gusioc gusioc"},
		{"dotless capital I", "IŞIK", "isik"},
		{"dotted capital I", "İstanbul", "istanbul"},
		{"month with diacritics", "Şubat", "subat"},
		{"paid phrase", "ÖDENDİ", "odendi"},
		{"unpaid phrase", "ödenmedi", "odenmedi"},
		{"whitespace preserved", "  Ayşe   Yılmaz ", "  ayse   yilmaz "},
		{"other letters untouched", "Éa ß", "éa ß"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"Ali Veli ekim ayı ödendi",
		"AYŞE YILMAZ TÜM ÖDENMEDİ",
		"İIıi",
		"Ağustos, Eylül; Kasım!",
		"çğışöü ÇĞIŞÖÜ",
		"mixed 123 ünïcödé",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestFields(t *testing.T) {
	assert.Equal(t, "", Fields("   "))
	assert.Equal(t, "ali veli", Fields("  ali \t veli\n"))
}

func TestContainsAndEqual(t *testing.T) {
	assert.True(t, Contains("Ayşe Yılmaz", "ayse"))
	assert.True(t, Contains("AYŞE  YILMAZ", "se yil"))
	assert.True(t, Contains("Ali Veli", ""))
	assert.False(t, Contains("Ali Veli", "ayse"))

	assert.True(t, Equal("Çağrı Işık", "cagri  isik"))
	assert.False(t, Equal("Ali", "Ali Veli"))
}
