package fonts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSupportedName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Helvetica", true},
		{"Helvetica-Bold", true},
		{"Times-Roman", true},
		{"Times New Roman", true},
		{"Courier-Oblique", true},
		{"Symbol", true},
		{"Zapf-Dingbats", true},
		{"ZapfDingbats", true},
		{"ArialMT", true},
		{"Arial-BoldMT", true},
		{"ABCDEF+Arial", true},
		{"MyHELVETICA-Clone", true}, // substring matching accepts look-alikes
		{"ComicSansMS", false},
		{"Calibri", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSupportedName(tt.name))
		})
	}
}

func TestIsSupported(t *testing.T) {
	tests := []struct {
		name string
		font Font
		want bool
	}{
		{
			name: "damaged standard font",
			font: Font{Name: "Helvetica", Subtype: "Type1", Damaged: true},
			want: false,
		},
		{
			name: "embedded unknown font",
			font: Font{Name: "ABCDEF+Calibri", Subtype: "TrueType", Descriptor: &Descriptor{FontName: "ABCDEF+Calibri", FontFile2: true}},
			want: true,
		},
		{
			name: "embedded via FontFile3",
			font: Font{Name: "Minion", Subtype: "Type1", Descriptor: &Descriptor{FontName: "Minion", FontFile3: true}},
			want: true,
		},
		{
			name: "descriptor without program, supported name",
			font: Font{Name: "Arial", Subtype: "TrueType", Descriptor: &Descriptor{FontName: "Arial"}},
			want: true,
		},
		{
			name: "descriptor without program, unknown name",
			font: Font{Name: "ComicSansMS", Subtype: "TrueType", Descriptor: &Descriptor{FontName: "ComicSansMS"}},
			want: false,
		},
		{
			name: "descriptor name wins over base font",
			font: Font{Name: "Helvetica", Subtype: "TrueType", Descriptor: &Descriptor{FontName: "Calibri"}},
			want: false,
		},
		{
			name: "descriptor with missing name",
			font: Font{Name: "Helvetica", Subtype: "TrueType", Descriptor: &Descriptor{}},
			want: false,
		},
		{
			name: "standard font without descriptor",
			font: Font{Name: "Helvetica", Subtype: "Type1"},
			want: true,
		},
		{
			name: "unknown font without descriptor",
			font: Font{Name: "Bogus", Subtype: "Type1"},
			want: false,
		},
		{
			name: "composite font without descriptor",
			font: Font{Name: "Bogus", Subtype: "Type0", Composite: true},
			want: true,
		},
		{
			name: "font without any name",
			font: Font{Subtype: "Type1"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSupported(tt.font))
		})
	}
}

func TestUnsupportedKeepsOrder(t *testing.T) {
	in := []Font{
		{Name: "Bogus1", Subtype: "Type1"},
		{Name: "Helvetica", Subtype: "Type1"},
		{Name: "Bogus2", Subtype: "TrueType"},
	}
	out := Unsupported(in)
	assert.Equal(t, []Font{in[0], in[2]}, out)
	assert.Empty(t, Unsupported(in[1:2]))
}

func TestFontString(t *testing.T) {
	assert.Equal(t, "TrueType 'Calibri'", Font{Name: "Calibri", Subtype: "TrueType"}.String())
}
