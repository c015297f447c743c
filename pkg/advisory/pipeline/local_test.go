package pipeline

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDecompose(t *testing.T) {
	tests := []struct {
		name   string
		issues []string
		max    int
		want   []string
	}{
		{
			name:   "english conjunction",
			issues: []string{"leaf curl on chilli and fruit rot"},
			want:   []string{"leaf curl on chilli", "fruit rot (Chilli)"},
		},
		{
			name:   "hindi conjunction and question marks",
			issues: []string{"मिर्च में पत्ती मुड़ना और फल सड़न? सिंचाई कब करें?"},
			want:   []string{"मिर्च में पत्ती मुड़ना (Chilli)", "फल सड़न (Chilli)", "सिंचाई कब करें (Chilli)"},
		},
		{
			name:   "duplicates dropped",
			issues: []string{"thrips on chilli", "Thrips on chilli"},
			want:   []string{"thrips on chilli"},
		},
		{
			name:   "capped",
			issues: []string{"a1 chilli; b2 chilli; c3 chilli"},
			max:    2,
			want:   []string{"a1 chilli", "b2 chilli"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, localDecompose("Chilli", tt.issues, tt.max))
		})
	}
}

func TestLooksCompound(t *testing.T) {
	assert.False(t, looksCompound("How to control leaf spot on guava"))
	assert.False(t, looksCompound("guava wilt?"))
	assert.True(t, looksCompound("guava wilt and fruit fly"))
}

func TestDecodeJSON(t *testing.T) {
	var out struct {
		Questions []string `json:"questions"`
	}
	require.NoError(t, decodeJSON("Sure! ```json\n{\"questions\": [\"q1\"]}\n``` hope it helps", &out))
	assert.Equal(t, []string{"q1"}, out.Questions)

	assert.Error(t, decodeJSON("no object here", &out))
}

func TestFit_WhatsAppFormatting(t *testing.T) {
	in := "## Leaf **spot**\n\n\n\n- remove leaves\n  * burn them\n**Note**: water early"
	assert.Equal(t, "*Leaf spot*\n\n• remove leaves\n• burn them\n*Note*: water early", Fit(in, 0))
}

func TestFit_CutsAtBoundary(t *testing.T) {
	para := strings.Repeat("पत्तियों पर धब्बे दिखें तो संक्रमित पत्तियां हटा दें। ", 6)
	in := para + "\n\n" + para
	out := Fit(in, 300)

	assert.LessOrEqual(t, utf8.RuneCountInString(out), 300)
	assert.True(t, strings.HasSuffix(out, "।…"))
}
