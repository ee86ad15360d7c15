package text

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegexpReplacer_ReplaceText(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		rules        []ReplacementRule
		want         string
		wantCount    int
		wantCounts   [][2]int
		wantError    string
		wantModified bool
	}{
		{
			name:    "crud_url",
			content: "api.get(`/patient/auto-mesures/${id}`)",
			rules: []ReplacementRule{
				{Search: `/patient/auto-mesures`, Replace: `/patients/dmp/auto-mesures`},
			},
			want:         "api.get(`/patients/dmp/auto-mesures/${id}`)",
			wantCount:    1,
			wantCounts:   [][2]int{{1, 0}},
			wantModified: true,
		},
		{
			name:    "literal_dollar_in_replacement",
			content: "`/patient/${patientId}/auto-mesures/stats`",
			rules: []ReplacementRule{
				{Search: `/patient/\$\{patientId\}/auto-mesures/stats`, Replace: `/patients/${patientId}/dmp/auto-mesures/stats`},
			},
			want:         "`/patients/${patientId}/dmp/auto-mesures/stats`",
			wantCount:    1,
			wantCounts:   [][2]int{{1, 0}},
			wantModified: true,
		},
		{
			name:    "expanded_groups",
			content: "/patient/42/x /patient/7/x",
			rules: []ReplacementRule{
				{Search: `/patient/(\d+)/`, Replace: `/patients/$1/dmp/`, Expand: true},
			},
			want:         "/patients/42/dmp/x /patients/7/dmp/x",
			wantCount:    2,
			wantCounts:   [][2]int{{2, 0}},
			wantModified: true,
		},
		{
			name:    "later_rules_see_earlier_output",
			content: "foo",
			rules: []ReplacementRule{
				{Search: "foo", Replace: "bar"},
				{Search: "bar", Replace: "baz"},
			},
			want:         "baz",
			wantCount:    2,
			wantCounts:   [][2]int{{1, 0}, {1, 0}},
			wantModified: true,
		},
		{
			name:    "self_overlapping_rule_leaves_matches",
			content: "aa",
			rules: []ReplacementRule{
				{Search: "a", Replace: "aa"},
			},
			want:         "aaaa",
			wantCount:    2,
			wantCounts:   [][2]int{{2, 4}},
			wantModified: true,
		},
		{
			name:    "no_match",
			content: "/patients/dmp/auto-mesures",
			rules: []ReplacementRule{
				{Search: `/patient/auto-mesures`, Replace: `/patients/dmp/auto-mesures`},
			},
			want:         "/patients/dmp/auto-mesures",
			wantCount:    0,
			wantCounts:   [][2]int{{0, 0}},
			wantModified: false,
		},
		{
			name:    "replacement_equal_to_match",
			content: "same",
			rules: []ReplacementRule{
				{Search: "same", Replace: "same"},
			},
			want:         "same",
			wantCount:    1,
			wantCounts:   [][2]int{{1, 1}},
			wantModified: false,
		},
		{
			name:         "empty_rules",
			content:      "Hello World",
			rules:        []ReplacementRule{},
			want:         "Hello World",
			wantModified: false,
		},
		{
			name:    "invalid_pattern",
			content: "x",
			rules: []ReplacementRule{
				{Search: "(", Replace: "y"},
			},
			wantError: "rule 0: compiling search",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			replacer := NewRegexpReplacer()
			result, err := replacer.ReplaceText(context.Background(), strings.NewReader(tt.content), tt.rules)

			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, tt.content, string(result.OriginalContent))
			assert.Equal(t, tt.want, string(result.ModifiedContent))
			assert.Equal(t, tt.wantCount, result.Replacements())
			assert.Equal(t, tt.wantModified, result.WasModified)
			require.Len(t, result.Rules, len(tt.wantCounts))
			for i, c := range tt.wantCounts {
				assert.Equal(t, c[0], result.Rules[i].Before, "rule %d before", i)
				assert.Equal(t, c[1], result.Rules[i].After, "rule %d after", i)
			}
		})
	}
}

func TestRegexpReplacer_ReplaceTextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRegexpReplacer().ReplaceText(ctx, strings.NewReader("a"), []ReplacementRule{{Search: "a", Replace: "b"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidateRules(t *testing.T) {
	tests := []struct {
		name      string
		rules     []ReplacementRule
		wantError string
	}{
		{
			name:  "valid_rules",
			rules: []ReplacementRule{{Search: "foo", Replace: "bar"}},
		},
		{
			name:      "missing_search",
			rules:     []ReplacementRule{{Replace: "bar"}},
			wantError: "search is required",
		},
		{
			name:      "bad_pattern",
			rules:     []ReplacementRule{{Search: "foo", Replace: "x"}, {Search: "[", Replace: "y"}},
			wantError: "rule 1: compiling search",
		},
		{
			name:  "empty_rules",
			rules: []ReplacementRule{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRules(tt.rules)
			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCountMatches(t *testing.T) {
	n, err := CountMatches(`/patient/`, []byte("/patient/a /patient/b /patients/c"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = CountMatches("(", nil)
	require.Error(t, err)
}
