package career

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileNormalize(t *testing.T) {
	p := &Profile{
		Skills:         []string{" Go, Python ", "", "SQL"},
		Interests:      []string{"  data  "},
		EducationLevel: "  Bachelor ",
	}

	p.Normalize()

	assert.Equal(t, []string{"Go", "Python", "SQL"}, p.Skills)
	assert.Equal(t, []string{"data"}, p.Interests)
	assert.Equal(t, "Bachelor", p.EducationLevel)
}

func TestProfileValidate(t *testing.T) {
	negative := -1.0
	positive := 2.0

	tests := []struct {
		name    string
		profile Profile
		wantErr error
	}{
		{
			name:    "valid",
			profile: Profile{Skills: []string{"Go"}, Interests: []string{"cloud"}, Budget: 5000, Experience: &positive},
		},
		{
			name:    "zero budget is fine",
			profile: Profile{Skills: []string{"Go"}, Interests: []string{"cloud"}},
		},
		{
			name:    "missing skills",
			profile: Profile{Interests: []string{"cloud"}},
			wantErr: ErrMissingSkillsOrInterests,
		},
		{
			name:    "empty interests",
			profile: Profile{Skills: []string{"Go"}, Interests: []string{}},
			wantErr: ErrMissingSkillsOrInterests,
		},
		{
			name:    "blank skill entry",
			profile: Profile{Skills: []string{""}, Interests: []string{"cloud"}},
			wantErr: ErrMissingSkillsOrInterests,
		},
		{
			name:    "negative budget",
			profile: Profile{Skills: []string{"Go"}, Interests: []string{"cloud"}, Budget: -10},
			wantErr: ErrNegativeBudget,
		},
		{
			name:    "negative experience",
			profile: Profile{Skills: []string{"Go"}, Interests: []string{"cloud"}, Experience: &negative},
			wantErr: ErrNegativeExperience,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestProfileTerms(t *testing.T) {
	p := &Profile{Skills: []string{"Go", " "}, Interests: []string{"Machine Learning"}}
	assert.Equal(t, []string{"go", "machine learning"}, p.Terms())
}

func TestFormatBudget(t *testing.T) {
	assert.Equal(t, "5000", FormatBudget(5000))
	assert.Equal(t, "1250.5", FormatBudget(1250.5))
	assert.Equal(t, "0", FormatBudget(0))
}
