package model

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResume() ResumeData {
	return ResumeData{
		PersonalInfo: PersonalInfo{
			Name:   "Ada Lovelace",
			Email:  "ada@example.com",
			Github: "https://github.com/ada",
		},
		Qualifications: []Qualification{{Title: "Mathematics", Description: "Private tutoring"}},
		Skills:         []Skill{{Name: "Analysis"}, {Name: "Notes"}},
		WorkExperience: []WorkExperience{{
			Company:          "Analytical Engine",
			JobTitle:         "Programmer",
			Duration:         "1842 - 1843",
			Responsibilities: []string{"Wrote the first published algorithm"},
		}},
		Projects: []Project{{
			Title:       "Bernoulli numbers",
			Skills:      []Skill{{Name: "Algorithms"}},
			Description: "Note G",
		}},
		Publications: []Publication{{Title: "Sketch of the Analytical Engine", Date: "1843"}},
		Patents:      []Patent{},
		References:   []Reference{{Name: "Charles Babbage", Relation: "Collaborator"}},
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	want := sampleResume()
	raw, err := json.Marshal(want)
	require.NoError(t, err)

	got, err := Decode(raw)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decoded resume mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_MinimalPayload(t *testing.T) {
	raw := `{"personal_info":{"name":"Ada"},"qualifications":[],"skills":[],"work_experience":[],"projects":[],"publications":[],"patents":[],"references":[]}`

	got, err := Decode([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.PersonalInfo.Name)
	assert.Empty(t, got.Skills)
}

func TestDecode_MissingSectionsTolerated(t *testing.T) {
	got, err := Decode([]byte(`{"personal_info":{"name":"Ada"},"extra":true}`))
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.PersonalInfo.Name)
	assert.Nil(t, got.WorkExperience)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: `{"personal_info":`},
		{name: "array root", raw: `[]`},
		{name: "string root", raw: `"resume"`},
		{name: "name is a number", raw: `{"personal_info":{"name":42}}`},
		{name: "skills is an object", raw: `{"skills":{"name":"Go"}}`},
		{name: "responsibility is not a string", raw: `{"work_experience":[{"company":"A","responsibilities":[1]}]}`},
		{name: "project skill is a string", raw: `{"projects":[{"title":"P","skills":["Go"]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, Validate([]byte(tt.raw)))
			_, err := Decode([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestValidate_SchemaErrorListsViolations(t *testing.T) {
	err := Validate([]byte(`{"personal_info":{"name":1,"email":2}}`))
	require.Error(t, err)

	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Len(t, se.Violations, 2)
	assert.Contains(t, se.Error(), "schema validation failed")
}

func TestClone_IsDeep(t *testing.T) {
	orig := sampleResume()
	cp := orig.Clone()
	require.Equal(t, orig, cp)

	cp.WorkExperience[0].Responsibilities[0] = "changed"
	cp.Projects[0].Skills[0].Name = "changed"
	cp.Skills[0].Name = "changed"

	assert.Equal(t, "Wrote the first published algorithm", orig.WorkExperience[0].Responsibilities[0])
	assert.Equal(t, "Algorithms", orig.Projects[0].Skills[0].Name)
	assert.Equal(t, "Analysis", orig.Skills[0].Name)
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, ResumeData{}.IsEmpty())
	assert.False(t, sampleResume().IsEmpty())
}
