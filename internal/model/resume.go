package model

// Go models that match resume.schema.json. A ResumeData is decoded once per
// preview request and then only read.

type PersonalInfo struct {
	Name          string `json:"name"`
	Gender        string `json:"gender,omitempty"`
	ContactNumber string `json:"contact_number,omitempty"`
	Email         string `json:"email,omitempty"`
	Github        string `json:"github,omitempty"`
	Linkedin      string `json:"linkedin,omitempty"`
	Website       string `json:"website,omitempty"`
}

type Qualification struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type Skill struct {
	Name string `json:"name"`
}

type WorkExperience struct {
	Company          string   `json:"company"`
	JobTitle         string   `json:"job_title"`
	Duration         string   `json:"duration,omitempty"`
	Responsibilities []string `json:"responsibilities,omitempty"`
}

type Project struct {
	Title       string  `json:"title"`
	Skills      []Skill `json:"skills,omitempty"`
	Description string  `json:"description,omitempty"`
}

type Publication struct {
	Title       string `json:"title"`
	Authors     string `json:"authors,omitempty"`
	Date        string `json:"date,omitempty"`
	Journal     string `json:"journal,omitempty"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
}

type Patent struct {
	Title        string `json:"title"`
	PatentNumber string `json:"patent_number,omitempty"`
	Date         string `json:"date,omitempty"`
	Inventors    string `json:"inventors,omitempty"`
	Status       string `json:"status,omitempty"`
	Description  string `json:"description,omitempty"`
}

type Reference struct {
	Name     string `json:"name"`
	Position string `json:"position,omitempty"`
	Company  string `json:"company,omitempty"`
	Contact  string `json:"contact,omitempty"`
	Relation string `json:"relation,omitempty"`
}

type ResumeData struct {
	PersonalInfo   PersonalInfo     `json:"personal_info"`
	Qualifications []Qualification  `json:"qualifications"`
	Skills         []Skill          `json:"skills"`
	WorkExperience []WorkExperience `json:"work_experience"`
	Projects       []Project        `json:"projects"`
	Publications   []Publication    `json:"publications"`
	Patents        []Patent         `json:"patents"`
	References     []Reference      `json:"references"`
}

// Clone returns a deep copy so the caller owns every slice it reads.
func (r ResumeData) Clone() ResumeData {
	out := r
	out.Qualifications = cloneSlice(r.Qualifications)
	out.Skills = cloneSlice(r.Skills)
	out.Publications = cloneSlice(r.Publications)
	out.Patents = cloneSlice(r.Patents)
	out.References = cloneSlice(r.References)

	out.WorkExperience = cloneSlice(r.WorkExperience)
	for i := range out.WorkExperience {
		out.WorkExperience[i].Responsibilities = cloneSlice(r.WorkExperience[i].Responsibilities)
	}
	out.Projects = cloneSlice(r.Projects)
	for i := range out.Projects {
		out.Projects[i].Skills = cloneSlice(r.Projects[i].Skills)
	}
	return out
}

// cloneSlice keeps nil and empty distinct.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

// IsEmpty reports whether the resume carries nothing worth rendering.
func (r ResumeData) IsEmpty() bool {
	return r.PersonalInfo == (PersonalInfo{}) &&
		len(r.Qualifications) == 0 &&
		len(r.Skills) == 0 &&
		len(r.WorkExperience) == 0 &&
		len(r.Projects) == 0 &&
		len(r.Publications) == 0 &&
		len(r.Patents) == 0 &&
		len(r.References) == 0
}
