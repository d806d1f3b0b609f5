package model

// Profile holds the intake questionnaire data embedded in every account.
// All fields are optional at registration time; the zero value is a valid
// (empty) profile. It is stored as a single JSON document in the database.
//
// AnxietyLevel is a history: every sample is appended by the client, never
// overwritten server-side beyond the normal merge rules.
type Profile struct {
	// Demographics
	Age           int    `json:"age,omitempty"`
	Gender        string `json:"gender,omitempty"` // male, female
	State         string `json:"state,omitempty"`
	Branch        string `json:"branch,omitempty"`
	EducationType string `json:"educationType,omitempty"` // regular, free

	// Health
	ChronicDiseases string `json:"chronicDiseases,omitempty"`
	Medications     string `json:"medications,omitempty"`

	// Study habits
	GoodSubjects      string `json:"goodSubjects,omitempty"`
	DifficultSubjects string `json:"difficultSubjects,omitempty"`
	StudyHours        int    `json:"studyHours,omitempty"`
	RevisionStyle     string `json:"revisionStyle,omitempty"` // detailed, fast, group
	PreferredTime     string `json:"preferredTime,omitempty"` // morning, evening, mixed
	PrepMethod        string `json:"prepMethod,omitempty"`    // reading, videos, summaries, exercises

	// Psychological
	AnxietyLevel       []int  `json:"anxietyLevel,omitempty"`
	StressLevel        string `json:"stressLevel,omitempty"`     // low, medium, high
	MotivationLevel    string `json:"motivationLevel,omitempty"` // low, medium, high
	ReactionToPressure string `json:"reactionToPressure,omitempty"`
	CopingSkills       string `json:"copingSkills,omitempty"`
	PreviousTherapy    string `json:"previousTherapy,omitempty"` // yes, no

	// Support needs (checkbox flags)
	Needs Needs `json:"needs"`
}

// Needs is the set of boolean support flags a student can tick.
type Needs struct {
	TimeMgmt    bool `json:"timeMgmt"`
	AnxietyMgmt bool `json:"anxietyMgmt"`
	Focus       bool `json:"focus"`
	Support     bool `json:"support"`
	ReviewTech  bool `json:"reviewTech"`
}

// ProfileUpdate is a partial profile: every field is a pointer so that
// "absent from the request" and "present with a zero value" are
// distinguishable after JSON decoding.
type ProfileUpdate struct {
	Age           *int    `json:"age"`
	Gender        *string `json:"gender"`
	State         *string `json:"state"`
	Branch        *string `json:"branch"`
	EducationType *string `json:"educationType"`

	ChronicDiseases *string `json:"chronicDiseases"`
	Medications     *string `json:"medications"`

	GoodSubjects      *string `json:"goodSubjects"`
	DifficultSubjects *string `json:"difficultSubjects"`
	StudyHours        *int    `json:"studyHours"`
	RevisionStyle     *string `json:"revisionStyle"`
	PreferredTime     *string `json:"preferredTime"`
	PrepMethod        *string `json:"prepMethod"`

	AnxietyLevel       *[]int  `json:"anxietyLevel"`
	StressLevel        *string `json:"stressLevel"`
	MotivationLevel    *string `json:"motivationLevel"`
	ReactionToPressure *string `json:"reactionToPressure"`
	CopingSkills       *string `json:"copingSkills"`
	PreviousTherapy    *string `json:"previousTherapy"`

	Needs *NeedsUpdate `json:"needs"`
}

// NeedsUpdate is the partial form of Needs.
type NeedsUpdate struct {
	TimeMgmt    *bool `json:"timeMgmt"`
	AnxietyMgmt *bool `json:"anxietyMgmt"`
	Focus       *bool `json:"focus"`
	Support     *bool `json:"support"`
	ReviewTech  *bool `json:"reviewTech"`
}

// Apply merges the partial update into p.
//
// The merge is deliberately exactly two levels deep, field by field:
//
//   - Every direct profile field present in the update overwrites the
//     corresponding field in p; fields absent from the update are kept.
//     A client updating only `age` must not erase `chronicDiseases`.
//   - `needs` is the one nested object merged at its own level: each flag
//     present in the update overwrites that flag, the rest are kept. A
//     whole-object replace here would silently untick flags the caller
//     didn't send.
//
// This is intentionally not a generic deep merge — the asymmetry (shallow at
// the top, needs merged one level further) is part of the API contract.
func (p *Profile) Apply(u *ProfileUpdate) {
	if u == nil {
		return
	}
	if u.Age != nil {
		p.Age = *u.Age
	}
	if u.Gender != nil {
		p.Gender = *u.Gender
	}
	if u.State != nil {
		p.State = *u.State
	}
	if u.Branch != nil {
		p.Branch = *u.Branch
	}
	if u.EducationType != nil {
		p.EducationType = *u.EducationType
	}
	if u.ChronicDiseases != nil {
		p.ChronicDiseases = *u.ChronicDiseases
	}
	if u.Medications != nil {
		p.Medications = *u.Medications
	}
	if u.GoodSubjects != nil {
		p.GoodSubjects = *u.GoodSubjects
	}
	if u.DifficultSubjects != nil {
		p.DifficultSubjects = *u.DifficultSubjects
	}
	if u.StudyHours != nil {
		p.StudyHours = *u.StudyHours
	}
	if u.RevisionStyle != nil {
		p.RevisionStyle = *u.RevisionStyle
	}
	if u.PreferredTime != nil {
		p.PreferredTime = *u.PreferredTime
	}
	if u.PrepMethod != nil {
		p.PrepMethod = *u.PrepMethod
	}
	if u.AnxietyLevel != nil {
		p.AnxietyLevel = *u.AnxietyLevel
	}
	if u.StressLevel != nil {
		p.StressLevel = *u.StressLevel
	}
	if u.MotivationLevel != nil {
		p.MotivationLevel = *u.MotivationLevel
	}
	if u.ReactionToPressure != nil {
		p.ReactionToPressure = *u.ReactionToPressure
	}
	if u.CopingSkills != nil {
		p.CopingSkills = *u.CopingSkills
	}
	if u.PreviousTherapy != nil {
		p.PreviousTherapy = *u.PreviousTherapy
	}
	if u.Needs != nil {
		if u.Needs.TimeMgmt != nil {
			p.Needs.TimeMgmt = *u.Needs.TimeMgmt
		}
		if u.Needs.AnxietyMgmt != nil {
			p.Needs.AnxietyMgmt = *u.Needs.AnxietyMgmt
		}
		if u.Needs.Focus != nil {
			p.Needs.Focus = *u.Needs.Focus
		}
		if u.Needs.Support != nil {
			p.Needs.Support = *u.Needs.Support
		}
		if u.Needs.ReviewTech != nil {
			p.Needs.ReviewTech = *u.Needs.ReviewTech
		}
	}
}
