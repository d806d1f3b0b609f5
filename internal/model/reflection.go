package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// AnswerValue is a single reflection answer: a string, a number, or a
// boolean. Form fields are dynamic, so the value shape can't be fixed per
// key, but it is a closed union rather than arbitrary JSON — objects, arrays
// and null are rejected at decode time.
type AnswerValue struct {
	Str  string
	Num  float64
	Bool bool
	Kind AnswerKind
}

// AnswerKind discriminates the union.
type AnswerKind int

const (
	AnswerString AnswerKind = iota
	AnswerNumber
	AnswerBool
)

// StringAnswer wraps s as an AnswerValue.
func StringAnswer(s string) AnswerValue { return AnswerValue{Str: s, Kind: AnswerString} }

// NumberAnswer wraps n as an AnswerValue.
func NumberAnswer(n float64) AnswerValue { return AnswerValue{Num: n, Kind: AnswerNumber} }

// BoolAnswer wraps b as an AnswerValue.
func BoolAnswer(b bool) AnswerValue { return AnswerValue{Bool: b, Kind: AnswerBool} }

// MarshalJSON encodes the active member of the union.
func (v AnswerValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case AnswerNumber:
		return json.Marshal(v.Num)
	case AnswerBool:
		return json.Marshal(v.Bool)
	default:
		return json.Marshal(v.Str)
	}
}

// UnmarshalJSON decodes a scalar into the union. Any non-scalar value
// (object, array, null) is an error — form answers are always scalar.
func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch val := raw.(type) {
	case string:
		*v = StringAnswer(val)
	case float64:
		*v = NumberAnswer(val)
	case bool:
		*v = BoolAnswer(val)
	default:
		return fmt.Errorf("model: answer value must be a string, number or boolean, got %T", raw)
	}
	return nil
}

// VideoReflection is one user's answers to one video's reflection form.
//
// At most one reflection exists per (user, video) pair — a compound UNIQUE
// index enforces it. Resubmitting for the same pair replaces the responses
// wholesale (answers not present in the new submission are dropped, not
// merged) and refreshes UpdatedAt; SubmittedAt keeps the first submission
// time.
//
// VideoID is a copy of the video's small integer identity, not a storage
// reference, and VideoTitle is a convenience snapshot taken at write time.
type VideoReflection struct {
	ID          string                 `json:"_id"`
	UserID      string                 `json:"user"`
	VideoID     int                    `json:"videoId"`
	VideoTitle  string                 `json:"videoTitle"`
	Responses   map[string]AnswerValue `json:"responses"`
	SubmittedAt time.Time              `json:"submittedAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

// ReflectionWithUser is a reflection populated with its owner's account
// summary, for the instructor's review listing.
type ReflectionWithUser struct {
	VideoReflection
	User UserSummary `json:"user"`
}
