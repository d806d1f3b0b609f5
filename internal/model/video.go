package model

import "time"

// Form field kinds accepted in a video's form schema.
const (
	FieldText     = "text"
	FieldTextarea = "textarea"
	FieldScale    = "scale"
	FieldRadio    = "radio"
)

// ValidFieldKind reports whether kind is one of the four accepted field kinds.
func ValidFieldKind(kind string) bool {
	switch kind {
	case FieldText, FieldTextarea, FieldScale, FieldRadio:
		return true
	}
	return false
}

// FormOption is one choice of a radio field.
type FormOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FormField describes one question in a video's reflection form.
// Which attributes are meaningful depends on Type:
//
//	text/textarea → Placeholder
//	scale         → Min, Max, MinLabel, MaxLabel
//	radio         → Options
type FormField struct {
	ID          string       `json:"id"`
	Type        string       `json:"type"`
	Label       string       `json:"label"`
	Placeholder string       `json:"placeholder,omitempty"`
	Min         int          `json:"min,omitempty"`
	Max         int          `json:"max,omitempty"`
	MinLabel    string       `json:"minLabel,omitempty"`
	MaxLabel    string       `json:"maxLabel,omitempty"`
	Options     []FormOption `json:"options,omitempty"`
}

// Video is one catalog entry.
//
// VideoID is the small integer the clients (and reflections) refer to — it is
// distinct from the storage-assigned ID and carries its own UNIQUE index.
// FormSchema is the ordered list of questions the client renders under the
// video; it is stored as a JSON document alongside the row.
type Video struct {
	ID          string      `json:"_id"`
	VideoID     int         `json:"videoId"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	VideoURL    string      `json:"videoUrl,omitempty"`
	Thumbnail   string      `json:"thumbnail,omitempty"`
	WeekNumber  int         `json:"weekNumber,omitempty"`
	FormSchema  []FormField `json:"formSchema"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
