package domain

import (
	"slices"
	"time"
)

// Core domain models shared by the onboarding, matching and document
// machines. Transport shapes live in the http adapter; keep these free of
// encoding concerns where possible.

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleBuyer || r == RoleSeller
}

// FieldKind enumerates the input kinds a Field may declare.
type FieldKind string

const (
	KindShortText    FieldKind = "short-text"
	KindEmail        FieldKind = "email"
	KindPassword     FieldKind = "password"
	KindSingleSelect FieldKind = "single-select"
	KindMultiSelect  FieldKind = "multi-select"
	KindLongText     FieldKind = "long-text"
	KindNumber       FieldKind = "number"
)

// Selectable reports whether the kind draws its values from an option set.
func (k FieldKind) Selectable() bool {
	return k == KindSingleSelect || k == KindMultiSelect
}

type Field struct {
	ID          string    `yaml:"id" json:"id"`
	Label       string    `yaml:"label" json:"label"`
	Kind        FieldKind `yaml:"kind" json:"kind"`
	Placeholder string    `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
	Required    bool      `yaml:"required,omitempty" json:"required"`
	Options     []string  `yaml:"options,omitempty" json:"options,omitempty"`
}

// HasOption reports whether v is one of the field's enumerated options.
func (f Field) HasOption(v string) bool {
	return slices.Contains(f.Options, v)
}

type Step struct {
	ID          string  `yaml:"id" json:"id"`
	Title       string  `yaml:"title" json:"title"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
	Fields      []Field `yaml:"fields" json:"fields"`
}

// Answer holds a single onboarding value. Multi-select fields use Values;
// every other kind uses Text.
type Answer struct {
	Text   string
	Values []string
	multi  bool
}

// Text builds a scalar answer.
func Text(s string) Answer { return Answer{Text: s} }

// Selection builds a multi-select answer. Duplicates are collapsed, first
// occurrence wins.
func Selection(values ...string) Answer {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return Answer{Values: out, multi: true}
}

// IsSet reports whether the answer is a multi-select value.
func (a Answer) IsSet() bool { return a.multi }

// Empty reports whether the answer carries no usable value.
func (a Answer) Empty() bool {
	if a.multi {
		return len(a.Values) == 0
	}
	return a.Text == ""
}

// Profile is the onboarding-derived record of a buyer or seller. Budget
// (buyers) and Revenue (sellers) always hold one of the schema's option
// strings.
type Profile struct {
	ID          string
	Role        Role
	Name        string
	Email       string
	Company     string
	Location    string
	Industry    string
	Budget      string
	Revenue     string
	Employees   string
	Description string
	Verified    bool
	Interests   []string
	Attributes  map[string]string
	LastActive  string
	CreatedAt   time.Time
}

// LastActiveNow is the activity marker given to freshly active profiles.
const LastActiveNow = "Just now"

type MatchStatus string

const (
	MatchNew         MatchStatus = "new"
	MatchChatting    MatchStatus = "chatting"
	MatchNegotiating MatchStatus = "negotiating"
	MatchCompleted   MatchStatus = "completed"
)

// Valid reports whether s is one of the four match statuses.
func (s MatchStatus) Valid() bool {
	switch s {
	case MatchNew, MatchChatting, MatchNegotiating, MatchCompleted:
		return true
	}
	return false
}

// Match records a like from Viewer on Profile. Seq is the creation order
// within the owning collection.
type Match struct {
	ID            string
	ViewerID      string
	Profile       Profile
	Seq           int64
	Status        MatchStatus
	CreatedAt     time.Time
	LastMessage   *string
	LastMessageAt *time.Time
}

type DocumentStatus string

const (
	DocumentAnalyzing DocumentStatus = "analyzing"
	DocumentAnalyzed  DocumentStatus = "analyzed"
	DocumentError     DocumentStatus = "error"
)

// Terminal reports whether no further transition is allowed.
func (s DocumentStatus) Terminal() bool {
	return s == DocumentAnalyzed || s == DocumentError
}

// Document tracks an uploaded file through analysis. Summary and KeyMetrics
// are set only when Status is analyzed; Error only when Status is error.
type Document struct {
	ID         string
	Name       string
	Type       string
	UploadedAt time.Time
	Status     DocumentStatus
	Summary    *string
	KeyMetrics map[string]string
	Error      *string
	FinishedAt *time.Time
}
