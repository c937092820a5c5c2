package model

import "time"

type Kind string

const (
	KindJourney Kind = "journey"
	KindFeature Kind = "feature"
	KindStory   Kind = "story"
	KindRelease Kind = "release"
	KindPersona Kind = "persona"
	KindProject Kind = "project"
)

// Label returns the display label used for positional default names ("Feature 3").
func (k Kind) Label() string {
	switch k {
	case KindJourney:
		return "Journey"
	case KindFeature:
		return "Feature"
	case KindStory:
		return "Story"
	case KindRelease:
		return "Release"
	case KindPersona:
		return "Persona"
	case KindProject:
		return "Project"
	default:
		return string(k)
	}
}

// Ordered reports whether entities of this kind form sibling groups by order value.
func (k Kind) Ordered() bool {
	switch k {
	case KindJourney, KindFeature, KindStory:
		return true
	default:
		return false
	}
}

type StoryType string

const (
	StoryTypeStory           StoryType = "Story"
	StoryTypeTechRequirement StoryType = "TechRequirement"
)

// Entity is the normalized in-memory shape of every story map record.
// Fields that do not apply to Kind are left zero.
type Entity struct {
	Kind  Kind    `json:"kind"`
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Order float64 `json:"order"`

	JourneyID string `json:"journeyId,omitempty"`
	FeatureID string `json:"featureId,omitempty"`
	ReleaseID string `json:"releaseId,omitempty"`

	StoryType  StoryType  `json:"type,omitempty"`
	TargetDate *time.Time `json:"targetDate,omitempty"`
}

type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Field names as they appear in change records.
const (
	FieldName    = "name"
	FieldOrder   = "order_index"
	FieldJourney = "journey"
	FieldFeature = "feature"
	FieldRelease = "release"
)

// OrderUpdate is a sibling order rewrite produced by a re-index.
type OrderUpdate struct {
	EntityID string  `json:"entityId"`
	OldValue float64 `json:"oldValue"`
	NewValue float64 `json:"newValue"`
}

// Change is the canonical record emitted for one completed move or rename.
type Change struct {
	EntityType   Kind           `json:"entityType"`
	EntityID     string         `json:"entityId"`
	FieldName    string         `json:"fieldName"`
	NewValue     any            `json:"newValue"`
	OldValue     any            `json:"oldValue"`
	AllData      map[string]any `json:"allData"`
	NewParentID  *string        `json:"newParentId,omitempty"`
	NewReleaseID *string        `json:"newReleaseId,omitempty"`

	// Reindexed lists other siblings whose order had to be rewritten to make room.
	Reindexed []OrderUpdate `json:"reindexed,omitempty"`
}
