package model

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AudioSchemaVersion is stamped on every record written by this service.
// Version 1 records (title/category/duration/audioUrl only) are read with the
// defaults below applied.
const AudioSchemaVersion = 2

// Field defaults for clips created without the optional form fields.
const (
	DefaultTitle      = "Untitled"
	DefaultCategory   = "General"
	DefaultArtistName = "Envato MusicGen AI"
)

// AudioType is the catalog variant of a clip.
type AudioType string

const (
	AudioTypeMusic           AudioType = "music"
	AudioTypeSound           AudioType = "sound"
	AudioTypeBackgroundMusic AudioType = "background-music"
	AudioTypeFX              AudioType = "fx"
)

// ParseAudioType maps a client supplied type onto a known variant.
// Empty input yields the default (music).
func ParseAudioType(raw string) (AudioType, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "":
		return AudioTypeMusic, true
	case "music":
		return AudioTypeMusic, true
	case "sound":
		return AudioTypeSound, true
	case "background-music", "background music", "background_music":
		return AudioTypeBackgroundMusic, true
	case "fx":
		return AudioTypeFX, true
	}
	return "", false
}

// Source records the provenance of a clip.
type Source string

const (
	SourceUserUploaded Source = "user_uploaded"
	SourceAIGenerated  Source = "ai_generated"
)

// SoundFlagOriginal marks a user-uploaded original sound that needs no license.
const SoundFlagOriginal = 1

// AudioClip is a single catalog entry. It is written once at ingest and never
// updated afterwards.
type AudioClip struct {
	ID       string    `json:"_id" bson:"_id" gorm:"primaryKey;size:24"`
	Title    string    `json:"title" bson:"title" gorm:"size:255;not null"`
	Category string    `json:"category" bson:"category" gorm:"size:255;index"`
	Type     AudioType `json:"type" bson:"type" gorm:"size:32;index;default:'music'"`
	Duration int       `json:"duration" bson:"duration"`
	AudioURL string    `json:"audioUrl" bson:"audioUrl" gorm:"size:1024;not null"`

	Priority      int     `json:"priority" bson:"priority" gorm:"index:idx_audio_clips_priority,sort:desc;default:0"`
	Rating        float64 `json:"rating" bson:"rating" gorm:"index:idx_audio_clips_rating,sort:desc;default:0"`
	DownloadCount int     `json:"download_count" bson:"download_count" gorm:"index:idx_audio_clips_download_count,sort:desc;default:0"`

	Source                  Source  `json:"source" bson:"source" gorm:"size:32"`
	LicenseType             string  `json:"license_type" bson:"license_type" gorm:"size:255"`
	LicenseURL              *string `json:"license_url" bson:"license_url" gorm:"size:1024"`
	OriginalAudioURL        *string `json:"original_audio_url" bson:"original_audio_url" gorm:"size:1024"`
	ArtistName              string  `json:"artist_name" bson:"artist_name" gorm:"size:255"`
	AttributionRequired     bool    `json:"attribution_required" bson:"attribution_required"`
	IsRedistributionAllowed bool    `json:"is_redistribution_allowed" bson:"is_redistribution_allowed"`
	UsageNotes              string  `json:"usage_notes" bson:"usage_notes" gorm:"type:text"`
	SoundFlag               float64 `json:"soundflag" bson:"soundflag"`

	SchemaVersion int       `json:"schemaVersion" bson:"schema_version" gorm:"default:1"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt" gorm:"index:idx_audio_clips_created_at,sort:desc"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}

// TableName 指定表名
func (AudioClip) TableName() string {
	return "audio_clips"
}

// MarshalJSON emits the identifier under both "_id" and "id"; older clients
// read one, newer ones the other.
func (a AudioClip) MarshalJSON() ([]byte, error) {
	type clip AudioClip
	return json.Marshal(struct {
		clip
		PlainID string `json:"id"`
	}{clip(a), a.ID})
}

// ApplyDefaults fills the fields a version 1 record may be missing.
func (a *AudioClip) ApplyDefaults() {
	if strings.TrimSpace(a.Title) == "" {
		a.Title = DefaultTitle
	}
	if strings.TrimSpace(a.Category) == "" {
		a.Category = DefaultCategory
	}
	if a.Type == "" {
		a.Type = AudioTypeMusic
	}
	if a.ArtistName == "" {
		a.ArtistName = DefaultArtistName
	}
	if a.Source == "" {
		a.Source = SourceAIGenerated
	}
	if a.SchemaVersion == 0 {
		a.SchemaVersion = 1
	}
}

var clipIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// NewClipID returns a fresh 24 hex character identifier (ObjectID layout:
// timestamp, random, counter), so ids sort roughly by creation time.
func NewClipID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidClipID reports whether id has the 24 hex character format.
func IsValidClipID(id string) bool {
	return clipIDPattern.MatchString(id)
}
