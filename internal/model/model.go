// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// AspectRatio is one of the aspect ratios supported by the image model.
type AspectRatio string

// Supported aspect ratios.
const (
	AspectSquare    AspectRatio = "1:1"
	AspectLandscape AspectRatio = "16:9"
	AspectPortrait  AspectRatio = "9:16"
	AspectTall      AspectRatio = "3:4"
	AspectWide      AspectRatio = "4:3"
)

// Valid reports whether r is a supported aspect ratio.
func (r AspectRatio) Valid() bool {
	switch r {
	case AspectSquare, AspectLandscape, AspectPortrait, AspectTall, AspectWide:
		return true
	}
	return false
}

// Collection identifies one of the two image collections in the store.
type Collection string

// Image collections. Gallery rows are per-account and require an owner;
// history rows are account-agnostic.
const (
	Gallery Collection = "gallery"
	History Collection = "history"
)

// Valid reports whether c names a known image collection.
func (c Collection) Valid() bool { return c == Gallery || c == History }

// Account represents a registered user. Created once on registration,
// never mutated afterwards. Email is the natural key.
type Account struct {
	ID          uuid.UUID // PK
	Email       string    // unique, case-sensitive
	CredHash    []byte    // Argon2id(credential, CredSalt)
	CredSalt    []byte    // per-account salt
	DisplayName string    // optional
	CreatedAt   time.Time
}

// GeneratedImage is a single produced image, immutable after creation.
// OwnerID is set iff an authenticated account was active when the image
// was created; it is never back-filled.
type GeneratedImage struct {
	ID             string // batch-timestamp + role tag, caller-assigned
	OwnerID        string // empty for guest sessions
	Prompt         string
	EnhancedPrompt string // set on enhanced-batch images
	Data           []byte // raw raster payload (PNG)
	CreatedAt      time.Time
	IsEnhanced     bool // image came from the enhanced-prompt batch
	AspectRatio    AspectRatio
	IsCollage      bool // composited grid; always 1:1
}

// GenerationResult is the transient aggregate of one Generate call.
// Its members are persisted independently; the aggregate itself is not.
type GenerationResult struct {
	Original    []GeneratedImage
	Enhanced    []GeneratedImage
	Collage     *GeneratedImage
	Explanation string
}
