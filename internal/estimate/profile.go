// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package estimate

import "github.com/pdiddy/pdftools/pkg/types"

// Profile is the set of optimization knobs a tier turns on. The remote
// strategy sends it as the job's profile; the local and ghostscript
// strategies read the stripping flags.
type Profile struct {
	// Compression is the API compression level (1-100).
	Compression int `json:"compression"`

	// ImageQuality is the JPEG quality for recompressed images.
	ImageQuality int `json:"imageQuality"`

	// ImageScale shrinks image dimensions (1.0 keeps them).
	ImageScale float64 `json:"imageScale"`

	RemoveMetadata      bool `json:"removeMetadata"`
	RemoveAnnotations   bool `json:"removeAnnotations"`
	RemoveEmbeddedFiles bool `json:"removeEmbeddedFiles"`
	RemoveJavaScripts   bool `json:"removeJavaScripts"`
	RemoveBookmarks     bool `json:"removeBookmarks"`
	RemoveFormFields    bool `json:"removeFormFields"`

	CompressImages bool `json:"compressImages"`
}

// ProfileFor builds the profile for a percentage.
func ProfileFor(percentage int) Profile {
	p := ClampPercentage(percentage)
	tier := Classify(p)

	prof := Profile{
		Compression:    clamp(p, 1, 100),
		ImageQuality:   max(10, 100-p),
		ImageScale:     1.0,
		CompressImages: true,
	}
	if tier.AtLeast(types.TierMedium) {
		prof.RemoveMetadata = true
	}
	if tier.AtLeast(types.TierHigh) {
		prof.RemoveEmbeddedFiles = true
		prof.RemoveJavaScripts = true
	}
	if tier.AtLeast(types.TierExtreme) {
		prof.ImageScale = 0.8
	}
	if tier.AtLeast(types.TierMaximum) {
		prof.RemoveAnnotations = true
		prof.RemoveBookmarks = true
		prof.RemoveFormFields = true
	}
	return prof
}
