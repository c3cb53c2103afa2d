package cache

import "time"

// TTLArtifact is how long rendered artifacts stay cached.
const TTLArtifact = 7 * 24 * time.Hour

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey names one rendered output of a document.
	ArtifactKey(docHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts holds every render option that changes the output bytes.
type ArtifactKeyOpts struct {
	Format    string  `json:"format"`
	Root      string  `json:"root,omitempty"`
	Unit      float64 `json:"unit,omitempty"`
	TextScale float64 `json:"text_scale,omitempty"`
	PNGScale  float64 `json:"png_scale,omitempty"`
	Detailed  bool    `json:"detailed,omitempty"`
}

// DefaultKeyer hashes its inputs into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", docHash, opts)
}
