package skynet

// Skylink is a content identifier referencing data stored on the network.
//
// NOTE: The HTTP accessible URL is always derived from the identifier and the portal which produced it; it's never
// stored, meaning it can't fall out of sync with the configured portal.
type Skylink struct {
	id        string
	portalURL string
}

// NewSkylink returns a skylink for the given identifier, resolvable via the given portal.
func NewSkylink(portalURL, id string) Skylink {
	return Skylink{id: id, portalURL: portalURL}
}

// ID returns the raw content identifier.
func (s Skylink) ID() string {
	return s.id
}

// HTTP returns the URL the content may be fetched from via the portal.
func (s Skylink) HTTP() string {
	return s.portalURL + "/" + s.id
}

func (s Skylink) String() string {
	return s.id
}
