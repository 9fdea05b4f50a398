package domain

// BuildFingerprint is the pair of content hashes that identifies one slicing input.
type BuildFingerprint struct {
	GeometryChecksum string `json:"geometry_checksum"`
	ConfigChecksum   string `json:"config_checksum"`
}

// Matches reports whether both checksums are equal and non-empty.
func (f BuildFingerprint) Matches(other BuildFingerprint) bool {
	if f.GeometryChecksum == "" || f.ConfigChecksum == "" {
		return false
	}
	return f.GeometryChecksum == other.GeometryChecksum && f.ConfigChecksum == other.ConfigChecksum
}
