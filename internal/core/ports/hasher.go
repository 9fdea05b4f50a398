package ports

// Hasher defines the interface for computing content checksums.
//
//go:generate mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// HashFile returns the hex checksum of the file's contents.
	HashFile(path string) (string, error)
	// HashBytes returns the hex checksum of data.
	HashBytes(data []byte) string
}
