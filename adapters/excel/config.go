package excel

// ReaderConfig holds configuration for reading uploaded files
type ReaderConfig struct {
	MaxRows int `json:"max_rows"` // data rows beyond this are rejected; 0 disables the limit
}

// DefaultReaderConfig returns sensible defaults for file reading
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		MaxRows: 1_000_000,
	}
}
