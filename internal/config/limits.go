package config

const (
	// MaxFolderNameLength is the maximum length for a single folder name
	// (one path segment). Fits PostgreSQL VARCHAR(255).
	MaxFolderNameLength = 255

	// MaxArtworkTitleLength is the maximum length for artwork titles.
	MaxArtworkTitleLength = 255

	// MaxArtworkDescriptionLength is the maximum length for artwork descriptions.
	MaxArtworkDescriptionLength = 5000

	// MaxPathDepth is the maximum number of segments in a folder path.
	MaxPathDepth = 32

	// MaxImageBytes is the maximum size of an uploaded artwork image.
	MaxImageBytes = 20 << 20
)
