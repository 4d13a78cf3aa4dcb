package config

// Operational limits. These are fixed rather than environment-driven;
// changing them changes documented API behavior.
const (
	// MaxUploadBytes caps the size of an imported file.
	MaxUploadBytes = 50 << 20

	// MaxTitleLength caps chapter, project and document titles.
	MaxTitleLength = 300

	// MaxNameLength caps character names.
	MaxNameLength = 200

	// SplitWordBudget is the word count above which a segmented chapter
	// is divided into parts at sentence boundaries.
	SplitWordBudget = 4000

	// MaxSubParts bounds the parts one oversized chapter may produce.
	MaxSubParts = 50

	// MinChapterWords is the threshold below which a detected segment is
	// folded into its neighbor instead of becoming a chapter.
	MinChapterWords = 20

	// OverlapWindow is the character distance within which two boundary
	// candidates are considered duplicates of the same boundary.
	OverlapWindow = 100

	// MaxReorderRetries bounds normalize-and-retry cycles when an order
	// collision is detected during a structural mutation.
	MaxReorderRetries = 3
)
