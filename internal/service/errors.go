package service

import "errors"

// Errors returned by services, mapped to HTTP status codes by handlers
var (
	// ErrInvalidKeywordCount means the requested keyword count is outside the allowed range
	ErrInvalidKeywordCount = errors.New("keyword count must be between 1 and 5")

	// ErrInsufficientKeywords means fewer unused keywords exist than were requested
	ErrInsufficientKeywords = errors.New("not enough unused keywords")

	// ErrGenerationFailed means no selected keyword produced a post
	ErrGenerationFailed = errors.New("no posts could be generated")

	// ErrPostNotFound means the referenced post does not exist
	ErrPostNotFound = errors.New("post not found")

	// ErrInvalidPost means an admin post is missing its title or content
	ErrInvalidPost = errors.New("title and content are required")

	// ErrInvalidLikeAction means the like action is neither like nor unlike
	ErrInvalidLikeAction = errors.New("action must be like or unlike")

	// ErrUnsupportedFormat means the import or export format is not handled for the resource
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrInvalidImportFile means an import file could not be read as its declared format
	ErrInvalidImportFile = errors.New("invalid import file")

	// ErrUnknownResource means the export resource is neither posts nor keywords
	ErrUnknownResource = errors.New("unknown resource")
)
