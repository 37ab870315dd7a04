package storage

import (
	"context"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage defines the object storage operations used for voice clips.
type FileStorage interface {
	// PutObject uploads data under objectKey.
	PutObject(ctx context.Context, objectKey, contentType string, data []byte) error

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET
	// requests for an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}

// VoiceClipKey builds the object key of a recorded clip:
// voice/<athlete>/<session>/<uuid>.<ext>.
func VoiceClipKey(athleteID, sessionID, contentType string) string {
	return path.Join("voice", athleteID, sessionID, uuid.NewString()+"."+extensionFor(contentType))
}

var knownAudioExtensions = map[string]string{
	"audio/wav":   "wav",
	"audio/x-wav": "wav",
	"audio/wave":  "wav",
	"audio/mpeg":  "mp3",
	"audio/mp3":   "mp3",
	"audio/mp4":   "m4a",
	"audio/x-m4a": "m4a",
	"audio/ogg":   "ogg",
	"audio/webm":  "webm",
	"audio/flac":  "flac",
}

func extensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	if ext, ok := knownAudioExtensions[mediaType]; ok {
		return ext
	}
	return "bin"
}
