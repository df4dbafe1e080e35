package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"bmapp/logger"
	"bmapp/model"
	"bmapp/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// License wording stamped on ingested clips.
const (
	LicenseTypeUserUploaded = "User Uploaded Original"
	LicenseTypeAIGenerated  = "Envato MusicGen – Commercial License"
	UsageNotesUserUploaded  = "Original sound uploaded by the creator. No license required."
	UsageNotesAIGenerated   = "Generated with Envato MusicGen. License proof attached; see license_url."
)

// Object key prefixes.
const (
	AudioPrefix   = "audio/"
	LicensePrefix = "licenses/"
)

const maxFilenameLength = 100

var (
	ingestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bmapp_ingest_total",
		Help: "Upload ingest attempts by result.",
	}, []string{"result"})

	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_\-\.]`)
	whitespaceRun       = regexp.MustCompile(`\s+`)
)

// ObjectStore is the blob storage ingest writes to.
type ObjectStore interface {
	// Put stores r under key and returns the object's public URL.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// FilePart is one uploaded file of a multipart request.
type FilePart struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// IngestRequest holds the raw upload form. Numeric fields are the strings
// the client sent; they are parsed leniently.
type IngestRequest struct {
	Audio   *FilePart
	License *FilePart

	Title            string
	Category         string
	Type             string
	OriginalAudioURL string
	ArtistName       string

	Duration      string
	Priority      string
	Rating        string
	DownloadCount string
	SoundFlag     string
}

// Ingestor validates uploads, stores their files and creates the catalog record.
type Ingestor struct {
	repo    repository.AudioRepository
	objects ObjectStore
	now     func() time.Time
}

// NewIngestor creates an Ingestor writing files to objects and records to repo.
func NewIngestor(repo repository.AudioRepository, objects ObjectStore) *Ingestor {
	return &Ingestor{repo: repo, objects: objects, now: time.Now}
}

// Ingest creates one clip from req. Uploaded files are not removed when the
// record cannot be written; the orphaned keys are logged.
func (in *Ingestor) Ingest(ctx context.Context, req IngestRequest) (*model.AudioClip, error) {
	clip, err := in.ingest(ctx, req)
	if err != nil {
		ingestTotal.WithLabelValues(resultLabel(err)).Inc()
		return nil, err
	}
	ingestTotal.WithLabelValues("ok").Inc()
	return clip, nil
}

func (in *Ingestor) ingest(ctx context.Context, req IngestRequest) (*model.AudioClip, error) {
	if req.Audio == nil || req.Audio.Body == nil {
		return nil, validationErr("audio file required")
	}
	// Only exactly 1 marks an original; 1.5 still needs a license.
	soundFlag := parseNumber(req.SoundFlag)
	original := soundFlag == model.SoundFlagOriginal
	if !original && (req.License == nil || req.License.Body == nil) {
		return nil, validationErr("license file required")
	}
	audioType, ok := model.ParseAudioType(req.Type)
	if !ok {
		return nil, validationErr(fmt.Sprintf("invalid type %q: must be one of music, sound, background-music, fx", req.Type))
	}

	stamp := in.now().UnixMilli()

	audioKey := ObjectKey(AudioPrefix, stamp, req.Audio.Filename)
	audioURL, err := in.objects.Put(ctx, audioKey, req.Audio.Body, req.Audio.Size, req.Audio.ContentType)
	if err != nil {
		return nil, fmt.Errorf("%w: upload audio: %w", ErrStorage, err)
	}
	orphans := []string{audioKey}

	var licenseURL *string
	if !original {
		licenseKey := ObjectKey(LicensePrefix, stamp, req.License.Filename)
		u, err := in.objects.Put(ctx, licenseKey, req.License.Body, req.License.Size, req.License.ContentType)
		if err != nil {
			logOrphans(orphans, err)
			return nil, fmt.Errorf("%w: upload license: %w", ErrStorage, err)
		}
		licenseURL = &u
		orphans = append(orphans, licenseKey)
	}

	clip := &model.AudioClip{
		Title:            strings.TrimSpace(req.Title),
		Category:         strings.TrimSpace(req.Category),
		Type:             audioType,
		Duration:         nonNegative(int(parseNumber(req.Duration))),
		AudioURL:         audioURL,
		Priority:         int(parseNumber(req.Priority)),
		Rating:           clampRating(parseNumber(req.Rating)),
		DownloadCount:    nonNegative(int(parseNumber(req.DownloadCount))),
		LicenseURL:       licenseURL,
		OriginalAudioURL: optionalString(req.OriginalAudioURL),
		ArtistName:       strings.TrimSpace(req.ArtistName),
		SoundFlag:        soundFlag,
		SchemaVersion:    model.AudioSchemaVersion,
	}
	if original {
		clip.Source = model.SourceUserUploaded
		clip.LicenseType = LicenseTypeUserUploaded
		clip.UsageNotes = UsageNotesUserUploaded
	} else {
		clip.Source = model.SourceAIGenerated
		clip.LicenseType = LicenseTypeAIGenerated
		clip.UsageNotes = UsageNotesAIGenerated
	}
	clip.ApplyDefaults()

	if err := in.repo.Create(ctx, clip); err != nil {
		logOrphans(orphans, err)
		return nil, fmt.Errorf("%w: create audio record: %w", ErrStore, err)
	}

	logger.Info("audio ingested",
		logger.String("id", clip.ID),
		logger.String("title", clip.Title),
		logger.String("type", string(clip.Type)),
		logger.String("source", string(clip.Source)),
		logger.String("audioKey", audioKey))
	return clip, nil
}

// ObjectKey builds "<prefix><unixMillis>-<sanitized filename>".
func ObjectKey(prefix string, unixMillis int64, filename string) string {
	return fmt.Sprintf("%s%d-%s", prefix, unixMillis, SanitizeFilename(filename))
}

// SanitizeFilename reduces a client file name to [a-zA-Z0-9_.-], spaces
// becoming underscores, at most 100 characters.
func SanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if base == "." || base == "/" {
		base = ""
	}
	base = whitespaceRun.ReplaceAllString(base, "_")
	base = unsafeFilenameChars.ReplaceAllString(base, "")
	base = strings.TrimLeft(base, ".")

	if len(base) > maxFilenameLength {
		ext := filepath.Ext(base)
		if len(ext) > 10 {
			ext = ""
		}
		base = base[:maxFilenameLength-len(ext)] + ext
	}
	if base == "" {
		base = "file"
	}
	return base
}

// parseNumber returns 0 unless raw is a finite number.
func parseNumber(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func clampRating(r float64) float64 {
	return math.Max(0, math.Min(5, r))
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func logOrphans(keys []string, cause error) {
	for _, k := range keys {
		logger.Warn("uploaded object left without catalog record",
			logger.String("key", k),
			logger.ErrorField(cause))
	}
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "invalid"
	case errors.Is(err, ErrStorage):
		return "storage_error"
	default:
		return "store_error"
	}
}
