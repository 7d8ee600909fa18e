package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/trendscanner-api/internal/models"
	"github.com/trendscanner-api/internal/repository"
)

// Export resources and formats
const (
	ExportResourcePosts    = "posts"
	ExportResourceKeywords = "keywords"

	FormatNDJSON = "ndjson"
	FormatJSON   = "json"
	FormatCSV    = "csv"
)

// ndjsonFlushEvery is how many records are written between flushes
const ndjsonFlushEvery = 100

// exportService is the concrete implementation of ExportService
type exportService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(repos *repository.Repositories, log zerolog.Logger) *exportService {
	return &exportService{
		repos: repos,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// StreamResource streams posts or keywords in the given format
func (s *exportService) StreamResource(ctx context.Context, w http.ResponseWriter, resource, format string) error {
	switch resource {
	case ExportResourcePosts:
		return s.StreamPosts(ctx, w, format)
	case ExportResourceKeywords:
		return s.StreamKeywords(ctx, w, format)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownResource, resource)
	}
}

// StreamPosts streams every post in the specified format
func (s *exportService) StreamPosts(ctx context.Context, w http.ResponseWriter, format string) error {
	s.log.Info().Str("format", format).Msg("Starting posts export")

	var (
		count int
		err   error
	)
	switch format {
	case FormatNDJSON:
		count, err = streamNDJSON(w, "posts", func(emit func(*models.Post) error) error {
			return s.repos.Post.StreamAll(ctx, emit)
		})
	case FormatJSON:
		count, err = streamJSONArray(w, "posts", func(emit func(*models.Post) error) error {
			return s.repos.Post.StreamAll(ctx, emit)
		})
	case FormatCSV:
		count, err = s.streamPostsCSV(ctx, w)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	s.log.Info().Int("count", count).Str("format", format).Msg("Posts export completed")
	return err
}

// StreamKeywords streams every keyword in the specified format
func (s *exportService) StreamKeywords(ctx context.Context, w http.ResponseWriter, format string) error {
	s.log.Info().Str("format", format).Msg("Starting keywords export")

	var (
		count int
		err   error
	)
	switch format {
	case FormatNDJSON:
		count, err = streamNDJSON(w, "keywords", func(emit func(*models.Keyword) error) error {
			return s.repos.Keyword.StreamAll(ctx, emit)
		})
	case FormatJSON:
		count, err = streamJSONArray(w, "keywords", func(emit func(*models.Keyword) error) error {
			return s.repos.Keyword.StreamAll(ctx, emit)
		})
	case FormatCSV:
		count, err = s.streamKeywordsCSV(ctx, w)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	s.log.Info().Int("count", count).Str("format", format).Msg("Keywords export completed")
	return err
}

func (s *exportService) streamPostsCSV(ctx context.Context, w http.ResponseWriter) (int, error) {
	setAttachment(w, "text/csv", "posts.csv")

	writer := csv.NewWriter(w)
	defer writer.Flush()

	writer.Write([]string{"id", "title", "slug", "content", "image_url", "tags", "views", "likes", "auto_generated", "created_at"})

	count := 0
	err := s.repos.Post.StreamAll(ctx, func(post *models.Post) error {
		count++
		return writer.Write([]string{
			post.ID,
			post.Title,
			post.Slug,
			post.Content,
			post.ImageURL,
			strings.Join(post.Tags, ";"),
			strconv.Itoa(post.Views),
			strconv.Itoa(post.Likes),
			strconv.FormatBool(post.Metadata.AutoGenerated),
			post.CreatedAt.UTC().Format(time.RFC3339),
		})
	})
	return count, err
}

func (s *exportService) streamKeywordsCSV(ctx context.Context, w http.ResponseWriter) (int, error) {
	setAttachment(w, "text/csv", "keywords.csv")

	writer := csv.NewWriter(w)
	defer writer.Flush()

	writer.Write([]string{"id", "keyword", "used", "created_at", "used_at"})

	count := 0
	err := s.repos.Keyword.StreamAll(ctx, func(keyword *models.Keyword) error {
		usedAt := ""
		if keyword.UsedAt != nil {
			usedAt = keyword.UsedAt.UTC().Format(time.RFC3339)
		}
		count++
		return writer.Write([]string{
			keyword.ID,
			keyword.Keyword,
			strconv.FormatBool(keyword.Used),
			keyword.CreatedAt.UTC().Format(time.RFC3339),
			usedAt,
		})
	})
	return count, err
}

// streamNDJSON writes one JSON document per line, flushing periodically
func streamNDJSON[T any](w http.ResponseWriter, name string, stream func(func(T) error) error) (int, error) {
	setAttachment(w, "application/x-ndjson", name+".ndjson")

	flusher, _ := w.(http.Flusher)
	count := 0

	err := stream(func(record T) error {
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		w.Write(data)
		w.Write([]byte("\n"))
		count++

		if count%ndjsonFlushEvery == 0 && flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	return count, err
}

// streamJSONArray writes records as a single JSON array without buffering them
func streamJSONArray[T any](w http.ResponseWriter, name string, stream func(func(T) error) error) (int, error) {
	setAttachment(w, "application/json", name+".json")

	w.Write([]byte("["))
	count := 0

	err := stream(func(record T) error {
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		if count > 0 {
			w.Write([]byte(","))
		}
		w.Write(data)
		count++
		return nil
	})

	w.Write([]byte("]"))
	return count, err
}

func setAttachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
}
