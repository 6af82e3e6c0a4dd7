package seed

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/papyrusworks/papyrus/pkg/docref"
	"github.com/papyrusworks/papyrus/pkg/models"
	"github.com/papyrusworks/papyrus/pkg/store"
)

// Document is one entry in a seed file.
type Document struct {
	// Path is optional; when empty it is derived from the title.
	Path      string   `yaml:"path"`
	Title     string   `yaml:"title"`
	Content   string   `yaml:"content"`
	Published bool     `yaml:"published"`
	Redirects []string `yaml:"redirects"`

	// CreatedAt accepts most common timestamp formats and backdates
	// the imported document.
	CreatedAt string `yaml:"created_at"`
}

// File is the top-level seed file structure.
type File struct {
	Documents []Document `yaml:"documents"`
}

// Summary reports what an import run accomplished.
type Summary struct {
	Documents int
	Redirects int
	Skipped   int
}

// Importer loads seed files into the store.
type Importer struct {
	store  *store.Store
	db     *gorm.DB
	logger hclog.Logger
}

// NewImporter creates an Importer.
func NewImporter(s *store.Store, db *gorm.DB, logger hclog.Logger) *Importer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Importer{
		store:  s,
		db:     db,
		logger: logger.Named("seed"),
	}
}

// ImportFile reads a YAML seed file and imports every document in it.
// Bad entries are skipped and collected; the rest of the file still
// imports. The returned error aggregates everything that went wrong.
func (i *Importer) ImportFile(ctx context.Context, path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return i.Import(ctx, data)
}

// Import parses YAML seed data and imports every document in it.
func (i *Importer) Import(ctx context.Context, data []byte) (*Summary, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	summary := &Summary{}
	var result *multierror.Error

	for n, entry := range file.Documents {
		if err := i.importDocument(ctx, entry, summary); err != nil {
			summary.Skipped++
			result = multierror.Append(result, fmt.Errorf(
				"document %d (%q): %w", n, entry.Title, err))
			continue
		}
		summary.Documents++
	}

	i.logger.Info("seed import finished",
		"documents", summary.Documents,
		"redirects", summary.Redirects,
		"skipped", summary.Skipped,
	)
	return summary, result.ErrorOrNil()
}

func (i *Importer) importDocument(ctx context.Context, entry Document, summary *Summary) error {
	path := entry.Path
	if path == "" {
		path = DerivePath(entry.Title)
	}

	// Parse the timestamp before writing anything so a bad entry fails
	// without leaving a half-imported document behind.
	var createdAt time.Time
	if entry.CreatedAt != "" {
		var err error
		createdAt, err = dateparse.ParseAny(entry.CreatedAt)
		if err != nil {
			return fmt.Errorf("invalid created_at %q: %w", entry.CreatedAt, err)
		}
	}

	doc, err := i.store.Upsert(ctx, docref.Reference{}, store.UpsertInput{
		Path:      path,
		Title:     entry.Title,
		Content:   entry.Content,
		Published: entry.Published,
	})
	if err != nil {
		return err
	}

	if !createdAt.IsZero() {
		if err := i.db.WithContext(ctx).
			Model(&models.Document{}).
			Where("id = ?", doc.ID).
			Update("created_at", createdAt).
			Error; err != nil {
			return err
		}
	}

	for _, redirectPath := range entry.Redirects {
		if _, err := i.store.AddRedirect(ctx, docref.ByID(doc.ID), redirectPath); err != nil {
			return fmt.Errorf("redirect %q: %w", redirectPath, err)
		}
		summary.Redirects++
	}

	i.logger.Debug("imported document",
		"id", doc.ID,
		"path", doc.Path,
		"published", entry.Published,
	)
	return nil
}

// DerivePath builds a path from a document title: kebab-cased, rooted
// at /.
func DerivePath(title string) string {
	slug := strcase.ToKebab(strings.TrimSpace(title))
	return "/" + slug
}
