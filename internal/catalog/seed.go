package catalog

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/osse101/pointshop/internal/domain"
	"github.com/osse101/pointshop/internal/logger"
	"github.com/osse101/pointshop/internal/validation"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Seed is the JSON catalog seed file
type Seed struct {
	Version string    `json:"version"`
	Items   []NewItem `json:"items"`
}

// SeedResult counts what a seed run did
type SeedResult struct {
	Created int
	Skipped int
}

// Loader reads catalog seed files
type Loader struct {
	schemaValidator validation.SchemaValidator
}

// NewLoader creates a Loader backed by the embedded seed schema
func NewLoader() *Loader {
	return &Loader{schemaValidator: validation.NewSchemaValidator(schemaFS)}
}

// Load reads and schema-checks a seed file
func (l *Loader) Load(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgReadSeedFailed, err)
	}
	return l.Parse(path, data)
}

// Parse schema-checks and decodes seed content
func (l *Loader) Parse(name string, data []byte) (*Seed, error) {
	if err := l.schemaValidator.ValidateBytes(data, SeedSchemaPath); err != nil {
		return nil, fmt.Errorf(ErrMsgSeedSchemaFailed, name, errors.Join(domain.ErrValidation, err))
	}

	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf(ErrMsgParseSeedFailed, err)
	}
	return &seed, nil
}

// Apply creates every seed item that does not exist yet. Items are matched
// by name, so running the same seed twice creates nothing the second time.
func (l *Loader) Apply(ctx context.Context, svc Service, seed *Seed) (*SeedResult, error) {
	log := logger.FromContext(ctx)
	result := &SeedResult{}

	for _, in := range seed.Items {
		if _, err := svc.Create(ctx, in); err != nil {
			if errors.Is(err, domain.ErrDuplicateName) {
				log.Debug(LogMsgSeedItemExisting, "name", in.Name)
				result.Skipped++
				continue
			}
			return result, fmt.Errorf(ErrMsgSeedItemFailed, in.Name, err)
		}
		result.Created++
	}

	log.Info(LogMsgSeedCompleted, "created", result.Created, "skipped", result.Skipped)
	return result, nil
}
