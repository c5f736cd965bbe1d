package keys

import (
	"fmt"
	"path/filepath"
	"strings"

	"cloud.google.com/go/datastore/apiv1/datastorepb"
	"github.com/iancoleman/strcase"
	"google.golang.org/protobuf/proto"

	"github.com/web3-inreach/jentity/internal/config"
	"github.com/web3-inreach/jentity/internal/errors"
)

// Builder assigns keys to converted entities
type Builder struct {
	partition   *datastorepb.PartitionId
	kind        string
	keyProperty string
}

// NewBuilder creates a Builder from the key section of cfg.
// inputName is the input file path, used for the kind when none is configured.
func NewBuilder(cfg *config.Config, inputName string) *Builder {
	kind := cfg.Key.Kind
	if kind == "" {
		kind = KindFromFileName(inputName)
	}

	var partition *datastorepb.PartitionId
	if cfg.Key.Project != "" || cfg.Key.Database != "" || cfg.Key.Namespace != "" {
		partition = &datastorepb.PartitionId{
			ProjectId:   cfg.Key.Project,
			DatabaseId:  cfg.Key.Database,
			NamespaceId: cfg.Key.Namespace,
		}
	}

	return &Builder{
		partition:   partition,
		kind:        kind,
		keyProperty: cfg.Key.KeyProperty,
	}
}

// KindFromFileName derives an entity kind from a file name,
// e.g. "data/user_profiles.json" becomes "UserProfiles".
func KindFromFileName(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return config.DefaultKind
	}
	kind := strcase.ToCamel(base)
	if kind == "" {
		return config.DefaultKind
	}
	return kind
}

// Kind returns the kind used for every key
func (b *Builder) Kind() string {
	return b.kind
}

// KeyFor builds the key of a single entity. Without a key property the key
// is incomplete and the store allocates an id.
func (b *Builder) KeyFor(entity *datastorepb.Entity) (*datastorepb.Key, error) {
	element := &datastorepb.Key_PathElement{Kind: b.kind}

	if b.keyProperty != "" {
		value, ok := entity.GetProperties()[b.keyProperty]
		if !ok {
			return nil, errors.NewConversionError(fmt.Sprintf("key property '%s' is missing", b.keyProperty), errors.ErrInvalidKey)
		}
		switch v := value.GetValueType().(type) {
		case *datastorepb.Value_StringValue:
			if v.StringValue == "" {
				return nil, errors.NewConversionError(fmt.Sprintf("key property '%s' is empty", b.keyProperty), errors.ErrInvalidKey)
			}
			element.IdType = &datastorepb.Key_PathElement_Name{Name: v.StringValue}
		case *datastorepb.Value_IntegerValue:
			if v.IntegerValue <= 0 {
				return nil, errors.NewConversionError(fmt.Sprintf("key property '%s' must be positive, got %d", b.keyProperty, v.IntegerValue), errors.ErrInvalidKey)
			}
			element.IdType = &datastorepb.Key_PathElement_Id{Id: v.IntegerValue}
		default:
			return nil, errors.NewConversionError(fmt.Sprintf("key property '%s' has an unusable type", b.keyProperty), errors.ErrInvalidKey)
		}
	}

	var partition *datastorepb.PartitionId
	if b.partition != nil {
		partition = proto.Clone(b.partition).(*datastorepb.PartitionId)
	}

	return &datastorepb.Key{
		PartitionId: partition,
		Path:        []*datastorepb.Key_PathElement{element},
	}, nil
}

// Assign sets the key of every entity, stopping at the first failure
func (b *Builder) Assign(entities []*datastorepb.Entity) error {
	for i, entity := range entities {
		key, err := b.KeyFor(entity)
		if err != nil {
			return fmt.Errorf("entity %d: %w", i, err)
		}
		entity.Key = key
	}
	return nil
}
