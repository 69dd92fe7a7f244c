package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Simplici0/pouch.works/internal/pricing"
)

// File is the on-disk layout of a YAML catalog.
type File struct {
	BagTypes    map[string]pricing.BagTypePricingInfo  `yaml:"bagTypes"`
	Materials   map[string]pricing.MaterialPricingInfo `yaml:"materials"`
	VolumeTiers []pricing.VolumeDiscountTier           `yaml:"volumeTiers"`
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (*pricing.StaticReferences, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()

	refs, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("catalog file %s: %w", path, err)
	}
	return refs, nil
}

// Parse decodes a YAML catalog into strict static references: ids missing
// from the file are reported as not found.
func Parse(r io.Reader) (*pricing.StaticReferences, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := file.validate(); err != nil {
		return nil, err
	}

	return &pricing.StaticReferences{
		BagTypes:  file.BagTypes,
		Materials: file.Materials,
		Tiers:     file.VolumeTiers,
		Strict:    true,
	}, nil
}

func (f File) validate() error {
	var errs []error
	if len(f.BagTypes) == 0 {
		errs = append(errs, errors.New("at least one bag type is required"))
	}
	if len(f.Materials) == 0 {
		errs = append(errs, errors.New("at least one material is required"))
	}
	for id, m := range f.Materials {
		if m.PriceMultiplier <= 0 {
			errs = append(errs, fmt.Errorf("material %q: priceMultiplier must be positive", id))
		}
	}
	for i, t := range f.VolumeTiers {
		if t.DiscountRate < 0 || t.DiscountRate >= 1 {
			errs = append(errs, fmt.Errorf("volume tier %d: discountRate must be in [0,1)", i))
		}
		if t.MaxQuantity != 0 && t.MaxQuantity < t.MinQuantity {
			errs = append(errs, fmt.Errorf("volume tier %d: maxQuantity below minQuantity", i))
		}
	}
	return errors.Join(errs...)
}
