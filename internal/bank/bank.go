// Package bank loads and validates the static bilingual question bank.
package bank

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"disciple-assessment-service/internal/domain"
)

//go:embed bank.json
var defaultBank []byte

// DefaultID is the id of the embedded bank.
const DefaultID = "disciple-profile"

// Default returns the bank compiled into the binary.
func Default() (domain.Bank, error) {
	return Parse(defaultBank)
}

// Load reads a bank document from disk.
func Load(path string) (domain.Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Bank{}, fmt.Errorf("%w: %v", domain.ErrBankUnavailable, err)
	}
	return Parse(data)
}

// Parse decodes and validates a bank document. Item section ids are filled from
// their owning section.
func Parse(data []byte) (domain.Bank, error) {
	var b domain.Bank
	if err := json.Unmarshal(data, &b); err != nil {
		return domain.Bank{}, fmt.Errorf("%w: %v", domain.ErrBankInvalid, err)
	}
	for i := range b.Sections {
		for j := range b.Sections[i].Items {
			b.Sections[i].Items[j].SectionID = b.Sections[i].ID
		}
	}
	if err := Validate(b); err != nil {
		return domain.Bank{}, err
	}
	return b, nil
}

// Validate checks the structural rules every bank must satisfy.
func Validate(b domain.Bank) error {
	if len(b.Sections) == 0 {
		return fmt.Errorf("%w: no sections", domain.ErrBankInvalid)
	}
	if err := validateScale(b.Scale); err != nil {
		return err
	}

	sectionIDs := make(map[string]struct{}, len(b.Sections))
	itemIDs := make(map[string]struct{}, b.ItemCount())
	for _, section := range b.Sections {
		if section.ID == "" {
			return fmt.Errorf("%w: section without id", domain.ErrBankInvalid)
		}
		if _, dup := sectionIDs[section.ID]; dup {
			return fmt.Errorf("%w: duplicate section %q", domain.ErrBankInvalid, section.ID)
		}
		sectionIDs[section.ID] = struct{}{}
		if !section.Group.Valid() {
			return fmt.Errorf("%w: section %q has unknown group %q", domain.ErrBankInvalid, section.ID, section.Group)
		}
		if len(section.Items) == 0 {
			return fmt.Errorf("%w: section %q has no items", domain.ErrBankInvalid, section.ID)
		}
		for _, item := range section.Items {
			if item.ID == "" {
				return fmt.Errorf("%w: item without id in section %q", domain.ErrBankInvalid, section.ID)
			}
			if _, dup := itemIDs[item.ID]; dup {
				return fmt.Errorf("%w: duplicate item %q", domain.ErrBankInvalid, item.ID)
			}
			itemIDs[item.ID] = struct{}{}
		}
	}
	return nil
}

// validateScale requires exactly the contiguous values 1..5.
func validateScale(scale []domain.ScaleLabel) error {
	const maxValue = 5
	if len(scale) != maxValue {
		return fmt.Errorf("%w: scale must have %d labels, got %d", domain.ErrBankInvalid, maxValue, len(scale))
	}
	seen := make(map[int]bool, maxValue)
	for _, label := range scale {
		if label.Value < 1 || label.Value > maxValue || seen[label.Value] {
			return fmt.Errorf("%w: bad scale value %d", domain.ErrBankInvalid, label.Value)
		}
		seen[label.Value] = true
	}
	return nil
}
