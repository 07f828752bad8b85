package storage

import (
	"encoding/json"
	"sort"

	"github.com/infopercept/rix/internal/core/domain"
)

// toModel converts a domain entry to its database form.
func toModel(entry domain.ProductEntry) (ProductModel, error) {
	model := ProductModel{
		VendorID:    entry.VendorID,
		ProductID:   entry.ProductID,
		Vendor:      entry.Vendor,
		Product:     entry.Product,
		Category:    string(entry.Category),
		Subcategory: entry.Subcategory,
	}

	for i, rule := range entry.GenericPatterns {
		rm, err := toRuleModel(rule, "", i)
		if err != nil {
			return ProductModel{}, err
		}
		model.Rules = append(model.Rules, rm)
	}

	labels := make([]string, 0, len(entry.VersionedPatterns))
	for label := range entry.VersionedPatterns {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		for i, rule := range entry.VersionedPatterns[label] {
			rm, err := toRuleModel(rule, label, i)
			if err != nil {
				return ProductModel{}, err
			}
			model.Rules = append(model.Rules, rm)
		}
	}

	return model, nil
}

func toRuleModel(rule domain.PatternRule, label string, position int) (RuleModel, error) {
	rm := RuleModel{
		VersionRange: label,
		Position:     position,
		Name:         rule.Name,
		Pattern:      rule.Pattern,
		VersionGroup: rule.VersionGroup,
		Priority:     rule.Priority,
		Confidence:   rule.Confidence,
	}
	if rule.Metadata != nil {
		encoded, err := json.Marshal(rule.Metadata)
		if err != nil {
			return RuleModel{}, err
		}
		rm.Metadata = string(encoded)
	}
	return rm, nil
}

// toDomain converts a database model back to a domain entry.
func toDomain(m ProductModel) (domain.ProductEntry, error) {
	entry := domain.ProductEntry{
		Vendor:      m.Vendor,
		VendorID:    m.VendorID,
		Product:     m.Product,
		ProductID:   m.ProductID,
		Category:    domain.Category(m.Category),
		Subcategory: m.Subcategory,
	}

	for _, rm := range m.Rules {
		rule := domain.PatternRule{
			Name:         rm.Name,
			Pattern:      rm.Pattern,
			VersionGroup: rm.VersionGroup,
			Priority:     rm.Priority,
			Confidence:   rm.Confidence,
		}
		if rm.Metadata != "" {
			var md domain.PatternMetadata
			if err := json.Unmarshal([]byte(rm.Metadata), &md); err != nil {
				return domain.ProductEntry{}, err
			}
			rule.Metadata = &md
		}

		if rm.VersionRange == "" {
			entry.GenericPatterns = append(entry.GenericPatterns, rule)
		} else {
			if entry.VersionedPatterns == nil {
				entry.VersionedPatterns = make(map[string][]domain.PatternRule)
			}
			entry.VersionedPatterns[rm.VersionRange] = append(entry.VersionedPatterns[rm.VersionRange], rule)
		}
	}

	return entry, nil
}
