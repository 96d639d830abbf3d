package dining

import "strings"

// Allergen is a common food allergen.
type Allergen string

// Allergens detected by DetectAllergens.
const (
	AllergenNuts      Allergen = "nuts"
	AllergenSoy       Allergen = "soy"
	AllergenShellfish Allergen = "shellfish"
	AllergenEggs      Allergen = "eggs"
	AllergenWheat     Allergen = "wheat"
	AllergenDairy     Allergen = "dairy"
)

var (
	nutKeywords = []string{
		"nut", "peanut", "almond", "cashew", "walnut", "pecan",
		"pistachio", "hazelnut", "macadamia", "praline",
	}
	soyKeywords       = []string{"soy", "soya", "tofu", "edamame", "miso", "tempeh", "tamari"}
	shellfishKeywords = []string{"shrimp", "crab", "lobster", "clam", "mussel", "oyster", "scallop", "crawfish", "prawn"}
	wheatKeywords     = []string{"wheat", "flour", "bread", "pasta", "noodle", "cracker", "cereal"}
)

type allergenRule struct {
	allergen Allergen
	keywords []string
}

var allergenRules = []allergenRule{
	{AllergenNuts, nutKeywords},
	{AllergenSoy, soyKeywords},
	{AllergenShellfish, shellfishKeywords},
	{AllergenEggs, eggKeywords},
	{AllergenWheat, wheatKeywords},
	{AllergenDairy, dairyKeywords},
}

// DetectAllergens returns the allergens whose keywords appear in the item's
// name or description, in a fixed order.
func DetectAllergens(name, description string) []Allergen {
	text := strings.ToLower(name + " " + description)
	var out []Allergen
	for _, r := range allergenRules {
		if containsAny(text, r.keywords) {
			out = append(out, r.allergen)
		}
	}
	return out
}

// AllergenTags converts allergens to "contains-<allergen>" tags.
func AllergenTags(allergens []Allergen) []string {
	tags := make([]string, 0, len(allergens))
	for _, a := range allergens {
		tags = append(tags, "contains-"+string(a))
	}
	return tags
}

// MatchesDietFilters reports whether the item satisfies every dietary filter.
// Filters are dietary tags such as "vegetarian" or "gluten-free". A vegan item
// satisfies vegetarian and dairy-free filters. Unknown filters are ignored.
func MatchesDietFilters(item *MenuItem, filters []string) bool {
	has := make(map[string]bool, len(item.Tags))
	for _, t := range item.Tags {
		has[t] = true
	}
	for _, f := range filters {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case TagVegetarian:
			if !has[TagVegetarian] && !has[TagVegan] {
				return false
			}
		case TagVegan:
			if !has[TagVegan] {
				return false
			}
		case TagGlutenFree:
			if !has[TagGlutenFree] {
				return false
			}
		case TagDairyFree:
			if !has[TagDairyFree] && !has[TagVegan] {
				return false
			}
		}
	}
	return true
}
