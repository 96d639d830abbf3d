package dining

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Keyword families used to infer dietary tags. Matching is by substring
// against lowercased text, so short keywords also match inside longer words.
var (
	meatKeywords = []string{
		"beef", "chicken", "pork", "bacon", "ham", "sausage", "pepperoni",
		"turkey", "lamb", "steak", "meatball", "prosciutto", "salami",
		"hot dog", "ribs", "wing", "drumstick", "brisket",
	}

	seafoodKeywords = []string{
		"fish", "salmon", "tuna", "shrimp", "crab", "lobster", "clam",
		"mussel", "oyster", "scallop", "anchovy", "cod", "tilapia",
	}

	dairyKeywords = []string{
		"milk", "cheese", "butter", "cream", "yogurt", "mozzarella",
		"cheddar", "parmesan", "feta", "gouda", "ricotta", "ice cream",
	}

	eggKeywords = []string{"egg", "omelet", "omelette", "mayo", "aioli", "meringue"}

	glutenKeywords = []string{
		"bread", "pasta", "flour", "wheat", "barley", "rye", "breaded",
		"battered", "crouton", "noodle", "tortilla", "pita", "wrap", "bun",
	}
)

var (
	glutenFreeSignal = regexp.MustCompile(`gluten-free|\bgf\b`)
	dairyFreeSignal  = regexp.MustCompile(`dairy-free|\bdf\b`)
)

// Dietary tags produced by InferDietaryTags.
const (
	TagVegetarian = "vegetarian"
	TagVegan      = "vegan"
	TagGlutenFree = "gluten-free"
	TagDairyFree  = "dairy-free"
)

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// InferDietaryTags infers dietary tags from an item's name and description.
//
// The rules are heuristics. In particular an item is tagged gluten-free
// whenever no gluten keyword is found, so hidden wheat is mislabelled.
// The result is sorted and contains no duplicates.
func InferDietaryTags(name, description string) []string {
	text := strings.ToLower(name + " " + description)

	hasMeat := containsAny(text, meatKeywords)
	hasSeafood := containsAny(text, seafoodKeywords)
	hasDairy := containsAny(text, dairyKeywords)
	hasEgg := containsAny(text, eggKeywords)
	hasGluten := containsAny(text, glutenKeywords)

	var tags []string
	if !hasMeat && !hasSeafood {
		tags = append(tags, TagVegetarian)
		if !hasDairy && !hasEgg {
			tags = append(tags, TagVegan, TagDairyFree)
		}
	}

	if glutenFreeSignal.MatchString(text) || !hasGluten {
		tags = append(tags, TagGlutenFree)
	}

	if dairyFreeSignal.MatchString(text) {
		tags = append(tags, TagDairyFree)
	}

	if strings.Contains(text, "vegan") {
		tags = append(tags, TagVegan, TagVegetarian)
	}

	return NormalizeTags(tags)
}

// Category labels returned by DetectCategory.
const (
	CategoryGeneral = "General"
	CategoryEntrees = "Entrees"
)

type categoryRule struct {
	keywords []string
	label    string
}

// First matching rule wins.
var categoryRules = []categoryRule{
	{[]string{"grill", "bbq"}, "Grill"},
	{[]string{"pizza"}, "Pizza"},
	{[]string{"pasta", "italian", "noodle"}, "Pasta"},
	{[]string{"salad"}, "Salad Bar"},
	{[]string{"deli", "sandwich"}, "Deli"},
	{[]string{"dessert", "bakery", "cake"}, "Desserts"},
	{[]string{"asian", "mexican", "indian", "international"}, "Global"},
	{[]string{"breakfast"}, "Breakfast"},
	{[]string{"soup"}, "Soups"},
}

// DetectCategory maps free text such as a station name to a food category.
// Returns CategoryEntrees when no keyword matches.
func DetectCategory(text string) string {
	text = strings.ToLower(text)
	for _, r := range categoryRules {
		if containsAny(text, r.keywords) {
			return r.label
		}
	}
	return CategoryEntrees
}

// DetectMealType infers a meal type from free text, defaulting to Dinner.
func DetectMealType(text string) MealType {
	text = strings.ToLower(text)
	switch {
	case containsAny(text, []string{"breakfast", "morning", "brunch"}):
		return Breakfast
	case containsAny(text, []string{"lunch", "midday"}):
		return Lunch
	case containsAny(text, []string{"dinner", "evening", "supper"}):
		return Dinner
	}
	return Dinner
}

var (
	caloriesPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:kcal|cal)`)
	proteinPattern  = regexp.MustCompile(`(?i)(\d+)\s*g?\s*protein`)
	carbsPattern    = regexp.MustCompile(`(?i)(\d+)\s*g?\s*carb`)
	fatPattern      = regexp.MustCompile(`(?i)(\d+)\s*g?\s*fat`)
	firstIntPattern = regexp.MustCompile(`\d+`)
)

// ParseNutrition extracts nutrition values from free text such as
// "350 cal, 20g protein, 10g fat". Fields without a match are nil.
func ParseNutrition(text string) Nutrition {
	return Nutrition{
		Calories: matchInt(caloriesPattern, text),
		Protein:  matchInt(proteinPattern, text),
		Carbs:    matchInt(carbsPattern, text),
		Fat:      matchInt(fatPattern, text),
	}
}

func matchInt(re *regexp.Regexp, text string) *int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return atoi(m[1])
}

// ParseFirstInt returns the first run of digits in text, or nil.
func ParseFirstInt(text string) *int {
	return atoi(firstIntPattern.FindString(text))
}

func atoi(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

var (
	skipPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(menu|hours|location|contact|about|home|back|next|prev)`),
		regexp.MustCompile(`^(monday|tuesday|wednesday|thursday|friday|saturday|sunday)`),
		regexp.MustCompile(`^(closed|open|am|pm)$`),
	}

	foodPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(chicken|beef|pork|fish|salmon|tofu|turkey|lamb|steak)\b`),
		regexp.MustCompile(`\b(pizza|pasta|burger|sandwich|wrap|salad|soup|rice|curry)\b`),
		regexp.MustCompile(`\b(eggs?|pancakes?|waffles?|oatmeal|bacon|sausage)\b`),
		regexp.MustCompile(`\b(grilled|roasted|baked|fried|steamed|sauteed)\b`),
		regexp.MustCompile(`\b(fries|potatoes?|vegetables?|beans?|noodles?)\b`),
	}
)

// IsLikelyFoodItem reports whether text looks like a dish name rather than
// page chrome such as navigation links, weekdays or opening hours.
func IsLikelyFoodItem(text string) bool {
	if n := utf8.RuneCountInString(text); n < 4 || n > 80 {
		return false
	}
	text = strings.ToLower(text)
	for _, re := range skipPatterns {
		if re.MatchString(text) {
			return false
		}
	}
	for _, re := range foodPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

var (
	markdownChars = regexp.MustCompile("[*_#`]")
	leadingBullet = regexp.MustCompile(`^[-•]\s*`)
)

// CleanItemName strips markdown emphasis, a leading bullet and redundant
// whitespace from a menu item name.
func CleanItemName(text string) string {
	text = markdownChars.ReplaceAllString(text, "")
	text = leadingBullet.ReplaceAllString(strings.TrimSpace(text), "")
	return strings.Join(strings.Fields(text), " ")
}
