package shopping

import (
	"strings"
	"unicode"
)

// Aisle groups list items the way a shop lays out its shelves.
type Aisle string

const (
	AisleProduce   Aisle = "produce"
	AisleDairy     Aisle = "dairy"
	AisleMeat      Aisle = "meat"
	AisleBakery    Aisle = "bakery"
	AisleFrozen    Aisle = "frozen"
	AislePantry    Aisle = "pantry"
	AisleDrinks    Aisle = "drinks"
	AisleSnacks    Aisle = "snacks"
	AisleHousehold Aisle = "household"
	AisleCare      Aisle = "personal_care"
	AisleOther     Aisle = "other"
)

// Phrases are checked before single words so "ice cream" is not dairy and
// "oat milk" is not a drink.
var aislePhrases = []struct {
	phrase string
	aisle  Aisle
}{
	{"ice cream", AisleFrozen},
	{"frozen", AisleFrozen},
	{"oat milk", AisleDairy},
	{"peanut butter", AislePantry},
	{"toilet paper", AisleHousehold},
	{"paper towel", AisleHousehold},
	{"dish soap", AisleHousehold},
	{"trash bag", AisleHousehold},
	{"orange juice", AisleDrinks},
	{"sparkling water", AisleDrinks},
}

var aisleWords = map[string]Aisle{
	"apple": AisleProduce, "banana": AisleProduce, "lemon": AisleProduce, "lime": AisleProduce,
	"orange": AisleProduce, "berry": AisleProduce, "grape": AisleProduce, "tomato": AisleProduce,
	"potato": AisleProduce, "onion": AisleProduce, "garlic": AisleProduce, "carrot": AisleProduce,
	"lettuce": AisleProduce, "spinach": AisleProduce, "pepper": AisleProduce, "cucumber": AisleProduce,
	"avocado": AisleProduce, "mushroom": AisleProduce, "herb": AisleProduce, "basil": AisleProduce,

	"milk": AisleDairy, "cheese": AisleDairy, "butter": AisleDairy, "yogurt": AisleDairy,
	"cream": AisleDairy, "egg": AisleDairy, "feta": AisleDairy, "mozzarella": AisleDairy,

	"chicken": AisleMeat, "beef": AisleMeat, "pork": AisleMeat, "mince": AisleMeat,
	"bacon": AisleMeat, "sausage": AisleMeat, "ham": AisleMeat, "salmon": AisleMeat,
	"fish": AisleMeat, "shrimp": AisleMeat, "tofu": AisleMeat,

	"bread": AisleBakery, "bagel": AisleBakery, "roll": AisleBakery, "croissant": AisleBakery,
	"tortilla": AisleBakery, "bun": AisleBakery,

	"pizza": AisleFrozen, "pea": AisleFrozen,

	"rice": AislePantry, "pasta": AislePantry, "noodle": AislePantry, "flour": AislePantry,
	"sugar": AislePantry, "salt": AislePantry, "oil": AislePantry, "vinegar": AislePantry,
	"cereal": AislePantry, "oat": AislePantry, "bean": AislePantry, "lentil": AislePantry,
	"sauce": AislePantry, "spice": AislePantry, "honey": AislePantry, "jam": AislePantry,

	"coffee": AisleDrinks, "tea": AisleDrinks, "juice": AisleDrinks, "water": AisleDrinks,
	"soda": AisleDrinks, "beer": AisleDrinks, "wine": AisleDrinks,

	"chip": AisleSnacks, "crisp": AisleSnacks, "cracker": AisleSnacks, "cookie": AisleSnacks,
	"biscuit": AisleSnacks, "chocolate": AisleSnacks, "popcorn": AisleSnacks, "nut": AisleSnacks,

	"detergent": AisleHousehold, "sponge": AisleHousehold, "foil": AisleHousehold,
	"bleach": AisleHousehold, "battery": AisleHousehold, "cleaner": AisleHousehold,

	"shampoo": AisleCare, "conditioner": AisleCare, "toothpaste": AisleCare,
	"toothbrush": AisleCare, "deodorant": AisleCare, "soap": AisleCare, "razor": AisleCare,
	"tissue": AisleCare, "sunscreen": AisleCare,
}

// AisleOf guesses the aisle of an item from its name. Known phrases win,
// then the last recognised word, so "chocolate milk" lands in dairy.
func AisleOf(name string) Aisle {
	norm := strings.ToLower(strings.TrimSpace(name))
	if norm == "" {
		return AisleOther
	}
	for _, p := range aislePhrases {
		if strings.Contains(norm, p.phrase) {
			return p.aisle
		}
	}

	words := strings.FieldsFunc(norm, func(r rune) bool { return !unicode.IsLetter(r) })
	for i := len(words) - 1; i >= 0; i-- {
		if a, ok := lookupWord(words[i]); ok {
			return a
		}
	}
	return AisleOther
}

// lookupWord tries w as written, then with the common plural endings
// stripped.
func lookupWord(w string) (Aisle, bool) {
	candidates := []string{w}
	if strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") {
		candidates = append(candidates, w[:len(w)-1])
	}
	if strings.HasSuffix(w, "es") {
		candidates = append(candidates, w[:len(w)-2])
	}
	if strings.HasSuffix(w, "ies") {
		candidates = append(candidates, w[:len(w)-3]+"y")
	}
	for _, c := range candidates {
		if a, ok := aisleWords[c]; ok {
			return a, true
		}
	}
	return "", false
}

// Aisle reports the item's aisle.
func (i *Item) Aisle() Aisle { return AisleOf(i.name) }
