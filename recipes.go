package main

import "sort"

var initialElements = []Element{
	{Name: "Hydrogen", Glyph: "⚛️", DiscoveredAt: 1},
	{Name: "Gravity", Glyph: "⚫", DiscoveredAt: 2},
	{Name: "Time", Glyph: "⏳", DiscoveredAt: 3},
}

// PairKey canonicalizes an unordered pair of names into the lookup key used
// by the recipe book and the recipe cache.
func PairKey(a, b string) string {
	names := []string{a, b}
	sort.Strings(names)
	return names[0] + "+" + names[1]
}

type RecipeBook map[string]Recipe

func makes(name, glyph string) Recipe {
	return Recipe{Element: Element{Name: name, Glyph: glyph}}
}

var explodes = Recipe{IsExplosion: true}

func newRecipeBook(entries map[[2]string]Recipe) RecipeBook {
	book := make(RecipeBook, len(entries))
	for pair, r := range entries {
		book[PairKey(pair[0], pair[1])] = r
	}
	return book
}

var defaultRecipes = newRecipeBook(map[[2]string]Recipe{
	// fusion
	{"Helium", "Helium"}:     makes("Carbon", "🪨"),
	{"Carbon", "Helium"}:     makes("Oxygen", "💨"),
	{"Hydrogen", "Hydrogen"}: makes("Helium", "🎈"),
	{"Carbon", "Oxygen"}:     makes("Silicon", "💎"),
	{"Silicon", "Silicon"}:   makes("Iron", "⚙️"),

	// basic celestial objects
	{"Gravity", "Hydrogen"}:  makes("Gas Cloud", "☁️"),
	{"Gas Cloud", "Time"}:    makes("Protostar", "✨"),
	{"Gravity", "Protostar"}: makes("Star", "⭐"),

	// low-mass stellar life cycle
	{"Star", "Time"}:         makes("Red Giant", "🔴"),
	{"Gravity", "Red Giant"}: makes("White Dwarf", "⚪"),
	{"Time", "White Dwarf"}:  makes("Black Dwarf", "⚫"),

	// high-mass stellar life cycle
	{"Gas Cloud", "Star"}:          makes("Massive Star", "☀️"),
	{"Massive Star", "Time"}:       makes("Blue Supergiant", "🔵"),
	{"Blue Supergiant", "Time"}:    makes("Red Supergiant", "🏮"),
	{"Iron", "Massive Star"}:       makes("Core Collapse", "💥"),
	{"Core Collapse", "Gravity"}:   makes("Supernova", "💥"),
	{"Gravity", "Red Supergiant"}:  makes("Supernova", "💥"),
	{"Gravity", "Supernova"}:       makes("Neutron Star", "🌠"),
	{"Gravity", "Neutron Star"}:    makes("Black Hole", "🕳️"),
	{"Neutron Star", "Time"}:       makes("Pulsar", "💫"),
	{"Star", "Star"}:               makes("Binary System", "💞"),
	{"Gas Cloud", "Supernova"}:     makes("Nebula", "🌌"),
	{"Gravity", "Nebula"}:          makes("Star Cluster", "✨"),
	{"Black Hole", "Black Hole"}:   makes("Supermassive Black Hole", "🌀"),
	{"Galaxy", "Galaxy"}:           makes("Galaxy Collision", "☄️"),
	{"Black Hole", "Star"}:         makes("Accretion Disk", "🛸"),
	{"Accretion Disk", "Time"}:     makes("Quasar", "🔆"),
	{"Star Cluster", "Supermassive Black Hole"}: makes("Galaxy", "🪐"),

	// unstable pairs
	{"Star", "White Dwarf"}:                explodes,
	{"Neutron Star", "Neutron Star"}:       explodes,
	{"Black Hole", "Red Supergiant"}:       explodes,
	{"Black Hole", "Galaxy"}:               explodes,
	{"Supernova", "Supernova"}:             explodes,
	{"Galaxy", "Quasar"}:                   explodes,
	{"Black Hole", "Time"}:                 explodes,
	{"Black Hole", "Pulsar"}:               explodes,
})

var elementDescriptions = map[string]string{
	"Hydrogen":                "The simplest and most abundant element in the universe.",
	"Gravity":                 "The force that pulls matter together across cosmic distances.",
	"Time":                    "The dimension along which every star is born, lives and dies.",
	"Helium":                  "Forged when hydrogen nuclei fuse in a stellar core.",
	"Carbon":                  "Built from three helium nuclei; the backbone of life.",
	"Oxygen":                  "Carbon captures one more helium nucleus.",
	"Silicon":                 "Heavy ash from the late burning stages of massive stars.",
	"Iron":                    "The end of fusion: making it costs energy instead of releasing it.",
	"Gas Cloud":               "A cold, diffuse region of hydrogen held loosely by gravity.",
	"Protostar":               "A collapsing clump of gas that has not yet ignited.",
	"Star":                    "A sphere of plasma shining through nuclear fusion.",
	"Red Giant":               "A star that has exhausted the hydrogen in its core and swelled.",
	"White Dwarf":             "The hot, dense remnant core of a low-mass star.",
	"Black Dwarf":             "A white dwarf that has cooled until it no longer glows.",
	"Massive Star":            "A star many times heavier than the Sun, burning fast and bright.",
	"Blue Supergiant":         "A hot, luminous massive star in its prime.",
	"Red Supergiant":          "A bloated massive star near the end of its life.",
	"Core Collapse":           "An iron core that can no longer support its own weight.",
	"Supernova":               "The explosive death of a star, outshining whole galaxies.",
	"Neutron Star":            "A city-sized remnant made almost entirely of neutrons.",
	"Black Hole":              "A region where gravity is so strong that not even light escapes.",
	"Pulsar":                  "A rapidly spinning neutron star sweeping beams across space.",
	"Binary System":           "Two stars orbiting a common center of mass.",
	"Nebula":                  "A glowing cloud of gas and dust, the nursery of new stars.",
	"Star Cluster":            "Hundreds to millions of stars bound by mutual gravity.",
	"Supermassive Black Hole": "A black hole of millions of solar masses at a galactic core.",
	"Galaxy":                  "A vast system of stars, gas and dark matter.",
	"Galaxy Collision":        "Two galaxies merging over hundreds of millions of years.",
	"Accretion Disk":          "Matter spiraling into a black hole, heated until it glows.",
	"Quasar":                  "An accretion disk around a supermassive black hole, brighter than its galaxy.",
}

var recipeDescriptions = map[string]string{
	PairKey("Hydrogen", "Hydrogen"):         "Two hydrogen nuclei fuse, releasing energy and forming helium.",
	PairKey("Helium", "Helium"):             "The triple-alpha process turns helium into carbon.",
	PairKey("Gravity", "Hydrogen"):          "Gravity gathers scattered hydrogen into a cloud.",
	PairKey("Gas Cloud", "Time"):            "Given time, the densest knots of the cloud collapse.",
	PairKey("Gravity", "Protostar"):         "Pressure in the core climbs until fusion ignites.",
	PairKey("Star", "Time"):                 "The core runs out of hydrogen and the envelope expands.",
	PairKey("Gravity", "Red Giant"):         "The outer layers drift away, leaving the bare core.",
	PairKey("Gravity", "Supernova"):         "The collapsed core is crushed into neutron matter.",
	PairKey("Gravity", "Neutron Star"):      "Beyond the neutron limit, nothing stops the collapse.",
	PairKey("Star", "White Dwarf"):          "The dwarf steals mass until it detonates: a type Ia supernova.",
	PairKey("Neutron Star", "Neutron Star"): "Two neutron stars collide in a kilonova, forging gold.",
	PairKey("Black Hole", "Time"):           "Over unimaginable time, the black hole evaporates in Hawking radiation.",
	PairKey("Supernova", "Supernova"):       "Overlapping shock waves tear the region apart.",
}

// DescribeElement returns the tooltip text for an element name.
func DescribeElement(name string) string {
	if d, ok := elementDescriptions[name]; ok {
		return d
	}
	return defaultDescription
}
