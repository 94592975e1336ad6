// Package catalog holds the static learning content: the categories a child
// can browse and the phrases that get pre-rendered as word clips.
package catalog

import (
	"fmt"
	"strconv"
)

// Item is a single learnable thing. Name is what gets spoken.
type Item struct {
	Name string
	// Hex is the swatch colour for colour items and empty otherwise.
	Hex string
}

// Category groups items under one browsable heading.
type Category struct {
	ID    string
	Title string
	Items []Item
}

// Question fragments spoken around an item name.
const (
	ThatWas   = "That was"
	TryToFind = "Try to find"
)

// Question returns the quiz prompt for an item, e.g. "Which one is Lion?".
func Question(name string) string {
	return fmt.Sprintf("Which one is %s?", name)
}

func names(ns ...string) []Item {
	items := make([]Item, len(ns))
	for i, n := range ns {
		items[i] = Item{Name: n}
	}
	return items
}

func alphabet() []Item {
	items := make([]Item, 0, 26)
	for c := 'A'; c <= 'Z'; c++ {
		items = append(items, Item{Name: string(c)})
	}
	return items
}

func numbers() []Item {
	items := make([]Item, 0, 10)
	for i := 1; i <= 10; i++ {
		items = append(items, Item{Name: strconv.Itoa(i)})
	}
	return items
}

var categories = []Category{
	{ID: "alphabets", Title: "Alphabets", Items: alphabet()},
	{ID: "numbers", Title: "Numbers", Items: numbers()},
	{ID: "colors", Title: "Colors", Items: []Item{
		{Name: "Red", Hex: "#FF4D4D"},
		{Name: "Green", Hex: "#4CAF50"},
		{Name: "Blue", Hex: "#2196F3"},
		{Name: "Yellow", Hex: "#FFEB3B"},
		{Name: "Pink", Hex: "#FF80AB"},
		{Name: "Purple", Hex: "#9C27B0"},
		{Name: "Black", Hex: "#1a1a1a"},
		{Name: "White", Hex: "#FFFFFF"},
	}},
	{ID: "shapes", Title: "Shapes", Items: names("Circle", "Triangle", "Square", "Star", "Plus")},
	{ID: "animals", Title: "Animals", Items: names(
		"Lion", "Tiger", "Dog", "Cat", "Pig", "Rhino", "Hippo", "Horse",
		"Donkey", "Zebra", "Sheep", "Goat", "Llama", "Camel", "Elephant",
		"Alligator", "Gorilla", "Chimpanzee", "Orangutan", "Monkey", "Deer",
	)},
	{ID: "birds", Title: "Birds", Items: names(
		"Peacock", "Crow", "Pigeon", "Hen", "Rooster", "Turkey", "Parrot",
		"Sparrow", "Duck", "Swan", "Ostrich", "Eagle", "Vulture",
	)},
	{ID: "food", Title: "Food", Items: names(
		"Pizza", "Burger", "Dosa", "Vada", "Rice", "Ice Cream", "French Fries",
		"Fish", "Pasta", "Yogurt", "Soup", "Kebab",
	)},
	{ID: "transportation", Title: "Transportation", Items: names(
		"Bicycle", "Electric Scooter", "Moped", "Motorcycle", "Car", "Truck",
		"Bus", "Train", "Aeroplane", "Rocket",
	)},
	{ID: "professions", Title: "Professions", Items: names(
		"Doctor", "Surgeon", "Software Engineer", "Scientist", "Mechanic",
		"Teacher", "Pilot", "Air Hostess", "Athlete", "Chauffeur",
	)},
}

// Categories returns every category in display order. The returned slice is
// a copy; item slices are shared and must not be modified.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Lookup returns the category with the given ID.
func Lookup(id string) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// ItemWords returns the name of every item across all categories in catalog
// order.
func ItemWords() []string {
	var words []string
	for _, c := range categories {
		for _, it := range c.Items {
			words = append(words, it.Name)
		}
	}
	return words
}

// LearningPhrases returns every phrase that gets its own word clip: each
// item name, the wrong-answer fragments, then a question per item.
func LearningPhrases() []string {
	words := ItemWords()
	phrases := make([]string, 0, 2*len(words)+2)
	phrases = append(phrases, words...)
	phrases = append(phrases, ThatWas, TryToFind)
	for _, w := range words {
		phrases = append(phrases, Question(w))
	}
	return phrases
}
