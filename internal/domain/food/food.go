// Package food serves the embedded Ayurvedic food reference table.
package food

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ahara/ahara/internal/assessment"
)

//go:embed foods.yaml
var foodsYAML []byte

// Effect is how a food acts on one constitutional category.
type Effect string

const (
	Good     Effect = "good"
	Moderate Effect = "moderate"
	Avoid    Effect = "avoid"
)

func (e Effect) Valid() bool {
	return e == Good || e == Moderate || e == Avoid
}

// Nutrition holds macro values per 100 g unless scaled.
type Nutrition struct {
	Calories float64 `yaml:"calories" json:"calories"`
	Carbs    float64 `yaml:"carbs" json:"carbs"`
	Protein  float64 `yaml:"protein" json:"protein"`
	Fat      float64 `yaml:"fat" json:"fat"`
	Fiber    float64 `yaml:"fiber" json:"fiber"`
	Sugar    float64 `yaml:"sugar" json:"sugar"`
}

// Scale returns the nutrition of grams of the food.
func (n Nutrition) Scale(grams float64) Nutrition {
	m := grams / 100
	return Nutrition{
		Calories: n.Calories * m,
		Carbs:    n.Carbs * m,
		Protein:  n.Protein * m,
		Fat:      n.Fat * m,
		Fiber:    n.Fiber * m,
		Sugar:    n.Sugar * m,
	}
}

type Doshas struct {
	Vata  Effect `yaml:"vata" json:"vata"`
	Pitta Effect `yaml:"pitta" json:"pitta"`
	Kapha Effect `yaml:"kapha" json:"kapha"`
}

// For returns the effect on c, or "" for an unknown category.
func (d Doshas) For(c assessment.Category) Effect {
	switch c {
	case assessment.Vata:
		return d.Vata
	case assessment.Pitta:
		return d.Pitta
	case assessment.Kapha:
		return d.Kapha
	}
	return ""
}

type Food struct {
	Name      string    `yaml:"name" json:"name"`
	Category  string    `yaml:"category" json:"category"`
	Nutrition Nutrition `yaml:"nutrition" json:"nutrition"`
	Doshas    Doshas    `yaml:"doshas" json:"doshas"`
	Rasa      []string  `yaml:"rasa" json:"rasa"`
	Virya     string    `yaml:"virya" json:"virya"`
	Vipaka    string    `yaml:"vipaka" json:"vipaka"`
	Guna      []string  `yaml:"guna" json:"guna"`
	Notes     string    `yaml:"notes" json:"notes"`
}

// Catalog is an immutable, name-indexed food table.
type Catalog struct {
	foods  []Food
	byName map[string]int
}

// Filter narrows List. Empty fields match everything; Effect applies to
// Dosha and is ignored without it.
type Filter struct {
	Category string
	Dosha    assessment.Category
	Effect   Effect
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Parse decodes and validates a YAML food table.
func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		Foods []Food `yaml:"foods"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode food table: %w", err)
	}

	c := &Catalog{byName: make(map[string]int, len(doc.Foods))}
	for _, f := range doc.Foods {
		f.Name = normalizeName(f.Name)
		if f.Name == "" {
			return nil, fmt.Errorf("food %d: name is required", len(c.foods)+1)
		}
		if _, dup := c.byName[f.Name]; dup {
			return nil, fmt.Errorf("food %q: duplicate name", f.Name)
		}
		for _, cat := range assessment.Categories {
			if !f.Doshas.For(cat).Valid() {
				return nil, fmt.Errorf("food %q: invalid %s effect %q", f.Name, cat, f.Doshas.For(cat))
			}
		}
		n := f.Nutrition
		if n.Calories < 0 || n.Carbs < 0 || n.Protein < 0 || n.Fat < 0 || n.Fiber < 0 || n.Sugar < 0 {
			return nil, fmt.Errorf("food %q: negative nutrition value", f.Name)
		}
		c.byName[f.Name] = len(c.foods)
		c.foods = append(c.foods, f)
	}
	return c, nil
}

var loadDefault = sync.OnceValues(func() (*Catalog, error) {
	return Parse(foodsYAML)
})

// Default returns the embedded food table.
func Default() (*Catalog, error) {
	return loadDefault()
}

func (c *Catalog) Len() int { return len(c.foods) }

// Lookup finds a food by case-insensitive name.
func (c *Catalog) Lookup(name string) (Food, bool) {
	i, ok := c.byName[normalizeName(name)]
	if !ok {
		return Food{}, false
	}
	return c.foods[i], true
}

// List returns matching foods in table order.
func (c *Catalog) List(f Filter) []Food {
	out := []Food{}
	for _, food := range c.foods {
		if f.Category != "" && !strings.EqualFold(food.Category, f.Category) {
			continue
		}
		if f.Dosha != "" {
			e := food.Doshas.For(f.Dosha)
			if e == "" || (f.Effect != "" && e != f.Effect) {
				continue
			}
		}
		out = append(out, food)
	}
	return out
}

// Categories lists the distinct food categories, sorted.
func (c *Catalog) Categories() []string {
	seen := map[string]bool{}
	var out []string
	for _, f := range c.foods {
		if !seen[f.Category] {
			seen[f.Category] = true
			out = append(out, f.Category)
		}
	}
	sort.Strings(out)
	return out
}

// Recommend returns the names of foods that are good for and that should be
// avoided by the given category.
func (c *Catalog) Recommend(cat assessment.Category) (good, avoid []string) {
	good, avoid = []string{}, []string{}
	for _, f := range c.foods {
		switch f.Doshas.For(cat) {
		case Good:
			good = append(good, f.Name)
		case Avoid:
			avoid = append(avoid, f.Name)
		}
	}
	return good, avoid
}
