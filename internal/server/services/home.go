package services

import (
	"context"
	"sort"

	"github.com/upeosoft/cms/internal/server/models"
)

// Section is one titled block of the homepage.
type Section struct {
	Title       string             `json:"title"`
	Subtitle    string             `json:"subtitle"`
	Items       []*models.Document `json:"items"`
	AllServices []*models.Document `json:"allServices,omitempty"`
}

type Button struct {
	Text string `json:"text"`
	Link string `json:"link"`
}

type Hero struct {
	Title           string `json:"title"`
	Subtitle        string `json:"subtitle"`
	Description     string `json:"description"`
	PrimaryButton   Button `json:"primaryButton"`
	SecondaryButton Button `json:"secondaryButton"`
}

type CallToAction struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ButtonText  string `json:"buttonText"`
	ButtonLink  string `json:"buttonLink"`
}

// HomeStats are the counters shown on the homepage.
type HomeStats struct {
	Projects     int `json:"projects"`
	Services     int `json:"services"`
	BlogPosts    int `json:"blogPosts"`
	HappyClients int `json:"happyClients"`
}

// HomePage is everything the landing page renders in one response.
type HomePage struct {
	Hero             Hero         `json:"hero"`
	FeaturedProducts Section      `json:"featuredProducts"`
	Services         Section      `json:"services"`
	About            Section      `json:"about"`
	Insights         Section      `json:"insights"`
	Stats            HomeStats    `json:"stats"`
	CTA              CallToAction `json:"cta"`
}

// Featured holds the featured items of each homepage collection.
type Featured struct {
	Products []*models.Document `json:"featuredProducts"`
	Services []*models.Document `json:"featuredServices"`
	Insights []*models.Document `json:"featuredInsights"`
}

// happyClients has no backing collection.
const happyClients = 50

var homeHero = Hero{
	Title:           "Welcome to Our Platform",
	Subtitle:        "Building amazing digital experiences",
	Description:     "We create innovative solutions that drive business growth and deliver exceptional user experiences.",
	PrimaryButton:   Button{Text: "Get Started", Link: "/contact"},
	SecondaryButton: Button{Text: "View Our Work", Link: "/portfolio"},
}

var homeCTA = CallToAction{
	Title:       "Ready to Start Your Project?",
	Description: "Let's work together to bring your ideas to life",
	ButtonText:  "Contact Us",
	ButtonLink:  "/contact",
}

// entry is a document with its decoded body, for filtering on body fields.
type entry struct {
	doc    *models.Document
	fields map[string]any
}

type entries []entry

func (e entries) where(match func(map[string]any) bool) entries {
	out := entries{}
	for _, x := range e {
		if match(x.fields) {
			out = append(out, x)
		}
	}
	return out
}

// byOrder sorts on the numeric "order" field. Ties keep their newest-first
// position.
func (e entries) byOrder() entries {
	out := append(entries{}, e...)
	sort.SliceStable(out, func(i, j int) bool { return order(out[i].fields) < order(out[j].fields) })
	return out
}

func (e entries) take(n int) []*models.Document {
	if len(e) > n {
		e = e[:n]
	}
	docs := make([]*models.Document, len(e))
	for i, x := range e {
		docs[i] = x.doc
	}
	return docs
}

func active(f map[string]any) bool   { return flag(f, "isActive", true) }
func featured(f map[string]any) bool { return flag(f, "isFeatured", false) && active(f) }

func cardType(kind string) func(map[string]any) bool {
	return func(f map[string]any) bool {
		t, _ := f["type"].(string)
		return t == kind && active(f)
	}
}

func featuredCard(kind string) func(map[string]any) bool {
	match := cardType(kind)
	return func(f map[string]any) bool { return match(f) && featured(f) }
}

func flag(f map[string]any, key string, def bool) bool {
	if v, ok := f[key].(bool); ok {
		return v
	}
	return def
}

func order(f map[string]any) float64 {
	v, _ := f["order"].(float64)
	return v
}

// homeSources are the collections the homepage draws from, newest first.
type homeSources struct {
	products, cards, insights entries
}

func (s *ContentService) loadEntries(ctx context.Context, collection string) (entries, error) {
	c, err := lookup(collection)
	if err != nil {
		return nil, err
	}
	docs, err := s.repomanager.Documents(s.db).List(ctx, c.Name, c.Draftable)
	if err != nil {
		return nil, err
	}
	out := make(entries, 0, len(docs))
	for _, d := range docs {
		fields, err := decodeObject(d.Data)
		if err != nil {
			s.log.Warn(ctx, "skipping undecodable document", "collection", c.Name, "id", d.ID, "error", err)
			continue
		}
		out = append(out, entry{doc: d, fields: fields})
	}
	return out, nil
}

func (s *ContentService) loadHomeSources(ctx context.Context) (*homeSources, error) {
	var (
		src homeSources
		err error
	)
	if src.products, err = s.loadEntries(ctx, models.CollectionProducts); err != nil {
		return nil, err
	}
	if src.cards, err = s.loadEntries(ctx, models.CollectionCards); err != nil {
		return nil, err
	}
	if src.insights, err = s.loadEntries(ctx, models.CollectionInsights); err != nil {
		return nil, err
	}
	return &src, nil
}

func (src *homeSources) stats() HomeStats {
	return HomeStats{
		Projects:     len(src.products.where(active)),
		Services:     len(src.cards.where(cardType("service"))),
		BlogPosts:    len(src.insights.where(active)),
		HappyClients: happyClients,
	}
}

// Home assembles the landing page from products, cards and published
// insights. Documents without "isActive" count as active.
func (s *ContentService) Home(ctx context.Context) (*HomePage, error) {
	src, err := s.loadHomeSources(ctx)
	if err != nil {
		return nil, err
	}

	return &HomePage{
		Hero: homeHero,
		FeaturedProducts: Section{
			Title:    "Featured Products",
			Subtitle: "Check out our latest creations",
			Items:    src.products.where(featured).byOrder().take(4),
		},
		Services: Section{
			Title:       "Our Services",
			Subtitle:    "What we can do for you",
			Items:       src.cards.where(featuredCard("service")).byOrder().take(6),
			AllServices: src.cards.where(cardType("service")).byOrder().take(8),
		},
		About: Section{
			Title:    "About Us",
			Subtitle: "Why choose our platform",
			Items:    src.cards.where(cardType("about")).byOrder().take(4),
		},
		Insights: Section{
			Title:    "Latest Insights",
			Subtitle: "News and updates from our blog",
			Items:    src.insights.where(active).take(3),
		},
		Stats: src.stats(),
		CTA:   homeCTA,
	}, nil
}

// Featured returns up to three featured products, service cards and
// published insights.
func (s *ContentService) Featured(ctx context.Context) (*Featured, error) {
	src, err := s.loadHomeSources(ctx)
	if err != nil {
		return nil, err
	}
	return &Featured{
		Products: src.products.where(featured).byOrder().take(3),
		Services: src.cards.where(featuredCard("service")).byOrder().take(3),
		Insights: src.insights.where(featured).take(3),
	}, nil
}

// Stats counts active products, active service cards and published insights.
func (s *ContentService) Stats(ctx context.Context) (*HomeStats, error) {
	src, err := s.loadHomeSources(ctx)
	if err != nil {
		return nil, err
	}
	st := src.stats()
	return &st, nil
}
