// Command generate_demo creates a demo database and KV file: the bundled
// content seeded into the tables plus a few learner-authored records and
// some practice history for a "demo" learner.
// Usage: go run ./cmd/generate_demo [--db path/to/demo.db] [--kv path/to/demo-kv.json]
package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/pflag"

	"github.com/mrlokans/frenchmaster/internal/content"
	"github.com/mrlokans/frenchmaster/internal/database"
	"github.com/mrlokans/frenchmaster/internal/database/records"
	"github.com/mrlokans/frenchmaster/internal/database/userdata"
	"github.com/mrlokans/frenchmaster/internal/entities"
	"github.com/mrlokans/frenchmaster/internal/flashcards"
	"github.com/mrlokans/frenchmaster/internal/kvstore"
	"github.com/mrlokans/frenchmaster/internal/selection"
)

const (
	defaultDemoDatabasePath = "./demo/demo.db"
	defaultDemoKVPath       = "./demo/demo-kv.json"
	demoLearner             = "demo"
)

func main() {
	dbPath := pflag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	kvPath := pflag.String("kv", defaultDemoKVPath, "path to the demo key/value file")
	pflag.Parse()

	log.Printf("Generating demo database at %s...", *dbPath)

	// Start fresh
	for _, p := range []string{*dbPath, *kvPath} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Fatalf("Failed to remove existing %s: %v", p, err)
		}
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	kv, err := kvstore.Open(*kvPath)
	if err != nil {
		log.Fatalf("Failed to open kv store: %v", err)
	}

	svc := flashcards.NewService(flashcards.Options{
		Store:  records.NewRepository(db.DB),
		Users:  userdata.NewRepository(db.DB),
		KV:     kv,
		Bundle: content.DirSource{},
	})

	ctx := context.Background()
	svc.Initialize(ctx, demoLearner)

	addLearnerContent(ctx, svc)
	addPracticeHistory(ctx, selection.NewSelector(svc, kv))

	for category, n := range svc.Status().Counts {
		log.Printf("  %s: %d", category, n)
	}
	log.Println("Demo database generated successfully!")
}

func addLearnerContent(ctx context.Context, svc *flashcards.Service) {
	words := []entities.Record{
		{English: "the cat", French: entities.FrenchForms{"le chat"}},
		{English: "the library", French: entities.FrenchForms{"la bibliothèque"}},
		{English: "the bike", French: entities.FrenchForms{"le vélo", "la bicyclette"}},
	}
	for _, w := range words {
		if _, ok := svc.AddUserWord(ctx, w); !ok {
			log.Printf("Failed to add word %q", w.English)
		}
	}

	sentences := []entities.Record{
		{English: "Where is the station?", French: entities.FrenchForms{"Où est la gare ?"}},
		{English: "I would like a coffee, please.", French: entities.FrenchForms{"Je voudrais un café, s'il vous plaît."}},
	}
	for _, s := range sentences {
		if _, ok := svc.AddUserSentence(ctx, s); !ok {
			log.Printf("Failed to add sentence %q", s.English)
		}
	}

	verb := entities.Record{
		Infinitive: "parler",
		English:    "to speak",
		Conjugations: entities.Conjugations{
			"je":        {"present": "parle", "passé composé": "ai parlé"},
			"tu":        {"present": "parles", "passé composé": "as parlé"},
			"il/elle":   {"present": "parle", "passé composé": "a parlé"},
			"nous":      {"present": "parlons", "passé composé": "avons parlé"},
			"vous":      {"present": "parlez", "passé composé": "avez parlé"},
			"ils/elles": {"present": "parlent", "passé composé": "ont parlé"},
		},
	}
	if _, ok := svc.AddUserVerb(ctx, verb); !ok {
		log.Printf("Failed to add verb %q", verb.Infinitive)
	}
}

// addPracticeHistory walks a few items of every category so the demo
// learner has partial progress.
func addPracticeHistory(ctx context.Context, sel *selection.Selector) {
	for _, category := range entities.AllCategories {
		for i := 0; i < 3; i++ {
			rec, ok := sel.GetNextItem(ctx, category, demoLearner)
			if !ok {
				break
			}
			if err := sel.MarkItemAsSeen(category, rec.ID, demoLearner); err != nil {
				log.Printf("Failed to mark %s as seen: %v", rec.ID, err)
			}
		}
	}
}
