package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"codecoach/internal/common"
	"codecoach/internal/domain/model"
	"codecoach/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// QuestionEntry is one question in a YAML question bank.
type QuestionEntry struct {
	Title       string           `yaml:"title"`
	Slug        string           `yaml:"slug"`
	Difficulty  int              `yaml:"difficulty"`
	Topic       string           `yaml:"topic"`
	Description string           `yaml:"description"`
	Constraints string           `yaml:"constraints"`
	TestCases   []model.TestCase `yaml:"test_cases"`
}

type Bank struct {
	Questions []QuestionEntry `yaml:"questions"`
}

func LoadFile(path string) (*Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open question bank: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func Parse(r io.Reader) (*Bank, error) {
	var bank Bank
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&bank); err != nil {
		if err == io.EOF {
			return &bank, nil
		}
		return nil, fmt.Errorf("parse question bank: %w", err)
	}
	return &bank, nil
}

// Build validates every entry and turns it into a question with a fresh id
// and a slug derived from the title unless one is given. Slugs must be
// unique within the bank.
func (b *Bank) Build() ([]model.Question, error) {
	seen := make(map[string]int, len(b.Questions))
	out := make([]model.Question, 0, len(b.Questions))

	for i, e := range b.Questions {
		title := strings.TrimSpace(e.Title)
		if title == "" {
			return nil, fmt.Errorf("question %d: title is required: %w", i+1, common.ErrValidation)
		}
		tier := model.Difficulty(e.Difficulty)
		if !tier.Valid() {
			return nil, fmt.Errorf("question %d (%s): difficulty must be 1, 2 or 3, got %d: %w", i+1, title, e.Difficulty, common.ErrValidation)
		}

		s := e.Slug
		if s == "" {
			s = slug.Make(title)
		}
		if prev, dup := seen[s]; dup {
			return nil, fmt.Errorf("question %d (%s): slug %q already used by question %d: %w", i+1, title, s, prev, common.ErrConflict)
		}
		seen[s] = i + 1

		out = append(out, model.Question{
			ID:          uuid.NewString(),
			Slug:        s,
			Title:       title,
			Description: strings.TrimSpace(e.Description),
			Constraints: strings.TrimSpace(e.Constraints),
			Topic:       e.Topic,
			Difficulty:  tier,
			TestCases:   e.TestCases,
		})
	}
	return out, nil
}

type Seeder struct {
	questions repository.QuestionRepository
	log       zerolog.Logger
}

func NewSeeder(questions repository.QuestionRepository, log zerolog.Logger) *Seeder {
	return &Seeder{questions: questions, log: log}
}

// Run upserts every question by slug. With dryRun nothing is written.
func (s *Seeder) Run(ctx context.Context, questions []model.Question, dryRun bool) (int, error) {
	for i := range questions {
		q := &questions[i]
		if dryRun {
			s.log.Info().Str("slug", q.Slug).Int("difficulty", int(q.Difficulty)).Msg("would upsert question")
			continue
		}
		if err := s.questions.Upsert(ctx, q); err != nil {
			return i, fmt.Errorf("upsert %s: %w", q.Slug, err)
		}
		s.log.Info().Str("id", q.ID).Str("slug", q.Slug).Int("difficulty", int(q.Difficulty)).Msg("question upserted")
	}
	if dryRun {
		return 0, nil
	}
	return len(questions), nil
}
